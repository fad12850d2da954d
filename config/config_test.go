package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestValidateAndAddDefaults(t *testing.T) {
	// Empty configuration gets every default
	cnf := Configuration{}
	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cnf.ProjectName != "Sieve Server" {
		t.Errorf("Expected default project name, got %s", cnf.ProjectName)
	}
	if cnf.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port %s, got %s", DEFAULT_PORT, cnf.Server.Port)
	}
	if cnf.DataSource.Driver != "postgres" {
		t.Errorf("Expected default driver postgres, got %s", cnf.DataSource.Driver)
	}
	if cnf.Query.Namespace != DEFAULT_NAMESPACE || cnf.Query.ProfileFile != DEFAULT_PROFILE_FILE || cnf.Query.MaxRows != DEFAULT_MAX_ROWS {
		t.Errorf("Unexpected query defaults %+v", cnf.Query)
	}
	if cnf.Redis.ChoicesTTLSec != DEFAULT_CHOICES_TTL {
		t.Errorf("Expected default choices TTL, got %d", cnf.Redis.ChoicesTTLSec)
	}
	if cnf.RateLimit.RequestsPerSecond != nil || cnf.RateLimit.Burst != nil {
		t.Errorf("Expected rate limiting to stay disabled")
	}

	// Whitespace is trimmed and the namespace lower-cased
	cnf = Configuration{
		DataSource: DataSourceConfig{Driver: " SQLite3 ", Dns: " file.db "},
		Query:      QueryConfig{Namespace: " F "},
	}
	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cnf.DataSource.Driver != "sqlite3" || cnf.DataSource.Dns != "file.db" || cnf.Query.Namespace != "f" {
		t.Errorf("Unexpected normalization %+v %+v", cnf.DataSource, cnf.Query)
	}

	// Unsupported drivers and bracketed namespaces are rejected
	cnf = Configuration{DataSource: DataSourceConfig{Driver: "oracle"}}
	if err := cnf.validateAndAddDefaults(); err == nil {
		t.Errorf("Expected unsupported driver error")
	}
	cnf = Configuration{Query: QueryConfig{Namespace: "q[x]"}}
	if err := cnf.validateAndAddDefaults(); err == nil {
		t.Errorf("Expected invalid namespace error")
	}

	// Burst defaults from RPS
	rps := 5.0
	cnf = Configuration{RateLimit: RateLimitConfig{RequestsPerSecond: &rps}}
	if err := cnf.validateAndAddDefaults(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cnf.RateLimit.Burst == nil || *cnf.RateLimit.Burst != 10 {
		t.Errorf("Expected burst of 10, got %v", cnf.RateLimit.Burst)
	}
}

func TestRequireDataSource(t *testing.T) {
	cnf := Configuration{}
	err := cnf.RequireDataSource()
	if err == nil || err.Error() != "data source DNS is required" {
		t.Errorf("Expected data source DNS required error, got %v", err)
	}

	cnf.DataSource.Dns = "postgres://localhost:5432"
	if err := cnf.RequireDataSource(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "sieve.json")
	if err != nil {
		t.Fatalf("Unable to create temporary file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	sampleConfig := Configuration{
		ProjectName: "Temp Project",
		DataSource: DataSourceConfig{
			Dns: "temp-dns",
		},
		Query: QueryConfig{
			MaxRows: 50,
		},
	}
	if err := json.NewEncoder(tmpFile).Encode(sampleConfig); err != nil {
		t.Fatalf("Unable to write to temporary file: %v", err)
	}
	tmpFile.Close()

	// Environment variables override the file
	os.Setenv("SIEVE_PROJECT_NAME", "Env Project")
	defer os.Unsetenv("SIEVE_PROJECT_NAME")
	os.Setenv("SIEVE_QUERY_NAMESPACE", "filter")
	defer os.Unsetenv("SIEVE_QUERY_NAMESPACE")

	if err := loadConfigFromFile(tmpFile.Name()); err != nil {
		t.Fatalf("loadConfigFromFile failed: %v", err)
	}

	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if loadedConfig.ProjectName != "Env Project" {
		t.Errorf("Expected ProjectName to be 'Env Project', got '%s'", loadedConfig.ProjectName)
	}
	if loadedConfig.Query.Namespace != "filter" {
		t.Errorf("Expected namespace 'filter', got '%s'", loadedConfig.Query.Namespace)
	}
	if loadedConfig.Query.MaxRows != 50 {
		t.Errorf("Expected MaxRows 50, got %d", loadedConfig.Query.MaxRows)
	}
	if loadedConfig.DataSource.Dns != "temp-dns" {
		t.Errorf("Expected DataSource.Dns to be 'temp-dns', got '%s'", loadedConfig.DataSource.Dns)
	}
}

func TestInitConfig_MissingFile(t *testing.T) {
	if err := InitConfig("/nonexistent/sieve.json"); err != nil {
		t.Fatalf("InitConfig failed: %v", err)
	}
	loadedConfig, err := Fetch()
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if loadedConfig.Server.Port != DEFAULT_PORT {
		t.Errorf("Expected default port, got %s", loadedConfig.Server.Port)
	}
}

func TestMockConfig(t *testing.T) {
	MockConfig(&Configuration{ProjectName: "mock"})
	c, err := Fetch()
	if err != nil || c.ProjectName != "mock" {
		t.Errorf("Expected mock config, got %v %v", c, err)
	}
}

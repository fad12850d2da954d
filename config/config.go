/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT         = "5001"
	DEFAULT_NAMESPACE    = "q"
	DEFAULT_PROFILE_FILE = "./profiles.json"
	DEFAULT_MAX_ROWS     = 500
	DEFAULT_CHOICES_TTL  = 300
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"SIEVE_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"SIEVE_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"SIEVE_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"SIEVE_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"SIEVE_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"SIEVE_SERVER_PORT"`
}

type DataSourceConfig struct {
	Driver string `json:"driver" envconfig:"SIEVE_DATA_SOURCE_DRIVER"`
	Dns    string `json:"dns" envconfig:"SIEVE_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"SIEVE_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"SIEVE_REDIS_SKIP_TLS_VERIFY"`
	ChoicesTTLSec int    `json:"choices_ttl_sec" envconfig:"SIEVE_REDIS_CHOICES_TTL_SEC"`
}

type QueryConfig struct {
	Namespace   string `json:"namespace" envconfig:"SIEVE_QUERY_NAMESPACE"`
	ProfileFile string `json:"profile_file" envconfig:"SIEVE_QUERY_PROFILE_FILE"`
	MaxRows     int    `json:"max_rows" envconfig:"SIEVE_QUERY_MAX_ROWS"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"SIEVE_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"SIEVE_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"SIEVE_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type Configuration struct {
	ProjectName string           `json:"project_name" envconfig:"SIEVE_PROJECT_NAME"`
	Server      ServerConfig     `json:"server"`
	DataSource  DataSourceConfig `json:"data_source"`
	Redis       RedisConfig      `json:"redis"`
	Query       QueryConfig      `json:"query"`
	RateLimit   RateLimitConfig  `json:"rate_limit"`
	// EnableTelemetry exports request and query traces over OTLP/HTTP.
	EnableTelemetry bool `json:"enable_telemetry" envconfig:"SIEVE_ENABLE_TELEMETRY"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("sieve", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called sieve.json with your config ❌")
	}
	return c, nil
}

// RequireDataSource checks the settings needed to run queries against a
// database. Only the server needs them.
func (cnf *Configuration) RequireDataSource() error {
	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}
	return nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Sieve Server"
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Driver = strings.ToLower(strings.TrimSpace(cnf.DataSource.Driver))
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Query.Namespace = strings.ToLower(strings.TrimSpace(cnf.Query.Namespace))
	cnf.Query.ProfileFile = strings.TrimSpace(cnf.Query.ProfileFile)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	switch cnf.DataSource.Driver {
	case "":
		cnf.DataSource.Driver = "postgres"
	case "postgres", "sqlite3", "mysql":
	default:
		return errors.New("data source driver must be one of postgres, sqlite3 or mysql")
	}

	if cnf.Query.Namespace == "" {
		cnf.Query.Namespace = DEFAULT_NAMESPACE
	}
	if strings.ContainsAny(cnf.Query.Namespace, "[]&=") {
		return errors.New("query namespace must not contain brackets, '&' or '='")
	}
	if cnf.Query.ProfileFile == "" {
		cnf.Query.ProfileFile = DEFAULT_PROFILE_FILE
	}
	if cnf.Query.MaxRows <= 0 {
		cnf.Query.MaxRows = DEFAULT_MAX_ROWS
	}

	if cnf.Redis.ChoicesTTLSec <= 0 {
		cnf.Redis.ChoicesTTLSec = DEFAULT_CHOICES_TTL
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}

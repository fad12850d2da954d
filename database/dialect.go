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

package database

import (
	"fmt"
	"strings"
)

// Dialect selects placeholder, quoting and pattern-match syntax.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
	MySQL    Dialect = "mysql"
)

// ParseDialect maps a database/sql driver name to a Dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Driver is the database/sql driver name registered for the dialect.
func (d Dialect) Driver() string {
	return string(d)
}

func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// quote quotes each part of a possibly schema-qualified identifier.
func (d Dialect) quote(ident string) string {
	q := `"`
	if d == MySQL {
		q = "`"
	}
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = q + p + q
	}
	return strings.Join(parts, ".")
}

// match renders a case-insensitive pattern match. MySQL already treats
// backslash as the LIKE escape and its default collations are
// case-insensitive.
func (d Dialect) match(column, placeholder string) string {
	switch d {
	case Postgres:
		return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, column, placeholder)
	case SQLite:
		return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, column, placeholder)
	default:
		return fmt.Sprintf("%s LIKE %s", column, placeholder)
	}
}

// validIdentifier accepts letters, digits, underscore and dot.
func validIdentifier(ident string) bool {
	if ident == "" {
		return false
	}
	for _, c := range ident {
		if !((c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '_' || c == '.') {
			return false
		}
	}
	return true
}

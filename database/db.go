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
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/internal/apierror"
	"github.com/blnkfinance/sieve/model"
)

const tracerName = "sieve.database"

// Ensure the instance is not accessible outside the package.
var instance *Datasource
var once sync.Once

// Row is one scanned record keyed by column name.
type Row map[string]interface{}

// IDataSource runs compiled queries against a database.
type IDataSource interface {
	Query(res *model.Resource) Query
	All(ctx context.Context, q Query) ([]Row, error)
	Distinct(ctx context.Context, res *model.Resource, column string) ([]string, error)
}

type Datasource struct {
	Conn    *sql.DB
	Dialect Dialect
	MaxRows int
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	con, err := GetDBConnection(configuration)
	if err != nil {
		return nil, err
	}
	return con, nil
}

// GetDBConnection provides a global access point to the instance and initializes it if it's not already.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		dialect, errDialect := ParseDialect(configuration.DataSource.Driver)
		if errDialect != nil {
			err = errDialect
			return
		}
		con, errConn := ConnectDB(dialect, configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: con, Dialect: dialect, MaxRows: configuration.Query.MaxRows}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// ConnectDB opens and pings a connection for dialect.
func ConnectDB(dialect Dialect, dns string) (*sql.DB, error) {
	db, err := sql.Open(dialect.Driver(), dns)
	if err != nil {
		return nil, err
	}
	err = db.Ping()
	if err != nil {
		logrus.Errorf("database Connection error ❌: %v", err)
		return nil, err
	}
	return db, nil
}

// Query starts a query over res in the datasource's dialect.
func (d *Datasource) Query(res *model.Resource) Query {
	return NewQuery(res, d.Dialect)
}

// capped applies MaxRows unless q already carries a smaller limit.
func (d *Datasource) capped(q Query) Query {
	if d.MaxRows > 0 && (q.limit <= 0 || q.limit > d.MaxRows) {
		return q.Limit(d.MaxRows)
	}
	return q
}

// All executes q and scans every row into a Row.
func (d *Datasource) All(ctx context.Context, q Query) ([]Row, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Fetching rows", trace.WithAttributes(attribute.String("resource", q.resource.Name)))
	defer span.End()

	query, args, err := d.capped(q).ToSQL()
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid query", err)
	}
	span.SetAttributes(attribute.String("db.statement", query))

	rows, err := d.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve rows", err)
	}
	defer rows.Close()

	result, err := scanRows(rows)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan rows", err)
	}
	return result, nil
}

// Distinct returns the distinct non-null values of column, as strings, in
// ascending order.
func (d *Datasource) Distinct(ctx context.Context, res *model.Resource, column string) ([]string, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "Fetching distinct values", trace.WithAttributes(
		attribute.String("resource", res.Name),
		attribute.String("column", column),
	))
	defer span.End()

	query, err := DistinctSQL(res, d.Dialect, column, d.MaxRows)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invalid column", err)
	}

	rows, err := d.Conn.QueryContext(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve distinct values", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to scan distinct value", err)
		}
		if v.Valid {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Error occurred while iterating over distinct values", err)
	}
	return values, nil
}

func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := []Row{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

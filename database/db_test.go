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
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/sieve"
	"github.com/blnkfinance/sieve/config"
	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/internal/apierror"
	"github.com/blnkfinance/sieve/model"
)

func TestGetDBConnection(t *testing.T) {
	instance = nil
	once = sync.Once{}

	mockConfig := &config.Configuration{
		DataSource: config.DataSourceConfig{Driver: "sqlite3", Dns: "file:conn_test?mode=memory&cache=shared"},
		Query:      config.QueryConfig{MaxRows: 25},
	}

	ds1, err := GetDBConnection(mockConfig)
	require.NoError(t, err)
	assert.Equal(t, SQLite, ds1.Dialect)
	assert.Equal(t, 25, ds1.MaxRows)

	ds2, err := GetDBConnection(mockConfig)
	assert.NoError(t, err)
	assert.Equal(t, ds1, ds2)
}

func TestGetDBConnection_Failure(t *testing.T) {
	instance = nil
	once = sync.Once{}

	_, err := GetDBConnection(&config.Configuration{DataSource: config.DataSourceConfig{Driver: "oracle"}})
	assert.Error(t, err)
}

func TestConnectDB_Failure(t *testing.T) {
	db, err := ConnectDB(Postgres, "invalid-dns")
	assert.Error(t, err)
	assert.Nil(t, db)
}

func TestDatasource_All(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := &Datasource{Conn: db, Dialect: Postgres, MaxRows: 50}
	q := ds.Query(postsResource()).Where(model.Eq("status", "live")).(Query)

	expected := `SELECT "id", "title", "status", "created_at", "views", "author_id" FROM "posts" WHERE "status" = $1 LIMIT 50`
	rows := sqlmock.NewRows([]string{"id", "title", "status", "created_at", "views", "author_id"}).
		AddRow(1, []byte("First"), "live", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3, nil)
	mock.ExpectQuery(regexp.QuoteMeta(expected)).WithArgs("live").WillReturnRows(rows)

	result, err := ds.All(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "First", result[0]["title"])
	assert.Nil(t, result[0]["author_id"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasource_All_KeepsSmallerLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := &Datasource{Conn: db, Dialect: SQLite, MaxRows: 50}
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "posts" LIMIT 5`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	result, err := ds.All(context.Background(), ds.Query(postsResource()).Limit(5))
	require.NoError(t, err)
	assert.Empty(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasource_All_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	ds := &Datasource{Conn: db, Dialect: Postgres}

	_, err = ds.All(context.Background(), ds.Query(postsResource()).Where(model.Eq("body", "x")).(Query))
	var apiErr apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.ErrInvalidInput, apiErr.Code)

	mock.ExpectQuery("SELECT").WillReturnError(fmt.Errorf("connection reset"))
	_, err = ds.All(context.Background(), ds.Query(postsResource()))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apierror.ErrInternalServer, apiErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasource_Distinct(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ds := &Datasource{Conn: db, Dialect: Postgres, MaxRows: 10}
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT "status" FROM "posts" WHERE "status" IS NOT NULL ORDER BY "status" LIMIT 10`)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("draft").AddRow("live"))

	values, err := ds.Distinct(context.Background(), postsResource(), "status")
	require.NoError(t, err)
	assert.Equal(t, []string{"draft", "live"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())

	_, err = ds.Distinct(context.Background(), postsResource(), "body")
	assert.Error(t, err)
}

// sqliteDatasource opens a private in-memory database seeded with posts.
func sqliteDatasource(t *testing.T) *Datasource {
	t.Helper()
	db, err := ConnectDB(SQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE posts (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		status TEXT,
		created_at DATETIME NOT NULL,
		views INTEGER NOT NULL,
		author_id INTEGER
	)`)
	require.NoError(t, err)

	insert := func(title, status string, created time.Time, views int) {
		_, err := db.Exec(`INSERT INTO posts (title, status, created_at, views) VALUES (?, ?, ?, ?)`, title, status, created, views)
		require.NoError(t, err)
	}

	day := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	insert("100% organic", "live", day.Add(-time.Hour), 10)
	insert("100 percent", "live", day.Add(10*time.Hour), 20)
	insert("foo_bar", "draft", day.Add(23*time.Hour+59*time.Minute), 30)
	insert("fooXbar", "draft", day.AddDate(0, 0, 1), 40)
	insert(`back\slash`, "live", day.AddDate(0, 0, 2), 50)

	gofakeit.Seed(42)
	for i := 0; i < 20; i++ {
		insert(gofakeit.Noun()+" "+gofakeit.Verb(), gofakeit.RandomString([]string{"live", "draft", "archived"}),
			gofakeit.DateRange(day.AddDate(0, -6, 0), day.AddDate(0, -1, 0)).UTC(), gofakeit.Number(100, 1000))
	}

	return &Datasource{Conn: db, Dialect: SQLite, MaxRows: 100}
}

func titles(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i], _ = r["title"].(string)
	}
	return out
}

func TestSQLite_Profile(t *testing.T) {
	ds := sqliteDatasource(t)
	res := postsResource()

	p, err := sieve.NewProfile(res, sieve.WithDefaultSort("id", model.Asc))
	require.NoError(t, err)
	contains, _ := filter.NewText(filter.Contains)
	onDay, _ := filter.NewDate(filter.Eq)
	require.NoError(t, p.DefineScope("live", sieve.Behavior{}))
	require.NoError(t, p.DefineFilter("title", contains))
	require.NoError(t, p.DefineFilter("created_at", onDay))
	require.NoError(t, p.DefineFilter("status", filter.NewSelect(filter.SelectOptions{Multiple: true})))
	require.NoError(t, p.DefineSorter("status"))
	require.NoError(t, p.DefineSorter("views"))

	run := func(query string) []Row {
		values, err := url.ParseQuery(query)
		require.NoError(t, err)
		q, _ := p.Resolve(ds.Query(res), values)
		rows, err := ds.All(context.Background(), q.(Query))
		require.NoError(t, err)
		return rows
	}

	assert.Equal(t, []string{"100% organic"}, titles(run("q[title][query]=100%25")))
	assert.Equal(t, []string{"foo_bar"}, titles(run("q[title][query]=foo_bar")))
	assert.Equal(t, []string{`back\slash`}, titles(run(`q[title][query]=k\s`)))
	assert.Equal(t, []string{"100 percent", "foo_bar"}, titles(run("q[created_at][value]=2024-03-05")))
	assert.Empty(t, run("q[status][value][]=&q[status][value][]="))
	assert.Len(t, run("q[scope]=live&q[title][query]=100"), 2)

	rows := run("q[sort_fields][]=status&q[sort_fields][]=views&q[sort_directions][views]=DESC")
	require.Len(t, rows, 25)
	sorted := sort.SliceIsSorted(rows, func(i, j int) bool {
		si, sj := rows[i]["status"].(string), rows[j]["status"].(string)
		if si != sj {
			return si < sj
		}
		return rows[i]["views"].(int64) > rows[j]["views"].(int64)
	})
	assert.True(t, sorted)
}

func TestSQLite_Distinct(t *testing.T) {
	ds := sqliteDatasource(t)
	values, err := ds.Distinct(context.Background(), postsResource(), "status")
	require.NoError(t, err)
	assert.Subset(t, values, []string{"draft", "live"})
	assert.True(t, sort.StringsAreSorted(values))
}

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

package profile

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/sieve"
	"github.com/blnkfinance/sieve/database"
	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/internal/cache"
	"github.com/blnkfinance/sieve/model"
)

type fakeSource struct {
	calls   int
	columns []string
	values  []string
	err     error
}

func (f *fakeSource) Distinct(_ context.Context, _ *model.Resource, column string) ([]string, error) {
	f.calls++
	f.columns = append(f.columns, column)
	return f.values, f.err
}

func loadCatalog(t *testing.T, opts Options) *Catalog {
	t.Helper()
	if opts.Source == nil {
		opts.Source = &fakeSource{values: []string{"1", "2"}}
	}
	catalog, err := Load(filepath.Join("testdata", "catalog.json"), opts)
	require.NoError(t, err)
	return catalog
}

func render(t *testing.T, entry *Entry, values url.Values) (string, []interface{}) {
	t.Helper()
	q, _ := entry.Profile.Resolve(database.NewQuery(entry.Resource, database.SQLite), values)
	sql, args, err := q.(database.Query).ToSQL()
	require.NoError(t, err)
	return sql, args
}

func TestLoad(t *testing.T) {
	catalog := loadCatalog(t, Options{})

	assert.Equal(t, []string{"posts", "users"}, catalog.Names())
	assert.Equal(t, 2, catalog.Len())

	posts, ok := catalog.Get("Posts")
	require.True(t, ok)
	assert.Equal(t, "q", posts.Profile.Namespace())
	assert.Equal(t, "published", posts.Profile.DefaultScope())
	assert.Equal(t, []string{"published", "drafts"}, posts.Profile.Scopes())
	assert.Equal(t, []string{"title", "status", "published", "created_at", "updated_at", "author", "mentions"}, posts.Profile.Filters())
	assert.Equal(t, []string{"title", "created_at", "popular", "author"}, posts.Profile.Sorters())
	assert.True(t, posts.Profile.Searchable())
	assert.Equal(t, []string{"drafts", "mentions", "popular", "published"}, posts.Resource.OperationNames())

	users, ok := catalog.Get("users")
	require.True(t, ok)
	assert.Equal(t, "", users.Profile.Namespace())
	assert.False(t, users.Profile.Searchable())

	_, ok = catalog.Get("comments")
	assert.False(t, ok)
}

func TestLoad_Namespace(t *testing.T) {
	catalog := loadCatalog(t, Options{Namespace: "f"})

	posts, _ := catalog.Get("posts")
	assert.Equal(t, "f", posts.Profile.Namespace())

	users, _ := catalog.Get("users")
	assert.Equal(t, "", users.Profile.Namespace(), "a declared namespace wins")
}

func TestCatalog_DefaultListing(t *testing.T) {
	catalog := loadCatalog(t, Options{})
	posts, _ := catalog.Get("posts")

	sql, args := render(t, posts, url.Values{})
	assert.Equal(t, `SELECT "id", "title", "body", "status", "views", "created_at", "updated_at", "published", "author_id" FROM "posts" WHERE "published" = ? ORDER BY "created_at" DESC`, sql)
	assert.Equal(t, []interface{}{true}, args)

	users, _ := catalog.Get("users")
	sql, args = render(t, users, url.Values{})
	assert.Equal(t, `SELECT "id", "name", "email" FROM "users" ORDER BY "name" ASC`, sql)
	assert.Empty(t, args)
}

func TestCatalog_Operations(t *testing.T) {
	catalog := loadCatalog(t, Options{})
	posts, _ := catalog.Get("posts")

	sql, args := render(t, posts, url.Values{
		"q[search]":                   {"x"},
		"q[scope]":                    {"drafts"},
		"q[sort_fields][]":            {"popular", "author"},
		"q[sort_directions][popular]": {"desc"},
		"q[mentions][value]":          {"go_lang"},
	})
	assert.Equal(t, `SELECT "id", "title", "body", "status", "views", "created_at", "updated_at", "published", "author_id" FROM "posts"`+
		` WHERE ("title" LIKE ? ESCAPE '\' OR "body" LIKE ? ESCAPE '\') AND "status" = ? AND "body" LIKE ? ESCAPE '\'`+
		` ORDER BY "views" DESC, "author_id" ASC`, sql)
	assert.Equal(t, []interface{}{"%x%", "%x%", "draft", `%go\_lang%`}, args)
}

func TestCatalog_BlankOperationArgument(t *testing.T) {
	catalog := loadCatalog(t, Options{})
	posts, _ := catalog.Get("posts")

	op, ok := posts.Resource.Operation("mentions")
	require.True(t, ok)
	q := op(model.NewRecorder(), model.Args{"value": "  "})
	assert.Equal(t, "", q.(model.Recorder).String())
}

func TestCatalog_DateFilterTimezone(t *testing.T) {
	catalog := loadCatalog(t, Options{})
	posts, _ := catalog.Get("posts")

	kind, ok := posts.Profile.Filter("updated_at")
	require.True(t, ok)
	q := kind.Apply(model.NewRecorder(), "updated_at", filter.Input{"value": "2024-03-05"})
	steps, _ := model.Recorded(q)
	require.Len(t, steps, 1)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	begin, ok := steps[0].Constraint.Range.Begin.(time.Time)
	require.True(t, ok)
	assert.True(t, begin.Equal(time.Date(2024, 3, 5, 0, 0, 0, 0, berlin)))
}

func TestCatalog_Describe(t *testing.T) {
	source := &fakeSource{values: []string{"7", "9"}}
	catalog := loadCatalog(t, Options{Source: source})
	posts, _ := catalog.Get("posts")

	infos, err := posts.Profile.Describe()
	require.NoError(t, err)
	require.Len(t, infos, 7)

	byKey := map[string]sieve.FilterInfo{}
	for _, info := range infos {
		byKey[info.Key] = info
	}
	assert.Equal(t, filter.Contains, byKey["title"].Predicate)
	assert.True(t, byKey["status"].Multiple)
	assert.Equal(t, filter.Choices("draft", "live"), byKey["status"].Choices)
	assert.Equal(t, "Live", byKey["published"].TrueLabel)
	assert.Equal(t, "users", byKey["author"].Target)
	assert.Equal(t, "author_id", byKey["author"].Column)
	assert.Equal(t, filter.Choices("7", "9"), byKey["author"].Choices)
	assert.Equal(t, "named", byKey["mentions"].Type)
	assert.Equal(t, []string{"author_id"}, source.columns)
}

func TestCatalog_CachedChoices(t *testing.T) {
	source := &fakeSource{values: []string{"1"}}
	catalog := loadCatalog(t, Options{Source: source, Cache: cache.NewChoices(nil, time.Minute)})
	posts, _ := catalog.Get("posts")

	for i := 0; i < 3; i++ {
		_, err := posts.Profile.Describe()
		require.NoError(t, err)
	}
	assert.Equal(t, 1, source.calls)

	uncached := &fakeSource{values: []string{"1"}}
	posts, _ = loadCatalog(t, Options{Source: uncached}).Get("posts")
	for i := 0; i < 3; i++ {
		_, err := posts.Profile.Describe()
		require.NoError(t, err)
	}
	assert.Equal(t, 3, uncached.calls)
}

func TestCatalog_ChoicesError(t *testing.T) {
	source := &fakeSource{err: errors.New("connection reset")}
	posts, _ := loadCatalog(t, Options{Source: source}).Get("posts")

	_, err := posts.Profile.Describe()
	assert.ErrorContains(t, err, "connection reset")
}

func TestParse_Errors(t *testing.T) {
	source := &fakeSource{}
	tests := []struct {
		name    string
		doc     string
		wantErr string
		is      error
	}{
		{
			name:    "malformed json",
			doc:     `{"resources": [`,
			wantErr: "failed to decode profile document",
		},
		{
			name:    "no resources",
			doc:     `{"resources": []}`,
			wantErr: "resources: cannot be blank",
		},
		{
			name:    "missing columns",
			doc:     `{"resources": [{"name": "posts"}]}`,
			wantErr: "columns: cannot be blank",
		},
		{
			name:    "duplicate resource",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"]}, {"name": "Posts", "columns": ["a"]}]}`,
			wantErr: "declared twice",
		},
		{
			name:    "unknown filter kind",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "fuzzy"}]}]}`,
			wantErr: "kind: must be a valid value",
		},
		{
			name:    "text without predicate",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "text"}]}]}`,
			wantErr: "predicate: cannot be blank",
		},
		{
			name:    "unknown predicate",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "text", "predicate": "sounds_like"}]}]}`,
			wantErr: `unknown predicate "sounds_like"`,
		},
		{
			name: "date predicate on text",
			doc:  `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "text", "predicate": "gt"}]}]}`,
			is:   filter.ErrUnknownPredicate,
		},
		{
			name:    "bad timezone",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "date_range", "timezone": "Mars/Olympus"}]}]}`,
			wantErr: "timezone",
		},
		{
			name:    "static and dynamic choices",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "select", "choices": ["x"], "choices_from": "a"}]}]}`,
			wantErr: "cannot be combined with choices",
		},
		{
			name:    "choices from unknown column",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "select", "choices_from": "b"}]}]}`,
			wantErr: `unknown column "b"`,
		},
		{
			name:    "filter on unknown column",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "b", "kind": "boolean"}]}]}`,
			wantErr: `filter "b": unknown column "b"`,
		},
		{
			name:    "search on unknown column",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "search": {"columns": ["a", "b"]}}]}`,
			wantErr: `search: unknown column "b"`,
		},
		{
			name:    "operation on unknown column",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "operations": {"live": {"where": [{"field": "b", "op": "eq", "value": 1}]}}}]}`,
			wantErr: `operation "live": unknown column "b"`,
		},
		{
			name:    "operation with unknown op",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "operations": {"live": {"where": [{"field": "a", "op": "approx"}]}}}]}`,
			wantErr: "op: must be a valid value",
		},
		{
			name: "scope without operation",
			doc:  `{"resources": [{"name": "posts", "columns": ["a"], "operations": {"live": {}}, "scopes": [{"name": "lvie"}]}]}`,
			is:   sieve.ErrUnknownOperation,
		},
		{
			name: "association without target",
			doc:  `{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "owner", "kind": "association"}]}]}`,
			is:   filter.ErrAssociationTarget,
		},
		{
			name: "sorter without target",
			doc:  `{"resources": [{"name": "posts", "columns": ["a"], "sorters": [{"name": "rank"}]}]}`,
			is:   sieve.ErrSortTarget,
		},
		{
			name:    "search with columns and operation",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "search": {"columns": ["a"], "operation": "find"}}]}`,
			wantErr: "cannot be combined with operation",
		},
		{
			name:    "bad default direction",
			doc:     `{"resources": [{"name": "posts", "columns": ["a"], "default_sort": {"field": "a", "direction": "sideways"}}]}`,
			wantErr: "must be asc or desc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), Options{Source: source})
			require.Error(t, err)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
			}
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestParse_ChoicesFromNeedsSource(t *testing.T) {
	_, err := Parse([]byte(`{"resources": [{"name": "posts", "columns": ["a"], "filters": [{"key": "a", "kind": "select", "choices_from": "a"}]}]}`), Options{})
	assert.ErrorContains(t, err, "needs a data source")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"), Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read profile file")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

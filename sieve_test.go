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

package sieve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
)

func where(c model.Constraint) model.Operation {
	return func(q model.Queryable, _ model.Args) model.Queryable { return q.Where(c) }
}

func postsResource() *model.Resource {
	return model.NewResource("posts", "title", "body", "status", "created_at", "published").
		BelongsTo("author", "", "users").
		Expose("published", where(model.Eq("published", true))).
		Expose("drafts", where(model.Eq("published", false))).
		Expose("popular", func(q model.Queryable, args model.Args) model.Queryable {
			dir, ok := args["direction"].(model.Direction)
			if !ok {
				dir = model.Asc
			}
			return q.OrderBy("views", dir)
		})
}

func mustText(t *testing.T, p filter.Predicate) filter.Text {
	t.Helper()
	text, err := filter.NewText(p)
	require.NoError(t, err)
	return text
}

// postsProfile declares a default "published" scope, a "title" contains
// filter and a "created_at" sorter.
func postsProfile(t *testing.T, opts ...Option) *Profile {
	t.Helper()
	p, err := NewProfile(postsResource(), opts...)
	require.NoError(t, err)
	require.NoError(t, p.DefineScope("published", Behavior{}, Default()))
	require.NoError(t, p.DefineFilter("title", mustText(t, filter.Contains)))
	require.NoError(t, p.DefineSorter("created_at"))
	return p
}

func TestNewProfile(t *testing.T) {
	_, err := NewProfile(nil)
	assert.Error(t, err)

	p, err := NewProfile(postsResource())
	require.NoError(t, err)
	assert.Equal(t, "q", p.Namespace())
	assert.Equal(t, "", p.DefaultScope())
	assert.False(t, p.Searchable())

	p, err = NewProfile(postsResource(), WithNamespace(" Search "))
	require.NoError(t, err)
	assert.Equal(t, "search", p.Namespace())

	_, err = NewProfile(postsResource(), WithDefaultOrder(Named("trending")))
	assert.True(t, errors.Is(err, ErrUnknownOperation))

	_, err = NewProfile(postsResource(), WithDefaultSort("", model.Asc))
	assert.True(t, errors.Is(err, ErrSortTarget))
}

func TestDefineScope(t *testing.T) {
	t.Run("named operation defaults to the scope name", func(t *testing.T) {
		p, _ := NewProfile(postsResource())
		require.NoError(t, p.DefineScope("Drafts", Behavior{}))
		assert.True(t, p.HasScope("drafts"))
	})

	t.Run("unknown operation fails with a suggestion", func(t *testing.T) {
		p, _ := NewProfile(postsResource())
		err := p.DefineScope("publishd", Behavior{})
		assert.True(t, errors.Is(err, ErrUnknownOperation))
		assert.Contains(t, err.Error(), `did you mean "published"?`)
	})

	t.Run("func behavior needs no operation", func(t *testing.T) {
		p, _ := NewProfile(postsResource())
		assert.NoError(t, p.DefineScope("recent", Func(func(q model.Queryable, _ model.Args) model.Queryable { return q })))
	})

	t.Run("invalid names", func(t *testing.T) {
		p, _ := NewProfile(postsResource())
		for _, name := range []string{"", "  ", "a[b]"} {
			assert.True(t, errors.Is(p.DefineScope(name, Func(nil)), ErrInvalidName), name)
		}
	})

	t.Run("most recently declared default wins", func(t *testing.T) {
		p, _ := NewProfile(postsResource())
		require.NoError(t, p.DefineScope("published", Behavior{}, Default()))
		require.NoError(t, p.DefineScope("drafts", Behavior{}, Default()))
		assert.Equal(t, "drafts", p.DefaultScope())

		require.NoError(t, p.DefineScope("published", Behavior{}, Default()))
		assert.Equal(t, "published", p.DefaultScope())

		require.NoError(t, p.DefineScope("published", Behavior{}))
		assert.Equal(t, "drafts", p.DefaultScope())
		assert.Equal(t, []string{"published", "drafts"}, p.Scopes())
	})
}

func TestDefineSorter(t *testing.T) {
	p, _ := NewProfile(postsResource())

	require.NoError(t, p.DefineSorter("title"))
	require.NoError(t, p.DefineSorter("ID"))
	require.NoError(t, p.DefineSorter("author"))
	require.NoError(t, p.DefineSorter("newest", Using("created_at")))
	require.NoError(t, p.DefineSorter("views", SortBy(Named("popular"))))

	err := p.DefineSorter("rating")
	assert.True(t, errors.Is(err, ErrSortTarget))
	assert.False(t, p.HasSorter("rating"))

	err = p.DefineSorter("hot", SortBy(Named("hottest")))
	assert.True(t, errors.Is(err, ErrUnknownOperation))

	assert.Equal(t, []string{"title", "id", "author", "newest", "views"}, p.Sorters())

	state := State{
		SortFields:     []string{"author", "newest", "views", "title"},
		SortDirections: map[string]string{"newest": "DESC", "views": "desc"},
	}
	got := p.Apply(model.NewRecorder(), state)
	assert.Equal(t, "order author_id ASC\norder created_at DESC\nnamed popular map[direction:DESC]\norder title ASC", got.(model.Recorder).String())
}

func TestDefineFilter(t *testing.T) {
	p, _ := NewProfile(postsResource())

	assert.True(t, errors.Is(p.DefineFilter("title", nil), ErrMissingKind))

	err := p.DefineFilter("editor", filter.NewAssociation(filter.AssociationOptions{}))
	assert.True(t, errors.Is(err, filter.ErrAssociationTarget))

	require.NoError(t, p.DefineFilter("author", filter.NewAssociation(filter.AssociationOptions{})))
	kind, ok := p.Filter("author")
	require.True(t, ok)
	assert.Equal(t, "author_id", kind.(filter.Association).ForeignKey())

	err = p.DefineFilter("featured", filter.NewNamed("featured"))
	assert.True(t, errors.Is(err, ErrUnknownOperation))

	for _, reserved := range []string{"scope", "Search", "sort_fields", "sort_directions"} {
		err = p.DefineFilter(reserved, filter.NewSelect(filter.SelectOptions{}))
		assert.True(t, errors.Is(err, ErrInvalidName), reserved)
	}
	assert.False(t, p.HasFilter("scope"))

	require.NoError(t, p.DefineFilter("status", filter.NewSelect(filter.SelectOptions{})))
	require.NoError(t, p.DefineFilter("title", mustText(t, filter.Eq)))
	require.NoError(t, p.DefineFilter("Title", mustText(t, filter.StartsWith)))
	assert.Equal(t, []string{"author", "status", "title"}, p.Filters())

	kind, _ = p.Filter("title")
	assert.Equal(t, filter.StartsWith, kind.(filter.Text).Predicate())
}

func TestDefaultOrder_WithoutArgs(t *testing.T) {
	res := postsResource()
	p, err := NewProfile(res, WithDefaultOrder(Named("popular")))
	require.NoError(t, err)
	assert.Equal(t, "named popular", p.Apply(model.NewRecorder(), State{}).(model.Recorder).String())

	op, ok := res.Operation("popular")
	require.True(t, ok)
	assert.Equal(t, "order views ASC", op(model.NewRecorder(), nil).(model.Recorder).String())
}

func TestDescribe(t *testing.T) {
	p, _ := NewProfile(postsResource())
	require.NoError(t, p.DefineFilter("title", mustText(t, filter.Contains)))
	require.NoError(t, p.DefineFilter("status", filter.NewSelect(filter.SelectOptions{
		Source: func() ([]filter.Choice, error) { return filter.Choices("draft", "live"), nil },
	})))

	infos, err := p.Describe()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "title", infos[0].Key)
	assert.Equal(t, filter.Contains, infos[0].Predicate)
	assert.Equal(t, []string{"query"}, infos[0].Fields)
	assert.Equal(t, "select", infos[1].Type)
	assert.Len(t, infos[1].Choices, 2)

	require.NoError(t, p.DefineFilter("broken", filter.NewSelect(filter.SelectOptions{
		Source: func() ([]filter.Choice, error) { return nil, errors.New("boom") },
	})))
	_, err = p.Describe()
	assert.Error(t, err)
}

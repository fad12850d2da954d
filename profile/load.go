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
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/sieve"
	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/internal/cache"
	"github.com/blnkfinance/sieve/model"
)

const choicesTimeout = 5 * time.Second

// DistinctSource supplies the distinct values of a column. It backs
// choices_from declarations.
type DistinctSource interface {
	Distinct(ctx context.Context, res *model.Resource, column string) ([]string, error)
}

// Options controls how a catalog is built.
type Options struct {
	// Namespace is used by resources that do not declare their own. Empty
	// means "q".
	Namespace string

	// Source answers choices_from lookups. Without it such filters fail to load.
	Source DistinctSource

	// Cache memoizes choices_from lookups when set.
	Cache *cache.Choices
}

// Entry is one loaded resource with its listing profile.
type Entry struct {
	Resource *model.Resource
	Profile  *sieve.Profile
}

// Catalog holds the loaded resources in declaration order.
type Catalog struct {
	names   []string
	entries map[string]*Entry
}

func (c *Catalog) Get(name string) (*Entry, bool) {
	e, ok := c.entries[strings.ToLower(name)]
	return e, ok
}

func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

func (c *Catalog) Len() int { return len(c.names) }

// Load reads and builds the catalog stored at path.
func Load(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profile file %s", path)
	}
	catalog, err := Parse(data, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load profile file %s", path)
	}
	return catalog, nil
}

// Parse decodes, validates and builds a catalog document.
func Parse(data []byte, opts Options) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode profile document")
	}
	return Build(doc, opts)
}

// Build validates doc and constructs a profile for every resource in it.
func Build(doc Document, opts Options) (*Catalog, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	catalog := &Catalog{entries: make(map[string]*Entry, len(doc.Resources))}
	for _, spec := range doc.Resources {
		entry, err := buildEntry(spec, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "resource %q", spec.Name)
		}
		key := strings.ToLower(spec.Name)
		catalog.names = append(catalog.names, key)
		catalog.entries[key] = entry
		logrus.WithFields(logrus.Fields{
			"resource": key,
			"scopes":   len(spec.Scopes),
			"filters":  len(spec.Filters),
			"sorters":  len(spec.Sorters),
		}).Debug("loaded resource profile")
	}
	return catalog, nil
}

func buildResource(spec ResourceSpec) (*model.Resource, error) {
	res := model.NewResource(strings.ToLower(spec.Name), spec.Columns...)
	if spec.Table != "" {
		res.Table = spec.Table
	}
	if spec.PrimaryKey != "" {
		res.PrimaryKey = spec.PrimaryKey
	}
	for _, a := range spec.BelongsTo {
		res.BelongsTo(a.Name, a.ForeignKey, a.Target)
	}
	for name, op := range spec.Operations {
		for _, col := range op.columns() {
			if !res.HasColumn(col) {
				return nil, fmt.Errorf("operation %q: unknown column %q", name, col)
			}
		}
		res.Expose(name, op.build())
	}
	return res, nil
}

func buildEntry(spec ResourceSpec, opts Options) (*Entry, error) {
	res, err := buildResource(spec)
	if err != nil {
		return nil, err
	}

	var profileOpts []sieve.Option
	switch {
	case spec.Namespace != nil:
		profileOpts = append(profileOpts, sieve.WithNamespace(*spec.Namespace))
	case opts.Namespace != "":
		profileOpts = append(profileOpts, sieve.WithNamespace(opts.Namespace))
	}
	if s := spec.DefaultSort; s != nil {
		if s.Operation != "" {
			profileOpts = append(profileOpts, sieve.WithDefaultOrder(sieve.Named(s.Operation)))
		} else {
			profileOpts = append(profileOpts, sieve.WithDefaultSort(s.Field, model.DirectionOrAsc(s.Direction)))
		}
	}
	p, err := sieve.NewProfile(res, profileOpts...)
	if err != nil {
		return nil, err
	}

	for _, s := range spec.Scopes {
		var b sieve.Behavior
		if s.Operation != "" {
			b = sieve.Named(s.Operation)
		}
		var scopeOpts []sieve.ScopeOption
		if s.Default {
			scopeOpts = append(scopeOpts, sieve.Default())
		}
		if err := p.DefineScope(s.Name, b, scopeOpts...); err != nil {
			return nil, err
		}
	}

	for _, f := range spec.Filters {
		kind, err := buildKind(res, f, opts)
		if err != nil {
			return nil, fmt.Errorf("filter %q: %w", f.Key, err)
		}
		if err := p.DefineFilter(f.Key, kind); err != nil {
			return nil, err
		}
	}

	for _, s := range spec.Sorters {
		var sorterOpts []sieve.SorterOption
		switch {
		case s.Using != "":
			sorterOpts = append(sorterOpts, sieve.Using(s.Using))
		case s.Operation != "":
			sorterOpts = append(sorterOpts, sieve.SortBy(sieve.Named(s.Operation)))
		}
		if err := p.DefineSorter(s.Name, sorterOpts...); err != nil {
			return nil, err
		}
	}

	if s := spec.Search; s != nil {
		for _, col := range s.Columns {
			if !res.HasColumn(col) {
				return nil, fmt.Errorf("search: unknown column %q", col)
			}
		}
		b := sieve.SearchColumns(s.Columns...)
		if s.Operation != "" {
			b = sieve.Named(s.Operation)
		}
		if err := p.DefineSearch(b); err != nil {
			return nil, err
		}
	}

	return &Entry{Resource: res, Profile: p}, nil
}

// columnKinds filter the column named by their key.
var columnKinds = map[string]bool{"text": true, "boolean": true, "select": true, "date": true, "date_range": true}

func buildKind(res *model.Resource, f FilterSpec, opts Options) (filter.Kind, error) {
	if columnKinds[f.Kind] && !res.HasColumn(f.Key) {
		return nil, fmt.Errorf("unknown column %q", f.Key)
	}
	switch f.Kind {
	case "text":
		return filter.NewText(filter.ResolvePredicate(f.Predicate))
	case "boolean":
		return filter.NewBoolean(filter.BooleanOptions{TrueLabel: f.TrueLabel, FalseLabel: f.FalseLabel}), nil
	case "select":
		source, err := choiceSource(res, f, opts)
		if err != nil {
			return nil, err
		}
		return filter.NewSelect(filter.SelectOptions{
			Choices:  filter.Choices(f.Choices...),
			Source:   source,
			Multiple: f.Multiple,
		}), nil
	case "association":
		source, err := choiceSource(res, f, opts)
		if err != nil {
			return nil, err
		}
		return filter.NewAssociation(filter.AssociationOptions{
			Target:     f.Target,
			ForeignKey: f.ForeignKey,
			Choices:    filter.Choices(f.Choices...),
			Source:     source,
			Multiple:   f.Multiple,
		}), nil
	case "date":
		d, err := filter.NewDate(filter.ResolvePredicate(f.Predicate))
		if err != nil {
			return nil, err
		}
		loc, err := loadLocation(f.Timezone)
		if err != nil {
			return nil, err
		}
		return d.In(loc), nil
	case "date_range":
		loc, err := loadLocation(f.Timezone)
		if err != nil {
			return nil, err
		}
		return filter.NewDateRange().In(loc), nil
	case "named":
		return filter.NewNamed(f.Operation, f.Fields...), nil
	}
	return nil, fmt.Errorf("unsupported filter kind %q", f.Kind)
}

// choiceSource returns a lazy supplier for choices_from, or nil when the
// filter lists static choices.
func choiceSource(res *model.Resource, f FilterSpec, opts Options) (filter.ChoiceFunc, error) {
	if f.ChoicesFrom == "" {
		return nil, nil
	}
	if !res.HasColumn(f.ChoicesFrom) {
		return nil, fmt.Errorf("choices_from: unknown column %q", f.ChoicesFrom)
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("choices_from %q needs a data source", f.ChoicesFrom)
	}

	column := f.ChoicesFrom
	source := func() ([]filter.Choice, error) {
		ctx, cancel := context.WithTimeout(context.Background(), choicesTimeout)
		defer cancel()
		values, err := opts.Source.Distinct(ctx, res, column)
		if err != nil {
			return nil, err
		}
		return filter.Choices(values...), nil
	}
	if opts.Cache == nil {
		return source, nil
	}
	return opts.Cache.Wrap(res.Name+"."+column, source), nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

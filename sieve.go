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
	"fmt"

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

// DefaultNamespace is the parameter key the state is nested under.
const DefaultNamespace = "q"

// registry is a name-indexed table that keeps first-declaration order.
// Redeclaring a name replaces its entry in place.
type registry[T any] struct {
	keys    []string
	entries map[string]T
}

func newRegistry[T any]() registry[T] {
	return registry[T]{entries: make(map[string]T)}
}

func (r *registry[T]) put(key string, v T) {
	if _, ok := r.entries[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.entries[key] = v
}

func (r registry[T]) get(key string) (T, bool) {
	v, ok := r.entries[key]
	return v, ok
}

func (r registry[T]) has(key string) bool {
	_, ok := r.entries[key]
	return ok
}

func (r registry[T]) names() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

type scopeDef struct {
	behavior  Behavior
	isDefault bool
	declared  int
}

type sorterDef struct {
	column   string
	behavior Behavior
}

func (s sorterDef) apply(q model.Queryable, dir model.Direction) model.Queryable {
	if s.column != "" {
		return q.OrderBy(s.column, dir)
	}
	return s.behavior.invoke(q, model.Args{"direction": dir})
}

// Profile is the definition registry of one resource: its scopes, filters,
// sorters, search and default ordering. Build it once with NewProfile and the
// Define methods; afterwards it is read-only and safe for concurrent use.
type Profile struct {
	resource  *model.Resource
	namespace string

	scopes  registry[scopeDef]
	filters registry[filter.Kind]
	sorters registry[sorterDef]
	search  *Behavior

	defaultScope string
	defaultOrder *model.Order
	defaultFunc  *Behavior

	declarations int
}

// Option configures a Profile at construction.
type Option func(p *Profile) error

// WithNamespace nests parameters under ns instead of "q". An empty ns reads
// parameters from the top level.
func WithNamespace(ns string) Option {
	return func(p *Profile) error {
		p.namespace = params.NormalizeKey(ns)
		return nil
	}
}

// WithDefaultSort orders by field in dir when no sort is requested.
func WithDefaultSort(field string, dir model.Direction) Option {
	return func(p *Profile) error {
		if field == "" {
			return fmt.Errorf("%w: empty default sort field", ErrSortTarget)
		}
		p.defaultOrder = &model.Order{Field: field, Direction: dir}
		p.defaultFunc = nil
		return nil
	}
}

// WithDefaultOrder applies b, with nil args, when no sort is requested.
func WithDefaultOrder(b Behavior) Option {
	return func(p *Profile) error {
		if err := b.resolve(p.resource); err != nil {
			return fmt.Errorf("default order: %w", err)
		}
		p.defaultFunc = &b
		p.defaultOrder = nil
		return nil
	}
}

// NewProfile creates an empty registry for res.
//
// Parameters:
// - res *model.Resource: The resource whose columns, associations and operations definitions are checked against.
// - opts ...Option: Namespace and default sort options.
//
// Returns:
// - *Profile: The registry, ready for Define calls.
// - error: An error if res is nil or an option is invalid.
func NewProfile(res *model.Resource, opts ...Option) (*Profile, error) {
	if res == nil {
		return nil, fmt.Errorf("profile requires a resource")
	}
	p := &Profile{
		resource:  res,
		namespace: DefaultNamespace,
		scopes:    newRegistry[scopeDef](),
		filters:   newRegistry[filter.Kind](),
		sorters:   newRegistry[sorterDef](),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Resource returns the resource the profile was built for.
func (p *Profile) Resource() *model.Resource { return p.resource }

// Namespace returns the parameter namespace.
func (p *Profile) Namespace() string { return p.namespace }

// DefaultScope returns the effective default scope, or "".
func (p *Profile) DefaultScope() string { return p.defaultScope }

// Scopes returns scope names in declaration order.
func (p *Profile) Scopes() []string { return p.scopes.names() }

// Filters returns filter keys in declaration order.
func (p *Profile) Filters() []string { return p.filters.names() }

// Sorters returns sorter keys in declaration order.
func (p *Profile) Sorters() []string { return p.sorters.names() }

// HasScope, HasFilter and HasSorter report whether name is declared.
func (p *Profile) HasScope(name string) bool  { return p.scopes.has(name) }
func (p *Profile) HasFilter(name string) bool { return p.filters.has(name) }
func (p *Profile) HasSorter(name string) bool { return p.sorters.has(name) }

// Filter returns the kind declared under key.
func (p *Profile) Filter(key string) (filter.Kind, bool) { return p.filters.get(key) }

// Searchable reports whether a search behavior is declared.
func (p *Profile) Searchable() bool { return p.search != nil }

// ScopeOption configures a scope definition.
type ScopeOption func(d *scopeDef)

// Default marks the scope as applied when none is selected.
func Default() ScopeOption {
	return func(d *scopeDef) { d.isDefault = true }
}

// DefineScope declares a scope. A zero Behavior refers to the resource
// operation of the same name.
//
// Parameters:
// - name string: The scope name, normalized to lower case.
// - b Behavior: Named operation or ad-hoc function invoked with nil args.
// - opts ...ScopeOption: Default() marks the scope as the default.
//
// Returns:
// - error: An error if the name is invalid or the named operation does not exist.
func (p *Profile) DefineScope(name string, b Behavior, opts ...ScopeOption) error {
	key, err := validName(name)
	if err != nil {
		return err
	}
	if !b.valid() {
		b = Named(key)
	}
	if err := b.resolve(p.resource); err != nil {
		return fmt.Errorf("scope %q: %w", key, err)
	}

	p.declarations++
	def := scopeDef{behavior: b, declared: p.declarations}
	for _, opt := range opts {
		opt(&def)
	}
	p.scopes.put(key, def)
	p.defaultScope = p.resolveDefaultScope()
	return nil
}

// resolveDefaultScope picks the most recently declared default scope.
func (p *Profile) resolveDefaultScope() string {
	name, latest := "", 0
	for _, key := range p.scopes.keys {
		def := p.scopes.entries[key]
		if def.isDefault && def.declared > latest {
			name, latest = key, def.declared
		}
	}
	return name
}

// DefineFilter declares a filter bound to the field key. Kinds that need the
// resource, such as associations, are resolved here. The state keys search,
// scope, sort_fields and sort_directions cannot be used as filter keys.
func (p *Profile) DefineFilter(name string, kind filter.Kind) error {
	key, err := validName(name)
	if err != nil {
		return err
	}
	if isReservedParam(key) {
		return fmt.Errorf("%w %q: reserved parameter", ErrInvalidName, name)
	}
	if kind == nil {
		return fmt.Errorf("filter %q: %w", key, ErrMissingKind)
	}
	if r, ok := kind.(filter.Resolver); ok {
		resolved, err := r.Resolve(key, p.resource)
		if err != nil {
			return fmt.Errorf("filter %q: %w", key, err)
		}
		kind = resolved
	}
	p.filters.put(key, kind)
	return nil
}

// SorterOption sets the target of a sorter.
type SorterOption func(d *sorterDef)

// Using orders by column instead of the sorter's own name.
func Using(column string) SorterOption {
	return func(d *sorterDef) {
		d.column = column
		d.behavior = Behavior{}
	}
}

// SortBy orders with b, invoked with {"direction": ASC|DESC}.
func SortBy(b Behavior) SorterOption {
	return func(d *sorterDef) {
		d.behavior = b
		d.column = ""
	}
}

// DefineSorter declares a sorter. Without Using or SortBy the target is
// inferred: the primary key or a column of the same name, then the foreign
// key of a belongs-to association of the same name. Anything else fails
// with ErrSortTarget.
func (p *Profile) DefineSorter(name string, opts ...SorterOption) error {
	key, err := validName(name)
	if err != nil {
		return err
	}
	var def sorterDef
	for _, opt := range opts {
		opt(&def)
	}

	switch {
	case def.column != "":
	case def.behavior.valid():
		if err := def.behavior.resolve(p.resource); err != nil {
			return fmt.Errorf("sorter %q: %w", key, err)
		}
	default:
		column, ok := p.inferSortColumn(key)
		if !ok {
			return fmt.Errorf("%w for %q on %s", ErrSortTarget, key, p.resource.Name)
		}
		def.column = column
	}
	p.sorters.put(key, def)
	return nil
}

func (p *Profile) inferSortColumn(key string) (string, bool) {
	if p.resource.HasColumn(key) {
		return key, true
	}
	if assoc, ok := p.resource.Association(key); ok {
		return assoc.ForeignKey, true
	}
	return "", false
}

// DefineSearch declares the search behavior, invoked with {"search": text}.
// A later call replaces an earlier one.
func (p *Profile) DefineSearch(b Behavior) error {
	if err := b.resolve(p.resource); err != nil {
		return fmt.Errorf("search: %w", err)
	}
	p.search = &b
	return nil
}

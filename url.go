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
	"sort"
	"strings"

	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

// Delta is a requested change to the current state.
type Delta struct {
	// Search replaces the search text when set.
	Search *string

	// Scope selects a scope when set. An empty string selects all records,
	// overriding the default scope; nil keeps the current scope.
	Scope *string

	// Sort toggles a sorter: appended as ASC when inactive, flipped in place
	// when active. With Reset it is removed instead. Undeclared names are
	// ignored.
	Sort  string
	Reset bool

	// Clear removes the values of the named filters.
	Clear []string

	// Filters sets raw filter values for declared keys. A nil value clears.
	Filters map[string]interface{}
}

// Next returns the state that results from applying d to state. state is not
// modified.
func (p *Profile) Next(state State, d Delta) State {
	next := state.Clone()

	if d.Search != nil {
		next.Search = strings.TrimSpace(*d.Search)
	}

	if d.Scope != nil {
		next.Scope = *d.Scope
		next.ScopeCleared = *d.Scope == ""
	}

	if key := params.NormalizeKey(d.Sort); key != "" && p.sorters.has(key) {
		i := indexOf(next.SortFields, key)
		switch {
		case d.Reset:
			if i >= 0 {
				next.SortFields = append(next.SortFields[:i], next.SortFields[i+1:]...)
			}
			delete(next.SortDirections, key)
		case i < 0:
			next.SortFields = append(next.SortFields, key)
			next.SortDirections[key] = string(model.Asc)
		default:
			next.SortDirections[key] = string(next.Direction(key).Flip())
		}
	}

	for _, key := range d.Clear {
		delete(next.Filters, params.NormalizeKey(key))
	}
	for key, v := range d.Filters {
		key = params.NormalizeKey(key)
		if !p.filters.has(key) {
			continue
		}
		if v == nil {
			delete(next.Filters, key)
			continue
		}
		next.Filters[key] = v
	}
	return next
}

// Encode serializes state canonically: search, scope, sort fields, sort
// directions (active fields first, then the rest by name) and filters in
// declaration order. Equal states always encode to identical strings.
func (p *Profile) Encode(state State) params.Pairs {
	var pairs params.Pairs
	key := func(segments ...string) string { return params.Nest(p.namespace, segments...) }

	if state.Search != "" {
		pairs.Add(key("search"), state.Search)
	}

	switch {
	case state.ScopeCleared:
		pairs.Add(key("scope"), "")
	case state.Scope != "":
		pairs.Add(key("scope"), state.Scope)
	}

	if len(state.SortFields) > 0 {
		pairs.Append(key("sort_fields"), state.SortFields)
	}

	dirKeys := append([]string(nil), state.SortFields...)
	var rest []string
	for field := range state.SortDirections {
		if indexOf(dirKeys, field) < 0 {
			rest = append(rest, field)
		}
	}
	sort.Strings(rest)
	for _, field := range append(dirKeys, rest...) {
		if dir, ok := state.SortDirections[field]; ok {
			pairs.Add(key("sort_directions", field), dir)
		}
	}

	for _, f := range p.filters.keys {
		if v, ok := state.Filters[f]; ok {
			pairs.Append(key(f), v)
		}
	}
	return pairs
}

// Query applies d to state and returns the encoded query string, without a
// leading "?".
func (p *Profile) Query(state State, d Delta) string {
	return p.Encode(p.Next(state, d)).Encode()
}

// URL appends the query for the next state to base.
//
// Parameters:
// - base string: The link target, e.g. "/posts". It may already carry a query.
// - state State: The current state.
// - d Delta: The requested change.
//
// Returns:
// - string: base with the canonical query appended, or base alone if the state is empty.
func (p *Profile) URL(base string, state State, d Delta) string {
	query := p.Query(state, d)
	if query == "" {
		return base
	}
	if strings.Contains(base, "?") {
		return base + "&" + query
	}
	return base + "?" + query
}

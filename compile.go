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
	"net/url"

	"github.com/sirupsen/logrus"

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
)

// Apply compiles state onto q in a fixed order: search, scope, sort, then
// filters. Apply never fails; stale or malformed state degrades to no-ops.
//
// Parameters:
// - q model.Queryable: The collection to transform. It is not retained.
// - state State: The request state, usually from Extract.
//
// Returns:
// - model.Queryable: The transformed collection.
func (p *Profile) Apply(q model.Queryable, state State) model.Queryable {
	q = p.applySearch(q, state)
	q = p.applyScope(q, state)
	q = p.applySort(q, state)
	return p.applyFilters(q, state)
}

// Resolve extracts the state from values and applies it to q.
func (p *Profile) Resolve(q model.Queryable, values url.Values) (model.Queryable, State) {
	state := p.ExtractQuery(values)
	return p.Apply(q, state), state
}

func (p *Profile) applySearch(q model.Queryable, state State) model.Queryable {
	if p.search == nil || state.Search == "" {
		return q
	}
	return p.search.invoke(q, model.Args{"search": state.Search})
}

// EffectiveScope returns the scope Apply would use for state, or "" when no
// scope applies.
func (p *Profile) EffectiveScope(state State) string {
	if state.ScopeCleared {
		return ""
	}
	name := state.Scope
	if name == "" {
		name = p.defaultScope
	}
	if !p.scopes.has(name) {
		return ""
	}
	return name
}

func (p *Profile) applyScope(q model.Queryable, state State) model.Queryable {
	name := p.EffectiveScope(state)
	if name == "" {
		if state.Scope != "" && !state.ScopeCleared {
			logrus.WithFields(logrus.Fields{
				"resource": p.resource.Name,
				"scope":    state.Scope,
			}).Debug("ignoring unknown scope")
		}
		return q
	}
	def, _ := p.scopes.get(name)
	return def.behavior.invoke(q, nil)
}

func (p *Profile) applySort(q model.Queryable, state State) model.Queryable {
	applied := false
	for _, field := range state.SortFields {
		def, ok := p.sorters.get(field)
		if !ok {
			continue
		}
		q = def.apply(q, state.Direction(field))
		applied = true
	}
	if applied {
		return q
	}

	switch {
	case p.defaultFunc != nil:
		return p.defaultFunc.invoke(q, nil)
	case p.defaultOrder != nil:
		return q.OrderBy(p.defaultOrder.Field, p.defaultOrder.Direction)
	default:
		return q.OrderBy(p.resource.Key(), model.Desc)
	}
}

func (p *Profile) applyFilters(q model.Queryable, state State) model.Queryable {
	for _, key := range p.filters.keys {
		kind := p.filters.entries[key]
		in := filter.Decode(state.Filters[key], kind.Fields())
		if in.Blank() {
			continue
		}
		q = kind.Apply(q, key, in)
	}
	return q
}

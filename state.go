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
	"strings"

	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

// State is the typed request state extracted from parameters. It is rebuilt
// for every request.
type State struct {
	// Scope is the selected scope, verbatim. It may name no declared scope.
	Scope string `json:"scope,omitempty"`

	// ScopeCleared is set when the scope parameter was present but empty,
	// which disables the default scope.
	ScopeCleared bool `json:"scope_cleared,omitempty"`

	// Search is the trimmed search text, or "" for none.
	Search string `json:"search,omitempty"`

	SortFields     []string               `json:"sort_fields,omitempty"`
	SortDirections map[string]string      `json:"sort_directions,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

// Direction returns the compile-time direction of field: its requested
// direction if valid, ASC otherwise.
func (s State) Direction(field string) model.Direction {
	return model.DirectionOrAsc(s.SortDirections[field])
}

// Sorted reports whether field is an active sort field.
func (s State) Sorted(field string) bool {
	return indexOf(s.SortFields, field) >= 0
}

// Clone returns a deep enough copy for Next to modify.
func (s State) Clone() State {
	out := s
	out.SortFields = append([]string(nil), s.SortFields...)
	out.SortDirections = make(map[string]string, len(s.SortDirections))
	for k, v := range s.SortDirections {
		out.SortDirections[k] = v
	}
	out.Filters = make(map[string]interface{}, len(s.Filters))
	for k, v := range s.Filters {
		out.Filters[k] = v
	}
	return out
}

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

// Extract reads the state out of a decoded parameter map. Only declared sort
// fields, sort directions and filters are kept; the scope is kept verbatim.
//
// Parameters:
// - m params.Map: The full decoded parameter map; state is read from its namespace key.
//
// Returns:
// - State: The extracted state. Extraction never fails.
func (p *Profile) Extract(m params.Map) State {
	ns := m
	if p.namespace != "" {
		ns, _ = m.Map(p.namespace)
	}
	state := State{
		SortDirections: map[string]string{},
		Filters:        map[string]interface{}{},
	}
	if ns == nil {
		return state
	}

	if search, ok := ns.String("search"); ok {
		state.Search = strings.TrimSpace(search)
	}

	if raw, present := ns["scope"]; present {
		if scope, ok := raw.(string); ok {
			if scope == "" {
				state.ScopeCleared = true
			} else {
				state.Scope = scope
			}
		}
	}

	if fields, ok := ns.Strings("sort_fields"); ok {
		for _, f := range fields {
			key := params.NormalizeKey(f)
			if p.sorters.has(key) && indexOf(state.SortFields, key) < 0 {
				state.SortFields = append(state.SortFields, key)
			}
		}
	}

	if dirs, ok := ns.Map("sort_directions"); ok {
		for key, raw := range dirs {
			dir, ok := raw.(string)
			if !ok || !p.sorters.has(key) {
				continue
			}
			// valid directions are stored upper case so toggles and
			// re-encodings keep the same bytes; anything else stays verbatim
			if d, valid := model.ParseDirection(dir); valid {
				dir = string(d)
			}
			state.SortDirections[key] = dir
		}
	}

	for _, key := range p.filters.keys {
		if raw, ok := ns[key]; ok {
			state.Filters[key] = raw
		}
	}
	return state
}

// ExtractQuery decodes values and extracts the state.
func (p *Profile) ExtractQuery(values url.Values) State {
	return p.Extract(params.Decode(values))
}

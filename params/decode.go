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

package params

import (
	"net/url"
	"sort"
	"strings"
)

// Map is a nested parameter map decoded from bracketed query keys. Leaves are
// strings, lists are []interface{} and nested maps are Map. Keys are
// normalized with NormalizeKey; values are kept verbatim.
type Map map[string]interface{}

// NormalizeKey is the canonical form of a parameter or definition name.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Decode turns flat values such as q[sort_fields][]=a&q[sort_directions][a]=DESC
// into a nested Map. Keys are visited in sorted order so repeated scalar keys
// resolve deterministically; values of a single key keep their order.
func Decode(values url.Values) Map {
	m := Map{}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		segments, ok := splitKey(key)
		if !ok {
			continue
		}
		for _, v := range values[key] {
			m.insert(segments, v)
		}
	}
	return m
}

// ParseQuery decodes a raw query string. Malformed pairs are skipped and the
// first parse error is returned alongside whatever could be decoded.
func ParseQuery(raw string) (Map, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	return Decode(values), err
}

// splitKey splits "q[a][b][]" into ["q", "a", "b", ""].
func splitKey(key string) ([]string, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		name := NormalizeKey(key)
		return []string{name}, name != ""
	}

	name := NormalizeKey(key[:open])
	if name == "" {
		return nil, false
	}
	segments := []string{name}
	rest := key[open:]
	for len(rest) > 0 {
		if rest[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, false
		}
		segments = append(segments, NormalizeKey(rest[1:end]))
		rest = rest[end+1:]
	}
	// a[][b] style keys have no stable meaning here.
	for _, s := range segments[1 : len(segments)-1] {
		if s == "" {
			return nil, false
		}
	}
	return segments, true
}

func (m Map) insert(segments []string, value string) {
	head := segments[0]
	switch {
	case len(segments) == 1:
		m[head] = value
	case len(segments) == 2 && segments[1] == "":
		list, _ := m[head].([]interface{})
		m[head] = append(list, value)
	default:
		child, ok := m[head].(Map)
		if !ok {
			child = Map{}
			m[head] = child
		}
		child.insert(segments[1:], value)
	}
}

// FromMap normalizes a hand-built map: keys are normalized, nested maps become
// Map and string slices become []interface{}.
func FromMap(in map[string]interface{}) Map {
	m := make(Map, len(in))
	for k, v := range in {
		m[NormalizeKey(k)] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Map:
		return FromMap(val)
	case map[string]interface{}:
		return FromMap(val)
	case map[string]string:
		m := make(Map, len(val))
		for k, s := range val {
			m[NormalizeKey(k)] = s
		}
		return m
	case []string:
		list := make([]interface{}, len(val))
		for i, s := range val {
			list[i] = s
		}
		return list
	case []interface{}:
		list := make([]interface{}, len(val))
		for i, item := range val {
			list[i] = normalizeValue(item)
		}
		return list
	default:
		return v
	}
}

// Has reports whether key is present, whatever its value.
func (m Map) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// Get returns the raw value under key.
func (m Map) Get(key string) interface{} {
	return m[key]
}

// String returns the value under key if it is a string.
func (m Map) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Strings returns the value under key as a list. A scalar string becomes a
// single-element list.
func (m Map) Strings(key string) ([]string, bool) {
	return AsStrings(m[key])
}

// Map returns the nested map under key.
func (m Map) Map(key string) (Map, bool) {
	return AsMap(m[key])
}

// AsMap converts v to a Map if it is one of the supported map shapes.
func AsMap(v interface{}) (Map, bool) {
	switch val := v.(type) {
	case Map:
		return val, true
	case map[string]interface{}:
		return FromMap(val), true
	case map[string]string:
		return normalizeValue(val).(Map), true
	}
	return nil, false
}

// AsStrings converts v to a list of strings. Non-string list entries are
// skipped.
func AsStrings(v interface{}) ([]string, bool) {
	switch val := v.(type) {
	case string:
		return []string{val}, true
	case []string:
		return val, true
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out, true
	}
	return nil, false
}

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

package filter

import "strings"

// Predicate selects how a Text or Date filter compares its input.
type Predicate string

const (
	Eq          Predicate = "eq"
	NotEq       Predicate = "not_eq"
	Matches     Predicate = "matches"
	StartsWith  Predicate = "starts_with"
	EndsWith    Predicate = "ends_with"
	Contains    Predicate = "contains"
	NotContains Predicate = "not_contains"
	Lt          Predicate = "lt"
	Lteq        Predicate = "lteq"
	Gt          Predicate = "gt"
	Gteq        Predicate = "gteq"
)

var textPredicates = map[Predicate]bool{
	Eq:          true,
	NotEq:       true,
	Matches:     true,
	StartsWith:  true,
	EndsWith:    true,
	Contains:    true,
	NotContains: true,
}

var datePredicates = map[Predicate]bool{
	Eq:    true,
	NotEq: true,
	Lt:    true,
	Lteq:  true,
	Gt:    true,
	Gteq:  true,
}

// ResolvePredicate maps a predicate name or one of its aliases to a
// Predicate. It returns "" for unknown names.
func ResolvePredicate(s string) Predicate {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq":
		return Eq
	case "not_eq", "ne", "neq":
		return NotEq
	case "matches", "like":
		return Matches
	case "starts_with", "start":
		return StartsWith
	case "ends_with", "end":
		return EndsWith
	case "contains", "cont":
		return Contains
	case "not_contains", "not_cont":
		return NotContains
	case "lt":
		return Lt
	case "lteq", "lte":
		return Lteq
	case "gt":
		return Gt
	case "gteq", "gte":
		return Gteq
	default:
		return ""
	}
}

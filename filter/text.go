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

import (
	"fmt"

	"github.com/blnkfinance/sieve/model"
)

// Text matches a string field against {query}.
type Text struct {
	predicate Predicate
}

// NewText builds a text filter. Only eq, not_eq, matches, starts_with,
// ends_with, contains and not_contains are accepted.
func NewText(p Predicate) (Text, error) {
	if !textPredicates[p] {
		return Text{}, fmt.Errorf("%w %q for text filter", ErrUnknownPredicate, p)
	}
	return Text{predicate: p}, nil
}

func (t Text) Type() string { return "text" }

func (t Text) Fields() []string { return []string{"query"} }

// Predicate returns the comparison the filter applies.
func (t Text) Predicate() Predicate { return t.predicate }

func (t Text) Apply(q model.Queryable, field string, in Input) model.Queryable {
	query := in.String("query")
	if IsBlank(query) {
		return q
	}
	return q.Where(t.Constraint(field, query))
}

// Constraint builds the constraint for a non-blank query.
func (t Text) Constraint(field, query string) model.Constraint {
	switch t.predicate {
	case NotEq:
		return model.Not(model.Eq(field, query))
	case Matches:
		return model.Match(field, GlobPattern(query))
	case StartsWith:
		return model.Match(field, EscapePattern(query)+"%")
	case EndsWith:
		return model.Match(field, "%"+EscapePattern(query))
	case Contains:
		return model.Match(field, ContainsPattern(query))
	case NotContains:
		return model.Not(model.Match(field, ContainsPattern(query)))
	default:
		return model.Eq(field, query)
	}
}

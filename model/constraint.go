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

package model

import (
	"fmt"
	"strings"
)

// Operator identifies the kind of a Constraint.
type Operator string

const (
	OpEq    Operator = "eq"
	OpIn    Operator = "in"
	OpMatch Operator = "match"
	OpRange Operator = "range"
	OpNot   Operator = "not"
	OpAny   Operator = "any"
)

// Range is a span of comparable values. A nil Begin makes the range beginless
// and a nil End makes it endless. Begin is always inclusive.
type Range struct {
	Begin      interface{} `json:"begin,omitempty"`
	End        interface{} `json:"end,omitempty"`
	ExcludeEnd bool        `json:"exclude_end,omitempty"`
}

// Beginless reports whether the range has no lower bound.
func (r Range) Beginless() bool { return r.Begin == nil }

// Endless reports whether the range has no upper bound.
func (r Range) Endless() bool { return r.End == nil }

func (r Range) String() string {
	dots := ".."
	if r.ExcludeEnd {
		dots = "..."
	}
	begin, end := "", ""
	if r.Begin != nil {
		begin = formatValue(r.Begin)
	}
	if r.End != nil {
		end = formatValue(r.End)
	}
	return begin + dots + end
}

// Constraint is a single predicate over a field. Compound constraints (Not, Any)
// carry their operands in Inner.
type Constraint struct {
	Field    string        `json:"field,omitempty"`
	Operator Operator      `json:"operator"`
	Value    interface{}   `json:"value,omitempty"`
	Values   []interface{} `json:"values,omitempty"`
	Range    *Range        `json:"range,omitempty"`
	Inner    []Constraint  `json:"inner,omitempty"`
}

// Eq constrains field to equal value. A nil value means "is null".
func Eq(field string, value interface{}) Constraint {
	return Constraint{Field: field, Operator: OpEq, Value: value}
}

// In constrains field to one of values. An empty values list matches nothing.
func In(field string, values []interface{}) Constraint {
	if values == nil {
		values = []interface{}{}
	}
	return Constraint{Field: field, Operator: OpIn, Values: values}
}

// Match constrains field to a LIKE pattern. Pattern metacharacters are
// expected to be escaped by the caller with a backslash.
func Match(field, pattern string) Constraint {
	return Constraint{Field: field, Operator: OpMatch, Value: pattern}
}

// Within constrains field to lie inside r.
func Within(field string, r Range) Constraint {
	return Constraint{Field: field, Operator: OpRange, Range: &r}
}

// Not negates c.
func Not(c Constraint) Constraint {
	return Constraint{Field: c.Field, Operator: OpNot, Inner: []Constraint{c}}
}

// Any holds when at least one of cs holds.
func Any(cs ...Constraint) Constraint {
	return Constraint{Operator: OpAny, Inner: cs}
}

// Negated returns the operand of a Not constraint.
func (c Constraint) Negated() (Constraint, bool) {
	if c.Operator != OpNot || len(c.Inner) != 1 {
		return Constraint{}, false
	}
	return c.Inner[0], true
}

func (c Constraint) String() string {
	switch c.Operator {
	case OpEq:
		if c.Value == nil {
			return fmt.Sprintf("%s IS NULL", c.Field)
		}
		return fmt.Sprintf("%s = %s", c.Field, formatValue(c.Value))
	case OpIn:
		parts := make([]string, len(c.Values))
		for i, v := range c.Values {
			parts[i] = formatValue(v)
		}
		return fmt.Sprintf("%s IN (%s)", c.Field, strings.Join(parts, ", "))
	case OpMatch:
		return fmt.Sprintf("%s MATCHES %s", c.Field, formatValue(c.Value))
	case OpRange:
		return fmt.Sprintf("%s WITHIN %s", c.Field, c.Range.String())
	case OpNot:
		if inner, ok := c.Negated(); ok {
			return fmt.Sprintf("NOT (%s)", inner.String())
		}
	case OpAny:
		parts := make([]string, len(c.Inner))
		for i, inner := range c.Inner {
			parts[i] = inner.String()
		}
		return "(" + strings.Join(parts, " OR ") + ")"
	}
	return fmt.Sprintf("%s %s", c.Field, c.Operator)
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

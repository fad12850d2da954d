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

import "github.com/blnkfinance/sieve/model"

// choiceSet holds what Select and Association share: their choices and the
// single/multiple value policy.
type choiceSet struct {
	choices  []Choice
	source   ChoiceFunc
	multiple bool
}

// Choices returns the static choices, or calls the supplier if one is set.
func (c choiceSet) Choices() ([]Choice, error) {
	if c.source != nil {
		return c.source()
	}
	out := make([]Choice, len(c.choices))
	copy(out, c.choices)
	return out, nil
}

// Multiple reports whether the filter takes a list of values.
func (c choiceSet) Multiple() bool { return c.multiple }

// constrain applies the value policy to column. Single mode skips blank input
// and applies equality. Multiple mode skips an empty list, removes blank
// entries and always applies an IN-set, so a list of only blank entries
// constrains to the empty set.
func (c choiceSet) constrain(q model.Queryable, column string, v interface{}) model.Queryable {
	if !c.multiple {
		value, ok := scalar(v)
		if !ok {
			return q
		}
		return q.Where(model.Eq(column, value))
	}

	list := asList(v)
	if len(list) == 0 {
		return q
	}
	return q.Where(model.In(column, compact(list)))
}

// SelectOptions configures a Select filter. Source, when set, takes
// precedence over Choices.
type SelectOptions struct {
	Choices  []Choice
	Source   ChoiceFunc
	Multiple bool
}

// Select constrains a field to one chosen value, or to a set of them.
type Select struct {
	choiceSet
}

func NewSelect(opts SelectOptions) Select {
	return Select{choiceSet{choices: opts.Choices, source: opts.Source, multiple: opts.Multiple}}
}

func (s Select) Type() string { return "select" }

func (s Select) Fields() []string { return []string{"value"} }

func (s Select) Apply(q model.Queryable, field string, in Input) model.Queryable {
	return s.constrain(q, field, in.Value("value"))
}

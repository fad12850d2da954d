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

const (
	defaultTrueLabel  = "Yes"
	defaultFalseLabel = "No"
)

// BooleanOptions carries display labels. They have no effect on filtering.
type BooleanOptions struct {
	TrueLabel  string
	FalseLabel string
}

// Boolean constrains a field to true or false from {value}.
type Boolean struct {
	trueLabel  string
	falseLabel string
}

func NewBoolean(opts BooleanOptions) Boolean {
	b := Boolean{trueLabel: opts.TrueLabel, falseLabel: opts.FalseLabel}
	if b.trueLabel == "" {
		b.trueLabel = defaultTrueLabel
	}
	if b.falseLabel == "" {
		b.falseLabel = defaultFalseLabel
	}
	return b
}

func (b Boolean) Type() string { return "boolean" }

func (b Boolean) Fields() []string { return []string{"value"} }

func (b Boolean) TrueLabel() string { return b.trueLabel }

func (b Boolean) FalseLabel() string { return b.falseLabel }

// Apply constrains field to the coerced value. A coerced false is still
// applied; only missing or unparseable input is a no-op.
func (b Boolean) Apply(q model.Queryable, field string, in Input) model.Queryable {
	value, ok := CoerceBool(in.Value("value"))
	if !ok {
		return q
	}
	return q.Where(model.Eq(field, value))
}

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
	"errors"

	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

var (
	ErrUnknownPredicate  = errors.New("unknown filter predicate")
	ErrAssociationTarget = errors.New("unable to determine association target")
)

// Kind is a stateless predicate strategy. Apply turns decoded input into zero
// or more constraints on q and must treat blank or invalid input as a no-op.
type Kind interface {
	// Type names the kind, e.g. "text" or "date_range".
	Type() string

	// Fields lists the input sub-fields the kind reads.
	Fields() []string

	Apply(q model.Queryable, field string, in Input) model.Queryable
}

// Resolver is implemented by kinds that need the resource to finish
// construction. Resolve returns the resolved kind or a definition error.
type Resolver interface {
	Resolve(key string, res *model.Resource) (Kind, error)
}

// Input is the decoded sub-bag of one filter, keyed by field.
type Input map[string]interface{}

// Decode picks the expected fields out of a filter's raw parameter value.
// A raw scalar or list is accepted as the value of a single-field kind.
func Decode(raw interface{}, fields []string) Input {
	in := Input{}
	if raw == nil {
		return in
	}
	if m, ok := params.AsMap(raw); ok {
		for _, f := range fields {
			if v, ok := m[f]; ok {
				in[f] = v
			}
		}
		return in
	}
	if len(fields) == 1 {
		in[fields[0]] = raw
	}
	return in
}

// Blank reports whether every field of the input is blank.
func (in Input) Blank() bool {
	for _, v := range in {
		if !IsBlank(v) {
			return false
		}
	}
	return true
}

// Value returns the raw value of field.
func (in Input) Value(field string) interface{} {
	return in[field]
}

// String returns field as a string. Lists and maps yield "".
func (in Input) String(field string) string {
	v, ok := scalar(in[field])
	if !ok {
		return ""
	}
	return stringOf(v)
}

// Args converts the input into behavior arguments.
func (in Input) Args() model.Args {
	args := make(model.Args, len(in))
	for k, v := range in {
		args[k] = v
	}
	return args
}

// Choice is one selectable option of a Select or Association filter.
type Choice struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ChoiceFunc supplies choices lazily. It is only called when choices are
// rendered, never when a filter is applied.
type ChoiceFunc func() ([]Choice, error)

// Choices builds choices whose labels equal their values.
func Choices(values ...string) []Choice {
	out := make([]Choice, len(values))
	for i, v := range values {
		out[i] = Choice{Label: v, Value: v}
	}
	return out
}

// Info describes a filter for rendering.
type Info struct {
	Type       string    `json:"type"`
	Fields     []string  `json:"fields"`
	Predicate  Predicate `json:"predicate,omitempty"`
	Multiple   bool      `json:"multiple,omitempty"`
	TrueLabel  string    `json:"true_label,omitempty"`
	FalseLabel string    `json:"false_label,omitempty"`
	Target     string    `json:"target,omitempty"`
	Column     string    `json:"column,omitempty"`
	Choices    []Choice  `json:"choices,omitempty"`
}

// Describe renders k's metadata, evaluating choice suppliers.
func Describe(k Kind) (Info, error) {
	info := Info{Type: k.Type(), Fields: k.Fields()}
	switch kind := k.(type) {
	case Text:
		info.Predicate = kind.predicate
	case Date:
		info.Predicate = kind.predicate
	case Boolean:
		info.TrueLabel, info.FalseLabel = kind.TrueLabel(), kind.FalseLabel()
	case Select:
		info.Multiple = kind.multiple
		choices, err := kind.Choices()
		if err != nil {
			return info, err
		}
		info.Choices = choices
	case Association:
		info.Multiple = kind.multiple
		info.Target = kind.target
		info.Column = kind.foreignKey
		choices, err := kind.Choices()
		if err != nil {
			return info, err
		}
		info.Choices = choices
	}
	return info, nil
}

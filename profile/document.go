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

package profile

import (
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
)

var filterKinds = []interface{}{"text", "boolean", "select", "date", "date_range", "association", "named"}

var constraintOps = []interface{}{"eq", "not_eq", "in", "match", "contains", "gt", "gteq", "lt", "lteq", "null", "not_null"}

// Document is the on-disk catalog: one entry per listable resource.
type Document struct {
	Resources []ResourceSpec `json:"resources"`
}

// ResourceSpec declares a resource and the scopes, filters, sorters, search
// and default ordering of its listing.
type ResourceSpec struct {
	Name        string                   `json:"name"`
	Table       string                   `json:"table"`
	PrimaryKey  string                   `json:"primary_key"`
	Columns     []string                 `json:"columns"`
	BelongsTo   []model.Association      `json:"belongs_to"`
	Operations  map[string]OperationSpec `json:"operations"`
	Namespace   *string                  `json:"namespace"`
	Scopes      []ScopeSpec              `json:"scopes"`
	Filters     []FilterSpec             `json:"filters"`
	Sorters     []SorterSpec             `json:"sorters"`
	Search      *SearchSpec              `json:"search"`
	DefaultSort *SortSpec                `json:"default_sort"`
}

// OperationSpec is a named operation written as data: constraints applied in
// order, then orderings.
type OperationSpec struct {
	Where []ConstraintSpec `json:"where"`
	Order []OrderSpec      `json:"order"`
}

// ConstraintSpec is one constraint of an operation. When Arg is set the
// value is read from the operation's arguments and a blank argument skips
// the constraint.
type ConstraintSpec struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
	Arg   string      `json:"arg"`
}

// OrderSpec is one ordering of an operation. An empty Direction takes the
// "direction" argument, so an operation can back a sorter.
type OrderSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type ScopeSpec struct {
	Name      string `json:"name"`
	Operation string `json:"operation"`
	Default   bool   `json:"default"`
}

// FilterSpec declares one filter. Which fields matter depends on Kind.
type FilterSpec struct {
	Key         string   `json:"key"`
	Kind        string   `json:"kind"`
	Predicate   string   `json:"predicate"`
	Choices     []string `json:"choices"`
	ChoicesFrom string   `json:"choices_from"`
	Multiple    bool     `json:"multiple"`
	Target      string   `json:"target"`
	ForeignKey  string   `json:"foreign_key"`
	TrueLabel   string   `json:"true_label"`
	FalseLabel  string   `json:"false_label"`
	Operation   string   `json:"operation"`
	Fields      []string `json:"fields"`
	Timezone    string   `json:"timezone"`
}

type SorterSpec struct {
	Name      string `json:"name"`
	Using     string `json:"using"`
	Operation string `json:"operation"`
}

// SearchSpec declares search over Columns, or through a named Operation.
type SearchSpec struct {
	Columns   []string `json:"columns"`
	Operation string   `json:"operation"`
}

// SortSpec is the default ordering: a field and direction, or a named
// operation.
type SortSpec struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
	Operation string `json:"operation"`
}

func (d Document) Validate() error {
	if err := validation.Required.Validate(d.Resources); err != nil {
		return fmt.Errorf("resources: %w", err)
	}
	seen := make(map[string]bool, len(d.Resources))
	for i := range d.Resources {
		r := d.Resources[i]
		if err := r.Validate(); err != nil {
			return fmt.Errorf("resource %q: %w", r.Name, err)
		}
		key := strings.ToLower(r.Name)
		if seen[key] {
			return fmt.Errorf("resource %q declared twice", r.Name)
		}
		seen[key] = true
	}
	return nil
}

func (r ResourceSpec) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Columns, validation.Required, validation.Each(validation.Required)),
		validation.Field(&r.BelongsTo, validation.Each(validation.By(associationRule))),
		validation.Field(&r.Operations),
		validation.Field(&r.Scopes),
		validation.Field(&r.Filters),
		validation.Field(&r.Sorters),
		validation.Field(&r.Search),
		validation.Field(&r.DefaultSort),
	)
}

func associationRule(value interface{}) error {
	a, _ := value.(model.Association)
	if a.Name == "" {
		return validation.NewError("validation_association_name", "association name is required")
	}
	return nil
}

func (o OperationSpec) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Where),
		validation.Field(&o.Order),
	)
}

func (c ConstraintSpec) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Field, validation.Required),
		validation.Field(&c.Op, validation.Required, validation.In(constraintOps...)),
	)
}

func (o OrderSpec) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Field, validation.Required),
		validation.Field(&o.Direction, validation.By(directionRule)),
	)
}

func (s ScopeSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
	)
}

func (f FilterSpec) Validate() error {
	dated := f.Kind == "date" || f.Kind == "date_range"
	return validation.ValidateStruct(&f,
		validation.Field(&f.Key, validation.Required),
		validation.Field(&f.Kind, validation.Required, validation.In(filterKinds...)),
		validation.Field(&f.Predicate, validation.When(f.Kind == "text" || f.Kind == "date", validation.Required, validation.By(predicateRule))),
		validation.Field(&f.Operation, validation.When(f.Kind == "named", validation.Required)),
		validation.Field(&f.ChoicesFrom, validation.When(len(f.Choices) > 0, validation.Empty.Error("cannot be combined with choices"))),
		validation.Field(&f.Timezone, validation.When(dated && f.Timezone != "", validation.By(timezoneRule))),
	)
}

func (s SorterSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Using, validation.When(s.Operation != "", validation.Empty.Error("cannot be combined with operation"))),
	)
}

func (s SearchSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Columns, validation.Required.When(s.Operation == ""), validation.Empty.When(s.Operation != "").Error("cannot be combined with operation")),
	)
}

func (s SortSpec) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Field, validation.Required.When(s.Operation == ""), validation.Empty.When(s.Operation != "").Error("cannot be combined with operation")),
		validation.Field(&s.Direction, validation.By(directionRule)),
	)
}

func directionRule(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if _, ok := model.ParseDirection(s); !ok {
		return validation.NewError("validation_direction", "must be asc or desc")
	}
	return nil
}

func predicateRule(value interface{}) error {
	s, _ := value.(string)
	if s != "" && filter.ResolvePredicate(s) == "" {
		return validation.NewError("validation_predicate", fmt.Sprintf("unknown predicate %q", s))
	}
	return nil
}

func timezoneRule(value interface{}) error {
	s, _ := value.(string)
	if _, err := loadLocation(s); err != nil {
		return validation.NewError("validation_timezone", err.Error())
	}
	return nil
}

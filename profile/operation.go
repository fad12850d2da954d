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

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
)

// build turns a declared operation into a model.Operation.
func (o OperationSpec) build() model.Operation {
	return func(q model.Queryable, args model.Args) model.Queryable {
		for _, c := range o.Where {
			con, ok := c.constraint(args)
			if !ok {
				continue
			}
			q = q.Where(con)
		}
		for _, ord := range o.Order {
			q = q.OrderBy(ord.Field, ord.direction(args))
		}
		return q
	}
}

func (o OperationSpec) columns() []string {
	out := make([]string, 0, len(o.Where)+len(o.Order))
	for _, c := range o.Where {
		out = append(out, c.Field)
	}
	for _, ord := range o.Order {
		out = append(out, ord.Field)
	}
	return out
}

func (c ConstraintSpec) value(args model.Args) (interface{}, bool) {
	if c.Arg == "" {
		return c.Value, true
	}
	v, ok := args[c.Arg]
	if !ok || filter.IsBlank(v) {
		return nil, false
	}
	return v, true
}

func (c ConstraintSpec) constraint(args model.Args) (model.Constraint, bool) {
	switch c.Op {
	case "null":
		return model.Eq(c.Field, nil), true
	case "not_null":
		return model.Not(model.Eq(c.Field, nil)), true
	}

	v, ok := c.value(args)
	if !ok {
		return model.Constraint{}, false
	}
	switch c.Op {
	case "eq":
		return model.Eq(c.Field, v), true
	case "not_eq":
		return model.Not(model.Eq(c.Field, v)), true
	case "in":
		list, ok := v.([]interface{})
		if !ok {
			list = []interface{}{v}
		}
		return model.In(c.Field, list), true
	case "match":
		return model.Match(c.Field, fmt.Sprint(v)), true
	case "contains":
		return model.Match(c.Field, filter.ContainsPattern(fmt.Sprint(v))), true
	case "gt":
		return model.Not(model.Within(c.Field, model.Range{End: v})), true
	case "gteq":
		return model.Within(c.Field, model.Range{Begin: v}), true
	case "lt":
		return model.Within(c.Field, model.Range{End: v, ExcludeEnd: true}), true
	case "lteq":
		return model.Within(c.Field, model.Range{End: v}), true
	}
	return model.Constraint{}, false
}

func (o OrderSpec) direction(args model.Args) model.Direction {
	if o.Direction != "" {
		return model.DirectionOrAsc(o.Direction)
	}
	if v, ok := args["direction"]; ok {
		return model.DirectionOrAsc(fmt.Sprint(v))
	}
	return model.Asc
}

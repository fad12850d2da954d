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
	"fmt"
	"strings"

	"github.com/blnkfinance/sieve/filter"
	"github.com/blnkfinance/sieve/model"
	"github.com/blnkfinance/sieve/params"
)

// Transform is an ad-hoc query transformation. Scopes receive nil args,
// sorters receive {"direction"} and search receives {"search"}.
type Transform func(q model.Queryable, args model.Args) model.Queryable

// Behavior is either a reference to a named operation of the resource or an
// ad-hoc Transform. The zero value is invalid.
type Behavior struct {
	name string
	fn   Transform
}

// Named refers to an operation exposed by the resource. It is validated when
// the definition using it is declared.
func Named(name string) Behavior {
	return Behavior{name: params.NormalizeKey(name)}
}

// Func wraps an ad-hoc transformation.
func Func(fn Transform) Behavior {
	return Behavior{fn: fn}
}

// Name returns the referenced operation, or "" for a Func behavior.
func (b Behavior) Name() string { return b.name }

// IsNamed reports whether b refers to a named operation.
func (b Behavior) IsNamed() bool { return b.fn == nil && b.name != "" }

func (b Behavior) valid() bool { return b.fn != nil || b.name != "" }

func (b Behavior) resolve(res *model.Resource) error {
	if !b.valid() {
		return ErrBehavior
	}
	if !b.IsNamed() {
		return nil
	}
	_, err := res.Lookup(b.name)
	return err
}

func (b Behavior) invoke(q model.Queryable, args model.Args) model.Queryable {
	if b.fn != nil {
		return b.fn(q, args)
	}
	return q.Named(b.name, args)
}

func (b Behavior) String() string {
	if b.IsNamed() {
		return b.name
	}
	return "func"
}

// SearchColumns is a search behavior matching the search text, escaped, as a
// substring of any of columns.
func SearchColumns(columns ...string) Behavior {
	return Func(func(q model.Queryable, args model.Args) model.Queryable {
		text, _ := args["search"].(string)
		if text == "" || len(columns) == 0 {
			return q
		}
		pattern := filter.ContainsPattern(text)
		if len(columns) == 1 {
			return q.Where(model.Match(columns[0], pattern))
		}
		matches := make([]model.Constraint, len(columns))
		for i, c := range columns {
			matches[i] = model.Match(c, pattern)
		}
		return q.Where(model.Any(matches...))
	})
}

// reservedParams are the state keys read from the namespace.
var reservedParams = map[string]bool{
	"search":          true,
	"scope":           true,
	"sort_fields":     true,
	"sort_directions": true,
}

func isReservedParam(key string) bool {
	return reservedParams[key]
}

func validName(name string) (string, error) {
	key := params.NormalizeKey(name)
	if key == "" || strings.ContainsAny(key, "[]&=") {
		return "", fmt.Errorf("%w %q", ErrInvalidName, name)
	}
	return key, nil
}

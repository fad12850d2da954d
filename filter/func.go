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
	"github.com/blnkfinance/sieve/model"
)

// FuncBody is an ad-hoc filter body. args holds the decoded input plus
// "field", the filter's key.
type FuncBody func(q model.Queryable, args model.Args) model.Queryable

// Func is a filter implemented by an ad-hoc function.
type Func struct {
	fields []string
	body   FuncBody
}

// NewFunc wraps body. fields defaults to ["value"].
func NewFunc(body FuncBody, fields ...string) Func {
	if len(fields) == 0 {
		fields = []string{"value"}
	}
	return Func{fields: fields, body: body}
}

func (f Func) Type() string { return "custom" }

func (f Func) Fields() []string { return f.fields }

func (f Func) Apply(q model.Queryable, field string, in Input) model.Queryable {
	if f.body == nil {
		return q
	}
	args := in.Args()
	args["field"] = field
	return f.body(q, args)
}

// Named is a filter delegating to a named operation of the resource, called
// with the decoded input as arguments.
type Named struct {
	operation string
	fields    []string
}

// NewNamed builds a named-operation filter. fields defaults to ["value"].
func NewNamed(operation string, fields ...string) Named {
	if len(fields) == 0 {
		fields = []string{"value"}
	}
	return Named{operation: operation, fields: fields}
}

func (n Named) Type() string { return "named" }

func (n Named) Fields() []string { return n.fields }

// Operation names the invoked operation.
func (n Named) Operation() string { return n.operation }

// Resolve checks the operation is exposed by res.
func (n Named) Resolve(key string, res *model.Resource) (Kind, error) {
	if _, err := res.Lookup(n.operation); err != nil {
		return nil, err
	}
	return n, nil
}

func (n Named) Apply(q model.Queryable, field string, in Input) model.Queryable {
	return q.Named(n.operation, in.Args())
}

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

// Args carries named arguments to a behavior: {"search": q} for search,
// {"direction": d} for sorters and the decoded input for filters.
type Args map[string]interface{}

// Queryable is the backend-agnostic collection that constraints and orderings
// are applied to. Implementations must not mutate the receiver: every method
// returns the transformed value.
type Queryable interface {
	// Where narrows the collection by c.
	Where(c Constraint) Queryable

	// OrderBy appends an ordering clause after any existing ones.
	OrderBy(field string, dir Direction) Queryable

	// Named invokes a named operation exposed by the collection type.
	Named(name string, args Args) Queryable
}

// Operation is the body of a named operation.
type Operation func(q Queryable, args Args) Queryable

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
	"sort"
	"strings"
)

const DefaultPrimaryKey = "id"

// Association describes a belongs-to relation from a resource to Target
// through ForeignKey.
type Association struct {
	Name       string `json:"name"`
	ForeignKey string `json:"foreign_key"`
	Target     string `json:"target"`
}

// Resource describes a collection type: its primary key, content columns,
// belongs-to associations and the named operations it exposes.
type Resource struct {
	Name         string
	Table        string
	PrimaryKey   string
	Columns      []string
	Associations []Association
	Operations   map[string]Operation
}

// NewResource returns a resource with table and primary key defaulted from name.
func NewResource(name string, columns ...string) *Resource {
	return &Resource{
		Name:       name,
		Table:      name,
		PrimaryKey: DefaultPrimaryKey,
		Columns:    columns,
		Operations: make(map[string]Operation),
	}
}

// BelongsTo registers a belongs-to association and returns the resource.
func (r *Resource) BelongsTo(name, foreignKey, target string) *Resource {
	if foreignKey == "" {
		foreignKey = name + "_id"
	}
	if target == "" {
		target = name
	}
	r.Associations = append(r.Associations, Association{Name: name, ForeignKey: foreignKey, Target: target})
	return r
}

// Expose registers a named operation and returns the resource.
func (r *Resource) Expose(name string, op Operation) *Resource {
	if r.Operations == nil {
		r.Operations = make(map[string]Operation)
	}
	r.Operations[strings.ToLower(name)] = op
	return r
}

// Key returns the primary key, falling back to "id".
func (r *Resource) Key() string {
	if r.PrimaryKey == "" {
		return DefaultPrimaryKey
	}
	return r.PrimaryKey
}

// TableName returns Table, falling back to Name.
func (r *Resource) TableName() string {
	if r.Table == "" {
		return r.Name
	}
	return r.Table
}

// HasColumn reports whether name is the primary key, a content column or a
// foreign key column.
func (r *Resource) HasColumn(name string) bool {
	if name == r.Key() {
		return true
	}
	for _, c := range r.Columns {
		if c == name {
			return true
		}
	}
	for _, a := range r.Associations {
		if a.ForeignKey == name {
			return true
		}
	}
	return false
}

// Association looks up a belongs-to association by name.
func (r *Resource) Association(name string) (Association, bool) {
	for _, a := range r.Associations {
		if a.Name == name {
			return a, true
		}
	}
	return Association{}, false
}

// Operation looks up a named operation.
func (r *Resource) Operation(name string) (Operation, bool) {
	op, ok := r.Operations[strings.ToLower(name)]
	return op, ok
}

// OperationNames returns the exposed operation names in sorted order.
func (r *Resource) OperationNames() []string {
	names := make([]string, 0, len(r.Operations))
	for name := range r.Operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

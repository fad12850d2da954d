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
	"fmt"

	"github.com/blnkfinance/sieve/model"
)

// AssociationOptions configures an Association filter. Target and ForeignKey
// override what is reflected from the resource's belongs-to associations.
type AssociationOptions struct {
	Target     string
	ForeignKey string
	Choices    []Choice
	Source     ChoiceFunc
	Multiple   bool
}

// Association filters by a belongs-to relation. Values constrain the foreign
// key column, not the filter's own name.
type Association struct {
	choiceSet
	target     string
	foreignKey string
}

func NewAssociation(opts AssociationOptions) Association {
	return Association{
		choiceSet:  choiceSet{choices: opts.Choices, source: opts.Source, multiple: opts.Multiple},
		target:     opts.Target,
		foreignKey: opts.ForeignKey,
	}
}

func (a Association) Type() string { return "association" }

func (a Association) Fields() []string { return []string{"value"} }

// Target names the associated resource.
func (a Association) Target() string { return a.target }

// ForeignKey names the constrained column. It is empty until resolved.
func (a Association) ForeignKey() string { return a.foreignKey }

// Resolve fills the target and foreign key from the resource's association
// named key. Without such an association an explicit target is required, and
// the foreign key then defaults to key_id.
func (a Association) Resolve(key string, res *model.Resource) (Kind, error) {
	resolved := a
	if res != nil {
		if assoc, ok := res.Association(key); ok {
			if resolved.target == "" {
				resolved.target = assoc.Target
			}
			if resolved.foreignKey == "" {
				resolved.foreignKey = assoc.ForeignKey
			}
			return resolved, nil
		}
	}
	if resolved.target == "" {
		return nil, fmt.Errorf("%w for filter %q", ErrAssociationTarget, key)
	}
	if resolved.foreignKey == "" {
		resolved.foreignKey = key + "_id"
	}
	return resolved, nil
}

func (a Association) Apply(q model.Queryable, field string, in Input) model.Queryable {
	column := a.foreignKey
	if column == "" {
		column = field + "_id"
	}
	return a.constrain(q, column, in.Value("value"))
}

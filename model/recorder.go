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
	"fmt"
	"strings"
)

// StepKind names what a recorded step did.
type StepKind string

const (
	StepWhere StepKind = "where"
	StepOrder StepKind = "order"
	StepNamed StepKind = "named"
)

// Step is one recorded call on a Recorder.
type Step struct {
	Kind       StepKind    `json:"kind"`
	Constraint *Constraint `json:"constraint,omitempty"`
	Order      *Order      `json:"order,omitempty"`
	Name       string      `json:"name,omitempty"`
	Args       Args        `json:"args,omitempty"`
}

func (s Step) String() string {
	switch s.Kind {
	case StepWhere:
		return "where " + s.Constraint.String()
	case StepOrder:
		return "order " + s.Order.String()
	case StepNamed:
		if len(s.Args) == 0 {
			return "named " + s.Name
		}
		return fmt.Sprintf("named %s %v", s.Name, map[string]interface{}(s.Args))
	}
	return string(s.Kind)
}

// Recorder is a Queryable that records every call instead of executing it.
// It is a value type; each call returns a new Recorder sharing no state with
// the receiver.
type Recorder struct {
	steps []Step
}

// NewRecorder returns an empty recorder.
func NewRecorder() Recorder {
	return Recorder{}
}

func (r Recorder) with(s Step) Recorder {
	steps := make([]Step, len(r.steps), len(r.steps)+1)
	copy(steps, r.steps)
	return Recorder{steps: append(steps, s)}
}

func (r Recorder) Where(c Constraint) Queryable {
	return r.with(Step{Kind: StepWhere, Constraint: &c})
}

func (r Recorder) OrderBy(field string, dir Direction) Queryable {
	return r.with(Step{Kind: StepOrder, Order: &Order{Field: field, Direction: dir}})
}

func (r Recorder) Named(name string, args Args) Queryable {
	return r.with(Step{Kind: StepNamed, Name: name, Args: args})
}

// Steps returns a copy of the recorded steps.
func (r Recorder) Steps() []Step {
	out := make([]Step, len(r.steps))
	copy(out, r.steps)
	return out
}

func (r Recorder) String() string {
	lines := make([]string, len(r.steps))
	for i, s := range r.steps {
		lines[i] = s.String()
	}
	return strings.Join(lines, "\n")
}

// Recorded unwraps q into its steps. ok is false if q is not a Recorder.
func Recorded(q Queryable) ([]Step, bool) {
	r, ok := q.(Recorder)
	if !ok {
		return nil, false
	}
	return r.Steps(), true
}

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

import "strings"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// ParseDirection resolves s case-insensitively. ok is false for anything other
// than asc or desc.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC":
		return Asc, true
	case "DESC":
		return Desc, true
	default:
		return Asc, false
	}
}

// DirectionOrAsc is ParseDirection with the ok flag dropped.
func DirectionOrAsc(s string) Direction {
	d, _ := ParseDirection(s)
	return d
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Order is a single ordering clause.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

func (o Order) String() string {
	return o.Field + " " + string(o.Direction)
}

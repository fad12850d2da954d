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
	"time"

	"github.com/blnkfinance/sieve/model"
)

// Date compares a date or timestamp field against the calendar day given in
// {value}.
type Date struct {
	predicate Predicate
	location  *time.Location
}

// NewDate builds a date filter. Only eq, not_eq, lt, lteq, gt and gteq are
// accepted. Days are computed in UTC unless changed with In.
func NewDate(p Predicate) (Date, error) {
	if !datePredicates[p] {
		return Date{}, fmt.Errorf("%w %q for date filter", ErrUnknownPredicate, p)
	}
	return Date{predicate: p, location: time.UTC}, nil
}

// In returns a copy that computes day boundaries in loc.
func (d Date) In(loc *time.Location) Date {
	d.location = loc
	return d
}

func (d Date) Type() string { return "date" }

func (d Date) Fields() []string { return []string{"value"} }

func (d Date) Predicate() Predicate { return d.predicate }

func (d Date) Apply(q model.Queryable, field string, in Input) model.Queryable {
	day, ok := parseDay(in.Value("value"), d.location)
	if !ok {
		return q
	}
	return q.Where(d.Constraint(field, day))
}

// Constraint builds the range constraint for day.
func (d Date) Constraint(field string, day time.Time) model.Constraint {
	start, next := DayBounds(day)
	switch d.predicate {
	case NotEq:
		return model.Not(model.Within(field, model.Range{Begin: start, End: next, ExcludeEnd: true}))
	case Lt:
		return model.Within(field, model.Range{End: start, ExcludeEnd: true})
	case Lteq:
		return model.Within(field, model.Range{End: next, ExcludeEnd: true})
	case Gt:
		return model.Within(field, model.Range{Begin: next})
	case Gteq:
		return model.Within(field, model.Range{Begin: start})
	default:
		return model.Within(field, model.Range{Begin: start, End: next, ExcludeEnd: true})
	}
}

// DateRange constrains a field to the days between {from} and {to}, both
// inclusive and each optional.
type DateRange struct {
	location *time.Location
}

func NewDateRange() DateRange {
	return DateRange{location: time.UTC}
}

// In returns a copy that computes day boundaries in loc.
func (r DateRange) In(loc *time.Location) DateRange {
	r.location = loc
	return r
}

func (r DateRange) Type() string { return "date_range" }

func (r DateRange) Fields() []string { return []string{"from", "to"} }

// Apply treats an invalid from or to as absent rather than failing the whole
// filter.
func (r DateRange) Apply(q model.Queryable, field string, in Input) model.Queryable {
	from, hasFrom := parseDay(in.Value("from"), r.location)
	to, hasTo := parseDay(in.Value("to"), r.location)

	var rng model.Range
	switch {
	case hasFrom && hasTo:
		begin, _ := DayBounds(from)
		_, end := DayBounds(to)
		rng = model.Range{Begin: begin, End: end, ExcludeEnd: true}
	case hasFrom:
		begin, _ := DayBounds(from)
		rng = model.Range{Begin: begin}
	case hasTo:
		_, end := DayBounds(to)
		rng = model.Range{End: end, ExcludeEnd: true}
	default:
		return q
	}
	return q.Where(model.Within(field, rng))
}

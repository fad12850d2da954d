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

package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/blnkfinance/sieve/model"
)

var (
	ErrUnknownColumn = errors.New("unknown column")
	ErrInvalidTable  = errors.New("invalid table name")
)

// Query is a model.Queryable that renders to a single SELECT statement.
// Like every Queryable it is immutable; each call returns a new Query.
type Query struct {
	resource *model.Resource
	dialect  Dialect
	wheres   []model.Constraint
	orders   []model.Order
	limit    int
	err      error
}

// NewQuery starts an unconstrained query over res.
func NewQuery(res *model.Resource, dialect Dialect) Query {
	return Query{resource: res, dialect: dialect}
}

func (q Query) clone() Query {
	out := q
	out.wheres = append([]model.Constraint(nil), q.wheres...)
	out.orders = append([]model.Order(nil), q.orders...)
	return out
}

func (q Query) Where(c model.Constraint) model.Queryable {
	out := q.clone()
	out.wheres = append(out.wheres, c)
	return out
}

func (q Query) OrderBy(field string, dir model.Direction) model.Queryable {
	out := q.clone()
	out.orders = append(out.orders, model.Order{Field: field, Direction: dir})
	return out
}

// Named runs the resource operation name on q. An unknown operation, or one
// that returns something other than a Query, is recorded and reported by
// ToSQL.
func (q Query) Named(name string, args model.Args) model.Queryable {
	if q.err != nil {
		return q
	}
	op, err := q.resource.Lookup(name)
	if err != nil {
		out := q.clone()
		out.err = err
		return out
	}
	next, ok := op(q, args).(Query)
	if !ok {
		out := q.clone()
		out.err = fmt.Errorf("operation %q did not return a database query", name)
		return out
	}
	return next
}

// Limit caps the number of rows. Zero or less removes the cap.
func (q Query) Limit(n int) Query {
	out := q.clone()
	out.limit = n
	return out
}

// Err returns the first error recorded while building the query.
func (q Query) Err() error { return q.err }

// Constraints returns the accumulated constraints.
func (q Query) Constraints() []model.Constraint {
	return append([]model.Constraint(nil), q.wheres...)
}

// Orders returns the accumulated ordering clauses.
func (q Query) Orders() []model.Order {
	return append([]model.Order(nil), q.orders...)
}

// selectColumns is the primary key, content columns and foreign keys, each
// once, in that order.
func selectColumns(res *model.Resource) []string {
	seen := map[string]bool{}
	var cols []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	add(res.Key())
	for _, c := range res.Columns {
		add(c)
	}
	for _, a := range res.Associations {
		add(a.ForeignKey)
	}
	return cols
}

// builder accumulates SQL fragments and positional arguments.
type builder struct {
	q    Query
	args []interface{}
}

func (b *builder) bind(v interface{}) string {
	b.args = append(b.args, v)
	return b.q.dialect.placeholder(len(b.args))
}

func (b *builder) column(field string) (string, error) {
	if !validIdentifier(field) || !b.q.resource.HasColumn(field) {
		return "", fmt.Errorf("%w %q on %s", ErrUnknownColumn, field, b.q.resource.Name)
	}
	return b.q.dialect.quote(field), nil
}

func (b *builder) condition(c model.Constraint) (string, error) {
	switch c.Operator {
	case model.OpNot:
		inner, ok := c.Negated()
		if !ok {
			return "", fmt.Errorf("malformed NOT constraint on %q", c.Field)
		}
		cond, err := b.condition(inner)
		if err != nil {
			return "", err
		}
		return "NOT (" + cond + ")", nil

	case model.OpAny:
		if len(c.Inner) == 0 {
			return "1 = 0", nil
		}
		parts := make([]string, len(c.Inner))
		for i, inner := range c.Inner {
			cond, err := b.condition(inner)
			if err != nil {
				return "", err
			}
			parts[i] = cond
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil
	}

	col, err := b.column(c.Field)
	if err != nil {
		return "", err
	}

	switch c.Operator {
	case model.OpEq:
		if c.Value == nil {
			return col + " IS NULL", nil
		}
		return col + " = " + b.bind(c.Value), nil

	case model.OpIn:
		if len(c.Values) == 0 {
			return "1 = 0", nil
		}
		if b.q.dialect == Postgres {
			if strs, ok := stringValues(c.Values); ok {
				return fmt.Sprintf("%s = ANY(%s)", col, b.bind(pq.Array(strs))), nil
			}
		}
		placeholders := make([]string, len(c.Values))
		for i, v := range c.Values {
			placeholders[i] = b.bind(v)
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), nil

	case model.OpMatch:
		pattern, ok := c.Value.(string)
		if !ok {
			return "", fmt.Errorf("pattern for %q must be a string", c.Field)
		}
		return b.q.dialect.match(col, b.bind(pattern)), nil

	case model.OpRange:
		if c.Range == nil || (c.Range.Beginless() && c.Range.Endless()) {
			return "1 = 1", nil
		}
		var parts []string
		if !c.Range.Beginless() {
			parts = append(parts, col+" >= "+b.bind(c.Range.Begin))
		}
		if !c.Range.Endless() {
			op := " <= "
			if c.Range.ExcludeEnd {
				op = " < "
			}
			parts = append(parts, col+op+b.bind(c.Range.End))
		}
		if len(parts) == 1 {
			return parts[0], nil
		}
		return "(" + strings.Join(parts, " AND ") + ")", nil
	}
	return "", fmt.Errorf("unsupported operator %q on %q", c.Operator, c.Field)
}

func stringValues(values []interface{}) ([]string, bool) {
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

// ToSQL renders the query and its positional arguments.
func (q Query) ToSQL() (string, []interface{}, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	table := q.resource.TableName()
	if !validIdentifier(table) {
		return "", nil, fmt.Errorf("%w %q", ErrInvalidTable, table)
	}

	b := &builder{q: q}
	cols := selectColumns(q.resource)
	quoted := make([]string, len(cols))
	for i, c := range cols {
		if !validIdentifier(c) {
			return "", nil, fmt.Errorf("%w %q on %s", ErrUnknownColumn, c, q.resource.Name)
		}
		quoted[i] = q.dialect.quote(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(quoted, ", "), q.dialect.quote(table))

	if len(q.wheres) > 0 {
		conds := make([]string, len(q.wheres))
		for i, c := range q.wheres {
			cond, err := b.condition(c)
			if err != nil {
				return "", nil, err
			}
			conds[i] = cond
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if len(q.orders) > 0 {
		clauses := make([]string, len(q.orders))
		for i, o := range q.orders {
			col, err := b.column(o.Field)
			if err != nil {
				return "", nil, err
			}
			dir := model.Asc
			if o.Direction == model.Desc {
				dir = model.Desc
			}
			clauses[i] = col + " " + string(dir)
		}
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(clauses, ", "))
	}

	if q.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	return sb.String(), b.args, nil
}

// DistinctSQL renders a lookup of the distinct non-null values of column.
func DistinctSQL(res *model.Resource, dialect Dialect, column string, limit int) (string, error) {
	table := res.TableName()
	if !validIdentifier(table) {
		return "", fmt.Errorf("%w %q", ErrInvalidTable, table)
	}
	if !validIdentifier(column) || !res.HasColumn(column) {
		return "", fmt.Errorf("%w %q on %s", ErrUnknownColumn, column, res.Name)
	}
	col := dialect.quote(column)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s IS NOT NULL ORDER BY %s", col, dialect.quote(table), col, col)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return query, nil
}

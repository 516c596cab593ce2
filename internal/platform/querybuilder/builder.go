// Package querybuilder renders the small set of Postgres statements the
// repositories need, numbering placeholders as $1, $2, ...
package querybuilder

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// statement accumulates SQL text and its positional arguments.
type statement struct {
	sql  strings.Builder
	args []any
}

func (s *statement) write(parts ...string) {
	for _, part := range parts {
		s.sql.WriteString(part)
	}
}

func (s *statement) bind(value any) {
	s.args = append(s.args, value)
	s.sql.WriteString("$" + strconv.Itoa(len(s.args)))
}

// bindExpr writes expr with each ? bound to the next of values. Surplus
// markers are left as written.
func (s *statement) bindExpr(expr string, values []any) {
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && len(values) > 0 {
			s.bind(values[0])
			values = values[1:]
			continue
		}
		s.sql.WriteByte(expr[i])
	}
}

func (s *statement) where(conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			s.write(" WHERE ")
		} else {
			s.write(" AND ")
		}
		c.render(s)
	}
}

// Condition is one AND-ed predicate of a WHERE clause.
type Condition interface {
	render(s *statement)
}

type comparison struct {
	column string
	op     string
	value  any
}

func (c comparison) render(s *statement) {
	s.write(c.column, " ", c.op, " ")
	s.bind(c.value)
}

func Eq(column string, value any) Condition  { return comparison{column, "=", value} }
func Gte(column string, value any) Condition { return comparison{column, ">=", value} }
func Lte(column string, value any) Condition { return comparison{column, "<=", value} }
func Lt(column string, value any) Condition  { return comparison{column, "<", value} }

type membership struct {
	column string
	values []any
}

// In matches nothing when values is empty.
func In(column string, values []any) Condition {
	return membership{column: column, values: values}
}

func (c membership) render(s *statement) {
	if len(c.values) == 0 {
		s.write("1=0")
		return
	}
	s.write(c.column, " IN (")
	for i, v := range c.values {
		if i > 0 {
			s.write(", ")
		}
		s.bind(v)
	}
	s.write(")")
}

type nullCheck string

func IsNull(column string) Condition { return nullCheck(column) }

func (c nullCheck) render(s *statement) {
	s.write(string(c), " IS NULL")
}

type expression struct {
	sql  string
	args []any
}

// Expr is a raw predicate whose ? markers bind args in order.
func Expr(sql string, args ...any) Condition {
	return expression{sql: sql, args: args}
}

func (c expression) render(s *statement) {
	s.bindExpr(c.sql, c.args)
}

type SelectBuilder struct {
	columns []string
	table   string
	filters []Condition
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.filters = append(b.filters, conditions...)
	return b
}

func (b *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, terms...)
	return b
}

// Limit of zero or less renders no LIMIT clause.
func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(b.columns) == 0:
		return "", nil, errors.New("select columns are required")
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("select table is required")
	}

	var s statement
	s.write("SELECT ", strings.Join(b.columns, ", "), " FROM ", b.table)
	s.where(b.filters)
	if len(b.orderBy) > 0 {
		s.write(" ORDER BY ", strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		s.write(" LIMIT ", strconv.Itoa(b.limit))
	}
	return s.sql.String(), s.args, nil
}

// Raw is an insert value rendered verbatim instead of as a placeholder.
type Raw string

// ConflictSet is one assignment of an ON CONFLICT DO UPDATE clause.
type ConflictSet struct {
	Column string
	Expr   string
}

// Coalesce keeps the stored value when the incoming one is NULL.
func Coalesce(table, column string) ConflictSet {
	return ConflictSet{Column: column, Expr: fmt.Sprintf("COALESCE(EXCLUDED.%s, %s.%s)", column, table, column)}
}

// Overwrite always takes the incoming value, NULL included.
func Overwrite(column string) ConflictSet {
	return ConflictSet{Column: column, Expr: "EXCLUDED." + column}
}

func SetRaw(column, expr string) ConflictSet {
	return ConflictSet{Column: column, Expr: expr}
}

// InsertBuilder renders a single-row INSERT, optionally as an upsert.
type InsertBuilder struct {
	table    string
	columns  []string
	values   []any
	conflict []string
	updates  []ConflictSet
	suffix   string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.values = append([]any(nil), values...)
	return b
}

// OnConflict names the unique columns the upsert resolves on. Without
// DoUpdate the conflict is ignored.
func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) DoUpdate(sets ...ConflictSet) *InsertBuilder {
	b.updates = append(b.updates, sets...)
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(b.table) == "":
		return "", nil, errors.New("insert table is required")
	case len(b.columns) == 0:
		return "", nil, errors.New("insert columns are required")
	case len(b.values) != len(b.columns):
		return "", nil, fmt.Errorf("insert has %d values for %d columns", len(b.values), len(b.columns))
	}

	var s statement
	s.write("INSERT INTO ", b.table, " (", strings.Join(b.columns, ", "), ") VALUES (")
	for i, value := range b.values {
		if i > 0 {
			s.write(", ")
		}
		if raw, ok := value.(Raw); ok {
			s.write(string(raw))
			continue
		}
		s.bind(value)
	}
	s.write(")")

	if len(b.conflict) > 0 {
		s.write(" ON CONFLICT (", strings.Join(b.conflict, ", "), ")")
		if len(b.updates) == 0 {
			s.write(" DO NOTHING")
		}
		for i, set := range b.updates {
			if i == 0 {
				s.write(" DO UPDATE SET ")
			} else {
				s.write(", ")
			}
			s.write(set.Column, " = ", set.Expr)
		}
	}
	if b.suffix != "" {
		s.write(" ", b.suffix)
	}
	return s.sql.String(), s.args, nil
}

// Package sqlgen builds parameterized SQLite DML from compiled fragments.
package sqlgen

import (
	"strings"
)

// Builder accumulates the clauses of one SELECT, UPDATE or DELETE.
// Bind values are kept alongside the clause that owns them so the final
// argument list always matches placeholder order.
type Builder struct {
	table     string
	selects   []string
	sets      []string
	setArgs   []any
	wheres    []string
	whereArgs []any
	orderBys  []string
	limit     string
	limitArgs []any
}

// New creates a builder for a table.
func New(table string) *Builder {
	return &Builder{table: table}
}

// Table returns the table the builder targets.
func (b *Builder) Table() string {
	return b.table
}

// Select adds columns to the SELECT list. No columns selects *.
func (b *Builder) Select(cols ...string) *Builder {
	for _, col := range cols {
		b.selects = append(b.selects, QuoteIdent(col))
	}
	return b
}

// Set adds a column assignment for UPDATE.
func (b *Builder) Set(col string, value any) *Builder {
	b.sets = append(b.sets, QuoteIdent(col)+"=?")
	b.setArgs = append(b.setArgs, value)
	return b
}

// Where adds a condition. Conditions are joined with AND.
// An empty condition is ignored.
func (b *Builder) Where(sql string, args ...any) *Builder {
	if sql == "" {
		return b
	}
	b.wheres = append(b.wheres, sql)
	b.whereArgs = append(b.whereArgs, args...)
	return b
}

// OrderBy adds compiled ORDER BY expressions.
func (b *Builder) OrderBy(exprs ...string) *Builder {
	b.orderBys = append(b.orderBys, exprs...)
	return b
}

// Limit sets the compiled LIMIT clause body, e.g. "? OFFSET ?".
func (b *Builder) Limit(sql string, args ...any) *Builder {
	b.limit = sql
	b.limitArgs = args
	return b
}

// HasWhere reports whether any condition was added.
func (b *Builder) HasWhere() bool {
	return len(b.wheres) > 0
}

// ----------------------------------------------------------------------------
// Rendering
// ----------------------------------------------------------------------------

// SelectSQL renders the SELECT statement and its bind values.
func (b *Builder) SelectSQL() (string, []any) {
	var buf strings.Builder
	buf.WriteString("SELECT ")
	if len(b.selects) == 0 {
		buf.WriteString("*")
	} else {
		buf.WriteString(strings.Join(b.selects, ","))
	}
	buf.WriteString(" FROM ")
	buf.WriteString(QuoteIdent(b.table))
	b.writeWhere(&buf)
	if len(b.orderBys) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBys, ","))
	}
	if b.limit != "" {
		buf.WriteString(" LIMIT ")
		buf.WriteString(b.limit)
	}

	args := append(append([]any{}, b.whereArgs...), b.limitArgs...)
	return buf.String(), args
}

// UpdateSQL renders the UPDATE statement and its bind values.
func (b *Builder) UpdateSQL() (string, []any) {
	var buf strings.Builder
	buf.WriteString("UPDATE ")
	buf.WriteString(QuoteIdent(b.table))
	buf.WriteString(" SET ")
	buf.WriteString(strings.Join(b.sets, ","))
	b.writeWhere(&buf)

	args := append(append([]any{}, b.setArgs...), b.whereArgs...)
	return buf.String(), args
}

// DeleteSQL renders the DELETE statement and its bind values.
func (b *Builder) DeleteSQL() (string, []any) {
	var buf strings.Builder
	buf.WriteString("DELETE FROM ")
	buf.WriteString(QuoteIdent(b.table))
	b.writeWhere(&buf)

	return buf.String(), append([]any{}, b.whereArgs...)
}

func (b *Builder) writeWhere(buf *strings.Builder) {
	if len(b.wheres) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(b.wheres, " AND "))
}

// ----------------------------------------------------------------------------
// Standalone Helpers
// ----------------------------------------------------------------------------

// Insert renders an INSERT of the given columns with one placeholder each.
// No columns inserts a row of defaults.
func Insert(table string, cols ...string) string {
	if len(cols) == 0 {
		return "INSERT INTO " + QuoteIdent(table) + " DEFAULT VALUES"
	}
	return "INSERT INTO " + QuoteIdent(table) + " (" + Columns(cols...) + ") VALUES (" + Placeholders(len(cols)) + ")"
}

// QuoteIdent returns the identifier in double quotes, doubling embedded quotes.
func QuoteIdent(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `""`)
	return `"` + escaped + `"`
}

// Columns returns a comma-separated list of quoted column names.
// Example: Columns("a", "b") -> `"a","b"`
func Columns(cols ...string) string {
	parts := make([]string, len(cols))
	for i, col := range cols {
		parts[i] = QuoteIdent(col)
	}
	return strings.Join(parts, ",")
}

// Placeholders returns n comma-separated question marks.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Package strutil provides the SQL naming and quoting helpers used
// throughout the relite codebase.
package strutil

import (
	"strings"
)

// -----------------------------------------------------------------------------
// SQL Naming
// -----------------------------------------------------------------------------

// SchemaSeparator joins a schema and a table into one SQLite table name.
const SchemaSeparator = "___"

// QualifyTable returns schema___table or just table if no schema.
// Example: QualifyTable("stuff", "people") -> "stuff___people"
func QualifyTable(schema, table string) string {
	if schema == "" {
		return table
	}
	return schema + SchemaSeparator + table
}

// IndexName returns the index name for a table and a logical constraint name.
// Dashes in the logical name are folded to underscores.
// Example: IndexName("simple", "name-label") -> "simple_name_label"
func IndexName(table, name string) string {
	return table + "_" + strings.ReplaceAll(name, "-", "_")
}

// ComputedColumn returns the column name for a value extracted from a
// structured column.
// Example: ComputedColumn("stuff", "a__0") -> "stuff__a__0"
func ComputedColumn(column, path string) string {
	return column + "__" + path
}

// RebuildTable returns the temporary name a table is renamed to while it is rebuilt.
// Example: RebuildTable("simple") -> "_old_simple"
func RebuildTable(table string) string {
	return "_old_" + table
}

// -----------------------------------------------------------------------------
// Quoting
// -----------------------------------------------------------------------------

// QuoteLiteral quotes a SQL text literal with single quotes, escaping embedded quotes.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

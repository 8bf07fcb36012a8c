// Package dialect provides database-specific SQL generation.
package dialect

import (
	"github.com/hlop3z/relite/internal/ast"
)

// Dialect generates DDL for one database engine.
// Each method returns SQL text; bind values are never needed for DDL.
type Dialect interface {
	// Name returns the dialect name (e.g., "sqlite").
	Name() string

	// QuoteIdent quotes an identifier (table, column, index name).
	QuoteIdent(name string) string

	// ColumnSQL compiles one field into column-definition fragments: the
	// field's own column followed by one computed column per extraction.
	// Injected fields produce no fragments.
	ColumnSQL(field *ast.FieldDef) []string

	// CreateTableSQL compiles a table into its CREATE TABLE statement
	// followed by its unique and plain index statements.
	CreateTableSQL(table *ast.TableDef) []string

	// CreateIndexSQL creates a unique or plain index for a constraint.
	CreateIndexSQL(table *ast.TableDef, con ast.Constraint, unique bool) string

	// DropIndexSQL drops the index backing a named constraint.
	DropIndexSQL(table *ast.TableDef, name string) string

	// AddColumnSQL adds one column fragment to a table.
	AddColumnSQL(table *ast.TableDef, fragment string) string

	// RenameTableSQL renames a table.
	RenameTableSQL(from, to string) string

	// DropTableSQL drops a table.
	DropTableSQL(table string) string

	// CopyRowsSQL copies rows between tables column by column.
	CopyRowsSQL(from, to string, cols []ColumnCopy) string

	// SupportsTransactionalDDL returns true if DDL can be rolled back.
	SupportsTransactionalDDL() bool
}

// ColumnCopy maps a source column onto a target column.
type ColumnCopy struct {
	From string
	To   string
}

// Get returns a dialect by name.
// Returns nil if the dialect is not supported.
func Get(name string) Dialect {
	switch name {
	case "sqlite", "sqlite3":
		return SQLite()
	default:
		return nil
	}
}

// Names returns the names of supported dialects.
func Names() []string {
	return []string{"sqlite"}
}

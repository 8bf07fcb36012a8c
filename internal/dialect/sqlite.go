package dialect

import (
	"strings"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/strutil"
)

// sqlite implements the Dialect interface for SQLite.
type sqlite struct{}

// SQLite returns the SQLite dialect implementation.
func SQLite() Dialect {
	return &sqlite{}
}

func (d *sqlite) Name() string {
	return "sqlite"
}

func (d *sqlite) QuoteIdent(name string) string {
	return quoteIdentDoubleQuote(name)
}

// SQLite runs DDL inside transactions like any other statement.
func (d *sqlite) SupportsTransactionalDDL() bool {
	return true
}

// -----------------------------------------------------------------------------
// Columns
// -----------------------------------------------------------------------------

// ColumnSQL renders, in order: quoted column, affinity, NOT NULL unless the
// field is nullable, PRIMARY KEY, DEFAULT. Extractions follow as generated
// columns.
//
//	"id" INTEGER NOT NULL PRIMARY KEY DEFAULT 0
//	"meta__a" INTEGER AS (json_extract("meta",'$.a'))
func (d *sqlite) ColumnSQL(field *ast.FieldDef) []string {
	if field.Inject {
		return nil
	}
	if field.Definition != "" {
		return []string{field.Definition}
	}

	var b strings.Builder
	b.WriteString(d.QuoteIdent(field.Column()))
	b.WriteString(" ")
	b.WriteString(field.Kind.Affinity())
	if !field.IsNullable() {
		b.WriteString(" NOT NULL")
	}
	if field.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	if field.HasDefault() {
		b.WriteString(" DEFAULT ")
		b.WriteString(buildDefaultValueSQL(field.Kind, field.Default, SQLiteBooleans))
	}

	fragments := []string{b.String()}
	for _, e := range field.Extractions() {
		fragments = append(fragments, d.computedColumnSQL(field, e))
	}
	return fragments
}

func (d *sqlite) computedColumnSQL(field *ast.FieldDef, e ast.Extraction) string {
	return d.QuoteIdent(e.Column) + " " + e.Kind.Affinity() +
		" AS (json_extract(" + d.QuoteIdent(field.Column()) + "," + strutil.QuoteLiteral(e.Path.Pointer()) + "))"
}

// -----------------------------------------------------------------------------
// Tables
// -----------------------------------------------------------------------------

func (d *sqlite) CreateTableSQL(table *ast.TableDef) []string {
	if len(table.Definition) > 0 {
		return append([]string(nil), table.Definition...)
	}

	var fragments []string
	for _, f := range table.Fields {
		fragments = append(fragments, d.ColumnSQL(f)...)
	}

	stmts := []string{buildCreateTableSQL(table.Table(), fragments, d.QuoteIdent)}
	for _, con := range table.Unique {
		stmts = append(stmts, d.CreateIndexSQL(table, con, true))
	}
	for _, con := range table.Index {
		stmts = append(stmts, d.CreateIndexSQL(table, con, false))
	}
	return stmts
}

func (d *sqlite) CreateIndexSQL(table *ast.TableDef, con ast.Constraint, unique bool) string {
	cols := make([]string, len(con.Fields))
	for i, name := range con.Fields {
		col, ok := table.ColumnFor(name)
		if !ok {
			col = name
		}
		cols[i] = col
	}
	return buildCreateIndexSQL(strutil.IndexName(table.Table(), con.Name), table.Table(), cols, unique, d.QuoteIdent)
}

func (d *sqlite) DropIndexSQL(table *ast.TableDef, name string) string {
	return buildDropIndexSQL(strutil.IndexName(table.Table(), name), d.QuoteIdent)
}

func (d *sqlite) AddColumnSQL(table *ast.TableDef, fragment string) string {
	return buildAddColumnSQL(table.Table(), fragment, d.QuoteIdent)
}

func (d *sqlite) RenameTableSQL(from, to string) string {
	return buildRenameTableSQL(from, to, d.QuoteIdent)
}

func (d *sqlite) DropTableSQL(table string) string {
	return buildDropTableSQL(table, d.QuoteIdent)
}

func (d *sqlite) CopyRowsSQL(from, to string, cols []ColumnCopy) string {
	return buildCopyRowsSQL(from, to, cols, d.QuoteIdent)
}

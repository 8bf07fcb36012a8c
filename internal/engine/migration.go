// Package engine compiles table definitions and deltas into SQLite DDL
// and plans which ledger migrations still have to run.
package engine

import (
	"log/slog"
	"slices"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/dialect"
	"github.com/hlop3z/relite/internal/strutil"
)

// Compiler turns table definitions and deltas into DDL statements.
// It holds no state beyond its configuration and is safe for concurrent use.
type Compiler struct {
	dialect dialect.Dialect
	logger  *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithDialect overrides the SQL dialect.
func WithDialect(d dialect.Dialect) Option {
	return func(c *Compiler) {
		c.dialect = d
	}
}

// WithLogger sets the logger used for compile-time warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// NewCompiler creates a compiler for SQLite.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		dialect: dialect.SQLite(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dialect returns the compiler's dialect.
func (c *Compiler) Dialect() dialect.Dialect {
	return c.dialect
}

// Define compiles the statements that create a table and its indexes.
func (c *Compiler) Define(table *ast.TableDef) ([]ast.Statement, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return statements(c.dialect.CreateTableSQL(table)), nil
}

// CompileMigration compiles a delta against its before state with the
// default compiler.
func CompileMigration(before *ast.TableDef, delta *ast.Delta) ([]ast.Statement, error) {
	return NewCompiler().Migrate(before, delta)
}

// Migrate compiles the statements that move a table from its before state
// through a delta, preserving rows.
//
// Simple field additions become ALTER TABLE ADD COLUMN. Removing or
// changing a field, or adding one SQLite cannot add in place, rebuilds the
// table: rename to _old_<table>, drop its indexes, create the after state,
// copy the shared columns and drop the renamed table. Constraint-only
// changes drop and create the affected indexes by name.
func (c *Compiler) Migrate(before *ast.TableDef, delta *ast.Delta) ([]ast.Statement, error) {
	if err := ValidateDelta(before, delta); err != nil {
		return nil, err
	}
	if delta.Empty() {
		return nil, nil
	}

	after, err := c.afterState(before, delta)
	if err != nil {
		return nil, err
	}

	addable := slices.IndexFunc(delta.Fields.Add, func(f *ast.FieldDef) bool { return !addableInPlace(f) }) < 0
	rebuild := len(delta.Fields.Remove) > 0 || len(delta.Fields.Change) > 0 || !addable

	var sqls []string
	current := before
	if addable && len(delta.Fields.Add) > 0 {
		current = before.Clone()
		for _, f := range delta.Fields.Add {
			for _, fragment := range c.dialect.ColumnSQL(f) {
				sqls = append(sqls, c.dialect.AddColumnSQL(before, fragment))
			}
			current.Fields = append(current.Fields, f)
		}
	}

	if rebuild {
		sqls = append(sqls, c.rebuild(current, after, delta)...)
	} else {
		sqls = append(sqls, c.reindex(before, after, delta.Unique, true)...)
		sqls = append(sqls, c.reindex(before, after, delta.Index, false)...)
	}

	return statements(sqls), nil
}

// addableInPlace reports whether ALTER TABLE ADD COLUMN can add the field:
// SQLite refuses primary keys and NOT NULL columns without a default.
func addableInPlace(f *ast.FieldDef) bool {
	if f.Inject {
		return true
	}
	if f.Definition != "" || f.PrimaryKey {
		return false
	}
	return f.IsNullable() || f.HasDefault()
}

// afterState applies the delta, points constraints at renamed fields and
// drops constraints that lost a field.
func (c *Compiler) afterState(before *ast.TableDef, delta *ast.Delta) (*ast.TableDef, error) {
	after := delta.Apply(before)

	renamed := make(map[string]string)
	for _, name := range delta.ChangedNames() {
		if to := delta.Fields.Change[name].Name; to != name {
			renamed[name] = to
		}
	}

	added := ToSet(append(delta.Unique.Add.Names(), delta.Index.Add.Names()...))
	prune := func(kind string, cons ast.Constraints) (ast.Constraints, error) {
		out := make(ast.Constraints, 0, len(cons))
		for _, con := range cons {
			fields := make([]string, len(con.Fields))
			missing := ""
			for i, name := range con.Fields {
				if to, ok := renamed[name]; ok {
					name = to
				}
				fields[i] = name
				if _, ok := after.ColumnFor(name); !ok && missing == "" {
					missing = name
				}
			}
			if missing != "" {
				if added[con.Name] {
					return nil, alerr.NewUnknownFieldError("index", after.Table(), missing, after.FieldNames()).
						With(kind, con.Name)
				}
				c.logger.Warn("dropping constraint on removed field",
					"table", after.Table(), kind, con.Name, "field", missing)
				continue
			}
			out = append(out, ast.Constraint{Name: con.Name, Fields: fields})
		}
		return out, nil
	}

	var err error
	if after.Unique, err = prune("unique", after.Unique); err != nil {
		return nil, err
	}
	if after.Index, err = prune("index", after.Index); err != nil {
		return nil, err
	}
	return after, nil
}

// rebuild recreates the table in its after state and copies rows across.
// current is the table as it exists once in-place additions ran.
func (c *Compiler) rebuild(current, after *ast.TableDef, delta *ast.Delta) []string {
	table := current.Table()
	old := strutil.RebuildTable(table)

	sqls := []string{c.dialect.RenameTableSQL(table, old)}
	for _, con := range current.Unique {
		sqls = append(sqls, c.dialect.DropIndexSQL(current, con.Name))
	}
	for _, con := range current.Index {
		sqls = append(sqls, c.dialect.DropIndexSQL(current, con.Name))
	}
	sqls = append(sqls, c.dialect.CreateTableSQL(after)...)
	if cols := copyColumns(current, after, delta); len(cols) > 0 {
		sqls = append(sqls, c.dialect.CopyRowsSQL(old, table, cols))
	}
	sqls = append(sqls, c.dialect.DropTableSQL(old))
	return sqls
}

// copyColumns pairs every stored column of the after state with its source
// in the current table, sorted by target column. Changed fields that were
// renamed copy from their old column.
func copyColumns(current, after *ast.TableDef, delta *ast.Delta) []dialect.ColumnCopy {
	have := ToSet(current.StoredColumns())

	source := make(map[string]string)
	for _, name := range delta.ChangedNames() {
		changed := delta.Fields.Change[name]
		old := current.Field(name)
		if changed.Inject || old.Inject {
			continue
		}
		source[changed.Column()] = old.Column()
	}

	targets := after.StoredColumns()
	slices.Sort(targets)

	var cols []dialect.ColumnCopy
	for _, to := range targets {
		from, ok := source[to]
		if !ok {
			if !have[to] {
				continue
			}
			from = to
		}
		cols = append(cols, dialect.ColumnCopy{From: from, To: to})
	}
	return cols
}

// reindex drops and creates the indexes a constraint delta touches
// without rebuilding the table.
func (c *Compiler) reindex(before, after *ast.TableDef, delta ast.ConstraintDelta, unique bool) []string {
	var sqls []string
	for _, name := range delta.Remove {
		sqls = append(sqls, c.dialect.DropIndexSQL(before, name))
	}

	cons := after.Index
	if unique {
		cons = after.Unique
	}
	create := func(name string) {
		if con, ok := cons.Get(name); ok {
			sqls = append(sqls, c.dialect.CreateIndexSQL(after, con, unique))
		}
	}

	for _, from := range delta.RenamedNames() {
		sqls = append(sqls, c.dialect.DropIndexSQL(before, from))
		create(delta.Rename[from])
	}
	for _, con := range delta.Add {
		create(con.Name)
	}
	return sqls
}

func statements(sqls []string) []ast.Statement {
	out := make([]ast.Statement, len(sqls))
	for i, s := range sqls {
		out[i] = ast.Stmt(s)
	}
	return out
}

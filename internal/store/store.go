// Package store executes compiled definitions, predicates and searches
// against a SQLite database handle.
package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/internal/query"
	"github.com/hlop3z/relite/internal/sqlgen"
)

// Record maps field names to values.
type Record map[string]any

// Mode says how many records a retrieval expects.
type Mode int

const (
	// Many returns every matching record.
	Many Mode = iota
	// One expects at most one record.
	One
)

// Retrieval describes a read.
type Retrieval struct {
	Criteria []ast.Predicate
	Like     string // free-text search over the model's label fields
	Chunk    int    // parent ids resolved per relation label, 0 for the default
	Sort     []string
	Limit    int
	Offset   int
	Mode     Mode
	Verify   bool // with One, no match is ErrNotFound instead of a nil record
}

// Result holds the records a retrieval found.
type Result struct {
	Records []Record
	// Overflow reports the result may be incomplete: a search hit its
	// chunk limit or the rows reached the requested limit.
	Overflow bool
}

// Record returns the first record, or nil.
func (r *Result) Record() Record {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Source runs reads and writes on one database handle.
type Source struct {
	db       *sql.DB
	compiler *engine.Compiler
	searcher *query.Searcher
	logger   *slog.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Source) {
		s.logger = l
	}
}

// WithCompiler overrides the definition compiler.
func WithCompiler(c *engine.Compiler) Option {
	return func(s *Source) {
		s.compiler = c
	}
}

// New creates a source over db. The source resolves parent ids for its
// own searches.
func New(db *sql.DB, opts ...Option) *Source {
	s := &Source{
		db:       db,
		compiler: engine.NewCompiler(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.searcher = query.NewSearcher(s)
	return s
}

// DB returns the underlying handle.
func (s *Source) DB() *sql.DB {
	return s.db
}

// Define creates the tables of the given models.
func (s *Source) Define(ctx context.Context, models ...*query.Model) error {
	var stmts []ast.Statement
	for _, m := range models {
		define, err := s.compiler.Define(m.Table)
		if err != nil {
			return err
		}
		stmts = append(stmts, define...)
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, st := range stmts {
			if err := s.exec(ctx, tx, "define", "", st); err != nil {
				return err
			}
		}
		return nil
	})
}

// Create inserts records. Auto-numbered primary keys missing from a
// record are filled in from the inserted row id.
func (s *Source) Create(ctx context.Context, model *query.Model, records ...Record) error {
	table := model.Table
	pk := table.PrimaryKey()

	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, rec := range records {
			var cols []string
			var args []any
			for _, f := range table.Fields {
				if !f.Writable() {
					continue
				}
				v, ok := rec[f.Name]
				if !ok {
					if fill, filled := writeDefault(f); filled {
						v, ok = fill, true
						rec[f.Name] = fill
					}
				}
				if !ok {
					continue
				}
				enc, err := encode(f, v)
				if err != nil {
					return err
				}
				cols = append(cols, f.Column())
				args = append(args, enc)
			}

			sqlText := sqlgen.Insert(table.Table(), cols...)
			s.logger.Debug("executing statement", "sql", sqlText)
			res, err := tx.ExecContext(ctx, sqlText, args...)
			if err != nil {
				return alerr.WrapSQL(err, "create", table.Table(), sqlText)
			}

			if pk != nil && pk.AutoIncrement && rec[pk.Name] == nil {
				id, err := res.LastInsertId()
				if err != nil {
					return alerr.WrapSQL(err, "read inserted id", table.Table(), sqlText)
				}
				rec[pk.Name] = id
			}
		}
		return nil
	})
}

// Retrieve reads records matching the retrieval.
func (s *Source) Retrieve(ctx context.Context, model *query.Model, r Retrieval) (*Result, error) {
	table := model.Table
	fields := columnFields(table)

	b := sqlgen.New(table.Table())
	for _, f := range fields {
		b.Select(f.Column())
	}
	if err := s.where(b, table, r.Criteria); err != nil {
		return nil, err
	}

	overflow := false
	if r.Like != "" {
		search, over, err := s.searcher.Compile(ctx, model, r.Like, r.Chunk)
		if err != nil {
			return nil, err
		}
		b.Where(search.SQL, search.Args...)
		overflow = over
	}

	order, err := query.CompileSort(table, r.Sort)
	if err != nil {
		return nil, err
	}
	b.OrderBy(order...)
	if limit := query.CompileLimit(r.Limit, r.Offset); limit.SQL != "" {
		b.Limit(limit.SQL, limit.Args...)
	}

	sqlText, args := b.SelectSQL()
	records, err := s.query(ctx, table.Table(), sqlText, args, fields)
	if err != nil {
		return nil, err
	}

	if r.Mode == One {
		switch {
		case len(records) > 1:
			return nil, alerr.Newf(alerr.ErrAmbiguousQuery, "%d records retrieved, expected one", len(records)).
				WithTable(table.Table())
		case len(records) == 0 && r.Verify:
			return nil, alerr.New(alerr.ErrNotFound, "no record retrieved").
				WithTable(table.Table())
		}
		return &Result{Records: records, Overflow: overflow}, nil
	}

	if r.Limit > 0 && len(records) >= r.Limit {
		overflow = true
	}
	return &Result{Records: records, Overflow: overflow}, nil
}

// Update sets values on every record matching the criteria and returns
// how many rows changed.
func (s *Source) Update(ctx context.Context, model *query.Model, criteria []ast.Predicate, values Record) (int64, error) {
	table := model.Table
	if len(criteria) == 0 {
		return 0, alerr.New(alerr.ErrUnsupportedOperation, "update needs criteria").
			WithTable(table.Table())
	}

	for name := range values {
		if table.Field(name) == nil {
			return 0, alerr.NewUnknownFieldError("update", table.Table(), name, table.FieldNames())
		}
	}
	if len(values) == 0 {
		return 0, nil
	}

	b := sqlgen.New(table.Table())
	for _, f := range table.Fields {
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if !f.Writable() {
			return 0, alerr.New(alerr.ErrValidation, "field is not writable").
				WithTable(table.Table()).
				WithField(f.Name)
		}
		enc, err := encode(f, v)
		if err != nil {
			return 0, err
		}
		b.Set(f.Column(), enc)
	}
	if err := s.where(b, table, criteria); err != nil {
		return 0, err
	}

	sqlText, args := b.UpdateSQL()
	return s.affected(ctx, "update", table.Table(), sqlText, args)
}

// Delete removes every record matching the criteria and returns how many
// rows were removed.
func (s *Source) Delete(ctx context.Context, model *query.Model, criteria []ast.Predicate) (int64, error) {
	table := model.Table
	if len(criteria) == 0 {
		return 0, alerr.New(alerr.ErrUnsupportedOperation, "delete needs criteria").
			WithTable(table.Table())
	}

	b := sqlgen.New(table.Table())
	if err := s.where(b, table, criteria); err != nil {
		return 0, err
	}
	sqlText, args := b.DeleteSQL()
	return s.affected(ctx, "delete", table.Table(), sqlText, args)
}

// ResolveIDs returns up to limit values of a parent field for the rows a
// compiled search matches.
func (s *Source) ResolveIDs(ctx context.Context, parent *query.Model, field string, where ast.Statement, limit int) ([]any, error) {
	f := parent.Table.Field(field)
	if f == nil {
		return nil, alerr.NewUnknownFieldError("resolve", parent.Table.Table(), field, parent.Table.FieldNames())
	}

	b := sqlgen.New(parent.Table.Table()).Select(f.Column()).Where(where.SQL, where.Args...)
	if l := query.CompileLimit(limit, 0); l.SQL != "" {
		b.Limit(l.SQL, l.Args...)
	}
	sqlText, args := b.SelectSQL()

	records, err := s.query(ctx, parent.Table.Table(), sqlText, args, []*ast.FieldDef{f})
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(records))
	for i, rec := range records {
		ids[i] = rec[f.Name]
	}
	return ids, nil
}

// ----------------------------------------------------------------------------
// Execution helpers
// ----------------------------------------------------------------------------

func (s *Source) where(b *sqlgen.Builder, table *ast.TableDef, criteria []ast.Predicate) error {
	frags, err := query.CompileCriteria(table, criteria)
	if err != nil {
		return err
	}
	for _, frag := range frags {
		b.Where(frag.SQL, frag.Args...)
	}
	return nil
}

func (s *Source) query(ctx context.Context, table, sqlText string, args []any, fields []*ast.FieldDef) ([]Record, error) {
	s.logger.Debug("executing query", "sql", sqlText)
	rows, err := s.db.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, alerr.WrapSQL(err, "retrieve", table, sqlText)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		values := make([]any, len(fields))
		ptrs := make([]any, len(fields))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, alerr.WrapSQL(err, "scan row", table, sqlText)
		}

		rec := make(Record, len(fields))
		for i, f := range fields {
			v, err := decode(f, values[i])
			if err != nil {
				return nil, err
			}
			rec[f.Name] = v
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.WrapSQL(err, "iterate rows", table, sqlText)
	}
	return records, nil
}

func (s *Source) affected(ctx context.Context, op, table, sqlText string, args []any) (int64, error) {
	s.logger.Debug("executing statement", "sql", sqlText)
	res, err := s.db.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, alerr.WrapSQL(err, op, table, sqlText)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, alerr.WrapSQL(err, op, table, sqlText)
	}
	return n, nil
}

func (s *Source) exec(ctx context.Context, ex engine.Execer, op, table string, st ast.Statement) error {
	s.logger.Debug("executing statement", "sql", st.SQL)
	if _, err := ex.ExecContext(ctx, st.SQL, st.Args...); err != nil {
		return alerr.WrapSQL(err, op, table, st.SQL)
	}
	return nil
}

func (s *Source) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return alerr.Wrap(alerr.ErrSQLTransaction, err, "failed to begin transaction")
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback() // rollback error ignored; fn or commit error is returned
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return alerr.Wrap(alerr.ErrSQLTransaction, err, "failed to commit transaction")
	}
	committed = true
	return nil
}

// columnFields returns the fields that own a column, in table order.
func columnFields(table *ast.TableDef) []*ast.FieldDef {
	var out []*ast.FieldDef
	for _, f := range table.Fields {
		if !f.Inject {
			out = append(out, f)
		}
	}
	return out
}

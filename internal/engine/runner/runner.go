// Package runner applies migration files to a database exactly once per
// stamp, tracked by a ledger table.
package runner

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/dialect"
	"github.com/hlop3z/relite/internal/engine"
)

// Runner executes a migrations directory against a database.
type Runner struct {
	db            *sql.DB
	dir           string
	ledger        *engine.Ledger
	transactional bool
	logger        *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLedgerTable overrides the ledger table name.
func WithLedgerTable(name string) Option {
	return func(r *Runner) {
		r.ledger = engine.NewLedger(name, dialect.SQLite())
	}
}

// WithTransactional controls whether each unit of work runs in its own
// transaction. When disabled a stamp is recorded before its payload runs
// and a failure leaves it recorded.
func WithTransactional(on bool) Option {
	return func(r *Runner) {
		r.transactional = on
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a runner for the migrations in dir.
// Returns nil if db is nil.
func NewRunner(db *sql.DB, dir string, opts ...Option) *Runner {
	if db == nil {
		return nil
	}
	r := &Runner{
		db:            db,
		dir:           dir,
		ledger:        engine.NewLedger("", dialect.SQLite()),
		transactional: true,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ledger returns the ledger the runner records stamps in.
func (r *Runner) Ledger() *engine.Ledger {
	return r.ledger
}

// Migrate brings the database up to date and reports whether any work
// was done.
//
// On a database without a ledger the ledger is created, every known stamp
// is recorded in one batch and the baseline runs in their place. Otherwise
// each unrecorded stamp is recorded and its payload runs, in ascending
// order.
func (r *Runner) Migrate(ctx context.Context) (bool, error) {
	plan, baseline, err := r.Plan(ctx)
	if err != nil {
		return false, err
	}

	switch plan.Kind {
	case engine.PlanColdStart:
		return r.coldStart(ctx, plan, baseline)
	case engine.PlanPending:
		for _, m := range plan.Migrations {
			if err := r.runOne(ctx, m); err != nil {
				return false, err
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

// Plan computes what Migrate would do without changing the database.
func (r *Runner) Plan(ctx context.Context) (*engine.Plan, *engine.Baseline, error) {
	initialized, applied, err := r.applied(ctx)
	if err != nil {
		return nil, nil, err
	}
	baseline, all, err := Load(r.dir)
	if err != nil {
		return nil, nil, err
	}
	return engine.PlanMigrations(all, applied, initialized), baseline, nil
}

// applied returns the recorded stamps, or false when there is no ledger.
func (r *Runner) applied(ctx context.Context) (bool, []string, error) {
	exists, err := r.ledger.Exists(ctx, r.db)
	if err != nil || !exists {
		return false, nil, err
	}
	applied, err := r.ledger.Applied(ctx, r.db)
	if err != nil {
		return false, nil, err
	}
	return true, applied, nil
}

func (r *Runner) coldStart(ctx context.Context, plan *engine.Plan, baseline *engine.Baseline) (bool, error) {
	if baseline == nil {
		if len(plan.Stamps) == 0 {
			return false, nil
		}
		return false, alerr.New(alerr.ErrMigrationNotFound, "baseline definition is missing").
			With("dir", r.dir).
			With("file", engine.BaselineFile)
	}

	start := time.Now()
	err := r.unit(ctx, func(ex engine.Execer) error {
		if err := r.ledger.EnsureTable(ctx, ex); err != nil {
			return err
		}
		if err := r.ledger.Record(ctx, ex, plan.Stamps...); err != nil {
			return err
		}
		return r.execute(ctx, ex, fromText(baseline.Statements))
	})
	if err != nil {
		return false, alerr.Wrap(alerr.ErrMigrationFailed, err, "cold start failed").
			With("path", baseline.Path)
	}

	r.logger.Info("cold start",
		"stamps", len(plan.Stamps),
		"statements", len(baseline.Statements),
		"duration", time.Since(start))
	return true, nil
}

func (r *Runner) runOne(ctx context.Context, m engine.Migration) error {
	start := time.Now()
	err := r.unit(ctx, func(ex engine.Execer) error {
		if err := r.ledger.Record(ctx, ex, m.Stamp); err != nil {
			return err
		}
		return r.execute(ctx, ex, fromText(m.Statements))
	})
	if err != nil {
		return alerr.Wrap(alerr.ErrMigrationFailed, err, "migration failed").
			WithStamp(m.Stamp).
			With("path", m.Path)
	}

	r.logger.Info("applied migration",
		"stamp", m.Stamp,
		"statements", len(m.Statements),
		"duration", time.Since(start))
	return nil
}

// Exec runs compiled statements as one unit of work.
func (r *Runner) Exec(ctx context.Context, stmts []ast.Statement) error {
	if len(stmts) == 0 {
		return nil
	}
	return r.unit(ctx, func(ex engine.Execer) error {
		return r.execute(ctx, ex, stmts)
	})
}

// Status returns the ledger status of every known or recorded stamp.
func (r *Runner) Status(ctx context.Context) ([]engine.MigrationStatus, error) {
	_, applied, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	_, all, err := Load(r.dir)
	if err != nil {
		return nil, err
	}
	return engine.GetStatus(all, applied), nil
}

// Fingerprint returns the merkle root of the migrations directory.
func (r *Runner) Fingerprint() (string, error) {
	baseline, all, err := Load(r.dir)
	if err != nil {
		return "", err
	}
	return Fingerprint(baseline, all)
}

// unit runs fn inside a transaction, or directly on the database when the
// runner is not transactional.
func (r *Runner) unit(ctx context.Context, fn func(engine.Execer) error) error {
	if !r.transactional {
		return fn(r.db)
	}
	return r.runInTransaction(ctx, fn)
}

func (r *Runner) runInTransaction(ctx context.Context, fn func(engine.Execer) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return alerr.Wrap(alerr.ErrSQLTransaction, err, "failed to begin transaction")
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback() // rollback error ignored; the unit error is returned
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

func (r *Runner) execute(ctx context.Context, ex engine.Execer, stmts []ast.Statement) error {
	for _, s := range stmts {
		r.logger.Debug("executing statement", "sql", s.SQL)
		if _, err := ex.ExecContext(ctx, s.SQL, s.Args...); err != nil {
			return alerr.WrapSQL(err, "execute statement", "", s.SQL)
		}
	}
	return nil
}

func fromText(sqls []string) []ast.Statement {
	out := make([]ast.Statement, len(sqls))
	for i, s := range sqls {
		out[i] = ast.Stmt(s)
	}
	return out
}

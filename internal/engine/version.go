package engine

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/dialect"
)

// Ledger table schema:
// CREATE TABLE IF NOT EXISTS "_relite_migration" (
//     "stamp" TEXT NOT NULL UNIQUE
// )

// DefaultLedgerTable is the default name of the ledger table.
const DefaultLedgerTable = "_relite_migration"

// Execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Ledger records which migration stamps a database has applied.
type Ledger struct {
	table   string
	dialect dialect.Dialect
}

// NewLedger creates a ledger stored in the given table.
// An empty name selects DefaultLedgerTable.
func NewLedger(table string, d dialect.Dialect) *Ledger {
	if table == "" {
		table = DefaultLedgerTable
	}
	return &Ledger{table: table, dialect: d}
}

// Table returns the ledger table name.
func (l *Ledger) Table() string {
	return l.table
}

// CreateTableSQL returns the CREATE TABLE statement for the ledger.
func (l *Ledger) CreateTableSQL() string {
	return "CREATE TABLE IF NOT EXISTS " + l.dialect.QuoteIdent(l.table) +
		" (" + l.dialect.QuoteIdent("stamp") + " TEXT NOT NULL UNIQUE)"
}

// EnsureTable creates the ledger table if it doesn't exist.
func (l *Ledger) EnsureTable(ctx context.Context, db Execer) error {
	query := l.CreateTableSQL()
	if _, err := db.ExecContext(ctx, query); err != nil {
		return alerr.Wrap(alerr.ErrLedger, err, "failed to create ledger table").
			WithTable(l.table).
			WithSQL(query)
	}
	return nil
}

// ExistsSQL returns the query that counts ledger tables named by its one
// bind.
func (l *Ledger) ExistsSQL() string {
	return "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
}

// Exists reports whether the ledger table has been created. A missing
// ledger marks a database that has never been migrated.
func (l *Ledger) Exists(ctx context.Context, db Querier) (bool, error) {
	query := l.ExistsSQL()
	rows, err := db.QueryContext(ctx, query, l.table)
	if err != nil {
		return false, alerr.Wrap(alerr.ErrLedger, err, "failed to look up ledger table").
			WithTable(l.table).
			WithSQL(query)
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return false, alerr.Wrap(alerr.ErrLedger, err, "failed to scan ledger lookup")
		}
	}
	if err := rows.Err(); err != nil {
		return false, alerr.Wrap(alerr.ErrLedger, err, "error iterating ledger lookup")
	}
	return n > 0, nil
}

// SelectSQL returns the query that lists recorded stamps.
func (l *Ledger) SelectSQL() string {
	return "SELECT " + l.dialect.QuoteIdent("stamp") + " FROM " + l.dialect.QuoteIdent(l.table) +
		" ORDER BY " + l.dialect.QuoteIdent("stamp")
}

// Applied returns every recorded stamp in ascending order.
func (l *Ledger) Applied(ctx context.Context, db Querier) ([]string, error) {
	query := l.SelectSQL()
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrLedger, err, "failed to query ledger").
			WithTable(l.table).
			WithSQL(query)
	}
	defer rows.Close()

	var stamps []string
	for rows.Next() {
		var stamp string
		if err := rows.Scan(&stamp); err != nil {
			return nil, alerr.Wrap(alerr.ErrLedger, err, "failed to scan ledger row")
		}
		stamps = append(stamps, stamp)
	}
	if err := rows.Err(); err != nil {
		return nil, alerr.Wrap(alerr.ErrLedger, err, "error iterating ledger rows")
	}
	return stamps, nil
}

// InsertSQL returns one INSERT recording n stamps.
func (l *Ledger) InsertSQL(n int) string {
	values := strings.TrimSuffix(strings.Repeat("(?),", n), ",")
	return "INSERT INTO " + l.dialect.QuoteIdent(l.table) +
		" (" + l.dialect.QuoteIdent("stamp") + ") VALUES " + values
}

// Record inserts stamps in one batch.
func (l *Ledger) Record(ctx context.Context, db Execer, stamps ...string) error {
	if len(stamps) == 0 {
		return nil
	}
	query := l.InsertSQL(len(stamps))
	args := make([]any, len(stamps))
	for i, s := range stamps {
		args[i] = s
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return alerr.Wrap(alerr.ErrLedger, err, "failed to record migration stamps").
			WithTable(l.table).
			With("stamps", stamps)
	}
	return nil
}

package engine

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/dialect"
	"github.com/hlop3z/relite/internal/testutil"
)

func TestLedgerSQL(t *testing.T) {
	l := NewLedger("", dialect.SQLite())

	assert.Equal(t, DefaultLedgerTable, l.Table())
	assert.Equal(t, `CREATE TABLE IF NOT EXISTS "_relite_migration" ("stamp" TEXT NOT NULL UNIQUE)`, l.CreateTableSQL())
	assert.Equal(t, `SELECT "stamp" FROM "_relite_migration" ORDER BY "stamp"`, l.SelectSQL())
	assert.Equal(t, `INSERT INTO "_relite_migration" ("stamp") VALUES (?),(?),(?)`, l.InsertSQL(3))
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupSQLite(t)
	l := NewLedger("ledger", dialect.SQLite())

	require.NoError(t, l.EnsureTable(ctx, db))
	require.NoError(t, l.EnsureTable(ctx, db), "EnsureTable is idempotent")

	applied, err := l.Applied(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	require.NoError(t, l.Record(ctx, db, "S2", "S1"))
	require.NoError(t, l.Record(ctx, db))

	applied, err = l.Applied(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, applied)

	err = l.Record(ctx, db, "S1")
	require.Error(t, err, "stamps are unique")
	assert.True(t, alerr.Is(err, alerr.ErrLedger))
}

func TestLedgerExists(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupSQLite(t)
	l := NewLedger("ledger", dialect.SQLite())

	exists, err := l.Exists(ctx, db)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, l.EnsureTable(ctx, db))
	exists, err = l.Exists(ctx, db)
	require.NoError(t, err)
	assert.True(t, exists, "an empty ledger still exists")
}

func TestLedgerWithMock(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewLedger("", dialect.SQLite())

	mock.ExpectExec(regexp.QuoteMeta(l.CreateTableSQL())).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(l.SelectSQL())).
		WillReturnRows(sqlmock.NewRows([]string{"stamp"}).AddRow("S1").AddRow("S2"))
	mock.ExpectExec(regexp.QuoteMeta(l.InsertSQL(2))).
		WithArgs("S3", "S4").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, l.EnsureTable(ctx, db))
	applied, err := l.Applied(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, applied)
	require.NoError(t, l.Record(ctx, db, "S3", "S4"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLedgerErrors(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewLedger("", dialect.SQLite())
	boom := errors.New("disk I/O error")

	mock.ExpectExec(regexp.QuoteMeta(l.CreateTableSQL())).WillReturnError(boom)
	mock.ExpectQuery(regexp.QuoteMeta(l.SelectSQL())).WillReturnError(boom)

	err = l.EnsureTable(ctx, db)
	assert.True(t, alerr.Is(err, alerr.ErrLedger))
	assert.ErrorIs(t, err, boom)

	_, err = l.Applied(ctx, db)
	assert.True(t, alerr.Is(err, alerr.ErrLedger))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/internal/testutil"
)

func newMockRunner(t *testing.T, files map[string]string, opts ...Option) (*Runner, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	return NewRunner(db, testutil.MigrationDir(t, files), opts...), mock
}

// expectLedger expects the ledger lookup, and the stamp query when the
// ledger exists.
func expectLedger(mock sqlmock.Sqlmock, l *engine.Ledger, exists bool, stamps ...string) {
	count := 0
	if exists {
		count = 1
	}
	mock.ExpectQuery(l.ExistsSQL()).WithArgs(l.Table()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
	if !exists {
		return
	}
	rows := sqlmock.NewRows([]string{"stamp"})
	for _, s := range stamps {
		rows.AddRow(s)
	}
	mock.ExpectQuery(l.SelectSQL()).WillReturnRows(rows)
}

func TestColdStartStatementOrder(t *testing.T) {
	r, mock := newMockRunner(t, map[string]string{
		"definition.sql":   "CREATE TABLE a (x);\n\nCREATE TABLE b (y);\n\n",
		"migration-S2.sql": "SELECT 2;\n\n",
		"migration-S1.sql": "SELECT 1;\n\n",
	})
	l := r.Ledger()

	expectLedger(mock, l, false)
	mock.ExpectBegin()
	mock.ExpectExec(l.CreateTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(l.InsertSQL(2)).WithArgs("S1", "S2").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("CREATE TABLE a (x)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE b (y)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	did, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.True(t, did)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingStatementOrder(t *testing.T) {
	r, mock := newMockRunner(t, map[string]string{
		"definition.sql":   "CREATE TABLE a (x);\n\n",
		"migration-S1.sql": "SELECT 1;\n\n",
		"migration-S2.sql": "SELECT 2;\n\n",
		"migration-S3.sql": "SELECT 3;\n\nSELECT 33;\n\n",
	})
	l := r.Ledger()

	expectLedger(mock, l, true, "S1")
	for _, step := range []struct {
		stamp string
		sqls  []string
	}{
		{"S2", []string{"SELECT 2"}},
		{"S3", []string{"SELECT 3", "SELECT 33"}},
	} {
		mock.ExpectBegin()
		mock.ExpectExec(l.InsertSQL(1)).WithArgs(step.stamp).WillReturnResult(sqlmock.NewResult(0, 1))
		for _, sql := range step.sqls {
			mock.ExpectExec(sql).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		mock.ExpectCommit()
	}

	did, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.True(t, did)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingFailureStopsAndRollsBack(t *testing.T) {
	r, mock := newMockRunner(t, map[string]string{
		"definition.sql":   "CREATE TABLE a (x);\n\n",
		"migration-S1.sql": "SELECT 1;\n\n",
		"migration-S2.sql": "SELECT 2;\n\n",
		"migration-S3.sql": "SELECT 3;\n\n",
	})
	l := r.Ledger()
	boom := errors.New("no such table: b")

	expectLedger(mock, l, true, "S1")
	mock.ExpectBegin()
	mock.ExpectExec(l.InsertSQL(1)).WithArgs("S2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("SELECT 2").WillReturnError(boom)
	mock.ExpectRollback()

	did, err := r.Migrate(context.Background())
	require.Error(t, err)
	assert.False(t, did)
	assert.True(t, alerr.Is(err, alerr.ErrMigrationFailed))
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNonTransactionalSkipsBegin(t *testing.T) {
	r, mock := newMockRunner(t, map[string]string{
		"definition.sql":   "CREATE TABLE a (x);\n\n",
		"migration-S1.sql": "SELECT 1;\n\n",
	}, WithTransactional(false))
	l := r.Ledger()

	expectLedger(mock, l, false)
	mock.ExpectExec(l.CreateTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(l.InsertSQL(1)).WithArgs("S1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("CREATE TABLE a (x)").WillReturnResult(sqlmock.NewResult(0, 0))

	did, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.True(t, did)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBaselineOnlyRunsOnce(t *testing.T) {
	r, mock := newMockRunner(t, map[string]string{
		"definition.sql": "CREATE TABLE a (x);\n\n",
	})
	l := r.Ledger()

	expectLedger(mock, l, false)
	mock.ExpectBegin()
	mock.ExpectExec(l.CreateTableSQL()).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE a (x)").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()
	expectLedger(mock, l, true)

	did, err := r.Migrate(context.Background())
	require.NoError(t, err)
	assert.True(t, did)

	did, err = r.Migrate(context.Background())
	require.NoError(t, err)
	assert.False(t, did, "an existing empty ledger is not a cold start")
	assert.NoError(t, mock.ExpectationsWereMet())
}

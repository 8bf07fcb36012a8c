package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "modernc.org/sqlite"
)

// SetupSQLite creates an in-memory SQLite database for testing.
// The pool is pinned to one connection so every query sees the same
// in-memory database. The connection is closed when the test completes.
func SetupSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite connection: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// SetupSQLiteFile creates a file-based SQLite database for testing.
// The file is automatically removed when the test completes.
func SetupSQLiteFile(t *testing.T, path string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open sqlite file: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Fatalf("failed to ping sqlite: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.Remove(path)
	})

	return db
}

// AssertTableExists checks that a table exists.
func AssertTableExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()

	if !objectExists(t, db, "table", table) {
		t.Errorf("expected table %q to exist, but it does not", table)
	}
}

// AssertTableNotExists checks that a table does not exist.
func AssertTableNotExists(t *testing.T, db *sql.DB, table string) {
	t.Helper()

	if objectExists(t, db, "table", table) {
		t.Errorf("expected table %q to not exist, but it does", table)
	}
}

// AssertIndexExists checks that an index exists on a table.
func AssertIndexExists(t *testing.T, db *sql.DB, table, index string) {
	t.Helper()

	var name string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = 'index' AND tbl_name = ? AND name = ?
	`, table, index).Scan(&name)
	if err == sql.ErrNoRows {
		t.Errorf("expected index %q to exist on table %q, but it does not", index, table)
		return
	}
	if err != nil {
		t.Fatalf("failed to check if index exists: %v", err)
	}
}

// AssertIndexNotExists checks that an index does not exist anywhere.
func AssertIndexNotExists(t *testing.T, db *sql.DB, index string) {
	t.Helper()

	if objectExists(t, db, "index", index) {
		t.Errorf("expected index %q to not exist, but it does", index)
	}
}

func objectExists(t *testing.T, db *sql.DB, kind, name string) bool {
	t.Helper()

	var got string
	err := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type = ? AND name = ?
	`, kind, name).Scan(&got)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("failed to check if %s exists: %v", kind, err)
	}
	return true
}

// Columns returns the column names of a table in order, including
// generated columns.
func Columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM pragma_table_xinfo(?)", table)
	if err != nil {
		t.Fatalf("failed to get table info: %v", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		cols = append(cols, name)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("failed to read column info: %v", err)
	}
	return cols
}

// ExecSQL executes a SQL statement and fails the test on error.
func ExecSQL(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()

	_, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("failed to execute SQL:\n%s\nerror: %v", query, err)
	}
}

// AssertRowCount checks that a table has the expected number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}

	if count != expected {
		t.Errorf("expected %d rows in %s, got %d", expected, table, count)
	}
}

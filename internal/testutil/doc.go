// Package testutil provides test helpers for the relite project.
//
// This package includes:
//   - In-memory and file-backed SQLite setup on modernc.org/sqlite
//   - SQL assertion helpers for comparing and validating SQL statements
//   - Error assertion helpers for checking error codes
//   - Fixtures for migration directories
//
// # Example Usage
//
//	func TestMyFeature(t *testing.T) {
//	    db := testutil.SetupSQLite(t)
//
//	    testutil.ExecSQL(t, db, `CREATE TABLE people (id INTEGER PRIMARY KEY)`)
//	    testutil.AssertTableExists(t, db, "people")
//
//	    got := generateSQL()
//	    testutil.AssertSQL(t, got, "SELECT * FROM people")
//	}
package testutil

package testutil

import (
	"path/filepath"
	"testing"
)

// MigrationDir writes a migrations directory from file name to content
// and returns its path.
//
// Example:
//
//	dir := testutil.MigrationDir(t, map[string]string{
//	    "definition.sql":   "CREATE TABLE a (x);\n\n",
//	    "migration-S1.sql": "ALTER TABLE a ADD COLUMN y;\n\n",
//	})
func MigrationDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := TempDir(t)
	for name, content := range files {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

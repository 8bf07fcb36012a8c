package testutil

import (
	"testing"
)

// SkipIfShort skips the test if running in short mode.
// Use this for tests that touch the filesystem or run many statements.
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// Must fails the test immediately if err is not nil.
func Must(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// MustValue returns value, failing the test immediately if err is not nil.
//
// Example:
//
//	stmts, err := engine.CompileMigration(before, delta)
//	stmts = testutil.MustValue(t, stmts, err)
func MustValue[T any](t *testing.T, value T, err error) T {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return value
}

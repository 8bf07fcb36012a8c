package testutil

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/hlop3z/relite/internal/alerr"
)

// whitespace matches runs of whitespace for SQL normalization.
var whitespace = regexp.MustCompile(`\s+`)

// -----------------------------------------------------------------------------
// SQL Assertions
// -----------------------------------------------------------------------------

// NormalizeSQL normalizes a SQL string for comparison.
// It collapses whitespace runs into a single space, trims leading and
// trailing whitespace, and converts to uppercase.
func NormalizeSQL(sql string) string {
	sql = whitespace.ReplaceAllString(sql, " ")
	sql = strings.TrimSpace(sql)
	return strings.ToUpper(sql)
}

// AssertSQL compares two SQL strings after normalizing them.
func AssertSQL(t *testing.T, got, want string) {
	t.Helper()

	gotNorm := NormalizeSQL(got)
	wantNorm := NormalizeSQL(want)

	if gotNorm != wantNorm {
		t.Errorf("SQL mismatch:\ngot:  %s\nwant: %s\n\noriginal got:\n%s\n\noriginal want:\n%s",
			gotNorm, wantNorm, got, want)
	}
}

// AssertSQLContains checks if a SQL string contains a substring.
// Both strings are normalized before comparison.
func AssertSQLContains(t *testing.T, sql, substr string) {
	t.Helper()

	sqlNorm := NormalizeSQL(sql)
	substrNorm := NormalizeSQL(substr)

	if !strings.Contains(sqlNorm, substrNorm) {
		t.Errorf("SQL does not contain expected substring:\nsql:    %s\nsubstr: %s\n\noriginal sql:\n%s",
			sqlNorm, substrNorm, sql)
	}
}

// AssertStatements compares statement lists exactly, reporting the first difference.
func AssertStatements(t *testing.T, got, want []string) {
	t.Helper()

	if slices.Equal(got, want) {
		return
	}
	for i := 0; i < len(got) && i < len(want); i++ {
		if got[i] != want[i] {
			t.Errorf("statement %d differs:\ngot:  %s\nwant: %s", i, got[i], want[i])
			break
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d statements, want %d\ngot:\n%s", len(got), len(want), strings.Join(got, "\n"))
	}
}

// -----------------------------------------------------------------------------
// Error Assertions
// -----------------------------------------------------------------------------

// AssertError checks that an error has the expected error code.
func AssertError(t *testing.T, err error, code alerr.Code) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error with code %s, got nil", code)
		return
	}

	gotCode := alerr.CodeOf(err)
	if gotCode != code {
		t.Errorf("expected error code %s, got %s\nerror: %v", code, gotCode, err)
	}
}

// AssertNoError checks that an error is nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Errorf("expected no error, got: %v", err)
	}
}

// AssertErrorContains checks that an error message contains a substring.
func AssertErrorContains(t *testing.T, err error, substr string) {
	t.Helper()

	if err == nil {
		t.Errorf("expected error containing %q, got nil", substr)
		return
	}

	if !strings.Contains(err.Error(), substr) {
		t.Errorf("error message does not contain %q\ngot: %v", substr, err)
	}
}

// -----------------------------------------------------------------------------
// Test Helpers
// -----------------------------------------------------------------------------

// TempDir creates a temporary directory that is automatically cleaned up.
func TempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "relite-test-*")
	if err != nil {
		t.Fatalf("failed to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		os.RemoveAll(dir)
	})

	return dir
}

// WriteFile writes content to a file, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create parent directories: %v", err)
	}

	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}

// AssertEqual is a generic equality check for testing.
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()

	if got != want {
		t.Errorf("values not equal:\ngot:  %v\nwant: %v", got, want)
	}
}

// AssertSliceEqual compares two slices element by element.
func AssertSliceEqual[T comparable](t *testing.T, got, want []T) {
	t.Helper()

	if !slices.Equal(got, want) {
		t.Errorf("slices not equal:\ngot:  %v\nwant: %v", got, want)
	}
}

// AssertTrue checks that a condition is true.
func AssertTrue(t *testing.T, condition bool, msg string) {
	t.Helper()

	if !condition {
		t.Errorf("expected true: %s", msg)
	}
}

// AssertFalse checks that a condition is false.
func AssertFalse(t *testing.T, condition bool, msg string) {
	t.Helper()

	if condition {
		t.Errorf("expected false: %s", msg)
	}
}

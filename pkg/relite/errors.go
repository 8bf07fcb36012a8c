// Package relite is the public API for compiling SQLite schema definitions
// and migrations, running the migration ledger and reading and writing
// records.
package relite

import (
	"errors"
	"fmt"

	"github.com/hlop3z/relite/internal/alerr"
)

// Sentinel errors for common error conditions.
// Use errors.Is() to check for these errors.
var (
	// ErrMissingDatabaseURL is returned when no database URL is provided.
	ErrMissingDatabaseURL = errors.New("relite: database URL required")

	// ErrConnectionFailed is returned when the database cannot be opened.
	ErrConnectionFailed = errors.New("relite: connection failed")

	// ErrCompileOnly is returned by database operations of a compile-only client.
	ErrCompileOnly = errors.New("relite: client has no database connection")

	// ErrValidation is returned for invalid definitions and deltas.
	ErrValidation = alerr.New(alerr.ErrValidation, "validation failed")

	// ErrAmbiguousQuery is returned when a single-record read matches many.
	ErrAmbiguousQuery = alerr.New(alerr.ErrAmbiguousQuery, "ambiguous query")

	// ErrNotFound is returned when a verified single-record read matches none.
	ErrNotFound = alerr.New(alerr.ErrNotFound, "not found")

	// ErrUnsupportedOperation is returned for update or delete without criteria.
	ErrUnsupportedOperation = alerr.New(alerr.ErrUnsupportedOperation, "unsupported operation")

	// ErrInvalidPredicate is returned for unusable predicates.
	ErrInvalidPredicate = alerr.New(alerr.ErrInvalidPredicate, "invalid predicate")

	// ErrMigrationFailed is returned when a migration unit fails.
	ErrMigrationFailed = alerr.New(alerr.ErrMigrationFailed, "migration failed")

	// ErrMigrationNotFound is returned when migration files are missing.
	ErrMigrationNotFound = alerr.New(alerr.ErrMigrationNotFound, "migration not found")
)

// ConnectionError provides detailed information about a database connection error.
type ConnectionError struct {
	// URL is the database location.
	URL string

	// Cause is the underlying error from the database driver.
	Cause error
}

// Error returns a formatted error message.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("relite: failed to open %s: %v", e.URL, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnectionFailed
}

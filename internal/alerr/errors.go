// Package alerr defines the coded errors relite reports. Every error has a
// stable code, a short message, key/value context for diagnostics, help
// lines for the CLI and, when it wraps a driver or I/O failure, the
// original error as its cause.
package alerr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code is a stable, machine-readable error code: E, a category digit and
// a three digit number.
type Code string

const (
	// Definitions and deltas (E1xxx).
	ErrValidation  Code = "E1001" // definition or delta is inconsistent
	ErrInvalidKind Code = "E1002" // field kind is not one of the known kinds
	ErrInvalidPath Code = "E1003" // nested path cannot be parsed

	// Records and queries (E2xxx).
	ErrAmbiguousQuery       Code = "E2001" // more than one record for a single-record read
	ErrNotFound             Code = "E2002" // no record for a verified single-record read
	ErrUnsupportedOperation Code = "E2003" // update or delete without criteria
	ErrInvalidPredicate     Code = "E2004" // operator or value cannot be compiled

	// Migration files and the ledger (E3xxx).
	ErrMigrationFailed   Code = "E3001" // baseline or stamp did not apply
	ErrMigrationNotFound Code = "E3002" // migrations directory or baseline is missing
	ErrLedger            Code = "E3003" // ledger table cannot be read or written
	ErrFingerprint       Code = "E3004" // migration set cannot be fingerprinted

	// Database (E4xxx).
	ErrSQLExecution   Code = "E4001" // statement failed
	ErrSQLTransaction Code = "E4003" // begin or commit failed

	// Configuration (E5xxx).
	ErrConfig Code = "E5001" // configuration is missing or malformed
)

// Error is a coded relite error.
type Error struct {
	code    Code
	message string
	context map[string]any
	helps   []string
	cause   error
}

// New returns an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{code: code, message: msg, context: make(map[string]any)}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap returns an error with the given code that keeps err as its cause.
// A nil err gives the same result as New.
func Wrap(code Code, err error, msg string) *Error {
	e := New(code, msg)
	e.cause = err
	return e
}

// Wrapf is Wrap with a formatted message.
func Wrapf(code Code, err error, format string, args ...any) *Error {
	return Wrap(code, err, fmt.Sprintf(format, args...))
}

// WrapSQL wraps a driver error as ErrSQLExecution, naming the operation
// and, when known, the table and statement.
//
//	WrapSQL(err, "create", "stuff___people", query)
func WrapSQL(err error, op, table, sql string) *Error {
	e := Wrap(ErrSQLExecution, err, "failed to "+op)
	if table != "" {
		e.WithTable(table)
	}
	if sql != "" {
		e.WithSQL(sql)
	}
	return e
}

// Error renders the code, message, sorted context and cause:
//
//	[E1001] cannot remove unknown field "fie"
//	  field: fie
//	  table: stuff___simple
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.code, e.message)

	keys := make([]string, 0, len(e.context))
	for k := range e.context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n  %s: %v", k, e.context[k])
	}

	if e.cause != nil {
		fmt.Fprintf(&b, "\n  cause: %v", e.cause)
	}
	return b.String()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error with the same code, so errors.Is works against
// sentinel values built with New.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.code == e.code
}

// Code returns the error code.
func (e *Error) Code() Code { return e.code }

// Message returns the message without context.
func (e *Error) Message() string { return e.message }

// Context returns the diagnostic context.
func (e *Error) Context() map[string]any { return e.context }

// Cause returns the wrapped error, if any.
func (e *Error) Cause() error { return e.cause }

// Helps returns the help lines in the order they were added.
func (e *Error) Helps() []string { return e.helps }

// With sets one context value.
func (e *Error) With(key string, value any) *Error {
	if e.context == nil {
		e.context = make(map[string]any)
	}
	e.context[key] = value
	return e
}

// WithTable names the table involved.
func (e *Error) WithTable(table string) *Error { return e.With("table", table) }

// WithField names the field involved.
func (e *Error) WithField(name string) *Error { return e.With("field", name) }

// WithSQL records the statement that failed.
func (e *Error) WithSQL(sql string) *Error { return e.With("sql", sql) }

// WithStamp names the migration stamp involved.
func (e *Error) WithStamp(stamp string) *Error { return e.With("stamp", stamp) }

// WithHelp adds a help line. Empty lines are ignored so suggestion
// results can be passed through unchecked.
func (e *Error) WithHelp(help string) *Error {
	if help != "" {
		e.helps = append(e.helps, help)
	}
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

// Is reports whether err's chain holds an error with the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

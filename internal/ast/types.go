// Package ast defines the abstract definitions relite compiles to SQL:
// field kinds, nested paths, field and table definitions, migration deltas,
// query predicates and the statements compilers produce.
package ast

import (
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
)

// Kind is the value kind of a field.
type Kind int

const (
	// KindText holds strings. It is the zero value.
	KindText Kind = iota

	// KindBool holds booleans, stored as 0/1.
	KindBool

	// KindInt holds integers.
	KindInt

	// KindReal holds floating point numbers.
	KindReal

	// KindStructured holds maps and lists, stored as JSON text.
	KindStructured
)

// kindNames maps accepted spellings to kinds.
var kindNames = map[string]Kind{
	"text":       KindText,
	"str":        KindText,
	"string":     KindText,
	"bool":       KindBool,
	"boolean":    KindBool,
	"int":        KindInt,
	"integer":    KindInt,
	"real":       KindReal,
	"float":      KindReal,
	"structured": KindStructured,
	"dict":       KindStructured,
	"list":       KindStructured,
	"json":       KindStructured,
}

// ParseKind returns the kind for a name. Unknown names are structured.
func ParseKind(name string) Kind {
	if k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return KindStructured
}

// String returns the canonical name of a kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindReal:
		return "real"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// Affinity returns the SQLite storage affinity for a kind.
func (k Kind) Affinity() string {
	switch k {
	case KindBool, KindInt:
		return "INTEGER"
	case KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if k < KindText || k > KindStructured {
		return nil, alerr.Newf(alerr.ErrInvalidKind, "invalid kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	*k = ParseKind(string(b))
	return nil
}

// Statement is one SQL statement and its positional bind values.
type Statement struct {
	SQL  string
	Args []any
}

// Stmt builds a statement.
func Stmt(sql string, args ...any) Statement {
	return Statement{SQL: sql, Args: args}
}

// SQL returns the SQL text of each statement.
func SQL(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}

// Package validate checks the identifiers of table definitions against
// the names relite derives from them: qualified table names, computed
// columns, criteria keys and rebuild tables.
package validate

import (
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/strutil"
)

// pathSeparator joins a column with an extraction path and a criteria
// key with its path and operator.
const pathSeparator = "__"

// reservedPrefixes are table name prefixes SQLite or the migration
// compiler already use.
var reservedPrefixes = []string{"sqlite_", strutil.RebuildTable("")}

// -----------------------------------------------------------------------------
// Identifiers
// -----------------------------------------------------------------------------

// Schema validates a schema name. Schemas are flattened into the table
// name, so they cannot contain the schema separator.
func Schema(s string) error {
	if s == "" {
		return nil
	}
	return qualifiable("schema", s)
}

// TableName validates a logical table name.
func TableName(s string) error {
	if s == "" {
		return alerr.New(alerr.ErrValidation, "table name is required")
	}
	if err := qualifiable("table", s); err != nil {
		return err
	}
	lower := strings.ToLower(s)
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return alerr.Newf(alerr.ErrValidation, "table name %q uses the reserved prefix %q", s, prefix).
				WithTable(s)
		}
	}
	return nil
}

// FieldName validates a field name. Field names cannot contain the path
// separator: it would collide with computed column names and make
// field__path__op criteria ambiguous.
func FieldName(s string) error {
	if s == "" {
		return alerr.New(alerr.ErrValidation, "field name is required")
	}
	if strings.Contains(s, pathSeparator) {
		return alerr.Newf(alerr.ErrValidation, "field name %q cannot contain %q", s, pathSeparator).
			WithField(s).
			WithHelp("use a single underscore, e.g. " + strings.ReplaceAll(s, pathSeparator, "_"))
	}
	return nil
}

// ConstraintName validates a unique or index name.
func ConstraintName(kind, s string) error {
	if strings.TrimSpace(s) == "" {
		return alerr.Newf(alerr.ErrValidation, "%s name is required", kind)
	}
	return nil
}

func qualifiable(kind, s string) error {
	if strings.Contains(s, strutil.SchemaSeparator) {
		return alerr.Newf(alerr.ErrValidation, "%s name %q cannot contain %q", kind, s, strutil.SchemaSeparator).
			With(kind, s)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Batch Validation
// -----------------------------------------------------------------------------

// Errors collects the first error of several checks.
type Errors []error

// Add appends err if it is not nil.
func (e *Errors) Add(err error) {
	if err != nil {
		*e = append(*e, err)
	}
}

// First returns the first collected error, or nil.
func (e Errors) First() error {
	if len(e) == 0 {
		return nil
	}
	return e[0]
}

package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/strutil"
)

// QuoteIdentFunc is a function that quotes an identifier.
type QuoteIdentFunc func(name string) string

// writeQuotedList writes comma-separated quoted identifiers to the builder.
func writeQuotedList(b *strings.Builder, items []string, quote QuoteIdentFunc) {
	for i, item := range items {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quote(item))
	}
}

// quoteIdentDoubleQuote quotes with double quotes, doubling embedded quotes.
func quoteIdentDoubleQuote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// BooleanLiterals holds the dialect's representation of true and false.
type BooleanLiterals struct {
	True  string
	False string
}

// SQLiteBooleans uses 1/0.
var SQLiteBooleans = BooleanLiterals{True: "1", False: "0"}

// buildDefaultValueSQL renders a static default literal chosen by the
// field's kind. Booleans use the dialect literals, numbers are written
// verbatim and everything else is single-quoted text.
func buildDefaultValueSQL(kind ast.Kind, value any, bools BooleanLiterals) string {
	switch kind {
	case ast.KindBool:
		if truthy(value) {
			return bools.True
		}
		return bools.False
	case ast.KindInt, ast.KindReal:
		if n, ok := numberLiteral(value); ok {
			return n
		}
	}
	return strutil.QuoteLiteral(fmt.Sprint(value))
}

func numberLiteral(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), true
	case bool:
		if v {
			return "1", true
		}
		return "0", true
	}
	return "", false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	n, ok := numberLiteral(value)
	return ok && n != "0"
}

// buildCreateTableSQL generates CREATE TABLE IF NOT EXISTS with one
// fragment per line.
func buildCreateTableSQL(table string, fragments []string, quoteIdent QuoteIdentFunc) string {
	var b strings.Builder

	b.WriteString("CREATE TABLE IF NOT EXISTS ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (\n  ")
	b.WriteString(strings.Join(fragments, ",\n  "))
	b.WriteString("\n)")

	return b.String()
}

// buildCreateIndexSQL generates CREATE [UNIQUE] INDEX IF NOT EXISTS.
func buildCreateIndexSQL(name, table string, cols []string, unique bool, quoteIdent QuoteIdentFunc) string {
	var b strings.Builder

	b.WriteString("CREATE ")
	if unique {
		b.WriteString("UNIQUE ")
	}
	b.WriteString("INDEX IF NOT EXISTS ")
	b.WriteString(quoteIdent(name))
	b.WriteString(" ON ")
	b.WriteString(quoteIdent(table))
	b.WriteString(" (")
	writeQuotedList(&b, cols, quoteIdent)
	b.WriteString(")")

	return b.String()
}

// buildDropIndexSQL generates DROP INDEX IF EXISTS.
func buildDropIndexSQL(name string, quoteIdent QuoteIdentFunc) string {
	return "DROP INDEX IF EXISTS " + quoteIdent(name)
}

// buildAddColumnSQL generates ALTER TABLE ADD COLUMN.
func buildAddColumnSQL(table, fragment string, quoteIdent QuoteIdentFunc) string {
	return "ALTER TABLE " + quoteIdent(table) + " ADD COLUMN " + fragment
}

// buildRenameTableSQL generates ALTER TABLE RENAME TO.
func buildRenameTableSQL(from, to string, quoteIdent QuoteIdentFunc) string {
	return "ALTER TABLE " + quoteIdent(from) + " RENAME TO " + quoteIdent(to)
}

// buildDropTableSQL generates DROP TABLE.
func buildDropTableSQL(table string, quoteIdent QuoteIdentFunc) string {
	return "DROP TABLE " + quoteIdent(table)
}

// buildCopyRowsSQL generates INSERT INTO to (...) SELECT ... FROM from.
func buildCopyRowsSQL(from, to string, cols []ColumnCopy, quoteIdent QuoteIdentFunc) string {
	var b strings.Builder

	targets := make([]string, len(cols))
	for i, c := range cols {
		targets[i] = c.To
	}

	b.WriteString("INSERT INTO ")
	b.WriteString(quoteIdent(to))
	b.WriteString(" (")
	writeQuotedList(&b, targets, quoteIdent)
	b.WriteString(") SELECT ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(quoteIdent(c.From))
		if c.From != c.To {
			b.WriteString(" AS ")
			b.WriteString(quoteIdent(c.To))
		}
	}
	b.WriteString(" FROM ")
	b.WriteString(quoteIdent(from))

	return b.String()
}

// Package query compiles predicates, free-text search, sort and limit
// into parameterized SQLite fragments.
package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/sqlgen"
)

const (
	sqlFalse = "FALSE"
	sqlTrue  = "TRUE"
)

var comparisons = map[ast.Op]string{
	ast.OpEq:  "=",
	ast.OpGt:  ">",
	ast.OpGte: ">=",
	ast.OpLt:  "<",
	ast.OpLte: "<=",
}

// CompilePredicate compiles one predicate against a field into a WHERE
// fragment and its bind values.
//
// A nested path resolves to the field's computed column when the path was
// declared as an extraction, and otherwise to json_extract with the path
// bound ahead of the value.
func CompilePredicate(field *ast.FieldDef, p ast.Predicate) (ast.Statement, error) {
	if field.Inject {
		return ast.Statement{}, alerr.New(alerr.ErrInvalidPredicate, "injected field has no column to filter on").
			WithField(field.Name)
	}

	op := p.Op
	if op == "" {
		op = ast.OpEq
	}
	if !op.Valid() {
		return ast.Statement{}, alerr.Newf(alerr.ErrInvalidPredicate, "unknown operator %q", op).
			WithField(field.Name)
	}

	col, args, err := target(field, p.Path)
	if err != nil {
		return ast.Statement{}, err
	}

	switch op {
	case ast.OpIn, ast.OpNotIn, ast.OpNe:
		values := toSlice(p.Value)
		if len(values) == 0 {
			if op == ast.OpIn {
				return ast.Stmt(sqlFalse), nil
			}
			return ast.Stmt(sqlTrue), nil
		}
		keyword := " IN ("
		if op != ast.OpIn {
			keyword = " NOT IN ("
		}
		return ast.Stmt(col+keyword+sqlgen.Placeholders(len(values))+")", append(args, values...)...), nil
	case ast.OpLike, ast.OpNotLike:
		if p.Value == nil {
			return ast.Statement{}, alerr.Newf(alerr.ErrInvalidPredicate, "%s needs a value", op).
				WithField(field.Name)
		}
		keyword := " LIKE ?"
		if op == ast.OpNotLike {
			keyword = " NOT LIKE ?"
		}
		return ast.Stmt(col+keyword, append(args, wrapLike(p.Value))...), nil
	case ast.OpNull:
		if truthy(p.Value) {
			return ast.Stmt(col+" IS NULL", args...), nil
		}
		return ast.Stmt(col+" IS NOT NULL", args...), nil
	default:
		return ast.Stmt(col+" "+comparisons[op]+" ?", append(args, p.Value)...), nil
	}
}

// CompileCriteria compiles predicates against a table's fields, one
// fragment per predicate in order.
func CompileCriteria(table *ast.TableDef, preds []ast.Predicate) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(preds))
	for _, p := range preds {
		field := table.Field(p.Field)
		if field == nil {
			return nil, alerr.NewUnknownFieldError("filter on", table.Table(), p.Field, table.FieldNames())
		}
		frag, err := CompilePredicate(field, p)
		if err != nil {
			return nil, err
		}
		out = append(out, frag)
	}
	return out, nil
}

// target returns the column expression a predicate applies to.
func target(field *ast.FieldDef, path ast.Path) (string, []any, error) {
	if len(path) == 0 {
		return sqlgen.QuoteIdent(field.Column()), nil, nil
	}
	if field.Kind != ast.KindStructured {
		return "", nil, alerr.Newf(alerr.ErrInvalidPredicate, "path %s on %s field", path.Pointer(), field.Kind).
			WithField(field.Name)
	}
	if e, ok := field.Extraction(path); ok {
		return sqlgen.QuoteIdent(e.Column), nil, nil
	}
	return "json_extract(" + sqlgen.QuoteIdent(field.Column()) + ",?)", []any{path.Pointer()}, nil
}

func wrapLike(v any) string {
	return "%" + fmt.Sprint(v) + "%"
}

// toSlice spreads a list value into bind values. A scalar is a set of one
// and nil is the empty set.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if list, ok := v.([]any); ok {
		return list
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return []any{v}
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{v}
	}
}

// truthy follows the usual loose truth rules: zero values are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && !strings.EqualFold(t, "false") && t != "0"
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	default:
		return !rv.IsZero()
	}
}

package ast

import (
	"maps"
	"slices"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
)

// Op is a predicate operator.
type Op string

// Predicate operators.
const (
	OpEq      Op = "eq"
	OpNe      Op = "ne" // not-equal, as set exclusion
	OpGt      Op = "gt"
	OpGte     Op = "gte"
	OpLt      Op = "lt"
	OpLte     Op = "lte"
	OpIn      Op = "in"
	OpNotIn   Op = "notin"
	OpLike    Op = "like"
	OpNotLike Op = "notlike"
	OpNull    Op = "null"
)

var ops = map[Op]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGte: true, OpLt: true, OpLte: true,
	OpIn: true, OpNotIn: true, OpLike: true, OpNotLike: true, OpNull: true,
}

// Valid reports whether the operator is known.
func (o Op) Valid() bool { return ops[o] }

// IsSet reports whether the operator takes a list of values.
func (o Op) IsSet() bool {
	return o == OpIn || o == OpNotIn || o == OpNe
}

// Predicate filters records on one field, optionally at a nested path.
type Predicate struct {
	Field string
	Path  Path
	Op    Op
	Value any
}

// Where builds a predicate on a top-level field.
func Where(field string, op Op, value any) Predicate {
	return Predicate{Field: field, Op: op, Value: value}
}

// At returns a copy of the predicate addressing a nested path.
func (p Predicate) At(path Path) Predicate {
	p.Path = path
	return p
}

// ParseCriteria decodes flat criteria keys of the form field, field__op,
// field__path__op or field__path into predicates sorted by key.
//
//	{"id__in": []int{1, 2}, "meta__a__0__like": "x"}
func ParseCriteria(criteria map[string]any) ([]Predicate, error) {
	out := make([]Predicate, 0, len(criteria))
	for _, key := range slices.Sorted(maps.Keys(criteria)) {
		p, err := parseCriterion(key)
		if err != nil {
			return nil, err
		}
		p.Value = criteria[key]
		out = append(out, p)
	}
	return out, nil
}

func parseCriterion(key string) (Predicate, error) {
	field, rest, _ := strings.Cut(key, PathSeparator)
	if field == "" {
		return Predicate{}, alerr.Newf(alerr.ErrInvalidPredicate, "criteria key %q has no field", key)
	}
	p := Predicate{Field: field, Op: OpEq}
	if rest == "" {
		return p, nil
	}
	if op := Op(rest); op.Valid() {
		p.Op = op
		return p, nil
	}
	if i := strings.LastIndex(rest, PathSeparator); i >= 0 {
		if op := Op(rest[i+len(PathSeparator):]); op.Valid() {
			p.Op = op
			rest = rest[:i]
		}
	}
	path, err := ParsePath(rest)
	if err != nil {
		return Predicate{}, alerr.Wrapf(alerr.ErrInvalidPredicate, err, "invalid criteria key %q", key)
	}
	p.Path = path
	return p, nil
}

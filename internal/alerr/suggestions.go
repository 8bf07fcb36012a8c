package alerr

import "fmt"

// NewUnknownFieldError reports a delta or constraint naming a field the table does not have.
func NewUnknownFieldError(op, table, field string, known []string) *Error {
	return Newf(ErrValidation, "cannot %s unknown field %q", op, field).
		WithTable(table).
		WithField(field).
		WithHelp(SuggestSimilar(field, known))
}

// NewDuplicateFieldError reports an added field that already exists.
func NewDuplicateFieldError(table, field string) *Error {
	return Newf(ErrValidation, "field %q already exists", field).
		WithTable(table).
		WithField(field)
}

// NewUnknownConstraintError reports a delta naming a unique or index that does not exist.
func NewUnknownConstraintError(op, kind, table, name string, known []string) *Error {
	return Newf(ErrValidation, "cannot %s unknown %s %q", op, kind, name).
		WithTable(table).
		With(kind, name).
		WithHelp(SuggestSimilar(name, known))
}

// SuggestSimilar returns "did you mean 'x'?" for the known name closest
// to input, or "" when none is close.
func SuggestSimilar(input string, known []string) string {
	if match, ok := Closest(input, known); ok {
		return fmt.Sprintf("did you mean '%s'?", match)
	}
	return ""
}

// Closest returns the known name with the smallest edit distance to
// input. A swap of two adjacent characters counts as one edit, and a
// name only matches within a third of input's length (at least one
// edit). Ties keep the earlier name.
func Closest(input string, known []string) (string, bool) {
	in := []rune(input)
	limit := max(1, len(in)/3)

	best, bestDist := "", limit+1
	for _, name := range known {
		if d := editDistance(in, []rune(name)); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best, bestDist <= limit
}

// editDistance is the optimal string alignment distance: insertions,
// deletions, substitutions and adjacent transpositions.
func editDistance(a, b []rune) int {
	rows := make([][]int, len(a)+1)
	for i := range rows {
		rows[i] = make([]int, len(b)+1)
		rows[i][0] = i
	}
	for j := range rows[0] {
		rows[0][j] = j
	}

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			d := min(rows[i-1][j]+1, rows[i][j-1]+1, rows[i-1][j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				d = min(d, rows[i-2][j-2]+1)
			}
			rows[i][j] = d
		}
	}
	return rows[len(a)][len(b)]
}

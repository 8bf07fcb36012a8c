package ast

import (
	"testing"

	"github.com/hlop3z/relite/internal/alerr"
)

func TestParseCriteria(t *testing.T) {
	got, err := ParseCriteria(map[string]any{
		"id":               1,
		"id__in":           []int{1, 2},
		"meta__a__0__like": "x",
		"meta__b":          2,
		"name__null":       true,
	})
	if err != nil {
		t.Fatal(err)
	}

	want := []Predicate{
		{Field: "id", Op: OpEq, Value: 1},
		{Field: "id", Op: OpIn},
		{Field: "meta", Path: Path{Key("a"), Index(0)}, Op: OpLike, Value: "x"},
		{Field: "meta", Path: Keys("b"), Op: OpEq, Value: 2},
		{Field: "name", Op: OpNull, Value: true},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Field != want[i].Field || got[i].Op != want[i].Op || !got[i].Path.Equal(want[i].Path) {
			t.Errorf("predicate %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseCriteriaInvalid(t *testing.T) {
	_, err := ParseCriteria(map[string]any{"__in": 1})
	if !alerr.Is(err, alerr.ErrInvalidPredicate) {
		t.Errorf("err = %v", err)
	}
}

func TestOp(t *testing.T) {
	if !OpNe.IsSet() || !OpIn.IsSet() || !OpNotIn.IsSet() || OpEq.IsSet() {
		t.Error("IsSet mismatch")
	}
	if Op("between").Valid() {
		t.Error("unknown op should be invalid")
	}
}

package engine

import (
	"testing"

	"github.com/hlop3z/relite/internal/testutil"
)

func TestToMap(t *testing.T) {
	m := ToMap([]Migration{{Stamp: "S2"}, {Stamp: "S1"}}, func(m Migration) string { return m.Stamp })
	testutil.AssertEqual(t, len(m), 2)
	testutil.AssertEqual(t, m["S1"].Stamp, "S1")
}

func TestToSetSortedKeys(t *testing.T) {
	set := ToSet([]string{"b", "a", "b"})
	testutil.AssertSliceEqual(t, SortedKeys(set), []string{"a", "b"})
	testutil.AssertTrue(t, set["a"], "a is a member")
}

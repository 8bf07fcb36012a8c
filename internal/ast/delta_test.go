package ast

import (
	"slices"
	"testing"
)

func simpleTable() *TableDef {
	return &TableDef{
		Name: "simple",
		Fields: []*FieldDef{
			{Name: "id", Kind: KindInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Kind: KindText},
			{Name: "foe", Kind: KindText, Nullable: true},
			{Name: "fie", Kind: KindText, Nullable: true},
		},
		Unique: Constraints{{Name: "name", Fields: []string{"name"}}},
		Index:  Constraints{{Name: "fie", Fields: []string{"fie"}}},
	}
}

func TestDeltaApply(t *testing.T) {
	before := simpleTable()
	delta := &Delta{
		Fields: FieldDelta{
			Add:    []*FieldDef{{Name: "fee", Kind: KindInt, Nullable: true}},
			Remove: []string{"fie"},
			Change: map[string]*FieldDef{"foe": {Name: "fum", Kind: KindReal, Nullable: true}},
		},
		Unique: ConstraintDelta{
			Add:    Constraints{{Name: "label", Fields: []string{"name", "id"}}},
			Rename: map[string]string{"name": "named"},
		},
		Index: ConstraintDelta{Remove: []string{"fie"}},
	}

	after := delta.Apply(before)

	if got := after.FieldNames(); !slices.Equal(got, []string{"id", "name", "fum", "fee"}) {
		t.Errorf("fields = %v", got)
	}
	if after.Field("fum").Kind != KindReal {
		t.Error("changed field should carry the new kind")
	}
	if got := after.Unique.Names(); !slices.Equal(got, []string{"named", "label"}) {
		t.Errorf("unique = %v", got)
	}
	if len(after.Index) != 0 {
		t.Errorf("index = %v", after.Index)
	}
	if len(before.Fields) != 4 || before.Unique[0].Name != "name" {
		t.Error("Apply must not modify the before state")
	}
}

func TestDeltaRemoveWinsOverAdd(t *testing.T) {
	delta := &Delta{Index: ConstraintDelta{
		Add:    Constraints{{Name: "x", Fields: []string{"name"}}},
		Remove: []string{"x"},
	}}
	after := delta.Apply(simpleTable())
	if _, ok := after.Index.Get("x"); ok {
		t.Error("removal should win over addition")
	}
}

func TestDeltaEmpty(t *testing.T) {
	if !(&Delta{}).Empty() {
		t.Error("zero delta is empty")
	}
	d := &Delta{Unique: ConstraintDelta{Remove: []string{"name"}}}
	if d.Empty() {
		t.Error("constraint removal is a change")
	}
}

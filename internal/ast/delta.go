package ast

import (
	"maps"
	"slices"
)

// FieldDelta lists field additions, removals and replacements.
// Change maps an existing field name to its new definition, which may
// carry a different name.
type FieldDelta struct {
	Add    []*FieldDef          `yaml:"add,omitempty" json:"add,omitempty"`
	Remove []string             `yaml:"remove,omitempty" json:"remove,omitempty"`
	Change map[string]*FieldDef `yaml:"change,omitempty" json:"change,omitempty"`
}

// ConstraintDelta lists additions, removals and renames of named indexes.
type ConstraintDelta struct {
	Add    Constraints       `yaml:"add,omitempty" json:"add,omitempty"`
	Remove []string          `yaml:"remove,omitempty" json:"remove,omitempty"`
	Rename map[string]string `yaml:"rename,omitempty" json:"rename,omitempty"`
}

// Empty reports whether the delta changes nothing.
func (d ConstraintDelta) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0 && len(d.Rename) == 0
}

// RenamedNames returns the rename sources sorted by name.
func (d ConstraintDelta) RenamedNames() []string {
	return slices.Sorted(maps.Keys(d.Rename))
}

// Delta describes how a table changes between two definitions.
type Delta struct {
	Fields FieldDelta      `yaml:"fields,omitempty" json:"fields,omitempty"`
	Unique ConstraintDelta `yaml:"unique,omitempty" json:"unique,omitempty"`
	Index  ConstraintDelta `yaml:"index,omitempty" json:"index,omitempty"`
}

// ChangedNames returns the names of changed fields sorted by name.
func (d *Delta) ChangedNames() []string {
	return slices.Sorted(maps.Keys(d.Fields.Change))
}

// Empty reports whether the delta changes nothing.
func (d *Delta) Empty() bool {
	return len(d.Fields.Add) == 0 && len(d.Fields.Remove) == 0 && len(d.Fields.Change) == 0 &&
		d.Unique.Empty() && d.Index.Empty()
}

// Apply returns the table definition after the delta. Removed fields are
// dropped, changed fields are replaced in place and added fields are
// appended. Constraint renames apply before additions and removals win
// over both. The delta is assumed valid; see engine.ValidateDelta.
func (d *Delta) Apply(before *TableDef) *TableDef {
	after := before.Clone()

	removed := make(map[string]bool, len(d.Fields.Remove))
	for _, name := range d.Fields.Remove {
		removed[name] = true
	}

	fields := make([]*FieldDef, 0, len(after.Fields)+len(d.Fields.Add))
	for _, f := range after.Fields {
		if removed[f.Name] {
			continue
		}
		if changed, ok := d.Fields.Change[f.Name]; ok {
			fields = append(fields, changed.Clone())
			continue
		}
		fields = append(fields, f)
	}
	for _, f := range d.Fields.Add {
		fields = append(fields, f.Clone())
	}
	after.Fields = fields

	after.Unique = d.Unique.apply(after.Unique)
	after.Index = d.Index.apply(after.Index)
	return after
}

func (d ConstraintDelta) apply(cons Constraints) Constraints {
	removed := make(map[string]bool, len(d.Remove))
	for _, name := range d.Remove {
		removed[name] = true
	}
	out := make(Constraints, 0, len(cons)+len(d.Add))
	for _, con := range cons {
		if removed[con.Name] {
			continue
		}
		if to, ok := d.Rename[con.Name]; ok {
			con.Name = to
		}
		out = append(out, con)
	}
	for _, con := range d.Add {
		if removed[con.Name] {
			continue
		}
		out = append(out, Constraint{Name: con.Name, Fields: slices.Clone(con.Fields)})
	}
	return out
}

package engine

import (
	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
)

// ValidateDelta checks that every name a delta refers to exists in the
// before state and that nothing it adds collides with what remains.
func ValidateDelta(before *ast.TableDef, delta *ast.Delta) error {
	table := before.Table()
	if len(before.Definition) > 0 {
		return alerr.New(alerr.ErrValidation, "table with a raw definition cannot be migrated").
			WithTable(table)
	}

	known := before.FieldNames()
	removed := ToSet(delta.Fields.Remove)
	for _, name := range delta.Fields.Remove {
		if before.Field(name) == nil {
			return alerr.NewUnknownFieldError("remove", table, name, known)
		}
	}

	// Names still taken after removals and renames settle
	taken := make(map[string]bool, len(known))
	for _, name := range known {
		if !removed[name] {
			taken[name] = true
		}
	}
	for _, name := range delta.ChangedNames() {
		if before.Field(name) == nil {
			return alerr.NewUnknownFieldError("change", table, name, known)
		}
		if removed[name] {
			return alerr.Newf(alerr.ErrValidation, "field %q is both changed and removed", name).
				WithTable(table)
		}
		delete(taken, name)
	}
	for _, name := range delta.ChangedNames() {
		changed := delta.Fields.Change[name]
		if err := changed.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrValidation, err, "invalid changed field").WithTable(table)
		}
		if taken[changed.Name] {
			return alerr.NewDuplicateFieldError(table, changed.Name)
		}
		taken[changed.Name] = true
	}
	for _, f := range delta.Fields.Add {
		if err := f.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrValidation, err, "invalid added field").WithTable(table)
		}
		if taken[f.Name] {
			return alerr.NewDuplicateFieldError(table, f.Name)
		}
		taken[f.Name] = true
	}

	if err := validateConstraintDelta(table, "unique", before.Unique, delta.Unique); err != nil {
		return err
	}
	return validateConstraintDelta(table, "index", before.Index, delta.Index)
}

func validateConstraintDelta(table, kind string, before ast.Constraints, delta ast.ConstraintDelta) error {
	known := before.Names()
	taken := ToSet(known)

	for _, name := range delta.Remove {
		if _, ok := before.Get(name); !ok {
			return alerr.NewUnknownConstraintError("remove", kind, table, name, known)
		}
		delete(taken, name)
	}
	for _, from := range delta.RenamedNames() {
		if _, ok := before.Get(from); !ok {
			return alerr.NewUnknownConstraintError("rename", kind, table, from, known)
		}
		delete(taken, from)
	}
	for _, from := range delta.RenamedNames() {
		to := delta.Rename[from]
		if taken[to] {
			return alerr.Newf(alerr.ErrValidation, "cannot rename %s %q to existing %q", kind, from, to).
				WithTable(table)
		}
		taken[to] = true
	}
	for _, con := range delta.Add {
		if taken[con.Name] {
			return alerr.Newf(alerr.ErrValidation, "%s %q already exists", kind, con.Name).
				WithTable(table)
		}
		if len(con.Fields) == 0 {
			return alerr.Newf(alerr.ErrValidation, "%s %q must list at least one field", kind, con.Name).
				WithTable(table)
		}
		taken[con.Name] = true
	}
	return nil
}

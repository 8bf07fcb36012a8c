package ast

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/strutil"
	"github.com/hlop3z/relite/internal/validate"
)

// -----------------------------------------------------------------------------
// FieldDef - one field of a table
// -----------------------------------------------------------------------------

// FieldDef describes one field of a table.
//
// A field is exactly one of: a normal column, a raw column definition
// (Definition set), or injected (stored inside another field and never
// given its own column). A normal column may additionally declare
// Extract paths, each of which becomes a computed column. Deferred and
// structured defaults are filled at write time and never rendered in DDL.
type FieldDef struct {
	Name          string          `yaml:"name" json:"name"`
	Store         string          `yaml:"store,omitempty" json:"store,omitempty"`
	Kind          Kind            `yaml:"kind" json:"kind"`
	Nullable      bool            `yaml:"nullable,omitempty" json:"nullable,omitempty"`
	Default       any             `yaml:"default,omitempty" json:"default,omitempty"`
	Deferred      bool            `yaml:"deferred,omitempty" json:"deferred,omitempty"`
	PrimaryKey    bool            `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	AutoIncrement bool            `yaml:"auto,omitempty" json:"auto,omitempty"`
	ReadOnly      bool            `yaml:"readonly,omitempty" json:"readonly,omitempty"`
	Definition    string          `yaml:"definition,omitempty" json:"definition,omitempty"`
	Extract       map[string]Kind `yaml:"extract,omitempty" json:"extract,omitempty"`
	Label         []string        `yaml:"label,omitempty" json:"label,omitempty"`
	Inject        bool            `yaml:"inject,omitempty" json:"inject,omitempty"`
}

// Column returns the storage column name.
func (f *FieldDef) Column() string {
	if f.Store != "" {
		return f.Store
	}
	return f.Name
}

// HasDefault reports whether the field has a static default rendered in
// DDL. Structured defaults have no SQL literal and are filled at write time.
func (f *FieldDef) HasDefault() bool {
	return f.Default != nil && !f.Deferred && f.Kind != KindStructured
}

// IsNullable reports whether the column accepts NULL. Auto-numbered keys
// are left for the engine to fill and so never carry NOT NULL.
func (f *FieldDef) IsNullable() bool {
	return f.Nullable || f.AutoIncrement
}

// Writable reports whether the store writes this field on insert.
func (f *FieldDef) Writable() bool {
	return !f.ReadOnly && !f.Inject
}

// Extraction is one computed column extracted from a structured field.
type Extraction struct {
	Path   Path
	Kind   Kind
	Column string
}

// Extractions returns the computed columns of the field sorted by path name.
func (f *FieldDef) Extractions() []Extraction {
	if len(f.Extract) == 0 {
		return nil
	}
	names := slices.Sorted(maps.Keys(f.Extract))
	out := make([]Extraction, 0, len(names))
	for _, name := range names {
		p, err := ParsePath(name)
		if err != nil {
			continue // reported by Validate
		}
		out = append(out, Extraction{
			Path:   p,
			Kind:   f.Extract[name],
			Column: strutil.ComputedColumn(f.Column(), name),
		})
	}
	return out
}

// Extraction returns the computed column declared for a path.
func (f *FieldDef) Extraction(p Path) (Extraction, bool) {
	for _, e := range f.Extractions() {
		if e.Path.Equal(p) {
			return e, true
		}
	}
	return Extraction{}, false
}

// LabelPaths returns the declared searchable sub-paths of the field.
func (f *FieldDef) LabelPaths() []Path {
	out := make([]Path, 0, len(f.Label))
	for _, name := range f.Label {
		if p, err := ParsePath(name); err == nil && len(p) > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the field.
func (f *FieldDef) Clone() *FieldDef {
	c := *f
	c.Extract = maps.Clone(f.Extract)
	c.Label = slices.Clone(f.Label)
	return &c
}

// Validate checks that the field is well-formed.
func (f *FieldDef) Validate() error {
	if err := validate.FieldName(f.Name); err != nil {
		return err
	}
	if f.Inject && (f.Definition != "" || len(f.Extract) > 0) {
		return alerr.New(alerr.ErrValidation, "injected field cannot have a column definition or extractions").
			WithField(f.Name)
	}
	if f.Definition != "" && len(f.Extract) > 0 {
		return alerr.New(alerr.ErrValidation, "field with a raw definition cannot declare extractions").
			WithField(f.Name)
	}
	if len(f.Extract) > 0 && f.Kind != KindStructured {
		return alerr.Newf(alerr.ErrValidation, "only structured fields can declare extractions, got %s", f.Kind).
			WithField(f.Name)
	}
	for name := range f.Extract {
		if _, err := ParsePath(name); err != nil || name == "" {
			return alerr.Wrapf(alerr.ErrInvalidPath, err, "invalid extraction path %q", name).
				WithField(f.Name)
		}
	}
	for _, name := range f.Label {
		if _, err := ParsePath(name); err != nil || name == "" {
			return alerr.Wrapf(alerr.ErrInvalidPath, err, "invalid label path %q", name).
				WithField(f.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Constraints - named, ordered column lists
// -----------------------------------------------------------------------------

// Constraint is a named list of fields backing a unique or plain index.
type Constraint struct {
	Name   string
	Fields []string
}

// Constraints is an ordered set of named constraints. It decodes from a
// mapping of name to field list, keeping document order for YAML.
type Constraints []Constraint

// Get returns the constraint with the given name.
func (c Constraints) Get(name string) (Constraint, bool) {
	for _, con := range c {
		if con.Name == name {
			return con, true
		}
	}
	return Constraint{}, false
}

// Names returns the constraint names in order.
func (c Constraints) Names() []string {
	out := make([]string, len(c))
	for i, con := range c {
		out[i] = con.Name
	}
	return out
}

// Clone returns a deep copy.
func (c Constraints) Clone() Constraints {
	if c == nil {
		return nil
	}
	out := make(Constraints, len(c))
	for i, con := range c {
		out[i] = Constraint{Name: con.Name, Fields: slices.Clone(con.Fields)}
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (c *Constraints) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: constraints must be a mapping of name to fields", node.Line)
	}
	out := make(Constraints, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var fields []string
		if err := node.Content[i+1].Decode(&fields); err != nil {
			return err
		}
		out = append(out, Constraint{Name: node.Content[i].Value, Fields: fields})
	}
	*c = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (c Constraints) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, con := range c {
		var fields yaml.Node
		if err := fields.Encode(con.Fields); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: con.Name}, &fields)
	}
	return node, nil
}

// UnmarshalJSON implements json.Unmarshaler. JSON objects are unordered,
// so constraints decoded from JSON are sorted by name.
func (c *Constraints) UnmarshalJSON(b []byte) error {
	var m map[string][]string
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	out := make(Constraints, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Constraint{Name: name, Fields: m[name]})
	}
	*c = out
	return nil
}

// MarshalJSON implements json.Marshaler.
func (c Constraints) MarshalJSON() ([]byte, error) {
	m := make(map[string][]string, len(c))
	for _, con := range c {
		m[con.Name] = con.Fields
	}
	return json.Marshal(m)
}

// -----------------------------------------------------------------------------
// TableDef - complete table definition
// -----------------------------------------------------------------------------

// TableDef is a complete table definition: ordered fields plus named
// unique and plain indexes.
type TableDef struct {
	Schema     string      `yaml:"schema,omitempty" json:"schema,omitempty"`         // Flattened into the table name
	Name       string      `yaml:"name" json:"name"`                                 // Logical table name
	Fields     []*FieldDef `yaml:"fields" json:"fields"`                             // In column order
	Unique     Constraints `yaml:"unique,omitempty" json:"unique,omitempty"`         // Unique indexes
	Index      Constraints `yaml:"index,omitempty" json:"index,omitempty"`           // Plain indexes
	Definition []string    `yaml:"definition,omitempty" json:"definition,omitempty"` // Raw DDL override
}

// Table returns the SQLite table name.
func (t *TableDef) Table() string {
	return strutil.QualifyTable(t.Schema, t.Name)
}

// Field returns the field with the given name, or nil if not found.
func (t *TableDef) Field(name string) *FieldDef {
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// FieldNames returns the field names in order.
func (t *TableDef) FieldNames() []string {
	out := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		out[i] = f.Name
	}
	return out
}

// PrimaryKey returns the primary key field, or nil if none.
func (t *TableDef) PrimaryKey() *FieldDef {
	for _, f := range t.Fields {
		if f.PrimaryKey {
			return f
		}
	}
	return nil
}

// ColumnFor maps a name used in a constraint to its storage column.
// Computed column names resolve to themselves.
func (t *TableDef) ColumnFor(name string) (string, bool) {
	if f := t.Field(name); f != nil && !f.Inject {
		return f.Column(), true
	}
	for _, f := range t.Fields {
		for _, e := range f.Extractions() {
			if e.Column == name {
				return name, true
			}
		}
	}
	return "", false
}

// Columns returns every storage column the table renders, including
// computed ones, in definition order. Raw column overrides contribute
// their field's column.
func (t *TableDef) Columns() []string {
	var out []string
	for _, f := range t.Fields {
		if f.Inject {
			continue
		}
		out = append(out, f.Column())
		for _, e := range f.Extractions() {
			out = append(out, e.Column)
		}
	}
	return out
}

// StoredColumns returns the columns that hold written values: every
// rendered column except generated ones.
func (t *TableDef) StoredColumns() []string {
	var out []string
	for _, f := range t.Fields {
		if !f.Inject {
			out = append(out, f.Column())
		}
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *TableDef) Clone() *TableDef {
	c := *t
	c.Fields = make([]*FieldDef, len(t.Fields))
	for i, f := range t.Fields {
		c.Fields[i] = f.Clone()
	}
	c.Unique = t.Unique.Clone()
	c.Index = t.Index.Clone()
	c.Definition = slices.Clone(t.Definition)
	return &c
}

// Validate checks that the table definition is well-formed.
func (t *TableDef) Validate() error {
	var errs validate.Errors
	errs.Add(validate.TableName(t.Name))
	errs.Add(validate.Schema(t.Schema))
	if err := errs.First(); err != nil {
		return err
	}
	if len(t.Definition) > 0 {
		return nil
	}
	if len(t.Fields) == 0 {
		return alerr.New(alerr.ErrValidation, "table must have at least one field").
			WithTable(t.Table())
	}
	seen := make(map[string]bool)
	for _, f := range t.Fields {
		if err := f.Validate(); err != nil {
			return alerr.Wrap(alerr.ErrValidation, err, "invalid field").WithTable(t.Table())
		}
		if seen[f.Name] {
			return alerr.NewDuplicateFieldError(t.Table(), f.Name)
		}
		seen[f.Name] = true
	}
	if err := t.validateConstraints("unique", t.Unique); err != nil {
		return err
	}
	return t.validateConstraints("index", t.Index)
}

func (t *TableDef) validateConstraints(kind string, cons Constraints) error {
	names := make(map[string]bool)
	for _, con := range cons {
		if err := validate.ConstraintName(kind, con.Name); err != nil {
			return alerr.Wrap(alerr.ErrValidation, err, "invalid constraint").WithTable(t.Table())
		}
		if names[con.Name] {
			return alerr.Newf(alerr.ErrValidation, "duplicate %s %q", kind, con.Name).
				WithTable(t.Table())
		}
		names[con.Name] = true
		if len(con.Fields) == 0 {
			return alerr.Newf(alerr.ErrValidation, "%s %q must list at least one field", kind, con.Name).
				WithTable(t.Table())
		}
		for _, field := range con.Fields {
			if _, ok := t.ColumnFor(field); !ok {
				return alerr.NewUnknownFieldError("index", t.Table(), field, t.FieldNames()).
					With(kind, con.Name)
			}
		}
	}
	return nil
}

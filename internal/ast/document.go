package ast

import (
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/relite/internal/alerr"
)

// Document is a definition file: the current tables plus optional
// changes keyed by table name. JSON documents decode too.
//
//	tables:
//	  - schema: stuff
//	    name: people
//	    fields:
//	      - {name: id, kind: int, primary_key: true, auto: true}
//	changes:
//	  people:
//	    fields:
//	      remove: [nick]
type Document struct {
	Tables  []*TableDef       `yaml:"tables" json:"tables"`
	Changes map[string]*Delta `yaml:"changes,omitempty" json:"changes,omitempty"`
}

// DecodeDocument parses and validates a definition document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, alerr.Wrap(alerr.ErrValidation, err, "malformed definition document")
	}
	names := make([]string, 0, len(doc.Tables))
	for _, t := range doc.Tables {
		if t == nil {
			return nil, alerr.New(alerr.ErrValidation, "empty table entry")
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if doc.Table(t.Table()) != t {
			return nil, alerr.Newf(alerr.ErrValidation, "table %q is defined twice", t.Table()).
				WithTable(t.Table())
		}
		names = append(names, t.Table())
	}
	for name := range doc.Changes {
		if doc.Table(name) == nil {
			return nil, alerr.Newf(alerr.ErrValidation, "changes name unknown table %q", name).
				WithTable(name).
				WithHelp(alerr.SuggestSimilar(name, names))
		}
	}
	return &doc, nil
}

// Table finds a table by its logical or qualified name.
func (d *Document) Table(name string) *TableDef {
	for _, t := range d.Tables {
		if t.Name == name || t.Table() == name {
			return t
		}
	}
	return nil
}

// ChangedTables returns the tables that have changes, in document order.
func (d *Document) ChangedTables() []*TableDef {
	var out []*TableDef
	for _, t := range d.Tables {
		if d.Delta(t) != nil {
			out = append(out, t)
		}
	}
	return out
}

// Delta returns the change for table, or nil.
func (d *Document) Delta(t *TableDef) *Delta {
	if delta, ok := d.Changes[t.Table()]; ok {
		return delta
	}
	return d.Changes[t.Name]
}

// After returns every table with its change applied, in document order.
func (d *Document) After() []*TableDef {
	out := make([]*TableDef, len(d.Tables))
	for i, t := range d.Tables {
		if delta := d.Delta(t); delta != nil {
			out[i] = delta.Apply(t)
		} else {
			out[i] = t
		}
	}
	return out
}

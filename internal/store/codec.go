package store

import (
	"encoding/json"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
)

// writeDefault computes a default that is filled at write time: deferred
// defaults and the defaults of structured fields. A func() any default is
// called; any other default is used as is.
func writeDefault(f *ast.FieldDef) (any, bool) {
	if f.Default == nil || (!f.Deferred && f.Kind != ast.KindStructured) {
		return nil, false
	}
	if fn, ok := f.Default.(func() any); ok {
		return fn(), true
	}
	return f.Default, true
}

// encode converts a value to what the column stores. Structured values
// are stored as JSON text.
func encode(f *ast.FieldDef, v any) (any, error) {
	if v == nil || f.Kind != ast.KindStructured {
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrValidation, err, "value cannot be encoded as JSON").
			WithField(f.Name)
	}
	return string(b), nil
}

// decode converts a scanned column value back to the field's kind.
func decode(f *ast.FieldDef, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Kind {
	case ast.KindStructured:
		var text []byte
		switch t := v.(type) {
		case string:
			text = []byte(t)
		case []byte:
			text = t
		default:
			return v, nil
		}
		var out any
		if err := json.Unmarshal(text, &out); err != nil {
			return nil, alerr.Wrap(alerr.ErrValidation, err, "stored value is not valid JSON").
				WithField(f.Name)
		}
		return out, nil
	case ast.KindBool:
		switch t := v.(type) {
		case int64:
			return t != 0, nil
		case bool:
			return t, nil
		}
	case ast.KindText:
		if b, ok := v.([]byte); ok {
			return string(b), nil
		}
	}
	return v, nil
}

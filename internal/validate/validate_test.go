package validate

import (
	"testing"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/testutil"
)

// -----------------------------------------------------------------------------
// Identifier Tests
// -----------------------------------------------------------------------------

func TestTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "people", false},
		{"single underscores", "unit_kind", false},
		{"reserved word is quoted", "order", false},
		{"empty", "", true},
		{"schema separator", "a___b", true},
		{"sqlite prefix", "sqlite_stat1", true},
		{"sqlite prefix any case", "SQLITE_x", true},
		{"rebuild prefix", "_old_people", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := TableName(tt.input)
			if tt.wantErr {
				testutil.AssertError(t, err, alerr.ErrValidation)
			} else {
				testutil.AssertNoError(t, err)
			}
		})
	}
}

func TestSchema(t *testing.T) {
	testutil.AssertNoError(t, Schema(""))
	testutil.AssertNoError(t, Schema("stuff"))
	testutil.AssertError(t, Schema("st___uff"), alerr.ErrValidation)
}

func TestFieldName(t *testing.T) {
	testutil.AssertNoError(t, FieldName("unit_id"))
	testutil.AssertError(t, FieldName(""), alerr.ErrValidation)

	err := FieldName("meta__age")
	testutil.AssertError(t, err, alerr.ErrValidation)
	ae, ok := err.(*alerr.Error)
	if !ok {
		t.Fatalf("FieldName() error type = %T", err)
	}
	testutil.AssertSliceEqual(t, ae.Helps(), []string{"use a single underscore, e.g. meta_age"})
}

func TestConstraintName(t *testing.T) {
	testutil.AssertNoError(t, ConstraintName("unique", "name-label"))
	testutil.AssertError(t, ConstraintName("index", " "), alerr.ErrValidation)
}

// -----------------------------------------------------------------------------
// Batch Tests
// -----------------------------------------------------------------------------

func TestErrors(t *testing.T) {
	var errs Errors
	errs.Add(nil)
	testutil.AssertNoError(t, errs.First())

	errs.Add(TableName(""))
	errs.Add(FieldName("a__b"))
	testutil.AssertEqual(t, len(errs), 2)
	testutil.AssertErrorContains(t, errs.First(), "table name is required")
}

package relite

import (
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/internal/query"
	"github.com/hlop3z/relite/internal/store"
)

// Definition and query model.
type (
	TableDef  = ast.TableDef
	FieldDef  = ast.FieldDef
	Kind      = ast.Kind
	Path      = ast.Path
	Delta     = ast.Delta
	Document  = ast.Document
	Predicate = ast.Predicate
	Op        = ast.Op
	Statement = ast.Statement
)

// Records and reads.
type (
	Model     = query.Model
	LabelRef  = query.LabelRef
	ParentRef = query.ParentRef
	Record    = store.Record
	Retrieval = store.Retrieval
	Result    = store.Result
)

// MigrationStatus is the ledger status of one stamp.
type MigrationStatus = engine.MigrationStatus

// Field kinds.
const (
	KindText       = ast.KindText
	KindBool       = ast.KindBool
	KindInt        = ast.KindInt
	KindReal       = ast.KindReal
	KindStructured = ast.KindStructured
)

// Retrieval modes.
const (
	Many = store.Many
	One  = store.One
)

// DecodeDocument parses a YAML or JSON definition document.
func DecodeDocument(data []byte) (*Document, error) {
	return ast.DecodeDocument(data)
}

// Where builds a predicate.
func Where(field string, op Op, value any) Predicate {
	return ast.Where(field, op, value)
}

// ParseCriteria decodes field__path__op keyed criteria.
func ParseCriteria(criteria map[string]any) ([]Predicate, error) {
	return ast.ParseCriteria(criteria)
}

// Predicate operators.
const (
	OpEq      = ast.OpEq
	OpNe      = ast.OpNe
	OpGt      = ast.OpGt
	OpGte     = ast.OpGte
	OpLt      = ast.OpLt
	OpLte     = ast.OpLte
	OpIn      = ast.OpIn
	OpNotIn   = ast.OpNotIn
	OpLike    = ast.OpLike
	OpNotLike = ast.OpNotLike
	OpNull    = ast.OpNull
)

package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/hlop3z/relite/internal/ast"
)

func TestProperty_NullableAdditionsStayInPlace(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	kind := gen.OneConstOf(ast.KindText, ast.KindBool, ast.KindInt, ast.KindReal, ast.KindStructured)

	properties.Property("nullable additions compile to ADD COLUMN only", prop.ForAll(
		func(names []string, kinds []ast.Kind) bool {
			seen := make(map[string]bool)
			var add []*ast.FieldDef
			for i, name := range names {
				name = "x_" + name
				if seen[name] {
					continue
				}
				seen[name] = true
				add = append(add, &ast.FieldDef{Name: name, Kind: kinds[i%len(kinds)], Nullable: true})
			}

			stmts, err := CompileMigration(simpleTable(), &ast.Delta{Fields: ast.FieldDelta{Add: add}})
			if err != nil || len(stmts) != len(add) {
				return false
			}
			for i, s := range stmts {
				if !strings.HasPrefix(s.SQL, `ALTER TABLE "simple" ADD COLUMN "`+add[i].Name+`"`) {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Identifier()),
		gen.SliceOfN(5, kind, reflect.TypeOf(ast.KindText)),
	))

	properties.Property("removals always end by dropping the renamed table", prop.ForAll(
		func(pick int) bool {
			names := []string{"name", "foe", "fie"}
			stmts, err := CompileMigration(simpleTable(), &ast.Delta{Fields: ast.FieldDelta{Remove: []string{names[pick]}}})
			if err != nil || len(stmts) < 4 {
				return false
			}
			return stmts[0].SQL == `ALTER TABLE "simple" RENAME TO "_old_simple"` &&
				stmts[len(stmts)-1].SQL == `DROP TABLE "_old_simple"`
		},
		gen.IntRange(0, 2),
	))

	properties.TestingRun(t)
}

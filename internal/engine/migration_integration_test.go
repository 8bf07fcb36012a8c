package engine

import (
	"context"
	"database/sql"
	"testing"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/testutil"
)

func execStatements(t *testing.T, db *sql.DB, stmts []ast.Statement) {
	t.Helper()
	for _, s := range stmts {
		testutil.ExecSQL(t, db, s.SQL, s.Args...)
	}
}

func TestMigrateExecutesAndPreservesRows(t *testing.T) {
	testutil.SkipIfShort(t)
	db := testutil.SetupSQLite(t)
	c := NewCompiler()

	define, err := c.Define(simpleTable())
	testutil.AssertNoError(t, err)
	execStatements(t, db, define)

	testutil.ExecSQL(t, db, `INSERT INTO "simple" ("name","foe","fie") VALUES (?,?,?)`, "a", "1.5", "x")
	testutil.ExecSQL(t, db, `INSERT INTO "simple" ("name","foe","fie") VALUES (?,?,?)`, "b", nil, "y")

	delta := &ast.Delta{
		Fields: ast.FieldDelta{
			Add:    []*ast.FieldDef{{Name: "fee", Kind: ast.KindInt, Nullable: true}},
			Remove: []string{"fie"},
			Change: map[string]*ast.FieldDef{"foe": {Name: "fum", Kind: ast.KindReal, Nullable: true}},
		},
		Unique: ast.ConstraintDelta{Rename: map[string]string{"labels": "label"}},
	}
	migrate, err := c.Migrate(simpleTable(), delta)
	testutil.AssertNoError(t, err)

	tx, err := db.BeginTx(context.Background(), nil)
	testutil.AssertNoError(t, err)
	for _, s := range migrate {
		if _, err := tx.Exec(s.SQL); err != nil {
			tx.Rollback()
			t.Fatalf("exec %q: %v", s.SQL, err)
		}
	}
	testutil.AssertNoError(t, tx.Commit())

	testutil.AssertSliceEqual(t, testutil.Columns(t, db, "simple"), []string{"id", "name", "fum", "fee"})
	testutil.AssertTableNotExists(t, db, "_old_simple")
	testutil.AssertIndexExists(t, db, "simple", "simple_label")
	testutil.AssertIndexNotExists(t, db, "simple_labels")
	testutil.AssertIndexNotExists(t, db, "simple_fie")
	testutil.AssertRowCount(t, db, "simple", 2)

	var fum float64
	err = db.QueryRow(`SELECT "fum" FROM "simple" WHERE "name" = ?`, "a").Scan(&fum)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, fum, 1.5)
}

func TestMigrateAddsExtractionInPlace(t *testing.T) {
	testutil.SkipIfShort(t)
	db := testutil.SetupSQLite(t)
	c := NewCompiler()

	define, err := c.Define(simpleTable())
	testutil.AssertNoError(t, err)
	execStatements(t, db, define)

	delta := &ast.Delta{Fields: ast.FieldDelta{Add: []*ast.FieldDef{
		{Name: "meta", Kind: ast.KindStructured, Nullable: true, Extract: map[string]ast.Kind{"a": ast.KindInt}},
	}}}
	migrate, err := c.Migrate(simpleTable(), delta)
	testutil.AssertNoError(t, err)
	execStatements(t, db, migrate)

	testutil.ExecSQL(t, db, `INSERT INTO "simple" ("name","meta") VALUES (?,?)`, "a", `{"a":7}`)

	var a int
	err = db.QueryRow(`SELECT "meta__a" FROM "simple"`).Scan(&a)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, a, 7)
}

package dialect

import (
	"slices"
	"testing"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/testutil"
)

// -----------------------------------------------------------------------------
// Column Tests
// -----------------------------------------------------------------------------

func TestSQLiteColumnSQL(t *testing.T) {
	d := SQLite()

	tests := []struct {
		name  string
		field *ast.FieldDef
		want  []string
	}{
		{
			name:  "bool default true",
			field: &ast.FieldDef{Name: "flag", Kind: ast.KindBool, Default: true},
			want:  []string{`"flag" INTEGER NOT NULL DEFAULT 1`},
		},
		{
			name:  "bool default false nullable",
			field: &ast.FieldDef{Name: "flag", Kind: ast.KindBool, Nullable: true, Default: false},
			want:  []string{`"flag" INTEGER DEFAULT 0`},
		},
		{
			name:  "int primary key with default",
			field: &ast.FieldDef{Name: "id", Store: "_id", Kind: ast.KindInt, PrimaryKey: true, Default: 0},
			want:  []string{`"_id" INTEGER NOT NULL PRIMARY KEY DEFAULT 0`},
		},
		{
			name:  "auto-numbered primary key",
			field: &ast.FieldDef{Name: "id", Kind: ast.KindInt, PrimaryKey: true, AutoIncrement: true},
			want:  []string{`"id" INTEGER PRIMARY KEY`},
		},
		{
			name:  "real default",
			field: &ast.FieldDef{Name: "price", Kind: ast.KindReal, Default: 1.25},
			want:  []string{`"price" REAL NOT NULL DEFAULT 1.25`},
		},
		{
			name:  "text default quoted",
			field: &ast.FieldDef{Name: "name", Kind: ast.KindText, Default: "it's"},
			want:  []string{`"name" TEXT NOT NULL DEFAULT 'it''s'`},
		},
		{
			name:  "deferred default omitted",
			field: &ast.FieldDef{Name: "at", Kind: ast.KindInt, Default: 5, Deferred: true},
			want:  []string{`"at" INTEGER NOT NULL`},
		},
		{
			name:  "structured default filled at write time",
			field: &ast.FieldDef{Name: "things", Kind: ast.KindStructured, Default: map[string]any{}},
			want:  []string{`"things" TEXT NOT NULL`},
		},
		{
			name:  "int default from decoded float",
			field: &ast.FieldDef{Name: "n", Kind: ast.KindInt, Default: float64(3)},
			want:  []string{`"n" INTEGER NOT NULL DEFAULT 3`},
		},
		{
			name:  "text default from number",
			field: &ast.FieldDef{Name: "code", Kind: ast.KindText, Default: 7},
			want:  []string{`"code" TEXT NOT NULL DEFAULT '7'`},
		},
		{
			name:  "bool default from string",
			field: &ast.FieldDef{Name: "flag", Kind: ast.KindBool, Default: "true"},
			want:  []string{`"flag" INTEGER NOT NULL DEFAULT 1`},
		},
		{
			name:  "structured is text",
			field: &ast.FieldDef{Name: "meta", Kind: ast.KindStructured, Nullable: true},
			want:  []string{`"meta" TEXT`},
		},
		{
			name: "structured with extractions",
			field: &ast.FieldDef{
				Name: "meta", Kind: ast.KindStructured,
				Extract: map[string]ast.Kind{"b": ast.KindText, "a__0": ast.KindInt},
			},
			want: []string{
				`"meta" TEXT NOT NULL`,
				`"meta__a__0" INTEGER AS (json_extract("meta",'$.a[0]'))`,
				`"meta__b" TEXT AS (json_extract("meta",'$.b'))`,
			},
		},
		{
			name:  "raw definition",
			field: &ast.FieldDef{Name: "id", Definition: "id BLOB"},
			want:  []string{"id BLOB"},
		},
		{
			name:  "injected emits nothing",
			field: &ast.FieldDef{Name: "secret", Inject: true},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.ColumnSQL(tt.field)
			if !slices.Equal(got, tt.want) {
				t.Errorf("ColumnSQL() =\n%q\nwant:\n%q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Table Tests
// -----------------------------------------------------------------------------

func TestSQLiteCreateTableSQL(t *testing.T) {
	d := SQLite()
	table := &ast.TableDef{
		Schema: "stuff",
		Name:   "simple",
		Fields: []*ast.FieldDef{
			{Name: "id", Kind: ast.KindInt, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Kind: ast.KindText},
			{Name: "secret", Inject: true},
		},
		Unique: ast.Constraints{{Name: "name", Fields: []string{"name"}}},
		Index:  ast.Constraints{{Name: "id-name", Fields: []string{"id", "name"}}},
	}

	got := d.CreateTableSQL(table)
	if len(got) != 3 {
		t.Fatalf("len = %d: %q", len(got), got)
	}

	testutil.AssertEqual(t, got[0], "CREATE TABLE IF NOT EXISTS \"stuff___simple\" (\n"+
		"  \"id\" INTEGER PRIMARY KEY,\n"+
		"  \"name\" TEXT NOT NULL\n"+
		")")
	testutil.AssertSQL(t, got[1], `CREATE UNIQUE INDEX IF NOT EXISTS "stuff___simple_name" ON "stuff___simple" ("name")`)
	testutil.AssertSQL(t, got[2], `CREATE INDEX IF NOT EXISTS "stuff___simple_id_name" ON "stuff___simple" ("id","name")`)
}

func TestSQLiteCreateTableRawDefinition(t *testing.T) {
	table := &ast.TableDef{Name: "raw", Definition: []string{"CREATE TABLE raw (x)", "CREATE INDEX raw_x ON raw (x)"}}
	got := SQLite().CreateTableSQL(table)
	if !slices.Equal(got, table.Definition) {
		t.Errorf("got %q", got)
	}
}

func TestSQLiteIndexOnStoreColumn(t *testing.T) {
	table := &ast.TableDef{
		Name:   "people",
		Fields: []*ast.FieldDef{{Name: "name", Store: "full_name"}},
	}
	got := SQLite().CreateIndexSQL(table, ast.Constraint{Name: "name", Fields: []string{"name"}}, false)
	testutil.AssertSQL(t, got, `CREATE INDEX IF NOT EXISTS "people_name" ON "people" ("full_name")`)
}

// -----------------------------------------------------------------------------
// Statement Builder Tests
// -----------------------------------------------------------------------------

func TestSQLiteStatementBuilders(t *testing.T) {
	d := SQLite()
	table := &ast.TableDef{Name: "simple"}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"add column", d.AddColumnSQL(table, `"fee" INTEGER`), `ALTER TABLE "simple" ADD COLUMN "fee" INTEGER`},
		{"drop index", d.DropIndexSQL(table, "name-label"), `DROP INDEX IF EXISTS "simple_name_label"`},
		{"rename table", d.RenameTableSQL("simple", "_old_simple"), `ALTER TABLE "simple" RENAME TO "_old_simple"`},
		{"drop table", d.DropTableSQL("_old_simple"), `DROP TABLE "_old_simple"`},
		{
			"copy rows",
			d.CopyRowsSQL("_old_simple", "simple", []ColumnCopy{{From: "id", To: "id"}, {From: "foe", To: "fum"}}),
			`INSERT INTO "simple" ("id","fum") SELECT "id","foe" AS "fum" FROM "_old_simple"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.got, tt.want)
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	testutil.AssertEqual(t, SQLite().QuoteIdent(`a"b`), `"a""b"`)
}

func TestGet(t *testing.T) {
	if Get("sqlite") == nil || Get("sqlite3") == nil {
		t.Error("sqlite should be supported")
	}
	if Get("postgres") != nil {
		t.Error("postgres is not supported")
	}
}

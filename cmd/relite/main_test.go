package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/cli"
	"github.com/hlop3z/relite/internal/testutil"
)

func init() {
	// Use plain mode for deterministic test output
	cli.SetDefault(&cli.Config{Mode: cli.ModePlain})
}

const peopleDoc = `
tables:
  - name: people
    fields:
      - {name: id, kind: int, primary_key: true, auto: true}
      - {name: name, kind: text}
    unique:
      name: [name]
`

const peopleChangeDoc = peopleDoc + `
changes:
  people:
    fields:
      add:
        - {name: nick, kind: text, nullable: true}
`

// run executes the root command and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("relite %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func assertCode(t *testing.T, err error, code alerr.Code) {
	t.Helper()
	var ae *alerr.Error
	if !errors.As(err, &ae) || ae.Code() != code {
		t.Fatalf("error = %v, want code %s", err, code)
	}
}

// -----------------------------------------------------------------------------
// Config
// -----------------------------------------------------------------------------

func TestLoadConfigDefaults(t *testing.T) {
	flags := newRootCmd().PersistentFlags()
	testutil.AssertNoError(t, flags.Parse(nil))

	cfg, err := loadConfig(flags)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.MigrationsDir, "./migrations")
	testutil.AssertEqual(t, cfg.LedgerTable, "_relite_migration")
	testutil.AssertEqual(t, cfg.Transactional, true)
	testutil.AssertEqual(t, cfg.Timeout, 30*time.Second)
}

func TestLoadConfigPrecedence(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "relite.yaml")
	testutil.WriteFile(t, path, "migrations_dir: from-file\nschema: app\nledger_table: from-file\ntimeout: 5s\n")
	t.Setenv("RELITE_LEDGER_TABLE", "from-env")
	t.Setenv("RELITE_SCHEMA", "env")

	flags := newRootCmd().PersistentFlags()
	testutil.AssertNoError(t, flags.Parse([]string{"--config", path, "--schema", "flag"}))

	cfg, err := loadConfig(flags)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.MigrationsDir, "from-file")
	testutil.AssertEqual(t, cfg.LedgerTable, "from-env")
	testutil.AssertEqual(t, cfg.Schema, "flag")
	testutil.AssertEqual(t, cfg.Timeout, 5*time.Second)
}

func TestLoadConfigExpandsDatabaseURL(t *testing.T) {
	dir := testutil.TempDir(t)
	path := filepath.Join(dir, "relite.yaml")
	testutil.WriteFile(t, path, "database_url: ${DATA_DIR}/app.db\n")
	t.Setenv("DATA_DIR", "/srv")

	flags := newRootCmd().PersistentFlags()
	testutil.AssertNoError(t, flags.Parse([]string{"-c", path}))

	cfg, err := loadConfig(flags)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, cfg.DatabaseURL, "/srv/app.db")
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	flags := newRootCmd().PersistentFlags()
	testutil.AssertNoError(t, flags.Parse([]string{"--config", filepath.Join(testutil.TempDir(t), "none.yaml")}))

	_, err := loadConfig(flags)
	assertCode(t, err, alerr.ErrConfig)
}

func TestMigrateRequiresDatabaseURL(t *testing.T) {
	_, err := run(t, "migrate", "--migrations-dir", testutil.TempDir(t))
	assertCode(t, err, alerr.ErrConfig)
}

func TestMissingDocument(t *testing.T) {
	_, err := run(t, "diff", filepath.Join(testutil.TempDir(t), "absent.yaml"))
	assertCode(t, err, alerr.ErrConfig)
}

// -----------------------------------------------------------------------------
// Commands
// -----------------------------------------------------------------------------

func TestDefine(t *testing.T) {
	dir := testutil.TempDir(t)
	doc := filepath.Join(dir, "tables.yaml")
	testutil.WriteFile(t, doc, peopleDoc)

	out := mustRun(t, "define", doc, "--dry-run")
	testutil.AssertSQLContains(t, out, `CREATE TABLE IF NOT EXISTS "people"`)
	testutil.AssertSQLContains(t, out, `CREATE UNIQUE INDEX IF NOT EXISTS "people_name"`)

	dbPath := filepath.Join(dir, "app.db")
	out = mustRun(t, "define", doc, "-d", dbPath)
	testutil.AssertTrue(t, strings.Contains(out, "defined 1 table"), out)

	db := testutil.SetupSQLiteFile(t, dbPath)
	testutil.AssertTableExists(t, db, "people")
	testutil.AssertIndexExists(t, db, "people", "people_name")
}

func TestDiffWithoutChanges(t *testing.T) {
	doc := filepath.Join(testutil.TempDir(t), "tables.yaml")
	testutil.WriteFile(t, doc, peopleDoc)

	out := mustRun(t, "diff", doc)
	testutil.AssertTrue(t, strings.Contains(out, "No changes."), out)
}

func TestMigrationWorkflow(t *testing.T) {
	dir := testutil.TempDir(t)
	doc := filepath.Join(dir, "tables.yaml")
	migrations := filepath.Join(dir, "migrations")
	dbPath := filepath.Join(dir, "app.db")
	testutil.WriteFile(t, doc, peopleChangeDoc)

	out := mustRun(t, "diff", doc)
	testutil.AssertTrue(t, strings.Contains(out, "-- people"), out)
	testutil.AssertTrue(t, strings.Contains(out, `ALTER TABLE "people" ADD COLUMN "nick" TEXT;`), out)

	out = mustRun(t, "diff", doc, "--write", "--migrations-dir", migrations)
	testutil.AssertTrue(t, strings.Contains(out, "wrote migration "), out)
	stamp := strings.TrimSpace(out[strings.Index(out, "wrote migration ")+len("wrote migration "):])

	baseline, err := os.ReadFile(filepath.Join(migrations, "definition.sql"))
	testutil.AssertNoError(t, err)
	testutil.AssertSQLContains(t, string(baseline), `"nick" TEXT`)

	out = mustRun(t, "migrate", "--dry-run", "--migrations-dir", migrations, "-d", dbPath)
	testutil.AssertTrue(t, strings.Contains(out, "run definition.sql"), out)
	testutil.AssertTrue(t, strings.Contains(out, "record "+stamp), out)

	out = mustRun(t, "migrate", "--migrations-dir", migrations, "-d", dbPath)
	testutil.AssertTrue(t, strings.Contains(out, "migrations applied"), out)

	out = mustRun(t, "migrate", "--migrations-dir", migrations, "-d", dbPath)
	testutil.AssertTrue(t, strings.Contains(out, "Database is up to date."), out)

	out = mustRun(t, "status", "--json", "--migrations-dir", migrations, "-d", dbPath)
	var status struct {
		Applied     int    `json:"applied"`
		Pending     int    `json:"pending"`
		Fingerprint string `json:"fingerprint"`
		Migrations  []struct {
			Stamp  string `json:"stamp"`
			Status string `json:"status"`
		} `json:"migrations"`
	}
	testutil.AssertNoError(t, json.Unmarshal([]byte(out), &status))
	testutil.AssertEqual(t, status.Applied, 1)
	testutil.AssertEqual(t, status.Pending, 0)
	testutil.AssertEqual(t, len(status.Fingerprint), 64)
	testutil.AssertEqual(t, status.Migrations[0].Stamp, stamp)
	testutil.AssertEqual(t, status.Migrations[0].Status, "applied")

	out = mustRun(t, "status", "--migrations-dir", migrations, "-d", dbPath)
	testutil.AssertTrue(t, strings.Contains(out, stamp), out)
	testutil.AssertTrue(t, strings.Contains(out, "[APPLIED]"), out)
	testutil.AssertTrue(t, strings.Contains(out, "1 applied, 0 pending"), out)

	db := testutil.SetupSQLiteFile(t, dbPath)
	testutil.AssertSliceEqual(t, testutil.Columns(t, db, "people"), []string{"id", "name", "nick"})
}

func TestRender(t *testing.T) {
	dir := testutil.TempDir(t)
	doc := filepath.Join(dir, "tables.yaml")
	migrations := filepath.Join(dir, "migrations")
	testutil.WriteFile(t, doc, peopleChangeDoc)

	out := mustRun(t, "render", doc, "--migrations-dir", migrations, "--schema", "app")
	testutil.AssertTrue(t, strings.Contains(out, "rendered 1 table to "), out)

	baseline, err := os.ReadFile(filepath.Join(migrations, "definition.sql"))
	testutil.AssertNoError(t, err)
	testutil.AssertSQLContains(t, string(baseline), `CREATE TABLE IF NOT EXISTS "app___people"`)
	testutil.AssertSQLContains(t, string(baseline), `"nick" TEXT`)
}

func TestWatchLoop(t *testing.T) {
	dir := testutil.TempDir(t)
	doc := filepath.Join(dir, "tables.yaml")
	testutil.WriteFile(t, doc, peopleDoc)

	watcher, err := watchDocument(doc)
	testutil.AssertNoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	rendered := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, watcher, doc, &bytes.Buffer{}, func() error {
			rendered <- struct{}{}
			return nil
		})
	}()

	testutil.WriteFile(t, filepath.Join(dir, "other.yaml"), "ignored")
	testutil.WriteFile(t, doc, peopleChangeDoc)

	select {
	case <-rendered:
	case <-time.After(5 * time.Second):
		t.Fatal("document change did not trigger a render")
	}

	cancel()
	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop on cancel")
	}
}

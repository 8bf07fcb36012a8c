package runner

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/engine"
)

// StampFormat orders stamps lexically by creation time.
const StampFormat = "20060102150405"

// NewStamp returns the stamp for a migration created at t.
func NewStamp(t time.Time) string {
	return t.UTC().Format(StampFormat)
}

// Writer renders compiled statements into the files Load reads back.
type Writer struct {
	dir string
}

// NewWriter creates a writer for a migrations directory.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteBaseline replaces definition.sql.
func (w *Writer) WriteBaseline(stmts []ast.Statement) (string, error) {
	return w.write(engine.BaselineFile, stmts)
}

// WriteMigration writes the file for one stamp. An existing stamp file is
// never overwritten.
func (w *Writer) WriteMigration(stamp string, stmts []ast.Statement) (string, error) {
	path := filepath.Join(w.dir, MigrationFile(stamp))
	if _, err := os.Stat(path); err == nil {
		return "", alerr.New(alerr.ErrMigrationFailed, "migration file already exists").
			WithStamp(stamp).
			With("path", path)
	}
	return w.write(MigrationFile(stamp), stmts)
}

func (w *Writer) write(name string, stmts []ast.Statement) (string, error) {
	content, err := Render(stmts)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", alerr.Wrap(alerr.ErrMigrationFailed, err, "failed to create migrations directory").
			With("dir", w.dir)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", alerr.Wrap(alerr.ErrMigrationFailed, err, "failed to write migration file").
			With("path", path)
	}
	return path, nil
}

// Render joins statements in the file format SplitStatements reads.
// Statements with bind values cannot be stored in a file.
func Render(stmts []ast.Statement) (string, error) {
	var b strings.Builder
	for _, s := range stmts {
		if len(s.Args) > 0 {
			return "", alerr.New(alerr.ErrMigrationFailed, "statement with bind values cannot be written to a file").
				WithSQL(s.SQL)
		}
		b.WriteString(strings.TrimSuffix(strings.TrimSpace(s.SQL), ";"))
		b.WriteString(";\n\n")
	}
	return b.String(), nil
}

package runner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hlop3z/relite/internal/alerr"
	"github.com/hlop3z/relite/internal/engine"
)

const (
	migrationPrefix = "migration-"
	migrationSuffix = ".sql"
)

// MigrationFile returns the file name holding the migration for a stamp.
func MigrationFile(stamp string) string {
	return migrationPrefix + stamp + migrationSuffix
}

// StampOf extracts the stamp from a migration file name.
func StampOf(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, migrationPrefix)
	if !ok {
		return "", false
	}
	stamp, ok := strings.CutSuffix(rest, migrationSuffix)
	if !ok || stamp == "" {
		return "", false
	}
	return stamp, true
}

// Load reads the baseline and every stamp file from a migrations directory.
// The baseline is nil when definition.sql does not exist. Migrations are
// sorted by stamp.
func Load(dir string) (*engine.Baseline, []engine.Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, alerr.Wrap(alerr.ErrMigrationNotFound, err, "migrations directory not found").
				With("dir", dir)
		}
		return nil, nil, alerr.Wrap(alerr.ErrMigrationFailed, err, "failed to read migrations directory").
			With("dir", dir)
	}

	var baseline *engine.Baseline
	var migrations []engine.Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(dir, name)

		if name == engine.BaselineFile {
			stmts, err := readStatements(path)
			if err != nil {
				return nil, nil, err
			}
			baseline = &engine.Baseline{Path: path, Statements: stmts}
			continue
		}

		stamp, ok := StampOf(name)
		if !ok {
			continue
		}
		stmts, err := readStatements(path)
		if err != nil {
			return nil, nil, err
		}
		migrations = append(migrations, engine.Migration{Stamp: stamp, Path: path, Statements: stmts})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Stamp < migrations[j].Stamp
	})
	return baseline, migrations, nil
}

func readStatements(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrMigrationFailed, err, "failed to read migration file").
			With("path", path)
	}
	return SplitStatements(string(data)), nil
}

// SplitStatements splits a migration file into statements. A statement
// ends at a semicolon followed by a blank line or the end of the file,
// so semicolons inside trigger bodies stay put. Quoted text is never split.
func SplitStatements(sql string) []string {
	if sql == "" {
		return nil
	}

	var statements []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		if quote != 0 {
			current.WriteByte(ch)
			if ch == quote {
				// Doubled quote is an escape
				if i+1 < len(sql) && sql[i+1] == quote {
					current.WriteByte(sql[i+1])
					i++
				} else {
					quote = 0
				}
			}
			continue
		}

		switch ch {
		case '\'', '"':
			quote = ch
			current.WriteByte(ch)
		case ';':
			if !terminates(sql[i+1:]) {
				current.WriteByte(ch)
				continue
			}
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// terminates reports whether the text after a semicolon starts with a
// blank line or holds only whitespace.
func terminates(rest string) bool {
	newlines := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case ' ', '\t', '\r':
		case '\n':
			newlines++
			if newlines == 2 {
				return true
			}
		default:
			return false
		}
	}
	return true
}

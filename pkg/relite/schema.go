package relite

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hlop3z/relite/internal/ast"
	"github.com/hlop3z/relite/internal/engine/runner"
)

// Compile returns the statements that create table and its indexes.
func (c *Client) Compile(table *TableDef) ([]Statement, error) {
	return c.compiler.Define(c.scoped(table))
}

// CompileAll compiles tables concurrently and returns their statements
// in table order.
func (c *Client) CompileAll(ctx context.Context, tables ...*TableDef) ([]Statement, error) {
	results := make([][]ast.Statement, len(tables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, t := range tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stmts, err := c.Compile(t)
			if err != nil {
				return err
			}
			results[i] = stmts
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var stmts []ast.Statement
	for _, r := range results {
		stmts = append(stmts, r...)
	}
	return stmts, nil
}

// Diff returns the statements that migrate before by delta.
func (c *Client) Diff(before *TableDef, delta *Delta) ([]Statement, error) {
	return c.compiler.Migrate(c.scoped(before), delta)
}

// DiffDocument returns the statements of every change in doc, in
// document order.
func (c *Client) DiffDocument(doc *Document) ([]Statement, error) {
	var stmts []ast.Statement
	for _, t := range doc.ChangedTables() {
		s, err := c.Diff(t, doc.Delta(t))
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s...)
	}
	return stmts, nil
}

// Define creates the given tables in one unit of work.
func (c *Client) Define(ctx context.Context, tables ...*TableDef) error {
	if err := c.connected(); err != nil {
		return err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	stmts, err := c.CompileAll(ctx, tables...)
	if err != nil {
		return err
	}
	return c.runner.Exec(ctx, stmts)
}

// Apply compiles and executes a delta against the live database.
func (c *Client) Apply(ctx context.Context, before *TableDef, delta *Delta) error {
	if err := c.connected(); err != nil {
		return err
	}
	stmts, err := c.Diff(before, delta)
	if err != nil {
		return err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.runner.Exec(ctx, stmts)
}

// WriteBaseline renders the create statements of every table into
// definition.sql and returns its path.
func (c *Client) WriteBaseline(ctx context.Context, tables ...*TableDef) (string, error) {
	stmts, err := c.CompileAll(ctx, tables...)
	if err != nil {
		return "", err
	}
	return c.writer.WriteBaseline(stmts)
}

// WriteMigration renders the changes in doc into a new stamp file. It
// returns the stamp and path, or empty strings when there are no changes.
func (c *Client) WriteMigration(doc *Document, now time.Time) (string, string, error) {
	stmts, err := c.DiffDocument(doc)
	if err != nil || len(stmts) == 0 {
		return "", "", err
	}
	stamp := runner.NewStamp(now)
	path, err := c.writer.WriteMigration(stamp, stmts)
	if err != nil {
		return "", "", err
	}
	return stamp, path, nil
}

// WriteRevision writes the stamp file for doc's changes and re-renders
// definition.sql from the after-state, keeping cold starts equivalent
// to replaying every stamp.
func (c *Client) WriteRevision(ctx context.Context, doc *Document, now time.Time) (string, error) {
	stamp, _, err := c.WriteMigration(doc, now)
	if err != nil || stamp == "" {
		return "", err
	}
	if _, err := c.WriteBaseline(ctx, doc.After()...); err != nil {
		return "", err
	}
	return stamp, nil
}

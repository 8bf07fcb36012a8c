package relite

import (
	"context"

	"github.com/hlop3z/relite/internal/query"
)

// NewModel describes table for reads and writes. The configured schema
// applies when the table has none.
func (c *Client) NewModel(table *TableDef) *Model {
	return &Model{Table: c.scoped(table)}
}

// Create inserts records, filling deferred defaults and auto keys in place.
func (c *Client) Create(ctx context.Context, model *Model, records ...Record) error {
	if err := c.connected(); err != nil {
		return err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.store.Create(ctx, model, records...)
}

// Retrieve reads records matching r.
func (c *Client) Retrieve(ctx context.Context, model *Model, r Retrieval) (*Result, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.store.Retrieve(ctx, model, r)
}

// Update sets values on every record matching criteria.
func (c *Client) Update(ctx context.Context, model *Model, criteria []Predicate, values Record) (int64, error) {
	if err := c.connected(); err != nil {
		return 0, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.store.Update(ctx, model, criteria, values)
}

// Delete removes every record matching criteria.
func (c *Client) Delete(ctx context.Context, model *Model, criteria []Predicate) (int64, error) {
	if err := c.connected(); err != nil {
		return 0, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.store.Delete(ctx, model, criteria)
}

// Search compiles a free-text search without running it. The bool
// reports whether a relation lookup hit its chunk limit.
func (c *Client) Search(ctx context.Context, model *Model, term string, chunk int) (Statement, bool, error) {
	if err := c.connected(); err != nil {
		return Statement{}, false, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return query.NewSearcher(c.store).Compile(ctx, model, term, chunk)
}

package relite

import (
	"context"

	"github.com/hlop3z/relite/internal/engine"
	"github.com/hlop3z/relite/internal/engine/runner"
)

// Migrate brings the database up to the migrations directory. On an empty
// ledger it records every stamp and runs definition.sql; otherwise it runs
// each pending stamp in order. It reports whether any work was done.
func (c *Client) Migrate(ctx context.Context) (bool, error) {
	if err := c.connected(); err != nil {
		return false, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.runner.Migrate(ctx)
}

// Status returns the ledger status of every known or recorded stamp.
func (c *Client) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := c.connected(); err != nil {
		return nil, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	return c.runner.Status(ctx)
}

// Pending returns the stamps Migrate would run, and whether it would
// cold start by running definition.sql.
func (c *Client) Pending(ctx context.Context) ([]string, bool, error) {
	if err := c.connected(); err != nil {
		return nil, false, err
	}
	ctx, cancel := c.context(ctx)
	defer cancel()
	plan, baseline, err := c.runner.Plan(ctx)
	if err != nil {
		return nil, false, err
	}
	switch plan.Kind {
	case engine.PlanColdStart:
		return plan.Stamps, baseline != nil, nil
	case engine.PlanPending:
		stamps := make([]string, len(plan.Migrations))
		for i, m := range plan.Migrations {
			stamps[i] = m.Stamp
		}
		return stamps, false, nil
	default:
		return nil, false, nil
	}
}

// Fingerprint returns the merkle root over the migrations directory.
func (c *Client) Fingerprint() (string, error) {
	baseline, all, err := runner.Load(c.config.MigrationsDir)
	if err != nil {
		return "", err
	}
	return runner.Fingerprint(baseline, all)
}

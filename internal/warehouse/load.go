package warehouse

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// StagingTable returns the staging table configured for a report type.
func (c *Client) StagingTable(rt enrich.ReportType) (string, error) {
	switch rt {
	case enrich.Sales:
		return c.cfg.StagingSalesTable, nil
	case enrich.Inventory:
		return c.cfg.StagingInventoryTable, nil
	default:
		return "", fmt.Errorf("unknown report type %q", rt)
	}
}

// LoadStaging truncates the report type's staging table and COPYies the
// JSON artifacts under s3Location into it, in one transaction. A failed
// COPY rolls back so the staging table keeps its previous load.
func (c *Client) LoadStaging(ctx context.Context, rt enrich.ReportType, s3Location string) error {
	table, err := c.StagingTable(rt)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin staging load: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("TRUNCATE TABLE %s", table)); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", table, err)
	}

	copySQL := fmt.Sprintf(
		"COPY %s FROM '%s' IAM_ROLE '%s' TRUNCATECOLUMNS json 'auto'",
		table, s3Location, c.cfg.IAMRole)
	if _, err := tx.ExecContext(ctx, copySQL); err != nil {
		return fmt.Errorf("failed to copy into %s from %s: %w", table, s3Location, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit staging load: %w", err)
	}
	c.logger.Info("loaded staging table", "table", table, "source", s3Location)
	return nil
}

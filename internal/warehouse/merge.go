package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// firstValueWindow orders copies of a record newest first. The merge
// partitions on record_id alone: a corrected resend keeps the file name
// and row ordinal, so its record_id collides with the original while
// its cell contents (and therefore uuid) differ. Every column except
// the key takes the newest copy's value, which keeps record_id unique
// in the final table. created_at alone can tie when two deliveries
// land in the same load, so the received date and file name break the
// tie deterministically.
const firstValueWindow = "OVER (PARTITION BY record_id " +
	"ORDER BY created_at DESC, email_received_date DESC, file_name DESC " +
	"ROWS BETWEEN UNBOUNDED PRECEDING AND UNBOUNDED FOLLOWING)"

// MergeSales appends new sales records from staging into the final
// table, collapsing redundant deliveries. Already-merged record_ids are
// never touched, so reruns are no-ops.
func (c *Client) MergeSales(ctx context.Context) (int64, error) {
	return c.merge(ctx, c.cfg.FinalSalesTable, c.cfg.StagingSalesTable, salesColumns)
}

// MergeInventory is MergeSales for the inventory stream.
func (c *Client) MergeInventory(ctx context.Context) (int64, error) {
	return c.merge(ctx, c.cfg.FinalInventoryTable, c.cfg.StagingInventoryTable, inventoryColumns)
}

func (c *Client) merge(ctx context.Context, final, staging string, columns []string) (int64, error) {
	res, err := c.db.ExecContext(ctx, mergeSQL(final, staging, columns))
	if err != nil {
		return 0, fmt.Errorf("failed to merge %s into %s: %w", staging, final, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read merge row count: %w", err)
	}
	c.logger.Info("merged staging into final", "staging", staging, "final", final, "rows", rows)
	return rows, nil
}

func mergeSQL(final, staging string, columns []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (\nSELECT DISTINCT\n", final)
	for i, col := range columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		if col == "record_id" {
			fmt.Fprintf(&b, "    %s", col)
		} else {
			fmt.Fprintf(&b, "    FIRST_VALUE(%s) %s AS %s", col, firstValueWindow, col)
		}
	}
	fmt.Fprintf(&b, "\nFROM %s\nWHERE record_id NOT IN (SELECT DISTINCT record_id FROM %s)\n)", staging, final)
	return b.String()
}

package warehouse

import (
	"context"
	"fmt"
	"strings"
)

// Fact table columns, in DDL order. Staging and final tables share the
// layout; everything is text because normalization never types cells.
var salesColumns = []string{
	"record_id",
	"report_id",
	"uuid",
	"created_at",
	"file_name",
	"sheet_name",
	"number_of_records_in_sheet",
	"sender_email_address",
	"email_subject",
	"email_received_date",
	"reporting_period",
	"reporting_period_start",
	"reporting_period_end",
	"retailer_id",
	"retailer_name",
	"retailer_internal_id",
	"sell_through_channel",
	"store_id",
	"store_name",
	"region",
	"country",
	"state",
	"product_retailer_sku",
	"product_sku",
	"product_name",
	"product_size",
	"product_line",
	"currency",
	"total_quantity",
	"total_value",
	"return_quantity",
	"return_value",
	"free_replacements_quantity",
	"free_replacements_value",
	"tags",
	`"type"`,
	"note",
}

var inventoryColumns = []string{
	"record_id",
	"report_id",
	"uuid",
	"created_at",
	"file_name",
	"sheet_name",
	"number_of_records_in_sheet",
	"sender_email_address",
	"email_subject",
	"email_received_date",
	"effective_date",
	"retailer_id",
	"retailer_name",
	"retailer_internal_id",
	"plant_id",
	"plant_name",
	"region",
	"country",
	"state",
	"product_retailer_sku",
	"product_sku",
	"product_name",
	"product_size",
	"product_line",
	"currency",
	"quantity_warehouse",
	"quantity_physical",
	"quantity_intransit",
	"value_warehouse",
	"value_physical",
	"value_intransit",
	"tags",
	`"type"`,
	"note",
}

// EnsureStagingTables creates the sales and inventory staging tables,
// dropping them first when configured to.
func (c *Client) EnsureStagingTables(ctx context.Context) error {
	return c.ensureTables(ctx, "staging",
		c.cfg.StagingSalesTable, c.cfg.StagingInventoryTable, c.cfg.DropRecreateStaging)
}

// EnsureFinalTables creates the sales and inventory final tables.
// Drop-recreate here discards history and exists for schema rebuilds.
func (c *Client) EnsureFinalTables(ctx context.Context) error {
	return c.ensureTables(ctx, "final",
		c.cfg.FinalSalesTable, c.cfg.FinalInventoryTable, c.cfg.DropRecreateFinal)
}

func (c *Client) ensureTables(ctx context.Context, kind, salesTable, inventoryTable string, drop bool) error {
	tables := []struct {
		name    string
		columns []string
	}{
		{salesTable, salesColumns},
		{inventoryTable, inventoryColumns},
	}
	for _, t := range tables {
		if drop {
			if _, err := c.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", t.name)); err != nil {
				return fmt.Errorf("failed to drop %s table %s: %w", kind, t.name, err)
			}
		}
		c.logger.Info("creating table if missing", "kind", kind, "table", t.name)
		if _, err := c.db.ExecContext(ctx, createTableSQL(t.name, t.columns)); err != nil {
			return fmt.Errorf("failed to create %s table %s: %w", kind, t.name, err)
		}
	}
	return nil
}

func createTableSQL(table string, columns []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s (\n", table)
	for i, col := range columns {
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "    %s VARCHAR(512)", col)
	}
	b.WriteString("\n)")
	return b.String()
}

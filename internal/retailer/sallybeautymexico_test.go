package retailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

func sallyMXStoreRows(t *testing.T) *table.Table {
	t.Helper()
	raw := table.New("Month", "Store ID", "Store name", "SKU", "Product", "Quantity", "Price")
	require.NoError(t, raw.AppendRow("2021-01-15", "S1", "Centro", "M-1", "No.3", "4", "80.00"))
	require.NoError(t, raw.AppendRow("2021-02-15", "S1", "Centro", "M-1", "No.3", "6", "120.00"))
	require.NoError(t, raw.AppendRow("2021-03-15", "S2", "Norte", "M-2", "No.4", "2", "44.00"))
	return raw
}

func TestSallyMXTransformDropsStaleMonths(t *testing.T) {
	p, err := New(TagSallyBeautyMX, testEnv(t, Info{}))
	require.NoError(t, err)

	spec := p.Locate("Olaplex Sales.xlsx", "Sales of stores")[0]
	out, err := p.Transform(context.Background(), sallyMXStoreRows(t), spec, enrich.Source{}, "Sales of stores")
	require.NoError(t, err)

	// The workbook is cumulative: January is older than the default
	// one-month window behind March and must not be re-reported.
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "2021-02-01", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-02-28", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "2021-03-01", out.Cell(1, "reporting_period_start"))
	assert.Equal(t, "2021-03-31", out.Cell(1, "reporting_period_end"))
	assert.Equal(t, "store", out.Cell(0, "sell_through_channel"))
	assert.Equal(t, "by_channel_sku", out.Cell(0, "type"))
	assert.Equal(t, "120", out.Cell(0, "total_value"))
}

func TestSallyMXNumMonthsOptionWidensWindow(t *testing.T) {
	p, err := New(TagSallyBeautyMX, testEnv(t, Info{Options: map[string]string{"num_months": "2"}}))
	require.NoError(t, err)

	spec := p.Locate("Olaplex Sales.xlsx", "Sales of stores")[0]
	out, err := p.Transform(context.Background(), sallyMXStoreRows(t), spec, enrich.Source{}, "Sales of stores")
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
}

func TestSallyMXTransformProfessional(t *testing.T) {
	p, err := New(TagSallyBeautyMX, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("Month", "Client", "SKU", "Product", "Quantity", "Price")
	require.NoError(t, raw.AppendRow("2021-03-15", "Salon Flores", "M-1", "No.3", "3", "60.00"))

	spec := p.Locate("Olaplex Sales.xlsx", "Sales of Professional")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Sales of Professional")
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "Salon Flores", out.Cell(0, "store_name"))
	assert.Equal(t, "professional", out.Cell(0, "sell_through_channel"))
}

func TestSallyMXTransformInventory(t *testing.T) {
	p, err := New(TagSallyBeautyMX, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("effective_date", "plant_Id", "product_sku", "product_name", "quantity_warehouse", "value_warehouse", "Tags")
	require.NoError(t, raw.AppendRow("01/02/2021", "W1", "M-1", "No.3", "40", "800", "a"))
	require.NoError(t, raw.AppendRow("01/03/2021", "W1", "M-1", "No.3", "35", "700", "a"))

	spec := p.Locate("Olaplex Sales.xlsx", "Inventory")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Inventory")
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "W1", out.Cell(0, "plant_id"))
	assert.Equal(t, "by_sku", out.Cell(0, "type"))
	assert.NotEmpty(t, out.Cell(0, "effective_date"))
	assert.Contains(t, out.Cell(0, "effective_date"), "2021-")
}

func TestSallyMXEmptySheetYieldsNoRows(t *testing.T) {
	p, err := New(TagSallyBeautyMX, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("Month", "Store ID", "Store name", "SKU", "Product", "Quantity", "Price")
	spec := p.Locate("Olaplex Sales.xlsx", "Sales of stores")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Sales of stores")
	require.NoError(t, err)
	assert.Zero(t, out.Len())
}

package retailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

func TestSallyUKTransformSales(t *testing.T) {
	p, err := New(TagSallyUKProDuo, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("reporting_period_start", "reporting_period_end", "retailer_name",
		"sell_through_channel", "country", "product_sku", "olaplex_product_id",
		"product_name", "currency", "total_quantity", "total_value", "Tags")
	require.NoError(t, raw.AppendRow("2021-03-01", "2021-03-31", "Sally Salon Services",
		"store", "GB", "SLY-1", "OLP-3", "No.3", "GBP", "8", "1,160.00", "x"))

	spec := p.Locate("Sally UK ProDuo Monthly Report.xlsx", "Sales")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Sales")
	require.NoError(t, err)
	assert.Equal(t, "SLY-1", out.Cell(0, "product_retailer_sku"))
	assert.Equal(t, "OLP-3", out.Cell(0, "product_sku"))
	assert.Equal(t, "1160", out.Cell(0, "total_value"))
	assert.Equal(t, "2021-03-31", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "x", out.Cell(0, "tags"))
	assert.Equal(t, "by_country_channel_sku", out.Cell(0, "type"))
	assert.Equal(t, "Monthly", out.Cell(0, "reporting_period"))
}

func TestSallyUKTransformInventory(t *testing.T) {
	p, err := New(TagSallyUKProDuo, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("effective_date", "retailer_name", "warehouse_name",
		"olaplex_product_id", "product_sku", "quantity_warehouse", "value_warehouse")
	require.NoError(t, raw.AppendRow("2021-03-31", "Pro-Duo NV/SA", "Ghent DC",
		"OLP-4", "SLY-2", "50", "900"))

	spec := p.Locate("Sally UK ProDuo Monthly Report.xlsx", "Inventory")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Inventory")
	require.NoError(t, err)
	assert.Equal(t, "Ghent DC", out.Cell(0, "plant_name"))
	assert.Equal(t, "SLY-2", out.Cell(0, "product_retailer_sku"))
	assert.Equal(t, "by_warehouse_sku", out.Cell(0, "type"))
	assert.Equal(t, "2021-03-31", out.Cell(0, "effective_date"))
}

// One workbook carries rows for two entities; each row resolves its
// own retailer identity from the reported name.
func TestSallyUKIdentityPerRow(t *testing.T) {
	p, err := New(TagSallyUKProDuo, testEnv(t, Info{}))
	require.NoError(t, err)
	id, err := p.Identity(context.Background())
	require.NoError(t, err)

	tbl := table.New("retailer_name")
	require.NoError(t, tbl.AppendRow("Sally Salon Services"))
	require.NoError(t, tbl.AppendRow(" pro-duo nv/sa "))
	require.NoError(t, tbl.AppendRow("Somebody Else"))

	rid, name, internal := id.Resolve(tbl, 0)
	assert.Equal(t, "C128878 Sally Salon Services", rid)
	assert.Equal(t, "Sally Salon Services", name)
	assert.Equal(t, "6598548", internal)

	rid, name, internal = id.Resolve(tbl, 1)
	assert.Equal(t, "C155330 Pro-Duo NV/SA", rid)
	assert.Equal(t, "Pro-Duo NV/SA", name)
	assert.Equal(t, "7101588", internal)

	rid, name, internal = id.Resolve(tbl, 2)
	assert.Empty(t, rid)
	assert.Equal(t, "Somebody Else", name)
	assert.Empty(t, internal)
}

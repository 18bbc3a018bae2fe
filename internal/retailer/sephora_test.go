package retailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

func sephoraEnv(t *testing.T, cells map[string]string, caStores []string) Env {
	t.Helper()
	env := testEnv(t, Info{Options: map[string]string{
		sephoraCAStoresTable: "retail.sephora_ca_stores",
	}})
	env.Cells = fakeCells{values: cells}
	env.Stores = fakeStores{ids: caStores}
	return env
}

func TestSephoraIdentityPerRow(t *testing.T) {
	p, err := New(TagSephora, sephoraEnv(t, nil, nil))
	require.NoError(t, err)
	id, err := p.Identity(context.Background())
	require.NoError(t, err)

	rows := table.New("country")
	require.NoError(t, rows.AppendRow("US"))
	require.NoError(t, rows.AppendRow("CA"))

	rid, name, internal := id.Resolve(rows, 0)
	assert.Equal(t, "C050439 Sephora", rid)
	assert.Equal(t, "Sephora", name)
	assert.Equal(t, "1210192", internal)

	rid, name, internal = id.Resolve(rows, 1)
	assert.Equal(t, "C095719 Sephora Beauty Canada, Inc.", rid)
	assert.Equal(t, "Sephora Beauty Canada, Inc.", name)
	assert.Equal(t, "5077296", internal)
}

func TestSephoraBestSellerTransforms(t *testing.T) {
	cells := map[string]string{"US!A3": "Week end date: Jun 15, 2019"}
	p, err := New(TagSephora, sephoraEnv(t, cells, nil))
	require.NoError(t, err)
	src := enrich.Source{LocalPath: "/tmp/1616101111_Best Seller - Olaplex.xlsx"}

	raw := table.New("SKU", "SKU Description", "Vendor MFG", "Total", "Total.1", "Total.6", ".COM OO", "DC OO")
	require.NoError(t, raw.AppendRow("2088983", "OLAPLEX No.3", "OLP-3", "1,000.00", "25", "400", "10", "8"))

	specs := p.Locate("Best Seller - Olaplex.xlsx", "US")
	require.Len(t, specs, 2)

	inv, err := p.Transform(context.Background(), raw, specs[0], src, "US")
	require.NoError(t, err)
	assert.Equal(t, "400", inv.Cell(0, "quantity_warehouse"))
	assert.Equal(t, "18", inv.Cell(0, "quantity_intransit"))
	assert.Equal(t, "US", inv.Cell(0, "country"))
	assert.Equal(t, "2019-06-15", inv.Cell(0, "effective_date"))

	sales, err := p.Transform(context.Background(), raw, specs[1], src, "US")
	require.NoError(t, err)
	assert.Equal(t, "1,000.00", sales.Cell(0, "total_value"))
	assert.Equal(t, "25", sales.Cell(0, "total_quantity"))
	assert.Equal(t, "2019-06-09", sales.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2019-06-15", sales.Cell(0, "reporting_period_end"))
}

func TestSephoraByStoreCATransform(t *testing.T) {
	cells := map[string]string{"WEEKLY brand sales by store!B2": "Jun-27-2020"}
	p, err := New(TagSephora, sephoraEnv(t, cells, nil))
	require.NoError(t, err)
	src := enrich.Source{LocalPath: "/tmp/1616101111_Olaplex Weekly Brand Sales by Store and SKU.xlsx"}

	raw := table.New("District Name", "Location", "Location Name", "$Sales TY")
	require.NoError(t, raw.AppendRow("Dotcom .CA", "900", "Sephora.ca", "5000"))
	require.NoError(t, raw.AppendRow("Ontario", "101", "Toronto Eaton Centre", "1200"))

	spec := p.Locate("Olaplex Weekly Brand Sales by Store and SKU.xlsx", "WEEKLY brand sales by store")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "WEEKLY brand sales by store")
	require.NoError(t, err)
	assert.Equal(t, "2020-06-21", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2020-06-27", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "online", out.Cell(0, "sell_through_channel"))
	assert.Equal(t, "store", out.Cell(1, "sell_through_channel"))
	assert.Equal(t, "CA", out.Cell(0, "country"))
}

func TestSephoraByLocationDropsCAStores(t *testing.T) {
	p, err := New(TagSephora, sephoraEnv(t, nil, []string{"600"}))
	require.NoError(t, err)
	src := enrich.Source{LocalPath: "/tmp/1616101111_Olaplex Weekly Sales by Locations.xlsx"}

	raw := table.New("Week End Date (Saturday)", "Location", "Week End Sales Net $")
	require.NoError(t, raw.AppendRow("Jun 15, 2019", "100 - Times Square", "900"))
	require.NoError(t, raw.AppendRow("Jun 15, 2019", "600 - Yorkdale", "300"))

	spec := p.Locate("Olaplex Weekly Sales by Locations.xlsx", "Page1")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "Page1")
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "100", out.Cell(0, "store_id"))
	assert.Equal(t, "Times Square", out.Cell(0, "store_name"))
	assert.Equal(t, "US", out.Cell(0, "country"))
	assert.Equal(t, "2019-06-15", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "2019-06-09", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "by_location", out.Cell(0, "type"))
}

func TestSephoraByLocationRequiresStoreTable(t *testing.T) {
	env := testEnv(t, Info{})
	env.Stores = fakeStores{}
	p, err := New(TagSephora, env)
	require.NoError(t, err)

	spec := p.Locate("Olaplex Weekly Sales by Locations.xlsx", "Page1")[0]
	_, err = p.Transform(context.Background(), table.New("Location"), spec, enrich.Source{}, "Page1")
	assert.ErrorContains(t, err, "ca_stores_table")
}

package retailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/testutil"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

type fakeCells struct {
	values map[string]string // "sheet!ref" -> value
}

func (f fakeCells) Cell(path, sheet, ref string) (string, error) {
	return f.values[sheet+"!"+ref], nil
}

type fakeRows struct {
	cells []string
}

func (f fakeRows) Row(path, sheet string, row int) ([]string, error) {
	return f.cells, nil
}

type fakeStores struct {
	ids []string
}

func (f fakeStores) StoreIDs(ctx context.Context, tableName string) ([]string, error) {
	return f.ids, nil
}

type fakeSheets struct {
	tables map[string]*table.Table
}

func (f fakeSheets) SheetNames(path string) ([]string, error) {
	names := make([]string, 0, len(f.tables))
	for n := range f.tables {
		names = append(names, n)
	}
	return names, nil
}

func (f fakeSheets) ReadSheetAt(path, sheet string, layout xlsx.Layout) (*table.Table, error) {
	return f.tables[sheet], nil
}

func testEnv(t *testing.T, info Info) Env {
	t.Helper()
	return Env{
		Info:   info,
		Logger: testutil.NewTestLogger(t),
		Cells:  fakeCells{},
	}
}

func TestNewUnknownTag(t *testing.T) {
	_, err := New("nobody", Env{})
	assert.ErrorContains(t, err, "unknown retailer")
}

func TestTagsCoverRegistry(t *testing.T) {
	tags := Tags()
	assert.Len(t, tags, len(registry))
	for _, tag := range tags {
		p, err := New(tag, Env{Logger: testutil.NewTestLogger(t)})
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
}

func TestLocateDispatch(t *testing.T) {
	tests := []struct {
		name     string
		tag      Tag
		file     string
		sheet    string
		want     int
		wantType enrich.ReportType
	}{
		{"adi sales", TagADI, "1616086825_ADI Sales Report 2021-01-31.xlsx", "Sheet1", 1, enrich.Sales},
		{"adi inventory", TagADI, "ADI Inventory Report 2021-01-31.xlsx", "Sheet1", 1, enrich.Inventory},
		{"adi other file", TagADI, "ADI Forecast 2021.xlsx", "Sheet1", 0, ""},
		{"newflag sales sheet", TagNewFlag, "NewFlag_202104.xlsx", "Sales", 1, enrich.Sales},
		{"newflag inventory sheet", TagNewFlag, "NewFlag_202104.xlsx", "Inv", 1, enrich.Inventory},
		{"newflag unknown sheet", TagNewFlag, "NewFlag_202104.xlsx", "Notes", 0, ""},
		{"asos both streams", TagASOS, "ASOS Weekly Sales Report Excel Details for 2021-01-04.xlsx", "Brand Overview - Excel Detail (", 2, enrich.Sales},
		{"asos wrong sheet", TagASOS, "ASOS Weekly Sales Report Excel Details for 2021-01-04.xlsx", "Summary", 0, ""},
		{"jcpenney merchandise", TagJCPenney, "1616101111_Merchandise.xlsx", "Sheet1", 2, enrich.Sales},
		{"jcpenney location", TagJCPenney, "Location.xlsx", "Sheet1", 2, enrich.Inventory},
		{"bsg sheet", TagBSG, "2021 03 March-OLAPLEX-SKU SALES.xlsx", "BSG", 1, enrich.Sales},
		{"bsg other sheet", TagBSG, "2021 03 March-OLAPLEX-SKU SALES.xlsx", "AMLP-Sales to Franchisee", 0, ""},
		{"baldacci sales csv", TagBaldacci, "tb-rapport 2021 02.csv", "", 1, enrich.Sales},
		{"baldacci stock csv", TagBaldacci, "StockValue 2021 02.csv", "", 1, enrich.Inventory},
		{"thg weekly", TagTHG, "THG Weekly UK Report 2021-04-12.xlsx", "Sheet1", 1, enrich.Sales},
		{"thg stock view", TagTHG, "stock view olaplex 24.08.2020 - 175b21a27ee195f5.xlsx", "Stock View", 1, enrich.Inventory},
		{"cult beauty", TagCultBeauty, "OLAPLEX Total Weekly Sales - March 2021.xlsx", "wc 21st March", 1, enrich.Sales},
		{"haircare aus", TagHaircareAust, "HaircareAust_Sales.xlsx", "HCA", 1, enrich.Sales},
		{"haircare nz", TagHaircareAust, "HaircareAust_Sales.xlsx", "HCNZ", 1, enrich.Sales},
		{"haircare inventory", TagHaircareAust, "HaircareAust_Inventory.xlsx", "Inventory", 1, enrich.Inventory},
		{"aston sales", TagAstonAndFincher, "Aston Fincher Monthly Report.xlsx", "Sales", 1, enrich.Sales},
		{"salon centric store", TagSalonCentric, "SC Monthly Brand Report - Olaplex - 03.2021.xlsx", "Store", 1, enrich.Sales},
		{"salon centric inventory", TagSalonCentric, "SC Monthly Brand Report - Olaplex - 03.2021.xlsx", "Inventory", 1, enrich.Inventory},
		{"sephora best seller", TagSephora, "1616101111_Best Seller - Olaplex.xlsx", "US", 2, enrich.Inventory},
		{"sephora skipped sheet", TagSephora, "Best Seller - Olaplex.xlsx", "Glossary", 0, ""},
		{"amazon us sales", TagAmazonUS, "1616101111_Amazon US Monthly Sales.csv", "", 1, enrich.Sales},
		{"amazon us inventory", TagAmazonUS, "Amazon US Monthly Inventory.csv", "", 1, enrich.Inventory},
		{"amazon us wrong market", TagAmazonUS, "Amazon GB Monthly Sales.csv", "", 0, ""},
		{"amazon gb sales", TagAmazonGB, "Amazon GB Monthly Sales.csv", "", 1, enrich.Sales},
		{"amazon ca inventory", TagAmazonCA, "Amazon CA Monthly Inventory.csv", "", 1, enrich.Inventory},
		{"sally mx stores", TagSallyBeautyMX, "1616101111_Olaplex Sales.xlsx", "Sales of stores", 1, enrich.Sales},
		{"sally mx professional", TagSallyBeautyMX, "Olaplex Sales.xlsx", "Sales of Professional", 1, enrich.Sales},
		{"sally mx inventory", TagSallyBeautyMX, "Olaplex Sales.xlsx", "Inventory", 1, enrich.Inventory},
		{"sally mx unknown sheet", TagSallyBeautyMX, "Olaplex Sales.xlsx", "Summary", 0, ""},
		{"sallyuk sales", TagSallyUKProDuo, "Sally UK ProDuo Monthly Report.xlsx", "Sales", 1, enrich.Sales},
		{"sallyuk inventory", TagSallyUKProDuo, "Sally UK ProDuo Monthly Report.xlsx", "Inventory", 1, enrich.Inventory},
		{"sallyuk other file", TagSallyUKProDuo, "Sally UK Forecast.xlsx", "Sales", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.tag, testEnv(t, Info{}))
			require.NoError(t, err)
			specs := p.Locate(tt.file, tt.sheet)
			require.Len(t, specs, tt.want)
			if tt.want > 0 {
				assert.Equal(t, tt.wantType, specs[0].ReportType)
			}
		})
	}
}

func TestADITransformInventoryFileDateWins(t *testing.T) {
	p, err := New(TagADI, testEnv(t, Info{RetailerID: "C033038 ADI srl", InternalID: "900011"}))
	require.NoError(t, err)

	raw := table.New("effective_date", "olaplex_product_id", "product_name", "currency", "quantity_warehouse")
	require.NoError(t, raw.AppendRow("04/05/2021", "OP-100", "No.4 Shampoo", "EUR", "12"))
	src := enrich.Source{LocalPath: "/tmp/1616086825_ADI Inventory Report 2021-04-30.xlsx"}

	spec := p.Locate("ADI Inventory Report 2021-04-30.xlsx", "Sheet1")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "Sheet1")
	require.NoError(t, err)
	require.Equal(t, 1, out.Len())
	assert.Equal(t, "2021-04-30", out.Cell(0, "effective_date"))
	assert.Equal(t, "Monthly", out.Cell(0, "reporting_period"))
	assert.Equal(t, "by_sku", out.Cell(0, "type"))
	assert.Equal(t, "OP-100", out.Cell(0, "product_sku"))
}

func TestASOSTransform(t *testing.T) {
	p, err := New(TagASOS, testEnv(t, Info{}))
	require.NoError(t, err)
	src := enrich.Source{LocalPath: "/tmp/1616101111_ASOS Weekly Sales Report Excel Details-Olaplex for 2021-01-04.xlsx"}
	specs := p.Locate("ASOS Weekly Sales Report Excel Details-Olaplex for 2021-01-04.xlsx", "Brand Overview - Excel Detail (")
	require.Len(t, specs, 2)

	raw := table.New("Category", "Style", "column_3", "Supplier Ref", "Net Sales Unit", "Net Sales Value", "Returns Units", "Stock Units", "Stock Value (£)")
	require.NoError(t, raw.AppendRow("Hair", "OLP-1", "No.3 Perfector", "SUP-9", "1,250", "$3,400.50", "3", "90", "500"))

	sales, err := p.Transform(context.Background(), raw, specs[0], src, "Brand Overview - Excel Detail (")
	require.NoError(t, err)
	assert.Equal(t, "1250", sales.Cell(0, "total_quantity"))
	assert.Equal(t, "3400.5", sales.Cell(0, "total_value"))
	assert.Equal(t, "2020-12-28", sales.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-01-03", sales.Cell(0, "reporting_period_end"))
	assert.Equal(t, "GBP", sales.Cell(0, "currency"))

	inv, err := p.Transform(context.Background(), raw, specs[1], src, "Brand Overview - Excel Detail (")
	require.NoError(t, err)
	assert.Equal(t, "2021-01-03", inv.Cell(0, "effective_date"))
	assert.Equal(t, "90", inv.Cell(0, "quantity_warehouse"))
	assert.Equal(t, "No.3 Perfector", inv.Cell(0, "product_name"))
}

func TestBaldacciTransformSales(t *testing.T) {
	env := testEnv(t, Info{})
	env.Cells = fakeCells{values: map[string]string{
		"!A2": "Period: 2021-02-01 - 2021-02-28;;;",
	}}
	p, err := New(TagBaldacci, env)
	require.NoError(t, err)

	raw := table.New("Art.nr", "Artikelnamn", "Antal", "Försäljningspris (exkl moms)")
	require.NoError(t, raw.AppendRow("1001", "Olaplex No,3", "4", " 111,84"))
	src := enrich.Source{LocalPath: "/tmp/1616101111_tb-rapport 2021 02.csv"}

	spec := p.Locate("tb-rapport 2021 02.csv", "")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "")
	require.NoError(t, err)
	assert.Equal(t, "111.84", out.Cell(0, "total_value"))
	assert.Equal(t, "Olaplex No.3", out.Cell(0, "product_name"))
	assert.Equal(t, "2021-02-01", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-02-28", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "SEK", out.Cell(0, "currency"))
}

func TestBaldacciTransformInventory(t *testing.T) {
	env := testEnv(t, Info{})
	env.Cells = fakeCells{values: map[string]string{
		"!A2": "Datum: 2021-02-28;;;",
	}}
	p, err := New(TagBaldacci, env)
	require.NoError(t, err)

	raw := table.New("Artikelnummer", "Benämning", "Antal i lager", "Summa (exkl moms)")
	require.NoError(t, raw.AppendRow("1001", "Olaplex No.3", "7", "1 234,56"))
	src := enrich.Source{LocalPath: "/tmp/1616101111_StockValue.csv"}

	spec := p.Locate("StockValue.csv", "")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", out.Cell(0, "value_physical"))
	assert.Equal(t, "2021-02-28", out.Cell(0, "effective_date"))
}

func TestBSGTransform(t *testing.T) {
	p, err := New(TagBSG, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("Channel", "Region", "SKU", "Manufacturer#", "Product", "Size", "Currency", "Qty", "Sales", "Year", "Month")
	require.NoError(t, raw.AppendRow("Store", "West", "B-1", "M-1", "No.4", "250ml", "US Dollars", "10", "$150.00", "2021", "3"))
	require.NoError(t, raw.AppendRow("Store", "East", "B-2", "M-2", "No.5", "250ml", "Canadian Dollar", "5", "75", "2021.0", "12.0"))

	spec := p.Locate("2021 03 March-OLAPLEX-SKU SALES.xlsx", "BSG")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "BSG")
	require.NoError(t, err)
	assert.Equal(t, "US", out.Cell(0, "country"))
	assert.Equal(t, "CA", out.Cell(1, "country"))
	assert.Equal(t, "2021-03-01", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-03-31", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "2021-12-31", out.Cell(1, "reporting_period_end"))
	assert.Equal(t, "150", out.Cell(0, "total_value"))
}

func TestJCPenneyTransform(t *testing.T) {
	env := testEnv(t, Info{})
	env.Cells = fakeCells{values: map[string]string{
		"Sheet1!B3": "JCPenney | Week 14, 2021 | Company",
	}}
	p, err := New(TagJCPenney, env)
	require.NoError(t, err)

	raw := table.New("Product ", "Supp Style #", "Description ", "Wk(s) Net Sls U", "Wk(s) Net Sls R", "Whse EOP U", "Phys EOP U", "InTran U", "Whse EOP C", "Phys EOP C", "InTran C")
	require.NoError(t, raw.AppendRow("P1", "S1", "No.3 Perfector", "4", "80", "10", "12", "1", "100", "120", "10"))
	src := enrich.Source{LocalPath: "/tmp/1616101111_Merchandise.xlsx"}

	specs := p.Locate("Merchandise.xlsx", "Sheet1")
	require.Len(t, specs, 2)

	sales, err := p.Transform(context.Background(), raw, specs[0], src, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Week 14, 2021", sales.Cell(0, "reporting_period_start"))
	assert.Equal(t, "Week 14, 2021", sales.Cell(0, "reporting_period_end"))
	assert.Equal(t, "USD", sales.Cell(0, "currency"))

	inv, err := p.Transform(context.Background(), raw, specs[1], src, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "Week 14, 2021", inv.Cell(0, "effective_date"))
	assert.Equal(t, "1", inv.Cell(0, "quantity_intransit"))
}

func TestSalonCentricFiscalMonth(t *testing.T) {
	start, end, err := fiscalMonthRange("2020-M02 (Feb)")
	require.NoError(t, err)
	assert.Equal(t, "2020-02-01", start)
	assert.Equal(t, "2020-02-29", end)

	_, _, err = fiscalMonthRange("whenever")
	assert.Error(t, err)
}

func TestSalonCentricTransformStore(t *testing.T) {
	p, err := New(TagSalonCentric, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("Distribution Channel", "Profit Center Code", "Profit Center", "Net Sales Qty", "Net Sls Sd", "Fiscal Month", "AD Partner Store Rank")
	require.NoError(t, raw.AppendRow("SalonCentric Stores", "PC1", "Store One", "12", "1,440.00", "2021-M03 (Mar)", "A"))

	spec := p.Locate("SC Monthly Brand Report - Olaplex - 03.2021.xlsx", "Store")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "Store")
	require.NoError(t, err)
	assert.Equal(t, "2021-03-01", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-03-31", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "1440", out.Cell(0, "total_value"))
	assert.Equal(t, "A", out.Cell(0, "tags"))
	assert.Equal(t, "by_channel_(store)_sku", out.Cell(0, "type"))
}

func TestTHGTransformSales(t *testing.T) {
	p, err := New(TagTHG, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("site_name", "title", "Product_ID", "units", "revenue_USD", "Year", "iso_week")
	require.NoError(t, raw.AppendRow("lookfantastic", "No.3", "T-1", "20", "400", "2021", "14"))
	src := enrich.Source{LocalPath: "/tmp/1616101111_THG Weekly UK Report 2021-04-12.xlsx"}

	spec := p.Locate("THG Weekly UK Report 2021-04-12.xlsx", "Sheet1")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "Sheet1")
	require.NoError(t, err)
	assert.Equal(t, "2021-04-05", out.Cell(0, "reporting_period_start"))
	assert.Equal(t, "2021-04-11", out.Cell(0, "reporting_period_end"))
	assert.Equal(t, "Online", out.Cell(0, "sell_through_channel"))
}

func TestTHGTransformInventorySplitsPlants(t *testing.T) {
	p, err := New(TagTHG, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("column_0", "SKU", "TITLE", "column_3", "column_4", "Current stock", "On order", "column_7", "column_8", "column_9", "column_10", "column_11", "column_12", "Current stock.1", "On order.1")
	require.NoError(t, raw.AppendRow("", "T-1", "No.3", "", "", "50", "5", "", "", "", "", "", "", "30", "2"))
	src := enrich.Source{LocalPath: "/tmp/1616101111_stock view olaplex 24.08.2020 - 175b21a27ee195f5.xlsx"}

	spec := p.Locate("stock view olaplex 24.08.2020 - 175b21a27ee195f5.xlsx", "Stock View")[0]
	out, err := p.Transform(context.Background(), raw, spec, src, "Stock View")
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "Poland", out.Cell(0, "plant_name"))
	assert.Equal(t, "30", out.Cell(0, "quantity_physical"))
	assert.Equal(t, "Omega", out.Cell(1, "plant_name"))
	assert.Equal(t, "50", out.Cell(1, "quantity_physical"))
	assert.Equal(t, "2020-08-24", out.Cell(0, "effective_date"))
}

func TestCultBeautyWeekCommencing(t *testing.T) {
	tests := []struct {
		name   string
		banner string
		year   int
		want   string
	}{
		{"plain", "Total Weekly Sales - wc 21st March 2021", 2021, "2021-03-21"},
		{"ordinal nd", "Total Weekly Sales - wc 2nd May 2021", 2021, "2021-05-02"},
		{"august keeps its name", "Total Weekly Sales - wc 1st August 2021", 2021, "2021-08-01"},
		{"file year wins", "Total Weekly Sales - wc 28th December 2020", 2021, "2021-12-28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := weekCommencing(tt.banner, tt.year)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	_, err := weekCommencing("Total Weekly Sales", 2021)
	assert.Error(t, err)
}

func TestCultBeautyTransformEmptySheetSkips(t *testing.T) {
	env := testEnv(t, Info{})
	p, err := New(TagCultBeauty, env)
	require.NoError(t, err)

	raw := table.New("Name", "Ean", "Mpn", "Unit Sales", "£ Sales")
	spec := p.Locate("OLAPLEX Total Weekly Sales - March 2021.xlsx", "wc 21st March")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{LocalPath: "/tmp/f.xlsx"}, "wc 21st March")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestCultBeautyPickSheets(t *testing.T) {
	filled := table.New("Name", "Ean", "Mpn", "Unit Sales", "£ Sales")
	require.NoError(t, filled.AppendRow("No.3", "500", "M", "2", "40"))
	env := testEnv(t, Info{})
	env.Sheets = fakeSheets{tables: map[string]*table.Table{
		"wc 7th March":  filled,
		"wc 14th March": filled,
		"wc 21st March": table.New("Name"),
	}}
	p, err := New(TagCultBeauty, env)
	require.NoError(t, err)

	picker, ok := p.(SheetPicker)
	require.True(t, ok)
	got, err := picker.PickSheets("/tmp/f.xlsx", []string{"wc 7th March", "wc 14th March", "wc 21st March"})
	require.NoError(t, err)
	assert.Equal(t, []string{"wc 14th March"}, got)
}

func TestHaircareTransformKeepsSubRegionNote(t *testing.T) {
	p, err := New(TagHaircareAust, testEnv(t, Info{}))
	require.NoError(t, err)

	raw := table.New("Period Start", "Period End", "Region", "Product Code", "Product Name", "Quantity #", "USD Value After Discount", "Sub Region Code", "Sub Region Name")
	require.NoError(t, raw.AppendRow("2021-02-01", "2021-02-28", "Retail", "H-1", "No.3", "6", "120", "VIC", "Victoria"))

	spec := p.Locate("HaircareAust_Sales.xlsx", "HCA")[0]
	out, err := p.Transform(context.Background(), raw, spec, enrich.Source{}, "HCA")
	require.NoError(t, err)
	assert.Equal(t, "Sub Region Code = VIC; Sub Region Name = Victoria", out.Cell(0, "note"))
	assert.Equal(t, "AU", out.Cell(0, "country"))

	nz := p.Locate("HaircareAust_Sales.xlsx", "HCNZ")[0]
	out, err = p.Transform(context.Background(), raw, nz, enrich.Source{}, "HCNZ")
	require.NoError(t, err)
	assert.Equal(t, "NZ", out.Cell(0, "country"))
}

func TestIdentityFixed(t *testing.T) {
	p, err := New(TagADI, testEnv(t, Info{RetailerID: "C033038 ADI srl", InternalID: "900011"}))
	require.NoError(t, err)
	id, err := p.Identity(context.Background())
	require.NoError(t, err)
	rid, name, internal := id.Resolve(nil, 0)
	assert.Equal(t, "C033038 ADI srl", rid)
	assert.Equal(t, "ADI srl", name)
	assert.Equal(t, "900011", internal)
}

func TestISOWeekRange(t *testing.T) {
	start, end := isoWeekRange(2021, 14)
	assert.Equal(t, "2021-04-05", start.Format("2006-01-02"))
	assert.Equal(t, "2021-04-11", end.Format("2006-01-02"))

	// Week 1 of 2021 starts in the previous calendar year.
	start, _ = isoWeekRange(2021, 1)
	assert.Equal(t, "2021-01-04", start.Format("2006-01-02"))

	start, _ = isoWeekRange(2016, 1)
	assert.Equal(t, "2016-01-04", start.Format("2006-01-02"))
}

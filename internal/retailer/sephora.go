package retailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// Reference table option key: the warehouse table listing the store ids
// that belong to the Canadian entity.
const sephoraCAStoresTable = "ca_stores_table"

// sephora reports the US and Canadian entities through shared files, so
// retailer identity resolves per row from the country column. Three
// file families arrive: a best-seller workbook with inventory and sales
// measures per market sheet, a Canadian by-store report, and a combined
// by-location report that needs the CA store list to split entities.
type sephora struct {
	env        Env
	bestSeller []*MappingSpec
	byStoreCA  *MappingSpec
	byLocation *MappingSpec
}

func newSephora(env Env) Parser {
	bestSellerLayout := xlsx.Layout{HeaderRow: 10}
	return &sephora{
		env: env,
		bestSeller: []*MappingSpec{
			{
				Name:       "best_seller_inventory",
				ReportType: enrich.Inventory,
				Columns: map[string]string{
					"SKU":             "product_retailer_sku",
					"SKU Description": "product_name",
					"Vendor MFG":      "product_sku",
					"Total.6":         "quantity_warehouse",
				},
				Constants: map[string]string{
					"type":             "by_country_sku",
					"reporting_period": "Weekly",
				},
				Layout: bestSellerLayout,
			},
			{
				Name:       "best_seller_sales",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"SKU":             "product_retailer_sku",
					"SKU Description": "product_name",
					"Vendor MFG":      "product_sku",
					"Total":           "total_value",
					"Total.1":         "total_quantity",
				},
				Constants: map[string]string{
					"type":             "by_country_sku",
					"reporting_period": "Weekly",
				},
				Layout: bestSellerLayout,
			},
		},
		byStoreCA: &MappingSpec{
			Name:       "by_store_ca",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"District Name": "region",
				"Location":      "store_id",
				"Location Name": "store_name",
				"$Sales TY":     "total_value",
			},
			Constants: map[string]string{
				"type":             "by_location_channel",
				"reporting_period": "Weekly",
				"country":          "CA",
			},
			Layout: xlsx.Layout{HeaderRow: 7, SkipFooter: 1},
		},
		byLocation: &MappingSpec{
			Name:       "by_location",
			ReportType: enrich.Sales,
			Constants: map[string]string{
				"type":             "by_location",
				"reporting_period": "Weekly",
			},
			// A grand-total row opens the data area and two trailing
			// rows close it.
			Layout: xlsx.Layout{HeaderRow: 6, SkipRows: []int{7}, SkipFooter: 2},
		},
	}
}

func (p *sephora) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, strings.ToLower("Best Seller - Olaplex")):
		switch sheetName {
		case "US", "US_1", "Canada", "Canada_2":
			return p.bestSeller
		}
	case strings.Contains(lower, "weekly brand sales by store and sku"):
		switch sheetName {
		case "WEEKLY brand sales by store", "WEEKLY brand sales by store_2":
			return []*MappingSpec{p.byStoreCA}
		}
	case strings.Contains(lower, "weekly sales by locations"):
		switch sheetName {
		case "Page1", "Page1_1":
			return []*MappingSpec{p.byLocation}
		}
	}
	return nil
}

func (p *sephora) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	switch spec.Name {
	case "best_seller_inventory":
		return p.transformBestSellerInventory(raw, spec, src, sheet)
	case "best_seller_sales":
		return p.transformBestSellerSales(raw, spec, src, sheet)
	case "by_store_ca":
		return p.transformByStoreCA(raw, spec, src, sheet)
	case "by_location":
		return p.transformByLocation(ctx, raw, spec)
	}
	return nil, fmt.Errorf("unknown mapping %q", spec.Name)
}

func (p *sephora) transformBestSellerInventory(raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)

	// On-order stock splits across .com and DC columns; the combined
	// figure is what the schema calls in-transit.
	comCol, dcCol := ".COM OO", "DC OO"
	if !raw.HasColumn(dcCol) {
		dcCol = ".DC OO"
	}
	for i := 0; i < raw.Len(); i++ {
		if _, err := sumNumbers(raw.Cell(i, comCol), raw.Cell(i, dcCol)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	out.AddDerivedColumn("quantity_intransit", func(row int) string {
		v, _ := sumNumbers(raw.Cell(row, comCol), raw.Cell(row, dcCol))
		return v
	})

	end, err := p.weekEndDate(src.LocalPath, sheet)
	if err != nil {
		return nil, err
	}
	out.AddColumn("country", bestSellerCountry(sheet))
	out.AddColumn("effective_date", end.Format(isoDate))
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *sephora) transformBestSellerSales(raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)
	end, err := p.weekEndDate(src.LocalPath, sheet)
	if err != nil {
		return nil, err
	}
	out.AddColumn("reporting_period_start", end.AddDate(0, 0, -6).Format(isoDate))
	out.AddColumn("reporting_period_end", end.Format(isoDate))
	out.AddColumn("country", bestSellerCountry(sheet))
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *sephora) transformByStoreCA(raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)

	banner, err := p.env.Cells.Cell(src.LocalPath, sheet, "B2")
	if err != nil {
		return nil, err
	}
	end, err := time.Parse("Jan-2-2006", strings.TrimSpace(banner))
	if err != nil {
		return nil, fmt.Errorf("failed to parse week end date %q: %w", banner, err)
	}
	out.AddColumn("reporting_period_start", end.AddDate(0, 0, -6).Format(isoDate))
	out.AddColumn("reporting_period_end", end.Format(isoDate))
	out.AddDerivedColumn("sell_through_channel", func(row int) string {
		if out.Cell(row, "region") == "Dotcom .CA" {
			return "online"
		}
		return "store"
	})
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *sephora) transformByLocation(ctx context.Context, raw *table.Table, spec *MappingSpec) (*table.Table, error) {
	tableName := p.env.Info.Option(sephoraCAStoresTable)
	if tableName == "" {
		return nil, fmt.Errorf("no %s option configured", sephoraCAStoresTable)
	}
	ids, err := p.env.Stores.StoreIDs(ctx, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to load CA store list: %w", err)
	}
	caStores := make(map[string]bool, len(ids))
	for _, id := range ids {
		caStores[strings.ToLower(id)] = true
	}

	// Canadian locations report through the by-store feed; keeping them
	// here would double-count the CA entity.
	us := raw.Filter(func(row int) bool {
		loc := raw.Cell(row, "Location")
		return !caStores[strings.ToLower(strings.TrimSpace(strings.Split(loc, " - ")[0]))]
	})

	out := table.New("reporting_period_start", "reporting_period_end", "total_value", "country", "store_id", "store_name")
	for i := 0; i < us.Len(); i++ {
		end, err := table.StandardDate(us.Cell(i, "Week End Date (Saturday)"))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		endDate, err := time.Parse(isoDate, end)
		if err != nil {
			return nil, err
		}
		storeID, storeName, _ := strings.Cut(us.Cell(i, "Location"), "-")
		err = out.AppendRow(
			endDate.AddDate(0, 0, -6).Format(isoDate),
			end,
			us.Cell(i, "Week End Sales Net $"),
			"US",
			strings.TrimSpace(storeID),
			strings.TrimSpace(storeName),
		)
		if err != nil {
			return nil, err
		}
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

// Identity resolves per row from the country column: the US and
// Canadian entities are distinct retailers sharing one mailbox label.
func (p *sephora) Identity(context.Context) (enrich.Identity, error) {
	return sephoraIdentity{}, nil
}

type sephoraIdentity struct{}

func (sephoraIdentity) Resolve(t *table.Table, row int) (string, string, string) {
	switch t.Cell(row, "country") {
	case "CA":
		return "C095719 Sephora Beauty Canada, Inc.", enrich.RetailerName("C095719 Sephora Beauty Canada, Inc."), "5077296"
	case "US":
		return "C050439 Sephora", enrich.RetailerName("C050439 Sephora"), "1210192"
	}
	return "", "", ""
}

// weekEndDate parses the sheet banner "Week end date: Jun 15, 2019".
func (p *sephora) weekEndDate(path, sheet string) (time.Time, error) {
	banner, err := p.env.Cells.Cell(path, sheet, "A3")
	if err != nil {
		return time.Time{}, err
	}
	_, tail, ok := strings.Cut(banner, ":")
	if !ok {
		return time.Time{}, fmt.Errorf("no week end date in banner %q", banner)
	}
	end, err := time.Parse("Jan 2, 2006", strings.TrimSpace(tail))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse week end date %q: %w", tail, err)
	}
	return end, nil
}

func bestSellerCountry(sheet string) string {
	if strings.HasPrefix(sheet, "Canada") {
		return "CA"
	}
	return "US"
}

// sumNumbers adds two cell values, treating blanks as zero.
func sumNumbers(values ...string) (string, error) {
	total := decimal.Zero
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		cleaned, err := table.CleanNumber(v)
		if err != nil {
			return "", err
		}
		d, err := decimal.NewFromString(cleaned)
		if err != nil {
			return "", err
		}
		total = total.Add(d)
	}
	return total.String(), nil
}

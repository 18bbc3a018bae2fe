package retailer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// thg delivers weekly online sales keyed by ISO week plus a stock view
// whose sheet holds two warehouses side by side: the Omega columns
// first, then the Poland columns under repeated header names. The stock
// date is embedded in the file name ("stock view olaplex 24.08.2020").
type thg struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newTHG(env Env) Parser {
	return &thg{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"site_name":   "store_name",
				"title":       "product_name",
				"Product_ID":  "product_retailer_sku",
				"units":       "total_quantity",
				"revenue_USD": "total_value",
			},
			Constants: map[string]string{
				"reporting_period":     "Weekly",
				"sell_through_channel": "Online",
				"currency":             "USD",
				"type":                 "by_sku",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Constants: map[string]string{
				"reporting_period": "Weekly",
				"type":             "by_warehouse_sku",
			},
			Layout: xlsx.Layout{HeaderRow: 1},
		},
	}
}

func (p *thg) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, strings.ToLower("THG Weekly UK Report")):
		return []*MappingSpec{p.sales}
	case strings.Contains(lower, strings.ToLower("Stock View Olaplex")) && strings.EqualFold(sheetName, "Stock View"):
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *thg) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	switch spec.ReportType {
	case enrich.Sales:
		return p.transformSales(raw, spec, src, sheet)
	case enrich.Inventory:
		return p.transformInventory(raw, spec, src)
	}
	return nil, fmt.Errorf("unknown report type %q", spec.ReportType)
}

func (p *thg) transformSales(raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	// Some deliveries put a banner row above the header.
	if !raw.HasColumn("Year") {
		var err error
		raw, err = p.env.Sheets.ReadSheetAt(src.LocalPath, sheet, xlsx.Layout{HeaderRow: 1})
		if err != nil {
			return nil, err
		}
		if !raw.HasColumn("Year") {
			return nil, fmt.Errorf("no Year column in %q sheet %q", src.FileName(), sheet)
		}
	}

	for i := 0; i < raw.Len(); i++ {
		if _, _, err := thgWeek(raw.Cell(i, "Year"), raw.Cell(i, "iso_week")); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	raw.AddDerivedColumn("reporting_period_start", func(row int) string {
		y, w, _ := thgWeek(raw.Cell(row, "Year"), raw.Cell(row, "iso_week"))
		start, _ := isoWeekRange(y, w)
		return start.Format(isoDate)
	})
	raw.AddDerivedColumn("reporting_period_end", func(row int) string {
		y, w, _ := thgWeek(raw.Cell(row, "Year"), raw.Cell(row, "iso_week"))
		_, end := isoWeekRange(y, w)
		return end.Format(isoDate)
	})

	cols := make(map[string]string, len(spec.Columns)+2)
	for k, v := range spec.Columns {
		cols[k] = v
	}
	cols["reporting_period_start"] = "reporting_period_start"
	cols["reporting_period_end"] = "reporting_period_end"
	out := raw.Select(cols)
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *thg) transformInventory(raw *table.Table, spec *MappingSpec, src enrich.Source) (*table.Table, error) {
	effective, err := thgStockDate(src.FileName())
	if err != nil {
		return nil, err
	}

	out := table.New("product_retailer_sku", "product_name", "quantity_physical", "quantity_intransit", "plant_name")
	appendPlant := func(plant, stockCol, orderCol string) error {
		for i := 0; i < raw.Len(); i++ {
			err := out.AppendRow(
				raw.Cell(i, "SKU"),
				raw.Cell(i, "TITLE"),
				raw.Cell(i, stockCol),
				raw.Cell(i, orderCol),
				plant,
			)
			if err != nil {
				return err
			}
		}
		return nil
	}
	// Duplicate headers get positional suffixes on read; the suffixed
	// pair is the Poland warehouse.
	if err := appendPlant("Poland", "Current stock.1", "On order.1"); err != nil {
		return nil, err
	}
	if err := appendPlant("Omega", "Current stock", "On order"); err != nil {
		return nil, err
	}

	out.AddColumn("effective_date", effective)
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *thg) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

func thgWeek(year, week string) (int, int, error) {
	y, err := floatInt(year)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse year %q: %w", year, err)
	}
	w, err := floatInt(week)
	if err != nil || w < 1 || w > 53 {
		return 0, 0, fmt.Errorf("failed to parse iso week %q", week)
	}
	return y, w, nil
}

// floatInt parses integers that sometimes arrive as "2021.0".
func floatInt(s string) (int, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// thgStockDate pulls the date out of a name like
// "stock view olaplex 24.08.2020 - 175b21a27ee195f5.xlsx".
func thgStockDate(fileName string) (string, error) {
	lower := strings.ToLower(fileName)
	head := strings.TrimSpace(strings.Split(lower, "-")[0])
	_, tail, ok := strings.Cut(head, "stock view olaplex")
	if !ok {
		return "", fmt.Errorf("no stock date in file name %q", fileName)
	}
	parts := strings.Split(strings.TrimSpace(tail), ".")
	if len(parts) < 3 {
		return "", fmt.Errorf("malformed stock date in file name %q", fileName)
	}
	day, month, year := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	return fmt.Sprintf("%s-%s-%s", year, month, day), nil
}

package retailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// jcPenney delivers Merchandise (by SKU) and Location (by store)
// workbooks, each carrying sales and inventory measures side by side.
// Five banner rows precede the header and the reporting week is quoted
// in the banner as a fiscal label ("Week 14, 2021"), stored verbatim.
type jcPenney struct {
	env         Env
	merchandise []*MappingSpec
	location    []*MappingSpec
}

func newJCPenney(env Env) Parser {
	layout := xlsx.Layout{HeaderRow: 5, SkipRows: []int{6}}
	return &jcPenney{
		env: env,
		merchandise: []*MappingSpec{
			{
				Name:       "merchandise_sales",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Product ":        "product_retailer_sku",
					"Supp Style #":    "product_sku",
					"Description ":    "product_name",
					"Wk(s) Net Sls U": "total_quantity",
					"Wk(s) Net Sls R": "total_value",
				},
				Constants: map[string]string{
					"reporting_period": "Weekly",
					"currency":         "USD",
					"type":             "by_sku",
				},
				Layout: layout,
			},
			{
				Name:       "merchandise_inventory",
				ReportType: enrich.Inventory,
				Columns: map[string]string{
					"Description ": "product_name",
					"Product ":     "product_retailer_sku",
					"Whse EOP U":   "quantity_warehouse",
					"Phys EOP U":   "quantity_physical",
					"InTran U":     "quantity_intransit",
					"Whse EOP C":   "value_warehouse",
					"Phys EOP C":   "value_physical",
					"InTran C":     "value_intransit",
				},
				Constants: map[string]string{
					"reporting_period": "Weekly",
					"type":             "by_sku",
					"currency":         "USD",
				},
				Layout: layout,
			},
		},
		location: []*MappingSpec{
			{
				Name:       "location_inventory",
				ReportType: enrich.Inventory,
				Columns: map[string]string{
					"Location ":    "plant_id",
					"Description ": "plant_name",
					"Whse EOP U":   "quantity_warehouse",
					"Phys EOP U":   "quantity_physical",
					"InTran U":     "quantity_intransit",
					"Whse EOP C":   "value_warehouse",
					"Phys EOP C":   "value_physical",
					"InTran C":     "value_intransit",
				},
				Constants: map[string]string{
					"reporting_period": "Weekly",
					"type":             "by_location",
					"currency":         "USD",
				},
				Layout: layout,
			},
			{
				Name:       "location_sales",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Location ":       "store_id",
					"Description ":    "store_name",
					"Region":          "region",
					"Wk(s) Net Sls U": "total_quantity",
					"Wk(s) Net Sls R": "total_value",
				},
				Constants: map[string]string{
					"type":                 "by_location",
					"reporting_period":     "Weekly",
					"sell_through_channel": "Store",
					"currency":             "USD",
				},
				Layout: layout,
			},
		},
	}
}

func (p *jcPenney) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "merchandise"):
		return p.merchandise
	case strings.Contains(lower, "location"):
		return p.location
	}
	return nil
}

func (p *jcPenney) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	week, err := p.reportWeek(src.LocalPath, sheet)
	if err != nil {
		return nil, err
	}
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		out.AddColumn("reporting_period_start", week)
		out.AddColumn("reporting_period_end", week)
	case enrich.Inventory:
		out.AddColumn("effective_date", week)
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *jcPenney) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// reportWeek pulls the fiscal week label out of the banner, a cell like
// "JCPenney | Week 14, 2021 | Company".
func (p *jcPenney) reportWeek(path, sheet string) (string, error) {
	banner, err := p.env.Cells.Cell(path, sheet, "B3")
	if err != nil {
		return "", err
	}
	parts := strings.Split(banner, "|")
	if len(parts) < 2 {
		return "", fmt.Errorf("no report week in banner %q", banner)
	}
	return strings.TrimSpace(parts[1]), nil
}

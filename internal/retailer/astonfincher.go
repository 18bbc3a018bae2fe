package retailer

import (
	"context"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// astonAndFincher delivers pre-normalized monthly workbooks with Sales
// and Inventory sheets.
type astonAndFincher struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newAstonAndFincher(env Env) Parser {
	return &astonAndFincher{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"reporting_period_start":     "reporting_period_start",
				"reporting_period_end":       "reporting_period_end",
				"sell_through_channel":       "sell_through_channel",
				"store_id":                   "store_id",
				"store_name":                 "store_name",
				"region":                     "region",
				"country":                    "country",
				"state":                      "state",
				"product_sku":                "product_retailer_sku",
				"olaplex_product_id":         "product_sku",
				"product_name":               "product_name",
				"product_size":               "product_size",
				"total_quantity":             "total_quantity",
				"total_value":                "total_value",
				"return_quantity":            "return_quantity",
				"return_value":               "return_value",
				"free_replacements_quantity": "free_replacements_quantity",
				"free_replacements_value":    "free_replacements_value",
				"Tags":                       "tags",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"type":             "by_location_sku",
				"currency":         "GBP",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"effective_date":     "effective_date",
				"warehouse_name":     "plant_name",
				"olaplex_product_id": "product_sku",
				"product_sku":        "product_retailer_sku",
				"product_name":       "product_name",
				"product_size":       "product_size",
				"quantity_warehouse": "quantity_warehouse",
				"quantity_physical":  "quantity_physical",
				"quantity_intransit": "quantity_intransit",
				"value_warehouse":    "value_warehouse",
				"value_physical":     "value_physical",
				"value_intransit":    "value_intransit",
				"Tags":               "tags",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"type":             "by_sku",
				"currency":         "GBP",
			},
		},
	}
}

func (p *astonAndFincher) Locate(fileName, sheetName string) []*MappingSpec {
	file, sheet := strings.ToLower(fileName), strings.ToLower(sheetName)
	switch {
	case strings.Contains(file, "aston fincher sales") || sheet == "sales":
		return []*MappingSpec{p.sales}
	case strings.Contains(file, "aston fincher inventory") || sheet == "inventory":
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *astonAndFincher) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := applyMapping(raw, spec)
	switch spec.ReportType {
	case enrich.Sales:
		if err := standardizeDates(out, "reporting_period_start", "reporting_period_end"); err != nil {
			return nil, err
		}
	case enrich.Inventory:
		if err := standardizeDates(out, "effective_date"); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (p *astonAndFincher) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

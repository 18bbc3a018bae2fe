package retailer

import (
	"context"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// newFlag delivers one monthly workbook with a Sales and an Inv sheet,
// both pre-normalized. Inventory reports by country, carried in the
// plant id column.
type newFlag struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newNewFlag(env Env) Parser {
	return &newFlag{
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
				"product_sku":                "product_sku",
				"product_name":               "product_name",
				"product_size":               "product_size",
				"product_line":               "product_line",
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
				"type":             "by_country_sku",
				"currency":         "EUR",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"effective_date":     "effective_date",
				"plant_Id":           "plant_id",
				"product_sku":        "product_sku",
				"product_name":       "product_name",
				"product_size":       "product_size",
				"product_line":       "product_line",
				"quantity_warehouse": "quantity_warehouse",
				"quantity_physical":  "quantity_physical",
				"quantity_intransit": "quantity_intransit",
				"value_warehouse":    "value_warehouse",
				"value_physical":     "value_physical",
				"Tags":               "tags",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"type":             "by_country_sku",
			},
		},
	}
}

func (p *newFlag) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), "newflag_") {
		return nil
	}
	switch strings.ToLower(sheetName) {
	case "sales":
		return []*MappingSpec{p.sales}
	case "inv":
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *newFlag) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := standardizeDates(out, "reporting_period_start", "reporting_period_end"); err != nil {
			return nil, err
		}
	case enrich.Inventory:
		if err := standardizeDates(out, "effective_date"); err != nil {
			return nil, err
		}
		out.AddDerivedColumn("country", func(row int) string {
			return out.Cell(row, "plant_id")
		})
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *newFlag) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

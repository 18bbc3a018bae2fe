package retailer

import (
	"context"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// sallyUKProDuo is a combined feed: one monthly workbook carries rows
// for both Sally Salon Services and Pro-Duo NV/SA, told apart by the
// retailer_name column. Identity resolves per row, so the two entities
// end up with their own report ids inside a single document unit.
type sallyUKProDuo struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newSallyUKProDuo(env Env) Parser {
	return &sallyUKProDuo{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"reporting_period_start":     "reporting_period_start",
				"reporting_period_end":       "reporting_period_end",
				"retailer_name":              "retailer_name",
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
				"currency":                   "currency",
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
				"type":             "by_country_channel_sku",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"effective_date":     "effective_date",
				"retailer_name":      "retailer_name",
				"warehouse_name":     "plant_name",
				"olaplex_product_id": "product_sku",
				"product_sku":        "product_retailer_sku",
				"product_name":       "product_name",
				"product_size":       "product_size",
				"currency":           "currency",
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
				"type":             "by_warehouse_sku",
			},
		},
	}
}

func (p *sallyUKProDuo) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), "sally uk produo monthly report") {
		return nil
	}
	switch strings.ToLower(sheetName) {
	case "sales":
		return []*MappingSpec{p.sales}
	case "inventory":
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *sallyUKProDuo) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := standardizeDates(out, "reporting_period_start", "reporting_period_end"); err != nil {
			return nil, err
		}
		if err := cleanNumeric(out, "total_quantity", "total_value",
			"return_quantity", "return_value",
			"free_replacements_quantity", "free_replacements_value"); err != nil {
			return nil, err
		}
	case enrich.Inventory:
		if err := standardizeDates(out, "effective_date"); err != nil {
			return nil, err
		}
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *sallyUKProDuo) Identity(context.Context) (enrich.Identity, error) {
	return sallyUKIdentity{}, nil
}

// sallyUKIdentity resolves each row's entity from its retailer_name
// cell. An unrecognized name keeps the reported name and leaves both
// ids empty.
type sallyUKIdentity struct{}

var sallyUKEntities = map[string]enrich.FixedIdentity{
	"sally salon services": {RetailerID: "C128878 Sally Salon Services", InternalID: "6598548"},
	"pro-duo nv/sa":        {RetailerID: "C155330 Pro-Duo NV/SA", InternalID: "7101588"},
}

func (sallyUKIdentity) Resolve(t *table.Table, row int) (string, string, string) {
	name := strings.ToLower(strings.TrimSpace(t.Cell(row, "retailer_name")))
	if entity, ok := sallyUKEntities[name]; ok {
		return entity.Resolve(t, row)
	}
	return "", t.Cell(row, "retailer_name"), ""
}

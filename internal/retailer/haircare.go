package retailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// haircareAustralia covers Australia and New Zealand from one sales
// workbook, one sheet per market, plus a separate inventory file. The
// sub-region breakdown has no schema column and is preserved in note.
type haircareAustralia struct {
	env      Env
	salesAUS *MappingSpec
	salesNZ  *MappingSpec
	inv      *MappingSpec
}

func newHaircareAustralia(env Env) Parser {
	salesColumns := map[string]string{
		"Period Start":             "reporting_period_start",
		"Period End":               "reporting_period_end",
		"Region":                   "sell_through_channel",
		"Product Code":             "product_retailer_sku",
		"Product Name":             "product_name",
		"Quantity #":               "total_quantity",
		"USD Value After Discount": "total_value",
	}
	return &haircareAustralia{
		env: env,
		salesAUS: &MappingSpec{
			Name:       "sales_aus",
			ReportType: enrich.Sales,
			Columns:    salesColumns,
			Constants: map[string]string{
				"type":             "by_channel_sku",
				"reporting_period": "Monthly",
				"currency":         "USD",
				"country":          "AU",
			},
		},
		salesNZ: &MappingSpec{
			Name:       "sales_nz",
			ReportType: enrich.Sales,
			Columns:    salesColumns,
			Constants: map[string]string{
				"type":             "by_channel_sku",
				"reporting_period": "Monthly",
				"currency":         "USD",
				"country":          "NZ",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"Effective Date":                   "effective_date",
				"Warehouse Code":                   "plant_id",
				"Warehouse Name":                   "plant_name",
				"Product Code":                     "product_retailer_sku",
				"Product Name":                     "product_name",
				" Total (Stock on Hand Qty #)":     "quantity_warehouse",
				" Total (Stock in Transit Qty #)":  "quantity_intransit",
				" Total (Reporting SOH Value $)":   "value_warehouse",
			},
			Constants: map[string]string{
				"type":             "by_warehouse_sku",
				"reporting_period": "Monthly",
			},
		},
	}
}

func (p *haircareAustralia) Locate(fileName, sheetName string) []*MappingSpec {
	file, sheet := strings.ToLower(fileName), strings.ToLower(sheetName)
	switch {
	case strings.Contains(file, strings.ToLower("HaircareAust_Sales")) && sheet == "hca":
		return []*MappingSpec{p.salesAUS}
	case strings.Contains(file, strings.ToLower("HaircareAust_Sales")) && sheet == "hcnz":
		return []*MappingSpec{p.salesNZ}
	case strings.Contains(file, strings.ToLower("HaircareAust_Inventory")) && sheet == "inventory":
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *haircareAustralia) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := standardizeDates(out, "reporting_period_start", "reporting_period_end"); err != nil {
			return nil, err
		}
		out.AddDerivedColumn("note", func(row int) string {
			return fmt.Sprintf("Sub Region Code = %s; Sub Region Name = %s",
				raw.Cell(row, "Sub Region Code"), raw.Cell(row, "Sub Region Name"))
		})
	case enrich.Inventory:
		if err := standardizeDates(out, "effective_date"); err != nil {
			return nil, err
		}
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *haircareAustralia) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

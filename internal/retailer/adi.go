package retailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// adi delivers pre-normalized monthly workbooks, one file per stream.
// Column names already match the schema except for the SKU pair, which
// arrives swapped relative to our naming.
type adi struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newADI(env Env) Parser {
	return &adi{
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
				"type":             "by_sku",
			},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"effective_date":     "effective_date",
				"retailer_name":      "retailer_name",
				"olaplex_product_id": "product_sku",
				"product_name":       "product_name",
				"currency":           "currency",
				"quantity_warehouse": "quantity_warehouse",
				"quantity_physical":  "quantity_physical",
				"value_warehouse":    "value_warehouse",
				"value_physical":     "value_physical",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"type":             "by_sku",
			},
		},
	}
}

func (p *adi) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, strings.ToLower("ADI Sales Report")):
		return []*MappingSpec{p.sales}
	case strings.Contains(lower, strings.ToLower("ADI Inventory Report")):
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *adi) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := applyMapping(raw, spec)
	switch spec.ReportType {
	case enrich.Sales:
		if err := standardizeDates(out, "reporting_period_start", "reporting_period_end"); err != nil {
			return nil, err
		}
	case enrich.Inventory:
		// The date column drifts between %Y-%m-%d and %d/%m/%Y across
		// deliveries. The file name carries the authoritative date, so
		// it wins whenever the two disagree.
		fileDate := adiFileDate(src.FileName())
		for i := 0; i < out.Len(); i++ {
			d, err := adiEffectiveDate(out.Cell(i, "effective_date"), fileDate)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			if err := out.SetCell(i, "effective_date", d); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (p *adi) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// adiFileDate pulls the trailing date from a name like
// "ADI Inventory Report 2021-04-30.xlsx".
func adiFileDate(fileName string) string {
	base := strings.TrimSpace(strings.Split(fileName, ".")[0])
	parts := strings.Split(base, " ")
	return strings.TrimSpace(parts[len(parts)-1])
}

func adiEffectiveDate(raw, fileDate string) (string, error) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		d, err = time.Parse("02/01/2006", raw)
	}
	if err != nil {
		return "", fmt.Errorf("failed to parse effective date %q: %w", raw, err)
	}
	got := d.Format(isoDate)
	if got != fileDate && fileDate != "" {
		return fileDate, nil
	}
	return got, nil
}

package retailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// asos delivers one password-protected weekly workbook carrying both
// streams on a single sheet. The reporting week ends on the Sunday
// before the date in the file name; the last sheet row is a totals
// line.
type asos struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newASOS(env Env) Parser {
	layout := xlsx.Layout{SkipFooter: 1}
	return &asos{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Category":        "product_line",
				"Style":           "product_retailer_sku",
				"column_3":        "product_name", // header cell is blank
				"Supplier Ref":    "product_sku",
				"Net Sales Unit":  "total_quantity",
				"Net Sales Value": "total_value",
				"Returns Units":   "return_quantity",
			},
			Constants: map[string]string{
				"reporting_period": "Weekly",
				"currency":         "GBP",
				"type":             "by_sku",
			},
			Layout: layout,
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"Category":        "product_line",
				"Style":           "product_retailer_sku",
				"column_3":        "product_name",
				"Supplier Ref":    "product_sku",
				"Stock Units":     "quantity_warehouse",
				"Stock Value (£)": "value_warehouse",
			},
			Constants: map[string]string{
				"reporting_period": "Weekly",
				"currency":         "GBP",
				"type":             "by_sku",
			},
			Layout: layout,
		},
	}
}

func (p *asos) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), strings.ToLower("ASOS Weekly Sales Report Excel")) {
		return nil
	}
	if !strings.HasPrefix(sheetName, "Brand Overview - Excel Detail") {
		return nil
	}
	return []*MappingSpec{p.sales, p.inv}
}

func (p *asos) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	reportDate, err := asosFileDate(src.FileName())
	if err != nil {
		return nil, err
	}
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := cleanNumeric(out, "total_quantity", "total_value"); err != nil {
			return nil, err
		}
		// The week closes on the Sunday strictly before the file date.
		end := previousSunday(reportDate)
		out.AddColumn("reporting_period_start", end.AddDate(0, 0, -6).Format(isoDate))
		out.AddColumn("reporting_period_end", end.Format(isoDate))
	case enrich.Inventory:
		out.AddColumn("effective_date", previousSunday(reportDate).Format(isoDate))
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *asos) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// asosFileDate pulls the trailing date from a name like
// "ASOS Weekly Sales Report Excel Details-Olaplex for 2021-01-04.xlsx".
func asosFileDate(fileName string) (time.Time, error) {
	fields := strings.Fields(fileName)
	raw := strings.TrimSuffix(strings.TrimSpace(fields[len(fields)-1]), ".xlsx")
	d, err := time.Parse(isoDate, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date from file name %q: %w", fileName, err)
	}
	return d, nil
}

// previousSunday returns the Sunday strictly before d (d itself when d
// is not a Sunday counts back to the most recent one).
func previousSunday(d time.Time) time.Time {
	offset := int(d.Weekday())
	if offset == 0 {
		offset = 7
	}
	return d.AddDate(0, 0, -offset)
}

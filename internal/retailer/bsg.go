package retailer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// bsg delivers a monthly workbook whose BSG sheet mixes US and
// Canadian rows. The reporting month arrives as numeric Year and Month
// columns and the country is inferred from the currency spelling.
type bsg struct {
	env   Env
	sales *MappingSpec
}

func newBSG(env Env) Parser {
	return &bsg{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Channel":                "sell_through_channel",
				"Region":                 "region",
				"SKU":                    "product_retailer_sku",
				"Manufacturer#":          "product_sku",
				"Product":                "product_name",
				"Size":                   "product_size",
				"Currency":               "currency",
				"Qty":                    "total_quantity",
				"Sales":                  "total_value",
				"reporting_period_start": "reporting_period_start",
				"reporting_period_end":   "reporting_period_end",
				"Country":                "country",
			},
			Constants: map[string]string{
				"type":             "by_region_channel_sku",
				"reporting_period": "Monthly",
			},
		},
	}
}

func (p *bsg) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), strings.ToLower("OLAPLEX-SKU SALES")) {
		return nil
	}
	if !strings.EqualFold(sheetName, "BSG") {
		return nil
	}
	return []*MappingSpec{p.sales}
}

func (p *bsg) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	for i := 0; i < raw.Len(); i++ {
		if _, _, err := bsgMonth(raw.Cell(i, "Year"), raw.Cell(i, "Month")); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	raw.AddDerivedColumn("reporting_period_start", func(row int) string {
		y, m, _ := bsgMonth(raw.Cell(row, "Year"), raw.Cell(row, "Month"))
		start, _ := monthRange(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
		return start.Format(isoDate)
	})
	raw.AddDerivedColumn("reporting_period_end", func(row int) string {
		y, m, _ := bsgMonth(raw.Cell(row, "Year"), raw.Cell(row, "Month"))
		_, end := monthRange(time.Date(y, time.Month(m), 1, 0, 0, 0, 0, time.UTC))
		return end.Format(isoDate)
	})
	raw.AddDerivedColumn("Country", func(row int) string {
		return countryFromCurrency(raw.Cell(row, "Currency"))
	})

	out := raw.Select(spec.Columns)
	if err := cleanNumeric(out, "total_quantity", "total_value"); err != nil {
		return nil, err
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *bsg) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

func bsgMonth(year, month string) (int, int, error) {
	y, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(year, ".0")))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse year %q: %w", year, err)
	}
	m, err := strconv.Atoi(strings.TrimSpace(strings.TrimSuffix(month, ".0")))
	if err != nil || m < 1 || m > 12 {
		return 0, 0, fmt.Errorf("failed to parse month %q", month)
	}
	return y, m, nil
}

// countryFromCurrency maps the currency spellings the feed uses onto a
// country code. Unknown spellings stay blank rather than guessing.
func countryFromCurrency(currency string) string {
	switch strings.ToLower(strings.TrimSpace(currency)) {
	case "us dollar", "usd", "us dollars":
		return "US"
	case "canadian dollar", "cad", "canadian dollars":
		return "CA"
	}
	return ""
}

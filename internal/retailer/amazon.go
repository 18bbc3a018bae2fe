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

// amazon covers the Vendor Central monthly extracts, one registry tag
// per marketplace. Every marketplace ships the same CSV shape: a first
// row holding a "Viewing=[2/1/21 - 2/28/21]" banner whose column moves
// between exports, then the header, then data. The UK export renames
// two columns and, like Canada, prints dates day first.
type amazon struct {
	env   Env
	code  string // lowercase marketplace code in file names
	dates string // banner date layout
	sales *MappingSpec
	inv   *MappingSpec
}

func newAmazonUS(env Env) Parser { return newAmazon(env, "us", "1/2/06", false) }
func newAmazonCA(env Env) Parser { return newAmazon(env, "ca", "2/1/06", false) }
func newAmazonGB(env Env) Parser { return newAmazon(env, "gb", "2/1/06", true) }
func newAmazonDE(env Env) Parser { return newAmazon(env, "de", "1/2/06", false) }
func newAmazonFR(env Env) Parser { return newAmazon(env, "fr", "1/2/06", false) }
func newAmazonES(env Env) Parser { return newAmazon(env, "es", "1/2/06", false) }

func newAmazon(env Env, code, dates string, ukHeaders bool) Parser {
	modelCol, rankCol := "Model / Style Number", "Subcategory (Sales Rank)"
	if ukHeaders {
		modelCol, rankCol = "Model/style number", "Sub-category (Sales Rank)"
	}
	constants := map[string]string{
		"reporting_period": "Monthly",
		"currency":         "USD",
		"type":             "by_sku",
	}
	return &amazon{
		env:   env,
		code:  code,
		dates: dates,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"ASIN":            "product_retailer_sku",
				modelCol:          "product_sku",
				"Product Title":   "product_name",
				"Subcategory":     "product_line",
				"Ordered Units":   "total_quantity",
				"Ordered Revenue": "total_value",
				rankCol:           "tags",
			},
			Constants: constants,
			Layout:    xlsx.Layout{HeaderRow: 1},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"ASIN":                         "product_retailer_sku",
				modelCol:                       "product_sku",
				"Product Title":                "product_name",
				"Subcategory":                  "product_line",
				"Sellable On Hand Units":       "quantity_warehouse",
				"Open Purchase Order Quantity": "quantity_intransit",
				"Sellable On Hand Inventory":   "value_warehouse",
			},
			Constants: constants,
			Layout:    xlsx.Layout{HeaderRow: 1},
		},
	}
}

func (p *amazon) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, fmt.Sprintf("amazon %s monthly sales", p.code)):
		return []*MappingSpec{p.sales}
	case strings.Contains(lower, fmt.Sprintf("amazon %s monthly inventory", p.code)):
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *amazon) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	start, end, err := p.reportingPeriod(src.LocalPath, sheet)
	if err != nil {
		return nil, err
	}
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := cleanNumeric(out, "total_quantity", "total_value"); err != nil {
			return nil, err
		}
		out.AddColumn("reporting_period_start", start)
		out.AddColumn("reporting_period_end", end)
	case enrich.Inventory:
		if err := cleanNumeric(out, "quantity_warehouse", "quantity_intransit", "value_warehouse"); err != nil {
			return nil, err
		}
		out.AddColumn("effective_date", end)
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *amazon) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// reportingPeriod scans the first raw row for the Viewing banner and
// returns the period bounds as ISO dates.
func (p *amazon) reportingPeriod(path, sheet string) (start, end string, err error) {
	cells, err := p.env.Rows.Row(path, sheet, 0)
	if err != nil {
		return "", "", err
	}
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if !strings.HasPrefix(cell, "Viewing=") {
			continue
		}
		return p.parseViewing(cell)
	}
	return "", "", fmt.Errorf("no Viewing banner in first row")
}

// parseViewing splits "Viewing=[2/1/21 - 2/28/21]" into its bounds.
func (p *amazon) parseViewing(banner string) (start, end string, err error) {
	span := strings.TrimPrefix(banner, "Viewing=")
	span = strings.Trim(span, "[]")
	parts := strings.Split(span, " - ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed Viewing banner %q", banner)
	}
	s, err := time.Parse(p.dates, strings.TrimSpace(parts[0]))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse period start %q: %w", parts[0], err)
	}
	e, err := time.Parse(p.dates, strings.TrimSpace(parts[1]))
	if err != nil {
		return "", "", fmt.Errorf("failed to parse period end %q: %w", parts[1], err)
	}
	return s.Format(isoDate), e.Format(isoDate), nil
}

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

// baldacci delivers semicolon-separated CSV extracts with Swedish
// headers and decimal commas. The reporting period sits in a banner
// line above the data and the last three lines are totals.
type baldacci struct {
	env   Env
	sales *MappingSpec
	inv   *MappingSpec
}

func newBaldacci(env Env) Parser {
	return &baldacci{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Art.nr":                       "product_retailer_sku",
				"Artikelnamn":                  "product_name",
				"Antal":                        "total_quantity",
				"Försäljningspris (exkl moms)": "total_value",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"currency":         "SEK",
				"type":             "by_sku",
			},
			Layout: xlsx.Layout{HeaderRow: 4, SkipFooter: 3, Comma: ';'},
		},
		inv: &MappingSpec{
			Name:       "inventory",
			ReportType: enrich.Inventory,
			Columns: map[string]string{
				"Artikelnummer":     "product_retailer_sku",
				"Benämning":         "product_name",
				"Antal i lager":     "quantity_physical",
				"Summa (exkl moms)": "value_physical",
			},
			Constants: map[string]string{
				"reporting_period": "Monthly",
				"type":             "by_sku",
			},
			Layout: xlsx.Layout{HeaderRow: 6, SkipFooter: 3, Comma: ';'},
		},
	}
}

func (p *baldacci) Locate(fileName, sheetName string) []*MappingSpec {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "tb-rapport"):
		return []*MappingSpec{p.sales}
	case strings.Contains(lower, "stockvalue"):
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *baldacci) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	banner, err := p.env.Cells.Cell(src.LocalPath, "", "A2")
	if err != nil {
		return nil, err
	}
	out := raw.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		start, end, err := baldacciPeriod(banner)
		if err != nil {
			return nil, err
		}
		if err := cleanNumeric(out, "total_quantity"); err != nil {
			return nil, err
		}
		if err := rewriteColumn(out, "total_value", europeanDecimal); err != nil {
			return nil, err
		}
		// Decimal commas also show up inside product names; the
		// storage extracts are comma-joined downstream.
		for i := 0; i < out.Len(); i++ {
			name := strings.ReplaceAll(out.Cell(i, "product_name"), ",", ".")
			if err := out.SetCell(i, "product_name", name); err != nil {
				return nil, err
			}
		}
		out.AddColumn("reporting_period_start", start)
		out.AddColumn("reporting_period_end", end)
	case enrich.Inventory:
		effective, err := baldacciEffectiveDate(banner)
		if err != nil {
			return nil, err
		}
		if err := rewriteColumn(out, "value_physical", europeanDecimal); err != nil {
			return nil, err
		}
		out.AddColumn("effective_date", effective)
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *baldacci) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// baldacciPeriod parses a banner like "Period: 2021-02-01 - 2021-02-28".
func baldacciPeriod(banner string) (start, end string, err error) {
	_, tail, ok := strings.Cut(banner, ":")
	if !ok {
		return "", "", fmt.Errorf("no period in banner %q", banner)
	}
	tail = strings.ReplaceAll(tail, ";", "")
	parts := strings.Split(tail, " - ")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed period banner %q", banner)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// baldacciEffectiveDate parses a banner like "Datum: 2021-02-28;;;".
func baldacciEffectiveDate(banner string) (string, error) {
	_, tail, ok := strings.Cut(banner, ":")
	if !ok {
		return "", fmt.Errorf("no date in banner %q", banner)
	}
	tail = strings.NewReplacer(" ", "", ",", "", "$", "", ";", "").Replace(tail)
	d, err := time.Parse(isoDate, tail)
	if err != nil {
		return "", fmt.Errorf("failed to parse effective date %q: %w", tail, err)
	}
	return d.Format(isoDate), nil
}

// europeanDecimal converts "1 234,56" to "1234.56".
func europeanDecimal(s string) (string, error) {
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	return table.CleanNumber(s, " ")
}

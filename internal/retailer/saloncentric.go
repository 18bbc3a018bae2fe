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

// salonCentric delivers one monthly workbook with four sales cuts on
// separate sheets plus an inventory sheet. The month arrives per row as
// a fiscal label like "2020-M02 (Feb)".
type salonCentric struct {
	env   Env
	specs map[string]*MappingSpec // lower sheet name -> spec
}

func newSalonCentric(env Env) Parser {
	return &salonCentric{
		env: env,
		specs: map[string]*MappingSpec{
			"sku by channel": {
				Name:       "sku_by_channel",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Distribution Channel": "sell_through_channel",
					"Material Code":        "product_retailer_sku",
					"Vendor Material Code": "product_sku",
					"Material":             "product_name",
					"Net Sales Qty":        "total_quantity",
					"Net Sls Sd":           "total_value",
				},
				Constants: map[string]string{
					"type":             "by_channel_sku",
					"reporting_period": "Monthly",
				},
			},
			"channel by state": {
				Name:       "channel_by_state",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Distribution Channel": "sell_through_channel",
					"Ship to State":        "state",
					"Net Sales Qty":        "total_quantity",
					"Net Sls Sd":           "total_value",
				},
				Constants: map[string]string{
					"type":             "by_channel_state",
					"reporting_period": "Monthly",
				},
			},
			"store": {
				Name:       "store",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Distribution Channel":  "sell_through_channel",
					"Profit Center Code":    "store_id",
					"Profit Center":         "store_name",
					"Net Sales Qty":         "total_quantity",
					"Net Sls Sd":            "total_value",
					"AD Partner Store Rank": "tags",
				},
				Constants: map[string]string{
					"type":             "by_channel_(store)_sku",
					"reporting_period": "Monthly",
				},
			},
			"sub distributor": {
				Name:       "sub_distributor",
				ReportType: enrich.Sales,
				Columns: map[string]string{
					"Distribution Channel": "sell_through_channel",
					"Cust Lvl 4":           "store_name",
					"Net Sales Qty":        "total_quantity",
					"Net Sls Sd":           "total_value",
				},
				Constants: map[string]string{
					"type":             "by_channel_(sub_distributor)_sku",
					"reporting_period": "Monthly",
				},
			},
			"inventory": {
				Name:       "inventory",
				ReportType: enrich.Inventory,
				Columns: map[string]string{
					"Plant":                "plant_name",
					"Material Code":        "product_retailer_sku",
					"Vendor Material Code": "product_sku",
					"MATERIAL DESC":        "product_name",
					"Inv Total Qty":        "quantity_warehouse",
				},
				Constants: map[string]string{
					"type":             "by_warehouse_sku",
					"reporting_period": "Monthly",
				},
			},
		},
	}
}

func (p *salonCentric) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), strings.ToLower("SC Monthly Brand Report - Olaplex")) {
		return nil
	}
	if spec, ok := p.specs[strings.ToLower(sheetName)]; ok {
		return []*MappingSpec{spec}
	}
	return nil
}

func (p *salonCentric) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	switch spec.ReportType {
	case enrich.Sales:
		for i := 0; i < raw.Len(); i++ {
			if _, _, err := fiscalMonthRange(raw.Cell(i, "Fiscal Month")); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		raw.AddDerivedColumn("reporting_period_start", func(row int) string {
			start, _, _ := fiscalMonthRange(raw.Cell(row, "Fiscal Month"))
			return start
		})
		raw.AddDerivedColumn("reporting_period_end", func(row int) string {
			_, end, _ := fiscalMonthRange(raw.Cell(row, "Fiscal Month"))
			return end
		})
	case enrich.Inventory:
		for i := 0; i < raw.Len(); i++ {
			if _, _, err := fiscalMonthRange(raw.Cell(i, "MONTH")); err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
		}
		raw.AddDerivedColumn("effective_date", func(row int) string {
			_, end, _ := fiscalMonthRange(raw.Cell(row, "MONTH"))
			return end
		})
	}

	cols := make(map[string]string, len(spec.Columns)+3)
	for k, v := range spec.Columns {
		cols[k] = v
	}
	switch spec.ReportType {
	case enrich.Sales:
		cols["reporting_period_start"] = "reporting_period_start"
		cols["reporting_period_end"] = "reporting_period_end"
	case enrich.Inventory:
		cols["effective_date"] = "effective_date"
	}
	out := raw.Select(cols)
	if err := cleanNumeric(out, "total_quantity", "total_value", "quantity_warehouse"); err != nil {
		return nil, err
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *salonCentric) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// fiscalMonthRange expands "2020-M02 (Feb)" to the first and last day
// of that month.
func fiscalMonthRange(label string) (start, end string, err error) {
	head := strings.ReplaceAll(strings.TrimSpace(strings.Split(label, "(")[0]), "M", "")
	parts := strings.Split(head, "-")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed fiscal month %q", label)
	}
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return "", "", fmt.Errorf("malformed fiscal month %q", label)
	}
	month, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || month < 1 || month > 12 {
		return "", "", fmt.Errorf("malformed fiscal month %q", label)
	}
	s, e := monthRange(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC))
	return s.Format(isoDate), e.Format(isoDate), nil
}

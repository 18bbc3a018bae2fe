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

// sallyBeautyMexico delivers one cumulative workbook: store sales,
// professional-channel sales, and inventory each keep every month ever
// reported. Only the trailing months are new, so rows older than the
// configured window are dropped before normalization.
type sallyBeautyMexico struct {
	env        Env
	storeSales *MappingSpec
	proSales   *MappingSpec
	inv        *MappingSpec
}

// sallyMXNumMonths is the Info option holding how many months back
// from the newest reported month to keep. Defaults to 1 (the newest
// month plus the one before it).
const sallyMXNumMonths = "num_months"

func newSallyBeautyMexico(env Env) Parser {
	return &sallyBeautyMexico{
		env: env,
		storeSales: &MappingSpec{
			Name:       "sales_stores",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Store ID":   "store_id",
				"Store name": "store_name",
				"SKU":        "product_sku",
				"Product":    "product_name",
				"Quantity":   "total_quantity",
				"Price":      "total_value",
			},
			Constants: map[string]string{
				"reporting_period":     "Monthly",
				"currency":             "USD",
				"sell_through_channel": "store",
				"type":                 "by_channel_sku",
			},
		},
		proSales: &MappingSpec{
			Name:       "sales_professional",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Client":   "store_name",
				"SKU":      "product_sku",
				"Product":  "product_name",
				"Quantity": "total_quantity",
				"Price":    "total_value",
			},
			Constants: map[string]string{
				"reporting_period":     "Monthly",
				"currency":             "USD",
				"sell_through_channel": "professional",
				"type":                 "by_channel_sku",
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
				"type":             "by_sku",
			},
		},
	}
}

func (p *sallyBeautyMexico) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), "olaplex sales") {
		return nil
	}
	switch strings.ToLower(sheetName) {
	case "sales of stores":
		return []*MappingSpec{p.storeSales}
	case "sales of professional":
		return []*MappingSpec{p.proSales}
	case "inventory":
		return []*MappingSpec{p.inv}
	}
	return nil
}

func (p *sallyBeautyMexico) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	dateCol := "Month"
	if spec.ReportType == enrich.Inventory {
		dateCol = "effective_date"
	}
	kept, dates, err := p.window(raw, dateCol)
	if err != nil {
		return nil, err
	}
	out := kept.Select(spec.Columns)
	switch spec.ReportType {
	case enrich.Sales:
		if err := cleanNumeric(out, "total_quantity", "total_value"); err != nil {
			return nil, err
		}
		out.AddDerivedColumn("reporting_period_start", func(row int) string {
			start, _ := monthRange(dates[row])
			return start.Format(isoDate)
		})
		out.AddDerivedColumn("reporting_period_end", func(row int) string {
			_, end := monthRange(dates[row])
			return end.Format(isoDate)
		})
	case enrich.Inventory:
		out.AddDerivedColumn("effective_date", func(row int) string {
			return dates[row].Format(isoDate)
		})
	}
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *sallyBeautyMexico) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// window drops rows older than the cutoff: the first of the month that
// lies num_months before the newest reported month. Rows with an empty
// date cell are dropped with the rest of the sheet's padding.
func (p *sallyBeautyMexico) window(raw *table.Table, dateCol string) (*table.Table, []time.Time, error) {
	if !raw.HasColumn(dateCol) {
		return nil, nil, fmt.Errorf("missing date column %q", dateCol)
	}
	months := 1
	if opt := p.env.Info.Option(sallyMXNumMonths); opt != "" {
		n, err := strconv.Atoi(opt)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid %s option %q: %w", sallyMXNumMonths, opt, err)
		}
		months = n
	}

	parsed := make([]time.Time, raw.Len())
	var newest time.Time
	for i := 0; i < raw.Len(); i++ {
		cell := raw.Cell(i, dateCol)
		if strings.TrimSpace(cell) == "" {
			continue
		}
		iso, err := table.StandardDate(cell)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		d, err := time.Parse(isoDate, iso)
		if err != nil {
			return nil, nil, err
		}
		parsed[i] = d
		if d.After(newest) {
			newest = d
		}
	}
	if newest.IsZero() {
		return raw.Filter(func(int) bool { return false }), nil, nil
	}

	cutoff := time.Date(newest.Year(), newest.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -months, 0)
	var dates []time.Time
	kept := raw.Filter(func(row int) bool {
		if parsed[row].IsZero() || parsed[row].Before(cutoff) {
			return false
		}
		dates = append(dates, parsed[row])
		return true
	})
	return kept, dates, nil
}

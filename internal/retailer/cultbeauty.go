package retailer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// cultBeauty accumulates one sheet per week in a monthly workbook, so
// only the latest non-empty sheet is news. The week commencing date is
// written in the sheet banner ("Total Weekly Sales - wc 21st March
// 2021") and the year is cross-checked against the file name.
type cultBeauty struct {
	env   Env
	sales *MappingSpec
}

func newCultBeauty(env Env) Parser {
	return &cultBeauty{
		env: env,
		sales: &MappingSpec{
			Name:       "sales",
			ReportType: enrich.Sales,
			Columns: map[string]string{
				"Name":       "product_name",
				"Ean":        "product_retailer_sku",
				"Mpn":        "product_sku",
				"Unit Sales": "total_quantity",
				"£ Sales":    "total_value",
			},
			Constants: map[string]string{
				"reporting_period": "Weekly",
				"type":             "by_sku",
				"currency":         "GBP",
			},
			Layout: xlsx.Layout{HeaderRow: 1, SkipFooter: 1},
		},
	}
}

// PickSheets keeps only the last sheet that still holds data rows.
// Earlier weeks were processed when they were the latest sheet.
func (p *cultBeauty) PickSheets(path string, sheets []string) ([]string, error) {
	if len(sheets) == 0 {
		return nil, nil
	}
	picked := sheets[0]
	for _, sheet := range sheets {
		t, err := p.env.Sheets.ReadSheetAt(path, sheet, p.sales.Layout)
		if err != nil {
			return nil, err
		}
		if t.Len() > 0 {
			picked = sheet
		}
	}
	return []string{picked}, nil
}

func (p *cultBeauty) Locate(fileName, sheetName string) []*MappingSpec {
	if !strings.Contains(strings.ToLower(fileName), strings.ToLower("OLAPLEX Total Weekly Sales")) {
		return nil
	}
	return []*MappingSpec{p.sales}
}

func (p *cultBeauty) Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error) {
	out := raw.Select(spec.Columns)
	if out.Len() == 0 {
		p.env.Logger.Info("skipping empty sheet", "file", src.FileName(), "sheet", sheet)
		return nil, nil
	}

	banner, err := p.env.Cells.Cell(src.LocalPath, sheet, "A1")
	if err != nil {
		return nil, err
	}
	start, err := weekCommencing(banner, fileYear(src.FileName()))
	if err != nil {
		return nil, err
	}
	out.AddColumn("reporting_period_start", start.Format(isoDate))
	out.AddColumn("reporting_period_end", start.AddDate(0, 0, 6).Format(isoDate))
	stampConstants(out, spec.Constants)
	return out, nil
}

func (p *cultBeauty) Identity(context.Context) (enrich.Identity, error) {
	return fixed(p.env.Info), nil
}

// weekCommencing parses "Total Weekly Sales - wc 21st March 2021". When
// the banner year disagrees with the file name year, the file name
// wins; senders reuse last year's template into January.
func weekCommencing(banner string, year int) (time.Time, error) {
	_, tail, ok := strings.Cut(banner, "wc ")
	if !ok {
		return time.Time{}, fmt.Errorf("no week commencing date in banner %q", banner)
	}
	fields := strings.Fields(tail)
	if len(fields) < 3 {
		return time.Time{}, fmt.Errorf("malformed week commencing date %q", tail)
	}
	day, err := strconv.Atoi(strings.TrimRight(fields[0], "sthndrd"))
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed day %q: %w", fields[0], err)
	}
	month, err := time.Parse("January", fields[1])
	if err != nil {
		month, err = time.Parse("Jan", fields[1])
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed month %q", fields[1])
	}
	bannerYear, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed year %q", fields[2])
	}
	if year != 0 && year != bannerYear {
		bannerYear = year
	}
	return time.Date(bannerYear, month.Month(), day, 0, 0, 0, 0, time.UTC), nil
}

// fileYear pulls the year from a name like
// "OLAPLEX Total Weekly Sales - March 2021.xlsx", 0 when absent.
func fileYear(fileName string) int {
	parts := strings.Split(fileName, "-")
	if len(parts) < 2 {
		return 0
	}
	tail := strings.TrimSuffix(strings.TrimSpace(parts[1]), ".xlsx")
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return 0
	}
	y, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0
	}
	return y
}

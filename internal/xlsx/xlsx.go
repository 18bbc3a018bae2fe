// Package xlsx reads spreadsheet and CSV extracts into tables.
package xlsx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/xuri/excelize/v2"
)

// Reader opens workbooks and CSV files from the local download area.
// Password applies to protected workbooks; empty means unprotected.
type Reader struct {
	Password string
}

// SheetNames lists the sheets of a workbook in order.
func (r *Reader) SheetNames(path string) ([]string, error) {
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return f.GetSheetList(), nil
}

// ReadSheet extracts one sheet as a table: first row is the header,
// remaining rows are data. Short rows are padded so every row matches
// the header width.
func (r *Reader) ReadSheet(path, sheet string) (*table.Table, error) {
	return r.ReadSheetAt(path, sheet, Layout{})
}

// Layout positions the tabular area within a sheet. Some feeds put
// banner rows above the header or a totals row at the bottom.
type Layout struct {
	HeaderRow  int   // 0-based row holding column names
	SkipRows   []int // 0-based data rows to drop (relative to the sheet)
	SkipFooter int   // trailing data rows to drop
	Comma      rune  // CSV field delimiter, ',' when zero
}

// ReadSheetAt extracts one sheet as a table using the given layout.
func (r *Reader) ReadSheetAt(path, sheet string, layout Layout) (*table.Table, error) {
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if layout.HeaderRow >= len(rows) {
		return table.New(), nil
	}

	skip := make(map[int]bool, len(layout.SkipRows))
	for _, i := range layout.SkipRows {
		skip[i] = true
	}

	kept := [][]string{rows[layout.HeaderRow]}
	for i := layout.HeaderRow + 1; i < len(rows); i++ {
		if skip[i] {
			continue
		}
		kept = append(kept, rows[i])
	}
	if layout.SkipFooter > 0 {
		cut := len(kept) - layout.SkipFooter
		if cut < 1 {
			cut = 1
		}
		kept = kept[:cut]
	}
	return fromRows(kept)
}

// Cell reads a single cell ("A3" style reference). For workbooks the
// sheet must be named; for CSV files the sheet is ignored. Some feeds
// carry header metadata (week-end dates, periods) outside the tabular
// area.
func (r *Reader) Cell(path, sheet, ref string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return r.csvCell(path, ref)
	}
	f, err := r.open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	v, err := f.GetCellValue(sheet, ref)
	if err != nil {
		return "", fmt.Errorf("failed to read cell %s!%s: %w", sheet, ref, err)
	}
	return v, nil
}

// Row reads one raw row (0-based) without interpreting any layout. For
// workbooks the sheet must be named; for CSV files the sheet is
// ignored. Some feeds print a reporting-period banner in a cell whose
// column varies, so callers scan the whole row.
func (r *Reader) Row(path, sheet string, row int) ([]string, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		rows, err := readCSVRows(path, 0)
		if err != nil {
			return nil, err
		}
		if row < 0 || row >= len(rows) {
			return nil, nil
		}
		return rows[row], nil
	}
	f, err := r.open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if row < 0 || row >= len(rows) {
		return nil, nil
	}
	return rows[row], nil
}

func (r *Reader) csvCell(path, ref string) (string, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return "", fmt.Errorf("failed to parse cell reference %q: %w", ref, err)
	}
	rows, err := readCSVRows(path, 0)
	if err != nil {
		return "", err
	}
	if row > len(rows) || col > len(rows[row-1]) {
		return "", nil
	}
	return rows[row-1][col-1], nil
}

// ReadCSV reads a CSV file as a table, header row first. Records with
// fewer fields than the header are padded with empty cells.
func (r *Reader) ReadCSV(path string) (*table.Table, error) {
	return r.ReadCSVAt(path, Layout{})
}

// ReadCSVAt reads a CSV file as a table using the given layout.
func (r *Reader) ReadCSVAt(path string, layout Layout) (*table.Table, error) {
	rows, err := readCSVRows(path, layout.Comma)
	if err != nil {
		return nil, err
	}
	if layout.HeaderRow >= len(rows) {
		return table.New(), nil
	}

	skip := make(map[int]bool, len(layout.SkipRows))
	for _, i := range layout.SkipRows {
		skip[i] = true
	}
	kept := [][]string{rows[layout.HeaderRow]}
	for i := layout.HeaderRow + 1; i < len(rows); i++ {
		if skip[i] {
			continue
		}
		kept = append(kept, rows[i])
	}
	if layout.SkipFooter > 0 {
		cut := len(kept) - layout.SkipFooter
		if cut < 1 {
			cut = 1
		}
		kept = kept[:cut]
	}
	return fromRows(kept)
}

func readCSVRows(path string, comma rune) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if comma != 0 {
		cr.Comma = comma
	}

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		rows = append(rows, rec)
	}
	if len(rows) == 0 {
		rows = [][]string{{}}
	}
	return rows, nil
}

func (r *Reader) open(path string) (*excelize.File, error) {
	var opts []excelize.Options
	if r.Password != "" {
		opts = append(opts, excelize.Options{Password: r.Password})
	}
	f, err := excelize.OpenFile(path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	return f, nil
}

func fromRows(rows [][]string) (*table.Table, error) {
	header := append([]string(nil), rows[0]...)
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			header[i] = fmt.Sprintf("column_%d", i)
		}
		// Repeated names get a positional suffix so a mapping can
		// address the second occurrence ("Current stock.1").
		key := strings.ToLower(header[i])
		if n, dup := seen[key]; dup {
			seen[key] = n + 1
			header[i] = fmt.Sprintf("%s.%d", header[i], n)
		} else {
			seen[key] = 1
		}
	}
	t := table.New(header...)
	for _, rec := range rows[1:] {
		cells := make([]string, len(header))
		copy(cells, rec)
		if err := t.AppendRow(cells...); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// IsSpreadsheet reports whether the extension names a workbook format
// the Reader expands sheet by sheet.
func IsSpreadsheet(ext string) bool {
	switch strings.ToLower(ext) {
	case ".xlsx", ".xls", ".xlsm":
		return true
	}
	return false
}

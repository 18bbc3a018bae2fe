package retailer

import (
	"fmt"
	"sort"
	"time"

	"github.com/leapstack-labs/retailsync/internal/table"
)

// applyMapping selects and renames the spec's columns, then stamps the
// constants. Source columns absent from the delivery are simply not
// selected; the per-retailer derivations fail on anything they truly
// need.
func applyMapping(raw *table.Table, spec *MappingSpec) *table.Table {
	out := raw.Select(spec.Columns)
	stampConstants(out, spec.Constants)
	return out
}

// stampConstants appends fixed-value columns in sorted name order so
// the resulting column order, and therefore row identity, is stable.
func stampConstants(t *table.Table, constants map[string]string) {
	names := make([]string, 0, len(constants))
	for name := range constants {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		t.AddColumn(name, constants[name])
	}
}

// cleanNumeric rewrites the named columns through table.CleanNumber,
// leaving empty cells empty. Columns absent from the table are skipped.
func cleanNumeric(t *table.Table, cols ...string) error {
	for _, col := range cols {
		if !t.HasColumn(col) {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			cell := t.Cell(i, col)
			if cell == "" {
				continue
			}
			v, err := table.CleanNumber(cell)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", col, i, err)
			}
			t.SetCell(i, col, v)
		}
	}
	return nil
}

// rewriteColumn passes every non-empty cell of a column through fn.
func rewriteColumn(t *table.Table, col string, fn func(string) (string, error)) error {
	if !t.HasColumn(col) {
		return nil
	}
	for i := 0; i < t.Len(); i++ {
		cell := t.Cell(i, col)
		if cell == "" {
			continue
		}
		v, err := fn(cell)
		if err != nil {
			return fmt.Errorf("column %q row %d: %w", col, i, err)
		}
		if err := t.SetCell(i, col, v); err != nil {
			return err
		}
	}
	return nil
}

// standardizeDates rewrites the named columns to ISO dates.
func standardizeDates(t *table.Table, cols ...string) error {
	for _, col := range cols {
		if !t.HasColumn(col) {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			cell := t.Cell(i, col)
			if cell == "" {
				continue
			}
			v, err := table.StandardDate(cell)
			if err != nil {
				return fmt.Errorf("column %q row %d: %w", col, i, err)
			}
			t.SetCell(i, col, v)
		}
	}
	return nil
}

const isoDate = "2006-01-02"

// isoWeekRange returns the Monday and Sunday of the given ISO week.
func isoWeekRange(year, week int) (start, end time.Time) {
	// Jan 4 is always in ISO week 1.
	t := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, -1)
	}
	start = t.AddDate(0, 0, (week-1)*7)
	return start, start.AddDate(0, 0, 6)
}

// monthRange returns the first and last day of the month containing d.
func monthRange(d time.Time) (start, end time.Time) {
	start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1).Truncate(24 * time.Hour)
}


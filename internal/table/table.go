// Package table provides the in-memory normalized table that flows from
// the retailer parsers through enrichment to object storage. Cells are
// strings end-to-end: spreadsheet extracts arrive as text and the
// warehouse load coerces types on COPY, so nothing is gained by typing
// columns earlier.
package table

import (
	"fmt"
	"strings"
)

// Table is an ordered collection of named columns and rows of string
// cells. Row order is preserved by every operation; the record identity
// of a row includes its ordinal, so reordering rows changes identity.
type Table struct {
	columns []string
	index   map[string]int // lower(name) -> position
	rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		t.index[strings.ToLower(c)] = i
	}
	return t
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether a column exists, matching case-insensitively.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[strings.ToLower(name)]
	return ok
}

// AppendRow adds a row. The cell count must match the column count.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), cells...))
	return nil
}

// Cell returns the value at (row, column). Column lookup is
// case-insensitive; a missing column or out-of-range row yields "".
func (t *Table) Cell(row int, column string) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	i, ok := t.index[strings.ToLower(column)]
	if !ok {
		return ""
	}
	return t.rows[row][i]
}

// SetCell writes the value at (row, column).
func (t *Table) SetCell(row int, column, value string) error {
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	i, ok := t.index[strings.ToLower(column)]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	t.rows[row][i] = value
	return nil
}

// Row returns the raw cells of one row in column order.
func (t *Table) Row(row int) []string {
	if row < 0 || row >= len(t.rows) {
		return nil
	}
	return append([]string(nil), t.rows[row]...)
}

// JoinedRow concatenates a row's cells in column order with no
// separator. This is the content-fingerprint input: duplicate rows join
// to identical strings.
func (t *Table) JoinedRow(row int) string {
	if row < 0 || row >= len(t.rows) {
		return ""
	}
	return strings.Join(t.rows[row], "")
}

// AddColumn appends a column filled with the same value in every row.
// Adding an existing column overwrites its values instead.
func (t *Table) AddColumn(name, value string) {
	if i, ok := t.index[strings.ToLower(name)]; ok {
		for _, r := range t.rows {
			r[i] = value
		}
		return
	}
	t.index[strings.ToLower(name)] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], value)
	}
}

// AddDerivedColumn appends a column whose value is computed per row from
// the row's current cells. Overwrites when the column already exists;
// all values are computed before any cell is written, so fn may read
// the column it replaces.
func (t *Table) AddDerivedColumn(name string, fn func(row int) string) {
	values := make([]string, len(t.rows))
	for r := range t.rows {
		values[r] = fn(r)
	}
	t.AddColumn(name, "")
	i := t.index[strings.ToLower(name)]
	for r := range t.rows {
		t.rows[r][i] = values[r]
	}
}

// TrimCells strips leading and trailing whitespace from every cell.
func (t *Table) TrimCells() {
	for _, r := range t.rows {
		for i, v := range r {
			r[i] = strings.TrimSpace(v)
		}
	}
}

// Select returns a new table containing only the columns named in
// mapping (source name → normalized name), matched case-insensitively
// against this table's columns and ignoring surrounding whitespace.
// CSV headers arrive with stray padding and embedded line breaks, so
// both sides are trimmed before comparison. Unmapped source columns
// are dropped; mapped columns absent from the source are simply not
// present in the output. Output column order follows the source
// column order.
func (t *Table) Select(mapping map[string]string) *Table {
	fold := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	lower := make(map[string]string, len(mapping))
	for src, dst := range mapping {
		lower[fold(src)] = dst
	}

	var keep []int
	var names []string
	for i, c := range t.columns {
		if dst, ok := lower[fold(c)]; ok {
			keep = append(keep, i)
			names = append(names, dst)
		}
	}

	out := New(names...)
	for _, r := range t.rows {
		cells := make([]string, len(keep))
		for j, i := range keep {
			cells[j] = r[i]
		}
		out.rows = append(out.rows, cells)
	}
	return out
}

// Filter returns a new table holding only the rows for which keep
// reports true, in their original order.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := New(t.columns...)
	for i, r := range t.rows {
		if keep(i) {
			out.rows = append(out.rows, append([]string(nil), r...))
		}
	}
	return out
}

// Records converts the table to one map per row with lower-cased column
// names, the shape serialized into the unprocessed storage area.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, len(t.rows))
	for r, row := range t.rows {
		rec := make(map[string]string, len(t.columns))
		for i, c := range t.columns {
			rec[strings.ToLower(c)] = row[i]
		}
		out[r] = rec
	}
	return out
}

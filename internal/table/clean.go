package table

// clean.go - Cell value cleanup shared by the retailer parsers

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CleanNumber parses a currency- or thousands-formatted string
// ("$1,233.50", "1 233,50" pre-normalized) into a canonical decimal
// string. Characters in strip are removed before parsing. Decimals avoid
// the float round-trip that would perturb monetary values.
func CleanNumber(s string, strip ...string) (string, error) {
	if len(strip) == 0 {
		strip = []string{" ", ",", "$"}
	}
	for _, ch := range strip {
		s = strings.ReplaceAll(s, ch, "")
	}
	if s == "" {
		return "", nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("not a numeric value %q: %w", s, err)
	}
	return d.String(), nil
}

// dateLayouts are tried in order by StandardDate. The set covers every
// format observed across the retailer feeds.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"02-Jan-2006",
	"20060102",
	time.RFC3339,
}

// StandardDate normalizes a date string from any supported feed format
// to "2006-01-02". Serial day numbers (spreadsheet date cells read as
// text) are resolved against the 1900 epoch.
func StandardDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty date value")
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	if serial, err := decimal.NewFromString(s); err == nil {
		days := serial.IntPart()
		// Spreadsheet serial 1 is 1900-01-01, with the phantom
		// 1900-02-29 accounting for the extra day.
		d := time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(days))
		return d.Format("2006-01-02"), nil
	}
	return "", fmt.Errorf("unrecognized date value %q", s)
}

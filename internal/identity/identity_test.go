package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripDeliveryPrefix(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "timestamp prefix stripped",
			input:    "1616086825_ADI Inventory Report 2021-01-31.xlsx",
			expected: "ADI Inventory Report 2021-01-31.xlsx",
		},
		{
			name:     "no underscore unchanged",
			input:    "Inventory.xlsx",
			expected: "Inventory.xlsx",
		},
		{
			name:     "non-numeric prefix unchanged",
			input:    "NewFlag_202104.xlsx",
			expected: "NewFlag_202104.xlsx",
		},
		{
			name:     "leading underscore unchanged",
			input:    "_report.csv",
			expected: "_report.csv",
		},
		{
			name:     "only first segment stripped",
			input:    "1616099999_Sales_Q1.xlsx",
			expected: "Sales_Q1.xlsx",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripDeliveryPrefix(tt.input))
		})
	}
}

func TestReportID_Deterministic(t *testing.T) {
	a := ReportID("1616086825_Inventory.xlsx", "Inventory", "Monthly", "2021-01-31", "C033038 ADI srl", 1233)
	b := ReportID("1616086825_Inventory.xlsx", "Inventory", "Monthly", "2021-01-31", "C033038 ADI srl", 1233)
	assert.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestReportID_IgnoresDeliveryPrefix(t *testing.T) {
	// The same logical report delivered twice differs only by the
	// timestamp the mail client prepends to the saved file.
	a := ReportID("1616086825_Inventory.xlsx", "Inventory", "Monthly", "2021-01-31", "C033038 ADI srl", 10)
	b := ReportID("1616099999_Inventory.xlsx", "Inventory", "Monthly", "2021-01-31", "C033038 ADI srl", 10)
	assert.Equal(t, a, b)
}

func TestReportID_SensitiveToEachComponent(t *testing.T) {
	base := ReportID("1_r.xlsx", "S1", "Weekly", "2021-02-06", "C050439 Sephora", 5)

	assert.NotEqual(t, base, ReportID("1_other.xlsx", "S1", "Weekly", "2021-02-06", "C050439 Sephora", 5))
	assert.NotEqual(t, base, ReportID("1_r.xlsx", "S2", "Weekly", "2021-02-06", "C050439 Sephora", 5))
	assert.NotEqual(t, base, ReportID("1_r.xlsx", "S1", "Monthly", "2021-02-06", "C050439 Sephora", 5))
	assert.NotEqual(t, base, ReportID("1_r.xlsx", "S1", "Weekly", "2021-02-13", "C050439 Sephora", 5))
	assert.NotEqual(t, base, ReportID("1_r.xlsx", "S1", "Weekly", "2021-02-06", "C095719 Sephora CA", 5))
	assert.NotEqual(t, base, ReportID("1_r.xlsx", "S1", "Weekly", "2021-02-06", "C050439 Sephora", 6))
}

func TestReportID_TotalOverEmptyInputs(t *testing.T) {
	// Missing period fields must hash, not fail.
	id := ReportID("", "", "", "", "", 0)
	assert.Len(t, id, 32)
}

func TestRecordID(t *testing.T) {
	a := RecordID("abc123", 0)
	b := RecordID("abc123", 0)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)

	assert.NotEqual(t, RecordID("abc123", 0), RecordID("abc123", 1))
	assert.NotEqual(t, RecordID("abc123", 0), RecordID("abc124", 0))
}

func TestRowUUID(t *testing.T) {
	assert.Equal(t, RowUUID("store1sku9"), RowUUID("store1sku9"))
	assert.NotEqual(t, RowUUID("store1sku9"), RowUUID("store1sku8"))
	// Content fingerprint is position independent by construction: the
	// same joined text yields the same uuid wherever the row sits.
	assert.Len(t, RowUUID(""), 32)
}

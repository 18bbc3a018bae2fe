// Package identity computes the deterministic identifiers that make
// repeated report ingestion idempotent: a report-level hash, a
// position-stable record hash, and a row-content fingerprint.
//
// All functions are total over string inputs. Empty components hash as
// empty strings; callers are expected to log (not fail) when period
// fields are missing upstream.
package identity

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// sep joins hash components. A component containing the separator would
// shift neighbouring fields, but column data here is business text and
// the original identifiers were minted the same way, so changing it would
// orphan every previously loaded row.
const sep = "|"

func sum(s string) string {
	h := md5.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// StripDeliveryPrefix removes the mail client's received-timestamp prefix
// from a downloaded attachment name ("1616086825_Report.xlsx" →
// "Report.xlsx"). Names without an all-digits leading segment are
// returned unchanged, so two deliveries of the same document always
// normalize to the same name.
func StripDeliveryPrefix(fileName string) string {
	head, rest, ok := strings.Cut(fileName, "_")
	if !ok || head == "" {
		return fileName
	}
	for _, r := range head {
		if r < '0' || r > '9' {
			return fileName
		}
	}
	return rest
}

// ReportID derives the identity of one logical report. Two deliveries of
// the same document, even in separate emails, produce the same ID because
// the volatile delivery prefix is stripped before hashing.
func ReportID(fileName, sheetName, reportingPeriod, endDate, retailerID string, recordCount int) string {
	name := StripDeliveryPrefix(fileName)
	return sum(strings.Join([]string{
		name,
		sheetName,
		reportingPeriod,
		endDate,
		retailerID,
		fmt.Sprintf("%d", recordCount),
	}, sep))
}

// RecordID derives the global primary key of one row: stable across
// re-ingestion of an identical report and row position, different for any
// other position or report.
func RecordID(reportID string, rowOrdinal int) string {
	return sum(fmt.Sprintf("%s%s%d", reportID, sep, rowOrdinal))
}

// RowUUID fingerprints a row's concatenated stringified values. It marks
// content-identical rows regardless of position and is used for duplicate
// analytics, never as a key.
func RowUUID(joinedRow string) string {
	return sum(joinedRow)
}

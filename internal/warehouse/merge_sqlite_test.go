package warehouse

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// sqliteMergeSQL rewrites the Redshift merge statement for SQLite,
// which does not accept a parenthesized SELECT as an INSERT source.
func sqliteMergeSQL(final, staging string, columns []string) string {
	stmt := mergeSQL(final, staging, columns)
	stmt = strings.Replace(stmt, "(\nSELECT DISTINCT", "\nSELECT DISTINCT", 1)
	return strings.TrimSuffix(stmt, "\n)")
}

func newMergeDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(createTableSQL("stg_sales", salesColumns))
	require.NoError(t, err)
	_, err = db.Exec(createTableSQL("sales", salesColumns))
	require.NoError(t, err)
	return db
}

func insertStagingRow(t *testing.T, db *sql.DB, recordID, uuid, createdAt, totalValue string) {
	t.Helper()
	_, err := db.Exec(fmt.Sprintf(
		`INSERT INTO stg_sales (record_id, report_id, uuid, created_at, file_name,
			sender_email_address, email_subject, email_received_date, total_quantity, total_value)
		VALUES ('%s', 'rep1', '%s', '%s', 'report.xlsx', 'ops@retailer.example',
			'Monthly report', '%s', '3', '%s')`,
		recordID, uuid, createdAt, createdAt, totalValue))
	require.NoError(t, err)
}

// A corrected resend keeps the file name and row position, so both
// copies hash to the same record_id while their cells differ. The
// merge must land exactly one row per record_id, carrying the newest
// copy's values.
func TestMergeKeepsNewestCopyPerRecord(t *testing.T) {
	db := newMergeDB(t)

	insertStagingRow(t, db, "r1", "u-old", "2021-01-01", "10")
	insertStagingRow(t, db, "r1", "u-new", "2021-01-02", "20")
	insertStagingRow(t, db, "r2", "u-other", "2021-01-01", "5")

	_, err := db.Exec(sqliteMergeSQL("sales", "stg_sales", salesColumns))
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sales").Scan(&count))
	assert.Equal(t, 2, count)

	var uuid, createdAt, totalValue string
	require.NoError(t, db.QueryRow(
		"SELECT uuid, created_at, total_value FROM sales WHERE record_id = 'r1'").
		Scan(&uuid, &createdAt, &totalValue))
	assert.Equal(t, "u-new", uuid)
	assert.Equal(t, "2021-01-02", createdAt)
	assert.Equal(t, "20", totalValue)
}

func TestMergeIsIdempotent(t *testing.T) {
	db := newMergeDB(t)

	insertStagingRow(t, db, "r1", "u-old", "2021-01-01", "10")
	insertStagingRow(t, db, "r1", "u-new", "2021-01-02", "20")

	stmt := sqliteMergeSQL("sales", "stg_sales", salesColumns)
	_, err := db.Exec(stmt)
	require.NoError(t, err)

	// Replaying the same staging load must not duplicate or disturb
	// records already merged.
	_, err = db.Exec(stmt)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sales WHERE record_id = 'r1'").Scan(&count))
	assert.Equal(t, 1, count)

	var totalValue string
	require.NoError(t, db.QueryRow(
		"SELECT total_value FROM sales WHERE record_id = 'r1'").Scan(&totalValue))
	assert.Equal(t, "20", totalValue)
}

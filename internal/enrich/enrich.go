// Package enrich attaches identity and provenance to normalized tables
// and decides where the resulting artifact lives in object storage.
package enrich

import (
	"fmt"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/leapstack-labs/retailsync/internal/identity"
	"github.com/leapstack-labs/retailsync/internal/table"
)

// ReportType discriminates the two fact streams.
type ReportType string

const (
	Sales     ReportType = "sales"
	Inventory ReportType = "inventory"
)

// Valid reports whether t names a known report type.
func (t ReportType) Valid() bool {
	return t == Sales || t == Inventory
}

// Source carries the provenance of one downloaded attachment.
type Source struct {
	MessageID    string // mail service internal id
	RFCMessageID string // Message-ID header
	Subject      string
	From         string
	To           string
	Date         string // received date header, as delivered
	Timestamp    int64  // internal received time, unix seconds
	LocalPath    string // downloaded file, name prefixed with Timestamp
}

// FileName returns the base name of the downloaded file, delivery prefix
// included. The prefix is stripped only inside report identity hashing;
// the provenance column keeps the name as saved.
func (s Source) FileName() string {
	return path.Base(strings.ReplaceAll(s.LocalPath, "\\", "/"))
}

// Identity resolves the retailer identity of one row. Most retailers
// report for a single identity; a combined feed (one document carrying
// two retailer entities) resolves per row instead.
type Identity interface {
	Resolve(t *table.Table, row int) (retailerID, retailerName, internalID string)
}

// FixedIdentity is the common case: every row belongs to the retailer
// the mailbox label was registered for.
type FixedIdentity struct {
	RetailerID string
	InternalID string
}

// Resolve implements Identity.
func (f FixedIdentity) Resolve(*table.Table, int) (string, string, string) {
	return f.RetailerID, RetailerName(f.RetailerID), f.InternalID
}

// RetailerName derives the display name from a retailer id of the form
// "C033038 ADI srl" (customer number, then name).
func RetailerName(retailerID string) string {
	if _, name, ok := strings.Cut(retailerID, " "); ok {
		return name
	}
	return retailerID
}

// Artifact is one enriched normalized table ready for upload, the
// explicit return value that replaces any shared mutable accumulator
// between the parse and upload phases.
type Artifact struct {
	Table      *table.Table
	ReportType ReportType
	Sheet      string
	Source     Source
	Retailer   string // registry tag, used in storage paths
	Key        string // object key under the unprocessed area
}

// Enricher computes identity fields and provenance columns. Now is
// injectable so identity tests can pin load time.
type Enricher struct {
	UnprocessedPrefix string
	Logger            *slog.Logger
	Now               func() time.Time
}

// New returns an Enricher writing under the given unprocessed-area
// prefix. A nil logger discards.
func New(unprocessedPrefix string, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Enricher{
		UnprocessedPrefix: unprocessedPrefix,
		Logger:            logger,
		Now:               time.Now,
	}
}

// Enrich turns a normalized table into an uploadable artifact:
//
//  1. retailer identity columns (per row, via the Identity strategy)
//  2. whitespace trim on every cell
//  3. uuid, report_id, record_id (record_id from report_id + ordinal:
//     row order is part of identity and must not change between writes
//     of the same logical report)
//  4. provenance columns (load time, file/sheet names, sender, subject)
//  5. deterministic object key, safe to overwrite on retry
func (e *Enricher) Enrich(t *table.Table, src Source, retailerTag string, rt ReportType, sheet string, id Identity) (*Artifact, error) {
	if !rt.Valid() {
		return nil, fmt.Errorf("unknown report type %q", rt)
	}
	endDateColumn := "reporting_period_end"
	if rt == Inventory {
		endDateColumn = "effective_date"
	}

	t.AddDerivedColumn("retailer_id", func(row int) string {
		rid, _, _ := id.Resolve(t, row)
		return rid
	})
	t.AddDerivedColumn("retailer_name", func(row int) string {
		_, name, _ := id.Resolve(t, row)
		return name
	})
	t.AddDerivedColumn("retailer_internal_id", func(row int) string {
		_, _, internal := id.Resolve(t, row)
		return internal
	})

	t.TrimCells()

	fileName := src.FileName()
	count := t.Len()

	t.AddDerivedColumn("uuid", func(row int) string {
		return identity.RowUUID(t.JoinedRow(row))
	})
	t.AddDerivedColumn("report_id", func(row int) string {
		endDate := t.Cell(row, endDateColumn)
		period := t.Cell(row, "reporting_period")
		if endDate == "" || period == "" {
			e.Logger.Warn("hashing report identity with missing period fields",
				"file", fileName, "sheet", sheet, "row", row)
		}
		rid, _, _ := id.Resolve(t, row)
		return identity.ReportID(fileName, sheet, period, endDate, rid, count)
	})
	t.AddDerivedColumn("record_id", func(row int) string {
		return identity.RecordID(t.Cell(row, "report_id"), row)
	})

	t.AddColumn("created_at", e.Now().Format("2006-01-02 15:04:05"))
	t.AddColumn("file_name", fileName)
	t.AddColumn("sheet_name", sheet)
	t.AddColumn("number_of_records_in_sheet", strconv.Itoa(count))
	t.AddColumn("sender_email_address", src.From)
	t.AddColumn("email_received_date", src.Date)
	t.AddColumn("email_subject", src.Subject)

	return &Artifact{
		Table:      t,
		ReportType: rt,
		Sheet:      sheet,
		Source:     src,
		Retailer:   retailerTag,
		Key:        e.objectKey(rt, retailerTag, src.MessageID, fileName, sheet),
	}, nil
}

// objectKey builds the unprocessed-area destination:
// {prefix}/{report_type}/{retailer}/{message_id}/[{sheet}_]{file}.json.
// Deterministic from inputs, so a retried run overwrites rather than
// duplicates.
func (e *Enricher) objectKey(rt ReportType, retailerTag, messageID, fileName, sheet string) string {
	name := fileName + ".json"
	if sheet != "" {
		name = sheet + "_" + name
	}
	return path.Join(e.UnprocessedPrefix, string(rt), retailerTag, messageID, name)
}

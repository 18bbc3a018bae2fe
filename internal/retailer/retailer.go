// Package retailer maps vendor-specific report layouts onto the common
// sales and inventory schemas. Each retailer is a static column-mapping
// table plus a small set of derivations; the registry binds a closed set
// of tags to parser constructors at build time.
package retailer

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// Tag identifies a registered retailer. Tags appear in storage paths
// and CLI arguments.
type Tag string

// Info is a retailer's reference data, loaded from configuration and
// immutable at run time.
type Info struct {
	RetailerID     string
	InternalID     string
	EmailLabel     string
	FileExtensions []string
	Enabled        bool
	// Options carries per-retailer extras such as a workbook password
	// or the name of a reference table.
	Options map[string]string
}

// Option returns a per-retailer option value, "" when unset.
func (i Info) Option(key string) string {
	if i.Options == nil {
		return ""
	}
	return i.Options[key]
}

// CellReader reads individual cells outside the tabular area. Weekly
// feeds carry their period in a banner cell above the data.
type CellReader interface {
	Cell(path, sheet, ref string) (string, error)
}

// SheetReader re-reads a sheet under a different layout. A few feeds
// shift their header row between deliveries and the parser has to
// probe before it can commit to a layout.
type SheetReader interface {
	SheetNames(path string) ([]string, error)
	ReadSheetAt(path, sheet string, layout xlsx.Layout) (*table.Table, error)
}

// RowReader reads one raw row of a sheet or CSV file. Some feeds place
// their reporting-period banner in a column that moves between
// deliveries, so the parser scans the row instead of addressing a cell.
type RowReader interface {
	Row(path, sheet string, row int) ([]string, error)
}

// StoreLookup resolves reference store lists from the warehouse. Used
// by combined feeds that infer country from the store a row belongs to.
type StoreLookup interface {
	StoreIDs(ctx context.Context, tableName string) ([]string, error)
}

// Env is everything a parser may need beyond the raw table: reference
// data, cell access for banner metadata, and warehouse lookups. Passed
// at construction, never global.
type Env struct {
	Info   Info
	Logger *slog.Logger
	Cells  CellReader
	Rows   RowReader
	Sheets SheetReader
	Stores StoreLookup
}

// MappingSpec describes how one (file, sheet) unit maps onto a report
// type: which source columns to keep under which normalized names,
// which constants to stamp, and where the tabular area sits. Name lets
// a parser with several shapes tell its own specs apart in Transform.
type MappingSpec struct {
	Name       string
	ReportType enrich.ReportType
	Columns    map[string]string // source column -> normalized field
	Constants  map[string]string // normalized field -> fixed value
	Layout     xlsx.Layout
}

// Parser is the per-retailer capability set. Locate inspects file and
// sheet names and returns the applicable mapping, or false when the
// unit is not recognized (silently skipped, not an error). One unit may
// match several specs: a single workbook can feed both fact streams.
// Transform produces the normalized table for one located spec.
type Parser interface {
	Locate(fileName, sheetName string) []*MappingSpec
	Transform(ctx context.Context, raw *table.Table, spec *MappingSpec, src enrich.Source, sheet string) (*table.Table, error)
	// Identity returns the strategy that resolves retailer identity
	// per row during enrichment.
	Identity(ctx context.Context) (enrich.Identity, error)
}

// SheetPicker narrows the sheets of a workbook before location. A feed
// that accumulates one sheet per week is read at its latest non-empty
// sheet only; everything earlier has already been delivered.
type SheetPicker interface {
	PickSheets(path string, sheets []string) ([]string, error)
}

// WorkbookPassword is the Info option key for protected workbooks.
const WorkbookPassword = "workbook_password"

// fixed returns the common single-identity strategy from reference data.
func fixed(info Info) enrich.Identity {
	return enrich.FixedIdentity{RetailerID: info.RetailerID, InternalID: info.InternalID}
}

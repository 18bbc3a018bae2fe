// Package engine orchestrates the pipeline phases: extract retailer
// reports from the inbox into the landing zone, load the landing zone
// into warehouse staging, merge staging into the final tables, and
// archive the landing zone.
package engine

import (
	"context"
	"log/slog"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/mailbox"
	"github.com/leapstack-labs/retailsync/internal/objstore"
	"github.com/leapstack-labs/retailsync/internal/retailer"
	"github.com/leapstack-labs/retailsync/internal/state"
)

// Warehouse is the warehouse surface the engine drives.
type Warehouse interface {
	EnsureStagingTables(ctx context.Context) error
	EnsureFinalTables(ctx context.Context) error
	LoadStaging(ctx context.Context, rt enrich.ReportType, s3Location string) error
	MergeSales(ctx context.Context) (int64, error)
	MergeInventory(ctx context.Context) (int64, error)
	StoreIDs(ctx context.Context, tableName string) ([]string, error)
}

// Journal records extraction runs and their per-document failures.
type Journal interface {
	CreateRun(retailer string) (*state.Run, error)
	CompleteRun(id string, status state.RunStatus, errMsg string) error
	RecordParseError(runID, fileName, sheetName, message string) error
	HasErrors(runID string) (bool, error)
}

// Config carries the engine's fixed layout and the retailer roster.
type Config struct {
	// Landing zone prefixes inside the bucket.
	UnprocessedPrefix string
	ProcessedPrefix   string
	RawPrefix         string

	// Retailers is the enabled roster, keyed by registry tag.
	Retailers map[retailer.Tag]retailer.Info

	// SearchCriteria narrows the inbox query within each retailer
	// label. Empty means unread messages only.
	SearchCriteria string

	// Notification settings for parse-failure mail. Notifications are
	// sent only when NotifyErrors is set and NotifyTo is non-empty.
	NotifyErrors bool
	NotifyFrom   string
	NotifyTo     string
	NotifyCc     string
}

// Engine wires the pipeline's ports together.
type Engine struct {
	cfg      Config
	mail     mailbox.Service
	store    objstore.Store
	wh       Warehouse
	journal  Journal
	enricher *enrich.Enricher
	logger   *slog.Logger
}

// New builds an engine. A nil logger discards.
func New(cfg Config, mail mailbox.Service, store objstore.Store, wh Warehouse, journal Journal, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		cfg:      cfg,
		mail:     mail,
		store:    store,
		wh:       wh,
		journal:  journal,
		enricher: enrich.New(cfg.UnprocessedPrefix, logger),
		logger:   logger,
	}
}

package engine

import (
	"context"
	"fmt"
	"path"

	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// LoadStaging ensures the staging tables exist and loads each report
// stream that has unprocessed artifacts in the landing zone.
func (e *Engine) LoadStaging(ctx context.Context) error {
	if err := e.wh.EnsureStagingTables(ctx); err != nil {
		return err
	}

	for _, rt := range []enrich.ReportType{enrich.Sales, enrich.Inventory} {
		prefix := path.Join(e.cfg.UnprocessedPrefix, string(rt))
		present, err := e.store.HasPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("failed to check landing zone prefix %s: %w", prefix, err)
		}
		if !present {
			e.logger.Info("no unprocessed data found", "report_type", rt)
			continue
		}

		location := e.store.URI(prefix) + "/"
		e.logger.Info("loading staging table", "report_type", rt, "source", location)
		if err := e.wh.LoadStaging(ctx, rt, location); err != nil {
			return err
		}
	}
	return nil
}

// MergeFinal ensures the final tables exist and merges staging into
// them. An empty report type merges both streams.
func (e *Engine) MergeFinal(ctx context.Context, rt enrich.ReportType) error {
	if err := e.wh.EnsureFinalTables(ctx); err != nil {
		return err
	}

	merge := func(rt enrich.ReportType) error {
		var rows int64
		var err error
		switch rt {
		case enrich.Sales:
			rows, err = e.wh.MergeSales(ctx)
		case enrich.Inventory:
			rows, err = e.wh.MergeInventory(ctx)
		default:
			return fmt.Errorf("unknown report type %q", rt)
		}
		if err != nil {
			return err
		}
		e.logger.Info("merged new records", "report_type", rt, "rows", rows)
		return nil
	}

	if rt == "" {
		if err := merge(enrich.Sales); err != nil {
			return err
		}
		return merge(enrich.Inventory)
	}
	return merge(rt)
}

// Archive moves the whole unprocessed area under the processed prefix
// after a staging load, so reruns never double-load. Returns how many
// objects moved.
func (e *Engine) Archive(ctx context.Context) (int, error) {
	present, err := e.store.HasPrefix(ctx, e.cfg.UnprocessedPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to check landing zone: %w", err)
	}
	if !present {
		e.logger.Info("nothing to archive")
		return 0, nil
	}

	moved, err := e.store.MovePrefix(ctx, e.cfg.UnprocessedPrefix, e.cfg.ProcessedPrefix)
	if err != nil {
		return 0, fmt.Errorf("failed to archive landing zone: %w", err)
	}
	e.logger.Info("archived landing zone", "objects", moved)
	return moved, nil
}

package engine

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/retailsync/internal/enrich"
	"github.com/leapstack-labs/retailsync/internal/mailbox"
	"github.com/leapstack-labs/retailsync/internal/retailer"
	"github.com/leapstack-labs/retailsync/internal/state"
	"github.com/leapstack-labs/retailsync/internal/table"
	"github.com/leapstack-labs/retailsync/internal/xlsx"
)

// ExtractOptions tunes one extraction pass.
type ExtractOptions struct {
	// KeepUnread leaves processed messages unread, so the next pass
	// sees them again. Used for dry runs against a live inbox.
	KeepUnread bool
}

// ExtractSummary reports what one retailer's extraction produced.
type ExtractSummary struct {
	Retailer  retailer.Tag
	RunID     string
	Artifacts int
	Failures  int
}

type parseFailure struct {
	fileName  string
	sheetName string
	message   string
}

// ExtractRetailer runs the full extraction for one retailer: fetch
// unread report mail, parse and normalize every recognized document
// unit, and upload raw files plus JSON artifacts to the landing zone.
// A unit that fails to parse is journaled and reported by mail; it does
// not abort the rest of the run.
func (e *Engine) ExtractRetailer(ctx context.Context, tag retailer.Tag, opts ExtractOptions) (*ExtractSummary, error) {
	info, ok := e.cfg.Retailers[tag]
	if !ok {
		return nil, fmt.Errorf("retailer %q is not configured", tag)
	}
	if !info.Enabled {
		e.logger.Info("retailer disabled, skipping", "retailer", tag)
		return &ExtractSummary{Retailer: tag}, nil
	}

	run, err := e.journal.CreateRun(string(tag))
	if err != nil {
		return nil, err
	}
	summary, err := e.extract(ctx, tag, info, run, opts)
	if err != nil {
		_ = e.journal.CompleteRun(run.ID, state.RunStatusFailed, err.Error())
		return nil, err
	}

	// The journal is the record of what failed: the run's final status
	// comes from it, not from in-memory counters.
	hasErrors, err := e.journal.HasErrors(run.ID)
	if err != nil {
		return nil, err
	}
	status := state.RunStatusSuccess
	errMsg := ""
	if hasErrors {
		status = state.RunStatusFailed
		errMsg = fmt.Sprintf("%d document units failed to parse", summary.Failures)
	}
	if err := e.journal.CompleteRun(run.ID, status, errMsg); err != nil {
		return nil, err
	}
	return summary, nil
}

func (e *Engine) extract(ctx context.Context, tag retailer.Tag, info retailer.Info, run *state.Run, opts ExtractOptions) (*ExtractSummary, error) {
	reader := &xlsx.Reader{Password: info.Option(retailer.WorkbookPassword)}
	parser, err := retailer.New(tag, retailer.Env{
		Info:   info,
		Logger: e.logger,
		Cells:  reader,
		Rows:   reader,
		Sheets: reader,
		Stores: e.wh,
	})
	if err != nil {
		return nil, err
	}
	identity, err := parser.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve identity for %s: %w", tag, err)
	}

	deliveries, err := e.mail.FetchAttachments(ctx, mailbox.FetchOptions{
		Label:      info.EmailLabel,
		Criteria:   e.cfg.SearchCriteria,
		Extensions: info.FileExtensions,
		MarkSeen:   !opts.KeepUnread,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch mail for %s: %w", tag, err)
	}

	summary := &ExtractSummary{Retailer: tag, RunID: run.ID}
	var failures []parseFailure
	fail := func(fileName, sheetName string, cause error) {
		e.logger.Error("failed to parse document unit",
			"retailer", tag, "file", fileName, "sheet", sheetName, "error", cause)
		failures = append(failures, parseFailure{fileName, sheetName, cause.Error()})
		if err := e.journal.RecordParseError(run.ID, fileName, sheetName, cause.Error()); err != nil {
			e.logger.Error("failed to journal parse error", "error", err)
		}
	}

	for _, src := range deliveries {
		artifacts, units, err := e.extractDelivery(ctx, tag, parser, reader, identity, src, fail)
		if err != nil {
			fail(src.FileName(), "", err)
			continue
		}
		if units == 0 {
			e.logger.Info("no matching data found, skipping upload", "file", src.FileName())
			continue
		}

		rawKey := path.Join(e.cfg.RawPrefix, string(tag), src.MessageID, src.FileName())
		if err := e.store.UploadFile(ctx, rawKey, src.LocalPath); err != nil {
			return nil, fmt.Errorf("failed to upload raw file: %w", err)
		}
		for _, a := range artifacts {
			if err := e.store.UploadJSON(ctx, a.Key, a.Table.Records()); err != nil {
				return nil, fmt.Errorf("failed to upload artifact %s: %w", a.Key, err)
			}
			summary.Artifacts++
		}
	}

	summary.Failures = len(failures)
	if len(failures) > 0 {
		e.notifyFailures(ctx, tag, failures)
	}
	return summary, nil
}

// extractDelivery parses every recognized unit of one attachment.
// units counts specs that were located, whether or not they produced
// output; a delivery with zero located units is skipped entirely.
func (e *Engine) extractDelivery(ctx context.Context, tag retailer.Tag, parser retailer.Parser, reader *xlsx.Reader, identity enrich.Identity, src enrich.Source, fail func(string, string, error)) ([]*enrich.Artifact, int, error) {
	fileName := src.FileName()
	ext := strings.ToLower(filepath.Ext(fileName))

	var sheets []string
	switch {
	case xlsx.IsSpreadsheet(ext):
		names, err := reader.SheetNames(src.LocalPath)
		if err != nil {
			return nil, 0, err
		}
		if picker, ok := parser.(retailer.SheetPicker); ok {
			names, err = picker.PickSheets(src.LocalPath, names)
			if err != nil {
				return nil, 0, err
			}
		}
		sheets = names
	case ext == ".csv":
		sheets = []string{""}
	default:
		return nil, 0, nil
	}

	var artifacts []*enrich.Artifact
	units := 0
	for _, sheet := range sheets {
		for _, spec := range parser.Locate(fileName, sheet) {
			units++
			a, err := e.extractUnit(ctx, tag, parser, reader, identity, src, spec, sheet)
			if err != nil {
				fail(fileName, sheet, err)
				continue
			}
			if a != nil {
				artifacts = append(artifacts, a)
			}
		}
	}
	return artifacts, units, nil
}

func (e *Engine) extractUnit(ctx context.Context, tag retailer.Tag, parser retailer.Parser, reader *xlsx.Reader, identity enrich.Identity, src enrich.Source, spec *retailer.MappingSpec, sheet string) (*enrich.Artifact, error) {
	var raw *table.Table
	var err error
	if sheet == "" {
		raw, err = reader.ReadCSVAt(src.LocalPath, spec.Layout)
	} else {
		raw, err = reader.ReadSheetAt(src.LocalPath, sheet, spec.Layout)
	}
	if err != nil {
		return nil, err
	}

	out, err := parser.Transform(ctx, raw, spec, src, sheet)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, nil
	}
	return e.enricher.Enrich(out, src, string(tag), spec.ReportType, sheet, identity)
}

// notifyFailures emails the failure list to the operators. Disabled
// when notifications are off or no recipient is configured; a send
// failure is logged, not fatal.
func (e *Engine) notifyFailures(ctx context.Context, tag retailer.Tag, failures []parseFailure) {
	if !e.cfg.NotifyErrors || e.cfg.NotifyTo == "" {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "The following %s documents failed to parse:\n\n", tag)
	for _, f := range failures {
		if f.sheetName != "" {
			fmt.Fprintf(&b, "- %s (sheet %s): %s\n", f.fileName, f.sheetName, f.message)
		} else {
			fmt.Fprintf(&b, "- %s: %s\n", f.fileName, f.message)
		}
	}
	err := e.mail.SendNotification(ctx, mailbox.Notification{
		From:    e.cfg.NotifyFrom,
		To:      e.cfg.NotifyTo,
		Cc:      e.cfg.NotifyCc,
		Subject: fmt.Sprintf("Report parse failures: %s", tag),
		Body:    b.String(),
	})
	if err != nil {
		e.logger.Error("failed to send failure notification", "error", err)
	}
}

// extractWorkers caps concurrent retailer extractions. Each worker
// holds a workbook and the Gmail client open, so the fan-out stays
// small regardless of how many retailers are configured.
const extractWorkers = 4

// ExtractAll runs every enabled retailer with bounded concurrency.
// Summaries come back sorted by tag; the first hard failure cancels
// the rest.
func (e *Engine) ExtractAll(ctx context.Context, opts ExtractOptions) ([]*ExtractSummary, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(extractWorkers)

	var mu sync.Mutex
	var summaries []*ExtractSummary
	for tag, info := range e.cfg.Retailers {
		if !info.Enabled {
			continue
		}
		g.Go(func() error {
			s, err := e.ExtractRetailer(ctx, tag, opts)
			if err != nil {
				return err
			}
			mu.Lock()
			summaries = append(summaries, s)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Retailer < summaries[j].Retailer })
	return summaries, nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/retailsync/internal/cli/config"
	"github.com/leapstack-labs/retailsync/internal/engine"
	"github.com/leapstack-labs/retailsync/internal/retailer"
)

// ExtractOptions holds options for the extract command.
type ExtractOptions struct {
	All        bool
	KeepUnread bool
}

// NewExtractCommand creates the extract command.
func NewExtractCommand() *cobra.Command {
	opts := &ExtractOptions{}

	cmd := &cobra.Command{
		Use:   "extract [retailer]",
		Short: "Fetch and normalize retailer reports from the inbox",
		Long: `Download unread report attachments for a retailer, normalize each
recognized document into the common fact shape, and upload raw files
and JSON extracts to the landing zone. Documents that fail to parse
are journaled and reported by mail; they do not stop the run.`,
		Example: `  # Extract one retailer
  retailsync extract sephora

  # Extract every enabled retailer
  retailsync extract --all

  # Inspect a live inbox without consuming it
  retailsync extract asos --keep-unread`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "Extract every enabled retailer")
	cmd.Flags().BoolVar(&opts.KeepUnread, "keep-unread", false, "Leave processed messages unread")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *ExtractOptions) error {
	if opts.All == (len(args) == 1) {
		return fmt.Errorf("specify exactly one retailer or --all")
	}

	cfg := config.Current()
	logger := newLogger(cfg.Verbose)
	ctx := cmd.Context()

	engCfg, err := engineConfig(cfg)
	if err != nil {
		return err
	}

	journal, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	store, err := newObjectStore(cfg, logger)
	if err != nil {
		return err
	}
	wh, err := openWarehouse(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = wh.Close() }()

	mail, err := newMail(ctx, cfg, logger)
	if err != nil {
		return err
	}

	eng := engine.New(engCfg, mail, store, wh, journal, logger)
	runOpts := engine.ExtractOptions{KeepUnread: opts.KeepUnread}

	var summaries []*engine.ExtractSummary
	if opts.All {
		summaries, err = eng.ExtractAll(ctx, runOpts)
	} else {
		var s *engine.ExtractSummary
		s, err = eng.ExtractRetailer(ctx, retailer.Tag(args[0]), runOpts)
		if s != nil {
			summaries = append(summaries, s)
		}
	}
	if err != nil {
		return err
	}

	failures := 0
	for _, s := range summaries {
		fmt.Fprintf(cmd.OutOrStdout(), "%-20s %d artifacts, %d failures\n", s.Retailer, s.Artifacts, s.Failures)
		failures += s.Failures
	}
	if failures > 0 {
		return fmt.Errorf("%d document units failed to parse", failures)
	}
	return nil
}

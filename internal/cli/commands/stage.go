package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/retailsync/internal/cli/config"
	"github.com/leapstack-labs/retailsync/internal/engine"
)

// NewStageCommand creates the stage command.
func NewStageCommand() *cobra.Command {
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Bulk-load the landing zone into warehouse staging",
		Long: `Truncate the staging tables and COPY the unprocessed JSON extracts
into them, one transaction per report stream. After a successful load
the landing zone is archived so the next run never double-loads.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Current()
			logger := newLogger(cfg.Verbose)
			ctx := cmd.Context()

			engCfg, err := engineConfig(cfg)
			if err != nil {
				return err
			}
			store, err := newObjectStore(cfg, logger)
			if err != nil {
				return err
			}
			wh, err := openWarehouse(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = wh.Close() }()

			eng := engine.New(engCfg, nil, store, wh, nil, logger)
			if err := eng.LoadStaging(ctx); err != nil {
				return err
			}

			if noArchive {
				return nil
			}
			moved, err := eng.Archive(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Archived %d objects\n", moved)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Leave the landing zone in place after loading")

	return cmd
}

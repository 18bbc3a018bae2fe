package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/retailsync/internal/cli/config"
	"github.com/leapstack-labs/retailsync/internal/engine"
	"github.com/leapstack-labs/retailsync/internal/enrich"
)

// NewMergeCommand creates the merge command.
func NewMergeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge [sales|inventory]",
		Short: "Merge staged rows into the final tables",
		Long: `Insert staged rows that are not yet present in the final tables,
collapsing duplicate deliveries so each record keeps the provenance of
its most recent delivery. With no argument both streams are merged.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var rt enrich.ReportType
			if len(args) == 1 {
				switch args[0] {
				case string(enrich.Sales):
					rt = enrich.Sales
				case string(enrich.Inventory):
					rt = enrich.Inventory
				default:
					return fmt.Errorf("unknown report stream %q, expected sales or inventory", args[0])
				}
			}

			cfg := config.Current()
			logger := newLogger(cfg.Verbose)
			ctx := cmd.Context()

			engCfg, err := engineConfig(cfg)
			if err != nil {
				return err
			}
			wh, err := openWarehouse(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer func() { _ = wh.Close() }()

			eng := engine.New(engCfg, nil, nil, wh, nil, logger)
			return eng.MergeFinal(ctx, rt)
		},
	}

	return cmd
}

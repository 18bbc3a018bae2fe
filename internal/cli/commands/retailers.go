package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/retailsync/internal/cli/config"
	"github.com/leapstack-labs/retailsync/internal/retailer"
)

// NewRetailersCommand creates the retailers command.
func NewRetailersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retailers",
		Short: "List supported retailers and their configuration state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Current()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RETAILER\tSTATUS\tLABEL\tRETAILER ID")
			for _, tag := range retailer.Tags() {
				rc, ok := cfg.Retailers[string(tag)]
				switch {
				case !ok:
					fmt.Fprintf(w, "%s\tnot configured\t\t\n", tag)
				case rc.Enabled:
					fmt.Fprintf(w, "%s\tenabled\t%s\t%s\n", tag, rc.EmailLabel, rc.RetailerID)
				default:
					fmt.Fprintf(w, "%s\tdisabled\t%s\t%s\n", tag, rc.EmailLabel, rc.RetailerID)
				}
			}
			return w.Flush()
		},
	}

	return cmd
}

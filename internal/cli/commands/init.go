package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/stockmaster"
)

func NewInitCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the catalog tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			adapter, err := g.Adapter()
			if err != nil {
				return err
			}
			opts, err := catalogOptions(cmd, g)
			if err != nil {
				return err
			}
			c, err := stockmaster.Create(cmd.Context(), adapter, opts)
			if err != nil {
				return err
			}
			defer c.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s catalog at %s\n", adapter.Backend(), adapter.ID())
			return nil
		},
	}
}

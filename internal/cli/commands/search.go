package commands

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
	"github.com/stockmaster/stockmaster/stockmaster"
)

func NewSearchCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <inventory> [expression]",
		Short: "Search products with a filter expression",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			showHidden, _ := cmd.Flags().GetBool("show-hidden")
			explain, _ := cmd.Flags().GetBool("explain")

			expression := ""
			if len(args) == 2 {
				expression = args[1]
			}

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			w := cmd.OutOrStdout()
			if explain {
				ex, err := c.Explain(cmd.Context(), args[0], expression)
				if err != nil {
					return err
				}
				return printExplanation(cmd, g, ex)
			}

			start := time.Now()
			res, err := c.Search(cmd.Context(), args[0], expression, stockmaster.SearchOptions{
				Limit:      limit,
				Offset:     offset,
				ShowHidden: showHidden,
			})
			if err != nil {
				return err
			}
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(w, res)
			}

			printProducts(cmd, res.Products)
			fmt.Fprintf(w, "\n--- %d results", len(res.Products))
			if res.HasMore {
				fmt.Fprint(w, ", more available")
			}
			fmt.Fprintf(w, " (%s) ---\n", time.Since(start).Round(time.Microsecond))
			return nil
		},
	}
	cmd.Flags().Int("limit", stockmaster.DefaultSearchLimit, "max results")
	cmd.Flags().Int("offset", 0, "results to skip")
	cmd.Flags().Bool("show-hidden", false, "include hidden fields")
	cmd.Flags().Bool("explain", false, "show the compiled filter instead of running it")
	return cmd
}

func printExplanation(cmd *cobra.Command, g *cliopt.GlobalOptions, ex stockmaster.Explanation) error {
	w := cmd.OutOrStdout()
	if format(g) == cliutil.FormatJSON {
		return cliutil.PrintJSON(w, ex)
	}
	doc, err := json.Marshal(ex.Document)
	if err != nil {
		return err
	}
	cliutil.KV(w, [][2]string{
		{"Expression", ex.Expression},
		{"Filter", ex.Filter},
		{"SQL", ex.SQL},
		{"Args", fmt.Sprint(ex.Args)},
		{"Document", string(doc)},
	})
	return nil
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
)

func NewStatsCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <inventory> <field>",
		Short: "Show statistics for a numeric field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, _ := cmd.Flags().GetString("where")

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			st, err := c.Stats(cmd.Context(), args[0], args[1], where)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(w, st)
			}
			pairs := [][2]string{{"Field", st.Field}, {"Count", strconv.FormatInt(st.Count, 10)}}
			for _, kv := range []struct {
				name string
				v    *float64
			}{{"Min", st.Min}, {"Max", st.Max}, {"Avg", st.Avg}, {"Median", st.Median}} {
				if kv.v != nil {
					pairs = append(pairs, [2]string{kv.name, fmt.Sprintf("%.2f", *kv.v)})
				}
			}
			cliutil.KV(w, pairs)
			return nil
		},
	}
	cmd.Flags().StringP("where", "w", "", "filter expression")
	return cmd
}

func NewValuesCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "values <inventory> <field>",
		Short: "Show the most frequent values of a string field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, _ := cmd.Flags().GetString("where")
			top, _ := cmd.Flags().GetInt("top")

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			values, err := c.DiscoverValues(cmd.Context(), args[0], args[1], where, top)
			if err != nil {
				return err
			}
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(cmd.OutOrStdout(), values)
			}
			rows := make([][]string, 0, len(values))
			for _, v := range values {
				rows = append(rows, []string{v.Value, strconv.FormatInt(v.Count, 10)})
			}
			cliutil.Table(cmd.OutOrStdout(), []string{"VALUE", "COUNT"}, rows)
			return nil
		},
	}
	cmd.Flags().StringP("where", "w", "", "filter expression")
	cmd.Flags().Int("top", 20, "number of values to return")
	return cmd
}

package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
	"github.com/stockmaster/stockmaster/stockmaster"
)

func NewPutCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <inventory>",
		Short: "Create or update a product",
		Long: `Create a product, or merge values into an existing one when --id is given.
Values are given as --set field=value; use null to clear a field.
With --json, products are read from stdin as JSON lines of the form
{"id": ..., "fields": {...}} and written in one transaction.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			sets, _ := cmd.Flags().GetStringArray("set")
			jsonLines, _ := cmd.Flags().GetBool("json")

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			if jsonLines {
				b, err := readBatch(cmd.InOrStdin())
				if err != nil {
					return err
				}
				n, err := c.Batch(cmd.Context(), args[0], b)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Put %d products\n", n)
				return nil
			}

			values, err := cliutil.ParseSets(sets)
			if err != nil {
				return err
			}

			p, err := c.PutProduct(cmd.Context(), args[0], id, values)
			if err != nil {
				return err
			}
			return printProduct(cmd, g, p)
		},
	}
	cmd.Flags().String("id", "", "product ID to update")
	cmd.Flags().StringArray("set", nil, "field=value (repeatable)")
	cmd.Flags().Bool("json", false, "read JSON lines from stdin")
	return cmd
}

type productLine struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// readBatch turns JSON lines into batch puts. JSON strings are taken as
// raw values; any other JSON value is passed as its source text.
func readBatch(r io.Reader) (stockmaster.Batch, error) {
	b := stockmaster.NewBatch()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var pl productLine
		if err := json.Unmarshal([]byte(text), &pl); err != nil {
			return b, fmt.Errorf("line %d: %w", line, err)
		}
		values := make(map[string]string, len(pl.Fields))
		for name, raw := range pl.Fields {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				values[name] = s
				continue
			}
			values[name] = string(raw)
		}
		b.Put(pl.ID, values)
	}
	return b, scanner.Err()
}

func NewGetCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <inventory> <id>",
		Short: "Show a product",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			showHidden, _ := cmd.Flags().GetBool("show-hidden")

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			p, err := c.GetProduct(cmd.Context(), args[0], args[1], showHidden)
			if err != nil {
				return err
			}
			return printProduct(cmd, g, p)
		},
	}
	cmd.Flags().Bool("show-hidden", false, "include hidden fields")
	return cmd
}

func NewDeleteCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <inventory> [id]",
		Short: "Delete a product, or every product matching --where",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			where, _ := cmd.Flags().GetString("where")
			if (len(args) == 2) == cmd.Flags().Changed("where") {
				return fmt.Errorf("give either a product id or --where")
			}

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			w := cmd.OutOrStdout()
			if len(args) == 2 {
				deleted, err := c.DeleteProduct(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("product not found: %s", args[1])
				}
				fmt.Fprintf(w, "Deleted: %s\n", args[1])
				return nil
			}

			n, err := c.DeleteWhere(cmd.Context(), args[0], where)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Deleted %d products\n", n)
			return nil
		},
	}
	cmd.Flags().StringP("where", "w", "", "filter expression")
	return cmd
}

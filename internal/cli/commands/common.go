package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
	"github.com/stockmaster/stockmaster/stockmaster"
)

func catalogOptions(cmd *cobra.Command, g *cliopt.GlobalOptions) (stockmaster.Options, error) {
	logger, err := g.Logger(cmd.ErrOrStderr())
	if err != nil {
		return stockmaster.Options{}, err
	}
	opts := stockmaster.DefaultOptions()
	opts.Logger = logger
	return opts, nil
}

// openCatalog opens the catalog selected by the global flags. The caller
// closes it.
func openCatalog(cmd *cobra.Command, g *cliopt.GlobalOptions) (*stockmaster.Catalog, error) {
	adapter, err := g.Adapter()
	if err != nil {
		return nil, err
	}
	opts, err := catalogOptions(cmd, g)
	if err != nil {
		return nil, err
	}
	return stockmaster.Open(cmd.Context(), adapter, opts)
}

func format(g *cliopt.GlobalOptions) cliutil.OutputFormat {
	return cliutil.ParseOutputFormat(g.Format)
}

// loadSchema reads a schema file. YAML is used for .yaml and .yml files,
// JSON otherwise; "-" reads JSON from stdin.
func loadSchema(cmd *cobra.Command, path string) (stockmaster.Schema, error) {
	b, err := cliutil.ReadFileOrStdin(path, cmd.InOrStdin())
	if err != nil {
		return stockmaster.Schema{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return stockmaster.SchemaFromYAML(b)
	default:
		return stockmaster.SchemaFromJSON(b)
	}
}

// parseFieldArg parses name:type or name:type:hidden.
func parseFieldArg(arg string) (string, stockmaster.FieldSpec, error) {
	parts := strings.Split(arg, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", stockmaster.FieldSpec{}, fmt.Errorf("invalid field %q (expected name:type[:hidden])", arg)
	}
	spec := stockmaster.FieldSpec{Type: stockmaster.FieldType(parts[1])}
	if len(parts) == 3 {
		if parts[2] != "hidden" {
			return "", stockmaster.FieldSpec{}, fmt.Errorf("invalid field flag %q in %q", parts[2], arg)
		}
		spec.Hidden = true
	}
	return parts[0], spec, nil
}

func printProduct(cmd *cobra.Command, g *cliopt.GlobalOptions, p stockmaster.Product) error {
	w := cmd.OutOrStdout()
	if format(g) == cliutil.FormatJSON {
		return cliutil.PrintJSON(w, p)
	}
	cliutil.KV(w, [][2]string{
		{"ID", p.ID},
		{"Fields", cliutil.FormatFields(p.Fields)},
		{"Created", p.CreatedAt.Format(stockmasterTimeLayout)},
		{"Updated", p.UpdatedAt.Format(stockmasterTimeLayout)},
	})
	return nil
}

const stockmasterTimeLayout = "2006-01-02 15:04:05.000"

func printProducts(cmd *cobra.Command, products []stockmaster.Product) {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, []string{p.ID, cliutil.FormatFields(p.Fields)})
	}
	cliutil.Table(cmd.OutOrStdout(), []string{"ID", "FIELDS"}, rows)
}

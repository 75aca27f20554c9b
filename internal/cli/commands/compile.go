package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
	"github.com/stockmaster/stockmaster/stockmaster"
	"github.com/stockmaster/stockmaster/stockmaster/memory"
	"github.com/stockmaster/stockmaster/stockmaster/planner"
	"github.com/stockmaster/stockmaster/stockmaster/query"
	"github.com/stockmaster/stockmaster/stockmaster/storage"
	"github.com/stockmaster/stockmaster/stockmaster/storage/postgres"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlbuilder"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlite"
)

type renderedSQL struct {
	Where string `json:"where"`
	Args  []any  `json:"args"`
}

type compiled struct {
	Filter   string                 `json:"filter"`
	Document map[string]any         `json:"document"`
	Expr     string                 `json:"expr"`
	SQL      map[string]renderedSQL `json:"sql"`
}

func renderSQL(f query.Filter, d storage.Dialect, style sqlbuilder.PlaceholderStyle) (renderedSQL, error) {
	b := sqlbuilder.New(style)
	where, err := planner.SQL(f, d, b)
	if err != nil {
		return renderedSQL{}, err
	}
	return renderedSQL{Where: where, Args: b.Args()}, nil
}

// NewCompileCmd compiles an expression against a schema file without a
// database.
func NewCompileCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <expression>",
		Short: "Compile a filter expression and print every rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaFile, _ := cmd.Flags().GetString("schema")
			schema, err := loadSchema(cmd, schemaFile)
			if err != nil {
				return err
			}

			filter, err := query.Compile(args[0], schema.QuerySchema())
			if err != nil {
				return stockmaster.QueryRejected(args[0], err)
			}

			out := compiled{Filter: filter.String(), SQL: map[string]renderedSQL{}}
			if out.Document, err = planner.Document(filter); err != nil {
				return err
			}
			if out.Expr, err = planner.Expr(filter); err != nil {
				return err
			}
			if out.SQL[string(storage.BackendSQLite)], err = renderSQL(filter, sqlite.Dialect{}, sqlbuilder.PlaceholderQuestion); err != nil {
				return err
			}
			if out.SQL[string(storage.BackendPostgres)], err = renderSQL(filter, postgres.Dialect{}, sqlbuilder.PlaceholderDollar); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(w, out)
			}
			doc, err := json.Marshal(out.Document)
			if err != nil {
				return err
			}
			cliutil.KV(w, [][2]string{
				{"Filter", out.Filter},
				{"Document", string(doc)},
				{"Expr", out.Expr},
				{"SQLite", fmt.Sprintf("%s %v", out.SQL["sqlite"].Where, out.SQL["sqlite"].Args)},
				{"Postgres", fmt.Sprintf("%s %v", out.SQL["postgres"].Where, out.SQL["postgres"].Args)},
			})
			return nil
		},
	}
	cmd.Flags().String("schema", "", "schema file (.json or .yaml) (required)")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

// NewFilterCmd filters JSON lines products in memory.
func NewFilterCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter <expression>",
		Short: "Filter JSON lines products in memory",
		Long:  "Read products as JSON lines of the form {\"id\": ..., \"fields\": {...}}\nand print those matching the expression.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaFile, _ := cmd.Flags().GetString("schema")
			input, _ := cmd.Flags().GetString("input")
			schema, err := loadSchema(cmd, schemaFile)
			if err != nil {
				return err
			}
			logger, err := g.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			coll := memory.New(schema, logger)
			if err := loadProducts(coll, r); err != nil {
				return err
			}

			matched, err := coll.Filter(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format(g) == cliutil.FormatJSON {
				if matched == nil {
					matched = []stockmaster.Product{}
				}
				return cliutil.PrintJSON(w, matched)
			}
			printProducts(cmd, matched)
			return nil
		},
	}
	cmd.Flags().String("schema", "", "schema file (.json or .yaml) (required)")
	cmd.Flags().String("input", "-", "JSON lines file, or - for stdin")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func loadProducts(coll *memory.Collection, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var p stockmaster.Product
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if p.ID == "" {
			p.ID = fmt.Sprintf("line-%d", line)
		}
		if err := coll.Put(p); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	return scanner.Err()
}

package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/internal/cliutil"
	"github.com/stockmaster/stockmaster/stockmaster"
)

func NewInventoryCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "inventory",
		Aliases: []string{"inv"},
		Short:   "Manage inventories",
	}
	cmd.AddCommand(
		newInventoryCreateCmd(g),
		newInventoryListCmd(g),
		newInventoryShowCmd(g),
		newInventoryAddFieldCmd(g),
		newInventoryDeleteCmd(g),
	)
	return cmd
}

func newInventoryCreateCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schemaFile, _ := cmd.Flags().GetString("schema")
			fieldArgs, _ := cmd.Flags().GetStringArray("field")

			schema := stockmaster.Schema{Fields: map[string]stockmaster.FieldSpec{}}
			if schemaFile != "" {
				s, err := loadSchema(cmd, schemaFile)
				if err != nil {
					return err
				}
				schema = s
			}
			for _, arg := range fieldArgs {
				name, spec, err := parseFieldArg(arg)
				if err != nil {
					return err
				}
				if schema, err = schema.AddField(name, spec); err != nil {
					return err
				}
			}

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			inv, err := c.CreateInventory(cmd.Context(), args[0], schema)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created inventory %q (%s) with %d fields\n", inv.Name, inv.ID, len(inv.Schema.Fields))
			return nil
		},
	}
	cmd.Flags().String("schema", "", "schema file (.json, .yaml or - for JSON on stdin)")
	cmd.Flags().StringArray("field", nil, "field as name:type[:hidden] (repeatable)")
	return cmd
}

func newInventoryListCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List inventories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			invs, err := c.Inventories(cmd.Context())
			if err != nil {
				return err
			}
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(cmd.OutOrStdout(), invs)
			}
			rows := make([][]string, 0, len(invs))
			for _, inv := range invs {
				rows = append(rows, []string{inv.ID, inv.Name, strconv.Itoa(len(inv.Schema.Fields))})
			}
			cliutil.Table(cmd.OutOrStdout(), []string{"ID", "NAME", "FIELDS"}, rows)
			return nil
		},
	}
}

func newInventoryShowCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show an inventory and its schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			inv, err := c.Inventory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if format(g) == cliutil.FormatJSON {
				return cliutil.PrintJSON(w, inv)
			}
			cliutil.KV(w, [][2]string{
				{"ID", inv.ID},
				{"Name", inv.Name},
				{"Created", inv.CreatedAt.Format(stockmasterTimeLayout)},
			})
			rows := make([][]string, 0, len(inv.Schema.Fields))
			for _, name := range inv.Schema.FieldNames() {
				spec := inv.Schema.Fields[name]
				rows = append(rows, []string{name, string(spec.Type), strconv.FormatBool(spec.Hidden)})
			}
			fmt.Fprintln(w)
			cliutil.Table(w, []string{"FIELD", "TYPE", "HIDDEN"}, rows)
			return nil
		},
	}
}

func newInventoryAddFieldCmd(g *cliopt.GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-field <inventory> <field> <type>",
		Short: "Add a field to an inventory schema",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			hidden, _ := cmd.Flags().GetBool("hidden")

			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			spec := stockmaster.FieldSpec{Type: stockmaster.FieldType(args[2]), Hidden: hidden}
			if _, err := c.AddField(cmd.Context(), args[0], args[1], spec); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added field %s (%s) to %s\n", args[1], args[2], args[0])
			return nil
		},
	}
	cmd.Flags().Bool("hidden", false, "hide the field from product views")
	return cmd
}

func newInventoryDeleteCmd(g *cliopt.GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete an inventory and all its products",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCatalog(cmd, g)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.DeleteInventory(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted inventory %s\n", args[0])
			return nil
		},
	}
}

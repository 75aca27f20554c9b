package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/stockmaster/stockmaster/internal/cli/commands"
	"github.com/stockmaster/stockmaster/internal/cliopt"
	"github.com/stockmaster/stockmaster/stockmaster"
)

// NewRootCmd builds the command tree. Global flags default to the
// STOCKMASTER_* environment.
func NewRootCmd(version string) *cobra.Command {
	g := cliopt.DefaultGlobalOptions()

	root := &cobra.Command{
		Use:           "stockmaster",
		Short:         "Multi-tenant inventory store with a typed filter language",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cliopt.BindGlobalFlags(root.PersistentFlags(), &g)

	root.AddCommand(
		commands.NewInitCmd(&g),
		commands.NewInventoryCmd(&g),
		commands.NewPutCmd(&g),
		commands.NewGetCmd(&g),
		commands.NewDeleteCmd(&g),
		commands.NewSearchCmd(&g),
		commands.NewStatsCmd(&g),
		commands.NewValuesCmd(&g),
		commands.NewCompileCmd(&g),
		commands.NewFilterCmd(&g),
	)
	return root
}

// Execute runs the CLI and returns an exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	root := NewRootCmd(Version)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitCode(err)
	}
	return 0
}

// Version is set at build time.
var Version = "dev"

// exitCode maps rejected input to 2 and everything else to 1.
func exitCode(err error) int {
	var e *stockmaster.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case stockmaster.ErrQueryRejected, stockmaster.ErrSchema, stockmaster.ErrUnknownField, stockmaster.ErrTypeMismatch:
			return 2
		}
	}
	return 1
}

// Main is the entry point used by cmd/stockmaster.
func Main() {
	os.Exit(Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

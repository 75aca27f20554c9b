// Command stockmaster manages inventories and products from the shell.
//
// Logging:
//   - The base logger is built from --log-level and --log-format
//   - It is passed to the catalog via stockmaster.Options
//   - No global slog configuration (no slog.SetDefault)
package main

import (
	// Registers the cgo driver selected with --sqlite-driver sqlite3.
	_ "github.com/mattn/go-sqlite3"

	"github.com/stockmaster/stockmaster/internal/cli"
)

func main() {
	cli.Main()
}

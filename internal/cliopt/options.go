package cliopt

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/stockmaster/stockmaster/internal/logging"
	"github.com/stockmaster/stockmaster/stockmaster/storage"
	"github.com/stockmaster/stockmaster/stockmaster/storage/postgres"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlite"
)

// GlobalOptions are parsed once at the CLI root and passed to subcommands.
//
// NOTE: This is a separate package to avoid import cycles between the root
// command router and per-command code.
type GlobalOptions struct {
	Backend        string
	SQLitePath     string
	SQLiteDriver   string
	PostgresDSN    string
	PostgresSchema string

	Format    string
	LogLevel  string
	LogFormat string
}

// DefaultGlobalOptions returns the built-in defaults overridden by any
// STOCKMASTER_* environment variables that are set.
func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{
		Backend:        env("STOCKMASTER_BACKEND", "sqlite"),
		SQLitePath:     env("STOCKMASTER_SQLITE_PATH", "stockmaster.db"),
		SQLiteDriver:   env("STOCKMASTER_SQLITE_DRIVER", sqlite.DriverPure),
		PostgresDSN:    env("STOCKMASTER_PG_DSN", ""),
		PostgresSchema: env("STOCKMASTER_PG_SCHEMA", "stockmaster"),
		Format:         env("STOCKMASTER_FORMAT", "pretty"),
		LogLevel:       env("STOCKMASTER_LOG_LEVEL", "warn"),
		LogFormat:      env("STOCKMASTER_LOG_FORMAT", "text"),
	}
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func BindGlobalFlags(fs *pflag.FlagSet, g *GlobalOptions) {
	fs.StringVar(&g.Backend, "backend", g.Backend, "backend: sqlite|postgres")

	fs.StringVar(&g.SQLitePath, "sqlite-path", g.SQLitePath, "sqlite database file")
	fs.StringVar(&g.SQLiteDriver, "sqlite-driver", g.SQLiteDriver, "sqlite driver: sqlite (pure Go) or sqlite3 (cgo)")

	fs.StringVar(&g.PostgresDSN, "pg-dsn", g.PostgresDSN, "postgres DSN")
	fs.StringVar(&g.PostgresSchema, "pg-schema", g.PostgresSchema, "postgres schema holding the catalog tables")

	fs.StringVarP(&g.Format, "format", "o", g.Format, "output format: pretty|json")
	fs.StringVar(&g.LogLevel, "log-level", g.LogLevel, "log level: debug|info|warn|error")
	fs.StringVar(&g.LogFormat, "log-format", g.LogFormat, "log format: text|json")
}

// Adapter returns the storage adapter selected by the options.
func (g GlobalOptions) Adapter() (storage.Adapter, error) {
	switch strings.ToLower(g.Backend) {
	case "sqlite":
		return sqlite.NewWithDriver(g.SQLitePath, g.SQLiteDriver), nil
	case "postgres", "pg":
		if g.PostgresDSN == "" {
			return nil, fmt.Errorf("--pg-dsn is required for the postgres backend")
		}
		return postgres.New(g.PostgresDSN, g.PostgresSchema), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s", g.Backend)
	}
}

// Logger builds the base logger writing to w.
func (g GlobalOptions) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(w, g.LogFormat, level)
}

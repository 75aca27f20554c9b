package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/stockmaster/stockmaster/stockmaster/storage"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlbuilder"
)

// Driver names understood by the adapter. DriverCGO is only available
// when the binary links github.com/mattn/go-sqlite3.
const (
	DriverPure = "sqlite"
	DriverCGO  = "sqlite3"
)

type Adapter struct {
	Path       string
	DriverName string
}

func New(path string) *Adapter {
	return &Adapter{Path: path, DriverName: DriverPure}
}

func NewWithDriver(path, driver string) *Adapter {
	return &Adapter{Path: path, DriverName: driver}
}

func (a *Adapter) Backend() storage.Backend {
	return storage.BackendSQLite
}

func (a *Adapter) PlaceholderStyle() sqlbuilder.PlaceholderStyle {
	return sqlbuilder.PlaceholderQuestion
}

func (a *Adapter) ID() string {
	return a.Path
}

// dsn adds busy timeout and foreign keys in the form the driver expects.
func (a *Adapter) dsn() string {
	var params string
	if a.DriverName == DriverCGO {
		params = "_busy_timeout=5000&_foreign_keys=on"
	} else {
		params = "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	if strings.Contains(a.Path, "?") {
		return a.Path + "&" + params
	}
	return a.Path + "?" + params
}

func (a *Adapter) Connect(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open(a.DriverName, a.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func (a *Adapter) Close() error {
	return nil
}

func (a *Adapter) SQL() storage.SQL {
	return SQLTemplates
}

func (a *Adapter) Dialect() storage.Dialect {
	return Dialect{}
}

func (a *Adapter) Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, ddlBase); err != nil {
		return err
	}
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode=WAL;")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous=NORMAL;")

	sqlt := a.SQL()
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, "stockmaster_magic", storage.Magic); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, sqlt.SetMeta, "stockmaster_version", "1"); err != nil {
		return err
	}
	return nil
}

func (a *Adapter) Verify(ctx context.Context, db *sql.DB) error {
	var magic string
	if err := db.QueryRowContext(ctx, a.SQL().GetMeta, "stockmaster_magic").Scan(&magic); err != nil {
		return err
	}
	if magic != storage.Magic {
		return fmt.Errorf("not a stockmaster db")
	}
	return nil
}

package storage

import (
	"context"
	"database/sql"

	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlbuilder"
)

type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
)

// Magic is stored in the meta table of every catalog database.
const Magic = "stockmaster"

// Adapter abstracts database-specific operations
type Adapter interface {
	Backend() Backend
	PlaceholderStyle() sqlbuilder.PlaceholderStyle
	ID() string

	Connect(ctx context.Context) (*sql.DB, error)
	Close() error

	// Init creates the catalog tables and stamps the meta table.
	Init(ctx context.Context, db *sql.DB) error
	// Verify checks that db holds a catalog created by Init.
	Verify(ctx context.Context, db *sql.DB) error

	SQL() SQL
	Dialect() Dialect
}

// SQL holds prepared SQL templates for common operations
type SQL struct {
	GetMeta string
	SetMeta string

	InsertInventory       string
	GetInventoryByName    string
	ListInventories       string
	UpdateInventorySchema string
	DeleteInventory       string

	// ProductColumns selects id, fields as text, created_at, updated_at.
	ProductColumns            string
	UpsertProduct             string
	GetProduct                string
	DeleteProduct             string
	DeleteProductsByInventory string
	CountProducts             string
}

// Builder interface for placeholder management
type Builder interface {
	Arg(v any) string
	Args() []any
	Len() int
}

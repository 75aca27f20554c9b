package stockmaster

import (
	"log/slog"
	"time"
)

// Inventory is a named collection of products sharing one schema.
type Inventory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Schema    Schema    `json:"schema"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product is a record of an inventory. Fields holds stored values keyed
// by declared field name; absent fields are omitted.
type Product struct {
	ID        string         `json:"id"`
	Fields    map[string]any `json:"fields"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// SearchOptions configures a search
type SearchOptions struct {
	Limit      int // default DefaultSearchLimit
	Offset     int
	ShowHidden bool // include hidden fields in results
}

// SearchResult is one page of matching products.
type SearchResult struct {
	Products []Product `json:"products"`
	HasMore  bool      `json:"has_more"`
}

// Explanation shows how an expression is compiled for each backend.
type Explanation struct {
	Expression string         `json:"expression"`
	Filter     string         `json:"filter"` // infix form of the predicate tree
	SQL        string         `json:"sql"`
	Args       []any          `json:"args"`
	Document   map[string]any `json:"document"`
}

// Options configures a Catalog
type Options struct {
	Now    func() time.Time
	Logger *slog.Logger
}

// DefaultOptions returns sensible defaults
func DefaultOptions() Options {
	return Options{Now: time.Now}
}

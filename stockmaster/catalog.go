package stockmaster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockmaster/stockmaster/internal/logging"
	"github.com/stockmaster/stockmaster/stockmaster/planner"
	"github.com/stockmaster/stockmaster/stockmaster/query"
	"github.com/stockmaster/stockmaster/stockmaster/storage"
	"github.com/stockmaster/stockmaster/stockmaster/storage/sqlbuilder"
)

var inventoryNameRe = regexp.MustCompile(`^[\p{L}0-9_ ]+$`)

// Catalog is an open inventory store.
type Catalog struct {
	adapter storage.Adapter
	db      *sql.DB
	opts    Options
	logger  *slog.Logger
}

// Create initializes a catalog database and opens it.
func Create(ctx context.Context, adapter storage.Adapter, opts Options) (*Catalog, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.Init(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "create catalog", err)
	}
	c := newCatalog(adapter, db, opts)
	c.logger.Info("catalog created", "backend", adapter.Backend(), "id", adapter.ID())
	return c, nil
}

// Open opens an existing catalog
func Open(ctx context.Context, adapter storage.Adapter, opts Options) (*Catalog, error) {
	db, err := adapter.Connect(ctx)
	if err != nil {
		return nil, Wrap(ErrIO, "connect to database", err)
	}
	if err := adapter.Verify(ctx, db); err != nil {
		db.Close()
		return nil, Wrap(ErrSQL, "open catalog", err)
	}
	c := newCatalog(adapter, db, opts)
	c.logger.Debug("catalog opened", "backend", adapter.Backend(), "id", adapter.ID())
	return c, nil
}

func newCatalog(adapter storage.Adapter, db *sql.DB, opts Options) *Catalog {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := logging.Default(opts.Logger)
	return &Catalog{
		adapter: adapter,
		db:      db,
		opts:    opts,
		logger:  logger.With("component", "catalog"),
	}
}

// Close closes the catalog
func (c *Catalog) Close() error {
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			return Wrap(ErrIO, "close database", err)
		}
	}
	return c.adapter.Close()
}

func (c *Catalog) nowMS() int64 {
	return c.opts.Now().UnixMilli()
}

// CreateInventory adds an inventory with an initial schema, which may be
// empty.
func (c *Catalog) CreateInventory(ctx context.Context, name string, schema Schema) (Inventory, error) {
	name = strings.TrimSpace(name)
	if !inventoryNameRe.MatchString(name) {
		return Inventory{}, SchemaError(fmt.Sprintf("invalid inventory name: %q", name))
	}
	schema, err := schema.normalized()
	if err != nil {
		return Inventory{}, err
	}
	schemaJSON, err := schema.ToJSON()
	if err != nil {
		return Inventory{}, Wrap(ErrSchema, "marshal schema", err)
	}

	if _, err := c.Inventory(ctx, name); err == nil {
		return Inventory{}, New(ErrConflict, fmt.Sprintf("inventory already exists: %s", name))
	} else if !IsKind(err, ErrNotFound) {
		return Inventory{}, err
	}

	now := c.nowMS()
	inv := Inventory{
		ID:        uuid.NewString(),
		Name:      name,
		Schema:    schema,
		CreatedAt: time.UnixMilli(now).UTC(),
		UpdatedAt: time.UnixMilli(now).UTC(),
	}
	if _, err := c.db.ExecContext(ctx, c.adapter.SQL().InsertInventory, inv.ID, inv.Name, string(schemaJSON), now, now); err != nil {
		return Inventory{}, Wrap(ErrSQL, "insert inventory", err)
	}

	c.logger.Info("inventory created", "inventory", name, "fields", len(schema.Fields))
	return inv, nil
}

func scanInventory(row interface{ Scan(...any) error }) (Inventory, error) {
	var inv Inventory
	var schemaJSON string
	var createdAt, updatedAt int64
	if err := row.Scan(&inv.ID, &inv.Name, &schemaJSON, &createdAt, &updatedAt); err != nil {
		return Inventory{}, err
	}
	schema, err := SchemaFromJSON([]byte(schemaJSON))
	if err != nil {
		return Inventory{}, err
	}
	inv.Schema = schema
	inv.CreatedAt = time.UnixMilli(createdAt).UTC()
	inv.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return inv, nil
}

// Inventory loads an inventory by name
func (c *Catalog) Inventory(ctx context.Context, name string) (Inventory, error) {
	inv, err := scanInventory(c.db.QueryRowContext(ctx, c.adapter.SQL().GetInventoryByName, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Inventory{}, NotFoundError("inventory", name)
	}
	if err != nil {
		if IsKind(err, ErrSchema) {
			return Inventory{}, err
		}
		return Inventory{}, Wrap(ErrSQL, "get inventory", err)
	}
	return inv, nil
}

// Inventories lists all inventories ordered by name
func (c *Catalog) Inventories(ctx context.Context) ([]Inventory, error) {
	rows, err := c.db.QueryContext(ctx, c.adapter.SQL().ListInventories)
	if err != nil {
		return nil, Wrap(ErrSQL, "list inventories", err)
	}
	defer rows.Close()

	var out []Inventory
	for rows.Next() {
		inv, err := scanInventory(rows)
		if err != nil {
			return nil, Wrap(ErrSQL, "scan inventory", err)
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap(ErrSQL, "iterate inventories", err)
	}
	return out, nil
}

// DeleteInventory removes an inventory and all its products
func (c *Catalog) DeleteInventory(ctx context.Context, name string) error {
	inv, err := c.Inventory(ctx, name)
	if err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	sqlt := c.adapter.SQL()
	if _, err := tx.ExecContext(ctx, sqlt.DeleteProductsByInventory, inv.ID); err != nil {
		return Wrap(ErrSQL, "delete products", err)
	}
	if _, err := tx.ExecContext(ctx, sqlt.DeleteInventory, inv.ID); err != nil {
		return Wrap(ErrSQL, "delete inventory", err)
	}
	if err := tx.Commit(); err != nil {
		return Wrap(ErrSQL, "commit", err)
	}

	c.logger.Info("inventory deleted", "inventory", name)
	return nil
}

// AddField adds a field to an inventory schema. Existing products are
// left untouched; the new field is absent on them.
func (c *Catalog) AddField(ctx context.Context, inventory, field string, spec FieldSpec) (Inventory, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return Inventory{}, err
	}
	schema, err := inv.Schema.AddField(field, spec)
	if err != nil {
		return Inventory{}, err
	}
	schemaJSON, err := schema.ToJSON()
	if err != nil {
		return Inventory{}, Wrap(ErrSchema, "marshal schema", err)
	}

	now := c.nowMS()
	if _, err := c.db.ExecContext(ctx, c.adapter.SQL().UpdateInventorySchema, string(schemaJSON), now, inv.ID); err != nil {
		return Inventory{}, Wrap(ErrSQL, "update schema", err)
	}
	inv.Schema = schema
	inv.UpdatedAt = time.UnixMilli(now).UTC()

	c.logger.Info("field added", "inventory", inventory, "field", field, "type", spec.Type)
	return inv, nil
}

// PutProduct creates or updates a product from raw string values keyed by
// field name (any case). With an empty id a new product is created. On
// update the given values are merged over the stored ones.
func (c *Catalog) PutProduct(ctx context.Context, inventory, id string, values map[string]string) (Product, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return Product{}, err
	}
	fields, err := validateValues(inv.Schema, values)
	if err != nil {
		return Product{}, err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return Product{}, Wrap(ErrSQL, "begin transaction", err)
	}
	defer tx.Rollback()

	p, err := c.putProduct(ctx, tx, inv, id, fields)
	if err != nil {
		return Product{}, err
	}
	if err := tx.Commit(); err != nil {
		return Product{}, Wrap(ErrSQL, "commit", err)
	}

	c.logger.Debug("product stored", "inventory", inventory, "product", p.ID)
	return p, nil
}

// validateValues converts raw values to stored ones keyed by declared
// field name.
func validateValues(schema Schema, values map[string]string) (map[string]any, error) {
	fields := make(map[string]any, len(values))
	for name, raw := range values {
		declared, spec, ok := schema.Lookup(name)
		if !ok {
			return nil, UnknownFieldError(name)
		}
		v, err := ValidateValue(spec.Type, raw)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Field = declared
			}
			return nil, err
		}
		fields[declared] = v
	}
	return fields, nil
}

func (c *Catalog) putProduct(ctx context.Context, tx *sql.Tx, inv Inventory, id string, fields map[string]any) (Product, error) {
	sqlt := c.adapter.SQL()
	now := c.nowMS()
	created := now
	if id == "" {
		id = uuid.NewString()
	} else {
		existing, err := getProduct(ctx, tx, sqlt, inv.ID, id)
		switch {
		case err == nil:
			for k, v := range fields {
				existing.Fields[k] = v
			}
			fields = existing.Fields
			created = existing.CreatedAt.UnixMilli()
		case !IsKind(err, ErrNotFound):
			return Product{}, err
		}
	}

	fieldsJSON, err := json.Marshal(fields)
	if err != nil {
		return Product{}, Wrap(ErrIO, "marshal fields", err)
	}
	if _, err := tx.ExecContext(ctx, sqlt.UpsertProduct, id, inv.ID, string(fieldsJSON), created, now); err != nil {
		return Product{}, Wrap(ErrSQL, "upsert product", err)
	}
	return Product{
		ID:        id,
		Fields:    normalizeFields(fields),
		CreatedAt: time.UnixMilli(created).UTC(),
		UpdatedAt: time.UnixMilli(now).UTC(),
	}, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getProduct(ctx context.Context, q queryRower, sqlt storage.SQL, inventoryID, id string) (Product, error) {
	p, err := scanProduct(q.QueryRowContext(ctx, sqlt.GetProduct, inventoryID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Product{}, NotFoundError("product", id)
	}
	if err != nil {
		return Product{}, Wrap(ErrSQL, "get product", err)
	}
	return p, nil
}

func scanProduct(row interface{ Scan(...any) error }) (Product, error) {
	var p Product
	var fieldsJSON string
	var createdAt, updatedAt int64
	if err := row.Scan(&p.ID, &fieldsJSON, &createdAt, &updatedAt); err != nil {
		return Product{}, err
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &p.Fields); err != nil {
		return Product{}, fmt.Errorf("decode fields: %w", err)
	}
	if p.Fields == nil {
		p.Fields = make(map[string]any)
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	p.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return p, nil
}

// normalizeFields gives freshly validated values the shape they have
// after a JSON round trip.
func normalizeFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch v := v.(type) {
		case int64:
			out[k] = float64(v)
		case []string:
			items := make([]any, len(v))
			for i, s := range v {
				items[i] = s
			}
			out[k] = items
		default:
			out[k] = v
		}
	}
	return out
}

// view drops fields that are hidden or no longer in the schema.
func view(p Product, schema Schema, showHidden bool) Product {
	fields := make(map[string]any, len(p.Fields))
	for name, v := range p.Fields {
		spec, ok := schema.Fields[name]
		if !ok || (spec.Hidden && !showHidden) {
			continue
		}
		fields[name] = v
	}
	p.Fields = fields
	return p
}

// GetProduct loads a product by id
func (c *Catalog) GetProduct(ctx context.Context, inventory, id string, showHidden bool) (Product, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return Product{}, err
	}
	p, err := getProduct(ctx, c.db, c.adapter.SQL(), inv.ID, id)
	if err != nil {
		return Product{}, err
	}
	return view(p, inv.Schema, showHidden), nil
}

// DeleteProduct removes a product, reporting whether it existed
func (c *Catalog) DeleteProduct(ctx context.Context, inventory, id string) (bool, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return false, err
	}
	res, err := c.db.ExecContext(ctx, c.adapter.SQL().DeleteProduct, inv.ID, id)
	if err != nil {
		return false, Wrap(ErrSQL, "delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, Wrap(ErrSQL, "rows affected", err)
	}
	return n > 0, nil
}

// compile turns an expression into a WHERE condition scoped to inv.
// A rejected expression never falls back to the match-all filter.
func (c *Catalog) compile(inv Inventory, expression string) (query.Filter, string, *sqlbuilder.Builder, error) {
	filter, err := query.Compile(expression, inv.Schema.QuerySchema())
	if err != nil {
		c.logger.Debug("query rejected", "inventory", inv.Name, "error", err)
		return query.Filter{}, "", nil, QueryRejected(expression, err)
	}

	b := sqlbuilder.New(c.adapter.PlaceholderStyle())
	scope := b.Arg(inv.ID)
	where, err := planner.SQL(filter, c.adapter.Dialect(), b)
	if err != nil {
		return query.Filter{}, "", nil, Wrap(ErrQueryRejected, "render filter", err)
	}
	return filter, "inventory_id = " + scope + " AND " + where, b, nil
}

// Search returns the products of an inventory matching expression, in
// creation order. An empty expression matches every product.
func (c *Catalog) Search(ctx context.Context, inventory, expression string, opts SearchOptions) (SearchResult, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return SearchResult{}, err
	}
	_, where, b, err := c.compile(inv, expression)
	if err != nil {
		return SearchResult{}, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	stmt := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY created_at, id LIMIT %s OFFSET %s",
		c.adapter.SQL().ProductColumns, where, b.Arg(limit+1), b.Arg(offset))

	start := time.Now()
	rows, err := c.db.QueryContext(ctx, stmt, b.Args()...)
	if err != nil {
		return SearchResult{}, Wrap(ErrSQL, "execute search", err)
	}
	defer rows.Close()

	var result SearchResult
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return SearchResult{}, Wrap(ErrSQL, "scan product", err)
		}
		result.Products = append(result.Products, view(p, inv.Schema, opts.ShowHidden))
	}
	if err := rows.Err(); err != nil {
		return SearchResult{}, Wrap(ErrSQL, "iterate products", err)
	}

	if len(result.Products) > limit {
		result.Products = result.Products[:limit]
		result.HasMore = true
	}

	c.logger.Debug("search", "inventory", inventory, "results", len(result.Products), "elapsed", time.Since(start))
	return result, nil
}

// DeleteWhere deletes the products matching expression and returns how
// many were removed.
func (c *Catalog) DeleteWhere(ctx context.Context, inventory, expression string) (int64, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return 0, err
	}
	filter, where, b, err := c.compile(inv, expression)
	if err != nil {
		return 0, err
	}
	if filter.IsEmpty() {
		c.logger.Warn("delete without filter", "inventory", inventory)
	}

	res, err := c.db.ExecContext(ctx, "DELETE FROM products WHERE "+where, b.Args()...)
	if err != nil {
		return 0, Wrap(ErrSQL, "delete products", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, Wrap(ErrSQL, "rows affected", err)
	}

	c.logger.Info("products deleted", "inventory", inventory, "count", n)
	return n, nil
}

// Explain compiles expression without running it.
func (c *Catalog) Explain(ctx context.Context, inventory, expression string) (Explanation, error) {
	inv, err := c.Inventory(ctx, inventory)
	if err != nil {
		return Explanation{}, err
	}
	filter, where, b, err := c.compile(inv, expression)
	if err != nil {
		return Explanation{}, err
	}
	doc, err := planner.Document(filter)
	if err != nil {
		return Explanation{}, Wrap(ErrQueryRejected, "render document", err)
	}
	return Explanation{
		Expression: expression,
		Filter:     filter.String(),
		SQL:        where,
		Args:       b.Args(),
		Document:   doc,
	}, nil
}

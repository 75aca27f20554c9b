package postgres

import "github.com/stockmaster/stockmaster/stockmaster/storage"

var SQLTemplates = storage.SQL{
	GetMeta: "SELECT value FROM meta WHERE key = $1",
	SetMeta: "INSERT INTO meta(key,value) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET value=excluded.value",

	InsertInventory:       "INSERT INTO inventories(id, name, schema_json, created_at, updated_at) VALUES($1, $2, $3::jsonb, $4, $5)",
	GetInventoryByName:    "SELECT id, name, schema_json::text, created_at, updated_at FROM inventories WHERE name = $1",
	ListInventories:       "SELECT id, name, schema_json::text, created_at, updated_at FROM inventories ORDER BY name",
	UpdateInventorySchema: "UPDATE inventories SET schema_json = $1::jsonb, updated_at = $2 WHERE id = $3",
	DeleteInventory:       "DELETE FROM inventories WHERE id = $1",

	ProductColumns: "id, fields::text, created_at, updated_at",
	UpsertProduct: `INSERT INTO products(id, inventory_id, fields, created_at, updated_at)
		VALUES($1, $2, $3::jsonb, $4, $5)
		ON CONFLICT(id) DO UPDATE SET fields=excluded.fields, updated_at=excluded.updated_at`,
	GetProduct:                "SELECT id, fields::text, created_at, updated_at FROM products WHERE inventory_id = $1 AND id = $2",
	DeleteProduct:             "DELETE FROM products WHERE inventory_id = $1 AND id = $2",
	DeleteProductsByInventory: "DELETE FROM products WHERE inventory_id = $1",
	CountProducts:             "SELECT COUNT(*) FROM products WHERE inventory_id = $1",
}

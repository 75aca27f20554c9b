package postgres

const ddlBase = `
CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS inventories (
  id          TEXT PRIMARY KEY,
  name        TEXT UNIQUE NOT NULL,
  schema_json JSONB NOT NULL,
  created_at  BIGINT NOT NULL,
  updated_at  BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
  id           TEXT PRIMARY KEY,
  inventory_id TEXT NOT NULL REFERENCES inventories(id) ON DELETE CASCADE,
  fields       JSONB NOT NULL,
  created_at   BIGINT NOT NULL,
  updated_at   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_inventory ON products(inventory_id, created_at);
CREATE INDEX IF NOT EXISTS idx_products_fields ON products USING GIN (fields jsonb_path_ops);
`

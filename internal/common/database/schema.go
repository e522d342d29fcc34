package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements create the product and sale tables. Product names are
// unique ignoring case.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id                  UUID PRIMARY KEY,
		name                TEXT NOT NULL,
		unit                TEXT NOT NULL DEFAULT 'unit',
		stock_quantity      NUMERIC(14,3) NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
		price_per_unit      NUMERIC(14,2) NOT NULL CHECK (price_per_unit > 0),
		low_stock_threshold NUMERIC(14,3) NOT NULL DEFAULT 5 CHECK (low_stock_threshold >= 0),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS products_name_lower_idx ON products (lower(name))`,
	`CREATE TABLE IF NOT EXISTS sales (
		id            UUID PRIMARY KEY,
		product_id    UUID NOT NULL REFERENCES products(id),
		quantity      NUMERIC(14,3) NOT NULL CHECK (quantity > 0),
		total_price   NUMERIC(16,2) NOT NULL,
		customer_name TEXT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS sales_created_at_idx ON sales (created_at)`,
}

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

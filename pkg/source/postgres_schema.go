package source

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// migrate creates the model tables
func migrate(ctx context.Context, pool *pgxpool.Pool) error {
	schema := `
	CREATE TABLE IF NOT EXISTS elements (
		id BIGINT PRIMARY KEY,
		category TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		connectors INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS element_parameters (
		element_id BIGINT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		value TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (element_id, name)
	);

	CREATE TABLE IF NOT EXISTS connections (
		id BIGINT PRIMARY KEY,
		a_element BIGINT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		a_connector INTEGER NOT NULL,
		b_element BIGINT NOT NULL REFERENCES elements(id) ON DELETE CASCADE,
		b_connector INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_elements_category ON elements(category);
	`

	_, err := pool.Exec(ctx, schema)
	return err
}

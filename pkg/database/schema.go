package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements holds the application DDL, applied idempotently at startup.
// River manages its own tables via its migration tooling.
var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,

	`CREATE TABLE IF NOT EXISTS datasets (
		dataset_id TEXT PRIMARY KEY,
		comments   JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS kv_entries (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS embedding_cache (
		text_hash  TEXT PRIMARY KEY,
		embedding  vector(1536) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema applies the application schema. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

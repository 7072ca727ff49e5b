package kvstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	apperrors "github.com/creatorpulse/hub/internal/errors"
)

// PostgresStore implements Store on a kv_entries table. Upserts are atomic per
// key; SetMulti runs in one transaction so partial publishes can't be observed.
type PostgresStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed key-value store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get returns the value for key and whether it was present.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, apperrors.NewStoreUnavailableError("get", err)
	}
	return value, true, nil
}

// Set writes value under key, replacing any previous value.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return apperrors.NewStoreUnavailableError("set", err)
	}
	return nil
}

// SetMulti writes all entries in one transaction.
func (s *PostgresStore) SetMulti(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return apperrors.NewStoreUnavailableError("set_multi", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	for key, value := range entries {
		_, err := tx.Exec(ctx,
			`INSERT INTO kv_entries (key, value, updated_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
			key, value,
		)
		if err != nil {
			return apperrors.NewStoreUnavailableError("set_multi", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewStoreUnavailableError("set_multi", err)
	}
	return nil
}

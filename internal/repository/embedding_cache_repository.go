package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	apperrors "github.com/creatorpulse/hub/internal/errors"
)

// EmbeddingCacheRepository stores embedding vectors content-addressed by text
// hash. Entries are immutable and never invalidated: under a fixed provider
// and model, identical text always embeds to the same vector, so concurrent
// last-writer-wins upserts are harmless.
type EmbeddingCacheRepository struct {
	db *pgxpool.Pool
}

// NewEmbeddingCacheRepository creates a new embedding cache repository.
func NewEmbeddingCacheRepository(db *pgxpool.Pool) *EmbeddingCacheRepository {
	return &EmbeddingCacheRepository{db: db}
}

// GetByHashes returns the cached vectors for the given text hashes. Missing
// hashes are simply absent from the result map.
func (r *EmbeddingCacheRepository) GetByHashes(ctx context.Context, hashes []string) (map[string][]float32, error) {
	if len(hashes) == 0 {
		return map[string][]float32{}, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT text_hash, embedding FROM embedding_cache WHERE text_hash = ANY($1)`,
		hashes,
	)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("embedding_cache.get", err)
	}
	defer rows.Close()

	found := make(map[string][]float32, len(hashes))
	for rows.Next() {
		var (
			hash string
			vec  pgvector.Vector
		)
		if err := rows.Scan(&hash, &vec); err != nil {
			return nil, fmt.Errorf("failed to scan embedding: %w", err)
		}
		found[hash] = vec.Slice()
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreUnavailableError("embedding_cache.get", err)
	}

	return found, nil
}

// Upsert writes a vector under its text hash. Writes for the same key are
// value-identical, so ON CONFLICT overwrite is safe across concurrent workers.
func (r *EmbeddingCacheRepository) Upsert(ctx context.Context, textHash string, vector []float32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO embedding_cache (text_hash, embedding, created_at)
		 VALUES ($1, $2, NOW())
		 ON CONFLICT (text_hash) DO UPDATE SET embedding = EXCLUDED.embedding`,
		textHash, pgvector.NewVector(vector),
	)
	if err != nil {
		return apperrors.NewStoreUnavailableError("embedding_cache.upsert", err)
	}
	return nil
}

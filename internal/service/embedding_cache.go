package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/creatorpulse/hub/internal/embeddings"
	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/fingerprint"
)

// EmbeddingCacheStore is the persistence boundary for cached vectors,
// content-addressed by text hash.
type EmbeddingCacheStore interface {
	GetByHashes(ctx context.Context, hashes []string) (map[string][]float32, error)
	Upsert(ctx context.Context, textHash string, vector []float32) error
}

// BatchProgress reports embedding progress after each provider batch. ETA is
// derived from the running average per-batch latency.
type BatchProgress struct {
	BatchesDone  int
	BatchesTotal int
	ETASeconds   float64
}

// ProgressFunc receives a BatchProgress after every completed provider batch.
type ProgressFunc func(BatchProgress)

// EmbedStats counts cache traffic for one Embed call.
type EmbedStats struct {
	CacheHits       int
	CacheMisses     int
	ProviderBatches int
}

// EmbeddingCache deduplicates texts against the content-addressed cache and
// batches only the misses to the provider. The output is dense and in input
// order regardless of which texts were cached, which downstream clustering
// and row alignment depend on.
type EmbeddingCache struct {
	store     EmbeddingCacheStore
	provider  embeddings.Client
	batchSize int
	limiter   *rate.Limiter
}

const defaultEmbeddingBatchSize = 200

// EmbeddingCacheOption configures the EmbeddingCache.
type EmbeddingCacheOption func(*EmbeddingCache)

// WithRateLimiter makes Embed wait on the limiter before each provider call.
func WithRateLimiter(limiter *rate.Limiter) EmbeddingCacheOption {
	return func(e *EmbeddingCache) {
		e.limiter = limiter
	}
}

// NewEmbeddingCache creates an embedding cache and batcher. A non-positive
// batchSize falls back to the default.
func NewEmbeddingCache(store EmbeddingCacheStore, provider embeddings.Client, batchSize int, opts ...EmbeddingCacheOption) *EmbeddingCache {
	if batchSize <= 0 {
		batchSize = defaultEmbeddingBatchSize
	}
	cache := &EmbeddingCache{
		store:     store,
		provider:  provider,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Embed returns one vector per input text, in input order. Cached texts are
// served from the store; the rest go to the provider in batches, and every
// returned vector is written back keyed by its text hash. A provider failure
// aborts the whole step; vectors cached by earlier successful batches stay
// valid because entries are idempotent.
func (e *EmbeddingCache) Embed(ctx context.Context, texts []string, onProgress ProgressFunc) ([][]float32, *EmbedStats, error) {
	stats := &EmbedStats{}
	vectors := make([][]float32, len(texts))
	if len(texts) == 0 {
		return vectors, stats, nil
	}

	hashes := make([]string, len(texts))
	for i, text := range texts {
		hashes[i] = fingerprint.Text(text)
	}

	cached, err := e.store.GetByHashes(ctx, hashes)
	if err != nil {
		return nil, nil, err
	}

	// Collect misses, preserving original positions.
	var missingTexts []string
	var missingIndices []int
	for i, hash := range hashes {
		if vec, ok := cached[hash]; ok {
			vectors[i] = vec
			stats.CacheHits++
		} else {
			missingTexts = append(missingTexts, texts[i])
			missingIndices = append(missingIndices, i)
			stats.CacheMisses++
		}
	}

	if len(missingTexts) == 0 {
		return vectors, stats, nil
	}

	totalBatches := (len(missingTexts) + e.batchSize - 1) / e.batchSize
	var batchSeconds float64

	for batchIdx, start := 0, 0; start < len(missingTexts); batchIdx, start = batchIdx+1, start+e.batchSize {
		end := start + e.batchSize
		if end > len(missingTexts) {
			end = len(missingTexts)
		}
		batch := missingTexts[start:end]

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, nil, err
			}
		}

		batchStart := time.Now()
		batchVectors, err := e.provider.EmbedBatch(ctx, batch)
		if err != nil {
			return nil, nil, apperrors.NewProviderError("embedding", err)
		}
		if len(batchVectors) != len(batch) {
			return nil, nil, apperrors.NewProviderError("embedding", embeddings.ErrBatchSizeMismatch)
		}
		batchSeconds += time.Since(batchStart).Seconds()
		stats.ProviderBatches++

		for j, vec := range batchVectors {
			idx := missingIndices[start+j]
			vectors[idx] = vec
			if err := e.store.Upsert(ctx, hashes[idx], vec); err != nil {
				return nil, nil, err
			}
		}

		if onProgress != nil {
			avg := batchSeconds / float64(batchIdx+1)
			remaining := totalBatches - (batchIdx + 1)
			onProgress(BatchProgress{
				BatchesDone:  batchIdx + 1,
				BatchesTotal: totalBatches,
				ETASeconds:   float64(remaining) * avg,
			})
		}
	}

	slog.Debug("embedding step complete",
		"texts", len(texts),
		"cache_hits", stats.CacheHits,
		"cache_misses", stats.CacheMisses,
		"provider_batches", stats.ProviderBatches,
	)

	return vectors, stats, nil
}

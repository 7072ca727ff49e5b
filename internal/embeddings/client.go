// Package embeddings defines the embedding provider contract and its implementations.
package embeddings

import "context"

// Client is the embedding provider boundary. EmbedBatch must return one vector
// per input text, same length and order as the input; a failure is a single
// error for the whole batch.
type Client interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

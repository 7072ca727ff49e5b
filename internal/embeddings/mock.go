package embeddings

import (
	"context"
	"crypto/sha256"
	"fmt"
	"math"
)

// MockClient generates deterministic embeddings from the text hash. Identical
// text always yields an identical vector, which lets tests assert the cache
// idempotence and ordering properties without a network provider.
type MockClient struct {
	dimensions int

	// Calls counts EmbedBatch invocations across the client's lifetime.
	Calls int
	// FailOnCall, when > 0, makes that 1-based call return an error.
	FailOnCall int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock client with 64 dimensions (small keeps tests fast).
func NewMockClient() *MockClient {
	return &MockClient{dimensions: 64}
}

// NewMockClientWithDimensions creates a mock client with custom dimensions.
func NewMockClientWithDimensions(dimensions int) *MockClient {
	return &MockClient{dimensions: dimensions}
}

// EmbedBatch returns one deterministic vector per text, in input order.
func (c *MockClient) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	c.Calls++
	if c.FailOnCall > 0 && c.Calls == c.FailOnCall {
		return nil, fmt.Errorf("mock provider failure on call %d", c.Calls)
	}

	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyText, i)
		}
		vectors[i] = c.deterministicVector(text)
	}
	return vectors, nil
}

// deterministicVector derives a unit-length vector from the text hash.
func (c *MockClient) deterministicVector(text string) []float32 {
	hash := sha256.Sum256([]byte(text))
	vec := make([]float32, c.dimensions)
	for i := range vec {
		b := hash[i%len(hash)]
		vec[i] = (float32(b) / 127.5) - 1.0
	}
	return normalize(vec)
}

// normalize scales a vector to unit length.
func normalize(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val) * float64(val)
	}
	magnitude := float32(math.Sqrt(sum))
	if magnitude == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = val / magnitude
	}
	return out
}

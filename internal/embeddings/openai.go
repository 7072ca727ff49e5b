package embeddings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

var (
	// ErrEmptyBatch is returned when EmbedBatch is called with no texts.
	ErrEmptyBatch = errors.New("embeddings: batch is empty")
	// ErrEmptyText is returned when a batch contains an empty text.
	ErrEmptyText = errors.New("embeddings: text is empty")
	// ErrBatchSizeMismatch is returned when the provider returns a different
	// number of vectors than texts submitted.
	ErrBatchSizeMismatch = errors.New("embeddings: response size does not match batch")
	// ErrDimensionMismatch is returned when a returned vector length does not
	// match the configured dimensions.
	ErrDimensionMismatch = errors.New("embeddings: dimension mismatch")
)

const defaultDimensions = 1536

// OpenAIClient calls the OpenAI embeddings API via the official SDK.
type OpenAIClient struct {
	sdk        openaisdk.Client
	model      string
	dimensions int
}

var _ Client = (*OpenAIClient)(nil)

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithOpenAIModel sets the embedding model name. Empty uses text-embedding-3-small.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithOpenAIDimensions sets the requested embedding dimension (must match the
// pgvector column).
func WithOpenAIDimensions(dim int) OpenAIOption {
	return func(c *OpenAIClient) {
		c.dimensions = dim
	}
}

// NewOpenAIClient creates an OpenAI embeddings client.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		sdk:        openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:      string(openaisdk.EmbeddingModelTextEmbedding3Small),
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// EmbedBatch returns one vector per input text, in input order.
func (c *OpenAIClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyText, i)
		}
	}

	resp, err := c.sdk.Embeddings.New(ctx, openaisdk.EmbeddingNewParams{
		Input: openaisdk.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model:      openaisdk.EmbeddingModel(c.model),
		Dimensions: param.NewOpt(int64(c.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBatchSizeMismatch, len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		if len(data.Embedding) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(data.Embedding), c.dimensions)
		}
		vec := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vec[i] = float32(v)
		}
		// The API preserves input order via the index field.
		vectors[data.Index] = vec
	}

	return vectors, nil
}

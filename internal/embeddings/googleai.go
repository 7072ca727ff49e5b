package embeddings

import (
	"context"
	"fmt"
	"math"
	"strings"

	"google.golang.org/genai"
)

const defaultGoogleModel = "gemini-embedding-001"

// GoogleClient calls the Gemini embeddings API via the Google Gen AI SDK.
type GoogleClient struct {
	client     *genai.Client
	model      string
	dimensions int
}

var _ Client = (*GoogleClient)(nil)

// GoogleOption configures the GoogleClient.
type GoogleOption func(*GoogleClient)

// WithGoogleModel sets the embedding model name. Empty uses gemini-embedding-001.
func WithGoogleModel(model string) GoogleOption {
	return func(c *GoogleClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGoogleDimensions sets the requested embedding dimension.
func WithGoogleDimensions(dim int) GoogleOption {
	return func(c *GoogleClient) {
		c.dimensions = dim
	}
}

// NewGoogleClient creates a Gemini embeddings client.
func NewGoogleClient(ctx context.Context, apiKey string, opts ...GoogleOption) (*GoogleClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("googleai client: %w", err)
	}

	client := &GoogleClient{
		client:     genaiClient,
		model:      defaultGoogleModel,
		dimensions: defaultDimensions,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// EmbedBatch returns one vector per input text, in input order.
func (c *GoogleClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if c.dimensions <= 0 || c.dimensions > math.MaxInt32 {
		return nil, ErrDimensionMismatch
	}

	contents := make([]*genai.Content, 0, len(texts))
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			return nil, fmt.Errorf("%w: index %d", ErrEmptyText, i)
		}
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}

	//nolint:gosec // G115: c.dimensions is bounded above by math.MaxInt32
	dimInt32 := int32(c.dimensions)

	resp, err := c.client.Models.EmbedContent(ctx, c.model, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &dimInt32,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBatchSizeMismatch, len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if len(emb.Values) != c.dimensions {
			return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(emb.Values), c.dimensions)
		}
		vec := make([]float32, len(emb.Values))
		copy(vec, emb.Values)
		vectors[i] = vec
	}

	return vectors, nil
}

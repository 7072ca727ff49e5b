// Package llm defines the language-model provider contract used for per-cluster
// insight generation.
package llm

import "context"

// Client is the language-model boundary: one prompt in, raw text out. JSON
// extraction and validation belong to the adapter, not the provider, because
// providers may wrap the object in prose despite instructions.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

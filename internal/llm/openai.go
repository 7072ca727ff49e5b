package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"
	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
)

// ErrNoCompletion is returned when the API response contains no choices.
var ErrNoCompletion = errors.New("llm: no completion in response")

// OpenAIClient calls the OpenAI chat completions API. When constructed with a
// response schema it requests strict JSON-schema output, which sharply reduces
// (but does not eliminate) prose-wrapped responses.
type OpenAIClient struct {
	sdk         openaisdk.Client
	model       string
	temperature float64
	schemaName  string
	schema      map[string]any
}

var _ Client = (*OpenAIClient)(nil)

// OpenAIOption configures the OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithModel sets the chat model. Empty uses gpt-4o-mini.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithResponseSchema requests strict JSON output matching the schema derived
// from T's struct tags.
func WithResponseSchema[T any](name string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.schemaName = name
		c.schema = GenerateSchema[T]()
	}
}

// NewOpenAIClient creates an OpenAI chat client.
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	client := &OpenAIClient{
		sdk:         openaisdk.NewClient(option.WithAPIKey(apiKey)),
		model:       "gpt-4o-mini",
		temperature: 0.2,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Complete sends a single user prompt and returns the raw response text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: param.NewOpt(c.temperature),
	}

	if c.schema != nil {
		params.ResponseFormat = openaisdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openaisdk.ResponseFormatJSONSchemaParam{
				JSONSchema: openaisdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   c.schemaName,
					Strict: param.NewOpt(true),
					Schema: c.schema,
				},
			},
		}
	}

	resp, err := c.sdk.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

// GenerateSchema reflects T into an OpenAI-compliant JSON schema: flat object,
// no references, additionalProperties false, every property required.
func GenerateSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	raw, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}

	markAllRequired(m)
	return m
}

// markAllRequired walks the schema making object properties required, which
// OpenAI's strict mode demands.
func markAllRequired(schema map[string]any) {
	if t, ok := schema["type"].(string); ok && t == "object" {
		schema["additionalProperties"] = false
		if props, ok := schema["properties"].(map[string]any); ok {
			required := make([]string, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			if len(required) > 0 {
				schema["required"] = required
			}
			for _, prop := range props {
				if propMap, ok := prop.(map[string]any); ok {
					markAllRequired(propMap)
				}
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		markAllRequired(items)
	}
}

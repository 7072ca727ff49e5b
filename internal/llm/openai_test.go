package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleResponse struct {
	Theme          string `json:"theme"`
	Classification string `json:"classification" jsonschema:"enum=Request,enum=Noise"`
	Nested         struct {
		Score float64 `json:"score"`
	} `json:"nested"`
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema[sampleResponse]()

	t.Run("top level is a strict object", func(t *testing.T) {
		assert.Equal(t, "object", schema["type"])
		assert.Equal(t, false, schema["additionalProperties"])
	})

	t.Run("all properties are required", func(t *testing.T) {
		required, ok := schema["required"].([]string)
		if !ok {
			// markAllRequired writes []string; reflect output may carry []any.
			anySlice, okAny := schema["required"].([]any)
			require.True(t, okAny, "required missing")
			for _, v := range anySlice {
				required = append(required, v.(string))
			}
		}
		assert.ElementsMatch(t, []string{"theme", "classification", "nested"}, required)
	})

	t.Run("nested objects are strict too", func(t *testing.T) {
		props, ok := schema["properties"].(map[string]any)
		require.True(t, ok)
		nested, ok := props["nested"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, false, nested["additionalProperties"])
	})

	t.Run("enum tags survive reflection", func(t *testing.T) {
		props := schema["properties"].(map[string]any)
		classification := props["classification"].(map[string]any)
		assert.Contains(t, classification, "enum")
	})
}

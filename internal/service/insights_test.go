package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/models"
)

// stubLLM returns a canned completion.
type stubLLM struct {
	response string
	err      error
	prompt   string
}

func (s *stubLLM) Complete(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const validInsightJSON = `{
	"theme": "Docker networking requests",
	"classification": "Request",
	"insight": "Viewers want a deeper follow-up",
	"suggested_action": "Record a networking deep dive",
	"risk_flag": "None"
}`

func TestInsightGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("parses a clean JSON response", func(t *testing.T) {
		stub := &stubLLM{response: validInsightJSON}
		gen := NewInsightGenerator(stub)

		insight, err := gen.Generate(ctx, 0, []string{"please cover docker networking"})

		require.NoError(t, err)
		assert.Equal(t, "Docker networking requests", insight.Theme)
		assert.Equal(t, models.ClassificationRequest, insight.Classification)
		assert.Contains(t, stub.prompt, "please cover docker networking")
	})

	t.Run("extracts the object from prose and code fences", func(t *testing.T) {
		stub := &stubLLM{response: "Sure! Here is the analysis:\n```json\n" + validInsightJSON + "\n```\nHope that helps."}
		gen := NewInsightGenerator(stub)

		insight, err := gen.Generate(ctx, 2, []string{"comment"})

		require.NoError(t, err)
		assert.Equal(t, models.ClassificationRequest, insight.Classification)
	})

	t.Run("empty risk flag defaults to None", func(t *testing.T) {
		stub := &stubLLM{response: `{"theme":"t","classification":"Praise","insight":"i","suggested_action":"a","risk_flag":""}`}
		gen := NewInsightGenerator(stub)

		insight, err := gen.Generate(ctx, 0, []string{"comment"})

		require.NoError(t, err)
		assert.Equal(t, "None", insight.RiskFlag)
	})

	t.Run("unknown classification is a parse error", func(t *testing.T) {
		stub := &stubLLM{response: `{"theme":"t","classification":"Complaint","insight":"i","suggested_action":"a","risk_flag":"None"}`}
		gen := NewInsightGenerator(stub)

		_, err := gen.Generate(ctx, 3, []string{"comment"})

		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInsightParse))

		var parseErr *apperrors.InsightParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Equal(t, 3, parseErr.ClusterID)
	})

	t.Run("missing field is a parse error", func(t *testing.T) {
		stub := &stubLLM{response: `{"theme":"","classification":"Praise","insight":"i","suggested_action":"a","risk_flag":"None"}`}
		gen := NewInsightGenerator(stub)

		_, err := gen.Generate(ctx, 0, []string{"comment"})
		assert.True(t, errors.Is(err, apperrors.ErrInsightParse))
	})

	t.Run("response without JSON is a parse error", func(t *testing.T) {
		stub := &stubLLM{response: "I cannot analyze these comments."}
		gen := NewInsightGenerator(stub)

		_, err := gen.Generate(ctx, 0, []string{"comment"})
		assert.True(t, errors.Is(err, apperrors.ErrInsightParse))
	})

	t.Run("provider error is a provider error, not a parse error", func(t *testing.T) {
		stub := &stubLLM{err: errors.New("rate limited")}
		gen := NewInsightGenerator(stub)

		_, err := gen.Generate(ctx, 0, []string{"comment"})

		assert.True(t, errors.Is(err, apperrors.ErrProvider))
		assert.False(t, errors.Is(err, apperrors.ErrInsightParse))
	})
}

func TestExtractJSONObject(t *testing.T) {
	t.Run("braces inside string literals do not break balancing", func(t *testing.T) {
		text := `note {"theme":"use {curly} braces","classification":"Noise"} trailing`
		obj, ok := extractJSONObject(text)

		require.True(t, ok)
		assert.Equal(t, `{"theme":"use {curly} braces","classification":"Noise"}`, obj)
	})

	t.Run("escaped quotes are tracked", func(t *testing.T) {
		text := `{"theme":"he said \"hi\" {","classification":"Noise"}`
		obj, ok := extractJSONObject(text)

		require.True(t, ok)
		assert.Equal(t, text, obj)
	})

	t.Run("nested objects return the outermost", func(t *testing.T) {
		text := `{"outer":{"inner":1}}`
		obj, ok := extractJSONObject(text)

		require.True(t, ok)
		assert.Equal(t, text, obj)
	})

	t.Run("unbalanced object is rejected", func(t *testing.T) {
		_, ok := extractJSONObject(`{"theme":"truncated`)
		assert.False(t, ok)
	})

	t.Run("no brace is rejected", func(t *testing.T) {
		_, ok := extractJSONObject("no json here")
		assert.False(t, ok)
	})
}

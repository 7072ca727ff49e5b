package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/llm"
	"github.com/creatorpulse/hub/internal/models"
)

// InsightGenerator asks the language model for a structured judgment per
// cluster and validates the response before anything downstream sees it.
type InsightGenerator struct {
	client llm.Client
}

// NewInsightGenerator creates an insight generator on the given LLM client.
func NewInsightGenerator(client llm.Client) *InsightGenerator {
	return &InsightGenerator{client: client}
}

// insightPromptTemplate fixes the instruction contract: exactly one JSON
// object with the five insight fields, nothing else.
const insightPromptTemplate = `You are an AI product analyst for online creators.

Given these audience comments from one thematic cluster:

%s

Return ONLY a valid JSON object with:
- theme (short phrase)
- classification (choose exactly ONE from: Request, Confusion, Praise, Skepticism, Noise)
- insight (strategic meaning)
- suggested_action (specific creator action)
- risk_flag (or "None")

Return strictly one JSON object. No markdown. No explanation.`

// Generate produces the validated insight for one cluster's comments.
// Any failure to reduce the response to a valid insight is an
// InsightParseError: the job fails rather than substituting a default.
func (g *InsightGenerator) Generate(ctx context.Context, clusterID int, comments []string) (*models.ClusterInsight, error) {
	prompt := fmt.Sprintf(insightPromptTemplate, formatComments(comments))

	raw, err := g.client.Complete(ctx, prompt)
	if err != nil {
		return nil, apperrors.NewProviderError("insight", err)
	}

	objectJSON, ok := extractJSONObject(raw)
	if !ok {
		return nil, apperrors.NewInsightParseError(clusterID, "no balanced JSON object in response")
	}

	var insight models.ClusterInsight
	if err := json.Unmarshal([]byte(objectJSON), &insight); err != nil {
		return nil, apperrors.NewInsightParseError(clusterID, err.Error())
	}
	if err := insight.Validate(); err != nil {
		return nil, apperrors.NewInsightParseError(clusterID, err.Error())
	}

	return &insight, nil
}

// formatComments renders the cluster's comments one per line for the prompt.
func formatComments(comments []string) string {
	var b strings.Builder
	for _, c := range comments {
		b.WriteString("- ")
		b.WriteString(strings.TrimSpace(c))
		b.WriteString("\n")
	}
	return b.String()
}

// extractJSONObject returns the first syntactically balanced JSON object in
// the text, scanning brace depth from the first '{'. Providers sometimes wrap
// the object in prose or code fences despite instructions; string literals
// are tracked so braces inside them don't break the count.
func extractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}

	return "", false
}

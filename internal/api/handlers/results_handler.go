package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/creatorpulse/hub/internal/api/response"
	"github.com/creatorpulse/hub/internal/api/validation"
	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/models"
	"github.com/creatorpulse/hub/pkg/cache"
)

// KeyValueReader reads published records from the key-value store.
type KeyValueReader interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
}

// ResultsHandler serves published analysis results. Records are immutable
// once published, so reads go through an in-process loader cache; a missing
// record is an error and errors are never cached, so a poll that arrives
// before publication does not pin the miss.
type ResultsHandler struct {
	store KeyValueReader
	cache *cache.LoaderCache[[]byte]
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(store KeyValueReader, resultCache *cache.LoaderCache[[]byte]) *ResultsHandler {
	return &ResultsHandler{store: store, cache: resultCache}
}

func (h *ResultsHandler) fetch(ctx context.Context, key string) ([]byte, error) {
	return h.cache.Get(ctx, key, func(ctx context.Context, key string) ([]byte, error) {
		payload, ok, err := h.store.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.NewNotFoundError("result", fmt.Sprintf("no published record for %s", key))
		}
		return payload, nil
	})
}

func (h *ResultsHandler) serveRecord(w http.ResponseWriter, r *http.Request, key string) {
	payload, err := h.fetch(r.Context(), key)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "failed to load record")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// Results handles GET /v1/datasets/{id}/results.
func (h *ResultsHandler) Results(w http.ResponseWriter, r *http.Request) {
	h.serveRecord(w, r, kvstore.ResultKey(r.PathValue("id")))
}

// Clusters handles GET /v1/datasets/{id}/clusters.
func (h *ResultsHandler) Clusters(w http.ResponseWriter, r *http.Request) {
	h.serveRecord(w, r, kvstore.ClusterKey(r.PathValue("id")))
}

// Insights handles GET /v1/datasets/{id}/insights.
func (h *ResultsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	h.serveRecord(w, r, kvstore.InsightKey(r.PathValue("id")))
}

type actionItem struct {
	ClusterID       int             `json:"cluster_id"`
	Theme           string          `json:"theme"`
	SuggestedAction string          `json:"suggested_action"`
	Priority        models.Priority `json:"priority"`
	ImpactScore     float64         `json:"impact_score"`
	RiskFlag        string          `json:"risk_flag"`
}

type actionsResponse struct {
	DatasetID string       `json:"dataset_id"`
	Actions   []actionItem `json:"actions"`
}

type actionsQuery struct {
	Limit    int    `form:"limit" validate:"omitempty,gte=1,lte=100"`
	Priority string `form:"priority" validate:"omitempty,oneof=High Medium Low"`
}

// Actions handles GET /v1/datasets/{id}/actions.
// Projects the ranked insights into a prioritized action list, optionally
// filtered by priority and capped by limit. Insights are stored ranked by
// impact, so the projection preserves that order.
func (h *ResultsHandler) Actions(w http.ResponseWriter, r *http.Request) {
	datasetID := r.PathValue("id")

	var query actionsQuery
	if err := validation.ValidateAndDecodeQueryParams(r, &query); err != nil {
		validation.RespondValidationError(w, err)
		return
	}

	payload, err := h.fetch(r.Context(), kvstore.ResultKey(datasetID))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "failed to load record")
		return
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		response.RespondInternalServerError(w, "stored result is not valid JSON")
		return
	}

	actions := make([]actionItem, 0, len(result.TopInsights))
	for _, insight := range result.TopInsights {
		if query.Priority != "" && insight.Priority != models.Priority(query.Priority) {
			continue
		}
		if query.Limit > 0 && len(actions) == query.Limit {
			break
		}
		actions = append(actions, actionItem{
			ClusterID:       insight.ClusterID,
			Theme:           insight.Theme,
			SuggestedAction: insight.SuggestedAction,
			Priority:        insight.Priority,
			ImpactScore:     insight.ImpactScore,
			RiskFlag:        insight.RiskFlag,
		})
	}

	response.RespondJSON(w, http.StatusOK, actionsResponse{
		DatasetID: datasetID,
		Actions:   actions,
	})
}

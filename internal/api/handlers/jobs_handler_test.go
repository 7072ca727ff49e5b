package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/models"
)

type mockStatusReader struct {
	statuses map[string]*models.JobStatus
}

func (m *mockStatusReader) Get(_ context.Context, jobID string) (*models.JobStatus, error) {
	if status, ok := m.statuses[jobID]; ok {
		return status, nil
	}
	return nil, apperrors.NewNotFoundError("job", "job "+jobID+" not found")
}

func TestJobsHandler_Status(t *testing.T) {
	t.Run("returns the current status", func(t *testing.T) {
		reader := &mockStatusReader{statuses: map[string]*models.JobStatus{
			"job-1": {Status: models.JobProcessing, Progress: 0.3},
		}}
		handler := NewJobsHandler(reader)

		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-1", nil)
		req.SetPathValue("id", "job-1")
		rec := httptest.NewRecorder()

		handler.Status(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp jobStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "job-1", resp.JobID)
		assert.Equal(t, models.JobProcessing, resp.Status)
		assert.Equal(t, 0.3, resp.Progress)
		assert.Empty(t, resp.Error)
	})

	t.Run("failed jobs carry their error", func(t *testing.T) {
		reader := &mockStatusReader{statuses: map[string]*models.JobStatus{
			"job-2": {Status: models.JobFailed, Progress: 1.0, Error: "insight parse failed for cluster 3"},
		}}
		handler := NewJobsHandler(reader)

		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/job-2", nil)
		req.SetPathValue("id", "job-2")
		rec := httptest.NewRecorder()

		handler.Status(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp jobStatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, models.JobFailed, resp.Status)
		assert.Contains(t, resp.Error, "insight parse failed")
	})

	t.Run("unknown job returns 404", func(t *testing.T) {
		handler := NewJobsHandler(&mockStatusReader{})

		req := httptest.NewRequest(http.MethodGet, "/v1/jobs/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()

		handler.Status(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

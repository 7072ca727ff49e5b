package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/creatorpulse/hub/internal/api/response"
	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/models"
)

// JobStatusReader reads job status records.
type JobStatusReader interface {
	Get(ctx context.Context, jobID string) (*models.JobStatus, error)
}

// JobsHandler handles job status polling.
type JobsHandler struct {
	status JobStatusReader
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(status JobStatusReader) *JobsHandler {
	return &JobsHandler{status: status}
}

type jobStatusResponse struct {
	JobID    string          `json:"job_id"`
	Status   models.JobState `json:"status"`
	Progress float64         `json:"progress"`
	Error    string          `json:"error,omitempty"`
}

// Status handles GET /v1/jobs/{id}.
func (h *JobsHandler) Status(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")
	if jobID == "" {
		response.RespondBadRequest(w, "missing job id")
		return
	}

	status, err := h.status.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "failed to load job status")
		return
	}

	response.RespondJSON(w, http.StatusOK, jobStatusResponse{
		JobID:    jobID,
		Status:   status.Status,
		Progress: status.Progress,
		Error:    status.Error,
	})
}

// Package handlers contains the HTTP handlers for the API server.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/creatorpulse/hub/internal/api/response"
	"github.com/creatorpulse/hub/internal/api/validation"
	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/ingest"
	"github.com/creatorpulse/hub/internal/jobs"
	"github.com/creatorpulse/hub/internal/models"
)

// DatasetStore defines the dataset persistence operations the handler needs.
type DatasetStore interface {
	Create(ctx context.Context, dataset *models.Dataset) error
	GetByID(ctx context.Context, datasetID string) (*models.Dataset, error)
}

// JobEnqueuer enqueues analysis jobs.
type JobEnqueuer interface {
	InsertAnalysisJob(ctx context.Context, args jobs.AnalysisJobArgs) error
}

// JobStatusWriter writes job status records.
type JobStatusWriter interface {
	Update(ctx context.Context, jobID string, status models.JobStatus) error
}

// DatasetsHandler handles dataset upload and analysis submission.
type DatasetsHandler struct {
	datasets DatasetStore
	enqueuer JobEnqueuer
	status   JobStatusWriter
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(datasets DatasetStore, enqueuer JobEnqueuer, status JobStatusWriter) *DatasetsHandler {
	return &DatasetsHandler{datasets: datasets, enqueuer: enqueuer, status: status}
}

type uploadRequest struct {
	Comments []models.Comment `json:"comments" validate:"required,min=1,dive"`
}

type uploadResponse struct {
	DatasetID    string `json:"dataset_id"`
	CommentCount int    `json:"comment_count"`
}

// Upload handles POST /v1/datasets.
// Accepts either a JSON body with a comments array, a raw text/csv body, or a
// multipart form with a "file" field containing CSV. The dataset id is derived
// from the comment content, so re-uploading identical content returns the same
// id without storing a duplicate.
func (h *DatasetsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	comments, err := h.parseUpload(r)
	if err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			validation.RespondValidationError(w, err)
			return
		}
		var validationErr *apperrors.ValidationError
		if errors.As(err, &validationErr) {
			response.RespondUnprocessableEntity(w, validationErr.Error())
			return
		}
		response.RespondBadRequest(w, err.Error())
		return
	}

	dataset := ingest.BuildDataset(comments)
	if err := h.datasets.Create(r.Context(), dataset); err != nil {
		response.RespondInternalServerError(w, "failed to store dataset")
		return
	}

	response.RespondJSON(w, http.StatusCreated, uploadResponse{
		DatasetID:    dataset.DatasetID,
		CommentCount: len(dataset.Comments),
	})
}

func (h *DatasetsHandler) parseUpload(r *http.Request) ([]models.Comment, error) {
	contentType := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}

	switch {
	case mediaType == "application/json":
		var req uploadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, apperrors.NewValidationError("body", "invalid JSON body")
		}
		if err := validation.ValidateStruct(&req); err != nil {
			return nil, err
		}
		return usableComments(req.Comments)

	case mediaType == "text/csv":
		return ingest.ParseCSV(r.Body)

	case strings.HasPrefix(mediaType, "multipart/"):
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, apperrors.NewValidationError("file", "missing multipart file field")
		}
		defer file.Close()
		return ingest.ParseCSV(file)

	default:
		return nil, apperrors.NewValidationError("content-type", "expected application/json, text/csv, or multipart/form-data")
	}
}

// usableComments drops comments whose text is empty after trimming. Blank
// rows are a data quality issue, not a request error, so they are skipped
// rather than rejected; only an entirely unusable batch fails.
func usableComments(comments []models.Comment) ([]models.Comment, error) {
	usable := make([]models.Comment, 0, len(comments))
	for _, c := range comments {
		c.Text = strings.TrimSpace(c.Text)
		if c.Text == "" {
			continue
		}
		usable = append(usable, c)
	}
	if len(usable) == 0 {
		return nil, apperrors.NewValidationError("comments", "no usable comments in request")
	}
	return usable, nil
}

type analyzeRequest struct {
	DatasetID string `validate:"required,len=64,hexadecimal"`
}

type analyzeResponse struct {
	JobID     string          `json:"job_id"`
	DatasetID string          `json:"dataset_id"`
	Status    models.JobState `json:"status"`
}

// Analyze handles POST /v1/datasets/{id}/analyze.
// Creates a job record in the queued state and enqueues the analysis. The job
// id is returned immediately; progress is polled via GET /v1/jobs/{id}.
func (h *DatasetsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	// Dataset ids are content hashes, so anything else is rejected before
	// touching the store.
	req := analyzeRequest{DatasetID: r.PathValue("id")}
	if err := validation.ValidateStruct(&req); err != nil {
		validation.RespondValidationError(w, err)
		return
	}
	datasetID := req.DatasetID

	if _, err := h.datasets.GetByID(r.Context(), datasetID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.RespondNotFound(w, err.Error())
			return
		}
		response.RespondInternalServerError(w, "failed to load dataset")
		return
	}

	jobUUID, err := uuid.NewV7()
	if err != nil {
		response.RespondInternalServerError(w, "failed to generate job id")
		return
	}
	jobID := jobUUID.String()

	// The status record must exist before the job is visible to a worker so
	// that a status poll never observes a running job with no record.
	if err := h.status.Update(r.Context(), jobID, models.JobStatus{
		Status:   models.JobQueued,
		Progress: 0,
	}); err != nil {
		response.RespondInternalServerError(w, "failed to initialize job status")
		return
	}

	if err := h.enqueuer.InsertAnalysisJob(r.Context(), jobs.AnalysisJobArgs{
		JobID:     jobID,
		DatasetID: datasetID,
	}); err != nil {
		// The queued record written above would otherwise dangle forever,
		// since no worker will ever pick this job up.
		failed := models.JobStatus{
			Status:   models.JobFailed,
			Progress: 1.0,
			Error:    "failed to enqueue analysis job",
		}
		if statusErr := h.status.Update(r.Context(), jobID, failed); statusErr != nil {
			slog.Error("failed to mark job failed",
				"job_id", jobID,
				"error", statusErr,
			)
		}
		response.RespondInternalServerError(w, "failed to enqueue analysis job")
		return
	}

	response.RespondJSON(w, http.StatusAccepted, analyzeResponse{
		JobID:     jobID,
		DatasetID: datasetID,
		Status:    models.JobQueued,
	})
}

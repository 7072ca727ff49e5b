package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorpulse/hub/internal/api/response"
	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/jobs"
	"github.com/creatorpulse/hub/internal/models"
)

type mockDatasetStore struct {
	created *models.Dataset
	getErr  error
}

func (m *mockDatasetStore) Create(_ context.Context, dataset *models.Dataset) error {
	m.created = dataset
	return nil
}

func (m *mockDatasetStore) GetByID(_ context.Context, datasetID string) (*models.Dataset, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &models.Dataset{DatasetID: datasetID}, nil
}

type mockEnqueuer struct {
	inserted []jobs.AnalysisJobArgs
	err      error
}

func (m *mockEnqueuer) InsertAnalysisJob(_ context.Context, args jobs.AnalysisJobArgs) error {
	if m.err != nil {
		return m.err
	}
	m.inserted = append(m.inserted, args)
	return nil
}

type mockStatusWriter struct {
	updates map[string]models.JobStatus
}

func (m *mockStatusWriter) Update(_ context.Context, jobID string, status models.JobStatus) error {
	if m.updates == nil {
		m.updates = make(map[string]models.JobStatus)
	}
	m.updates[jobID] = status
	return nil
}

func TestDatasetsHandler_Upload(t *testing.T) {
	t.Run("JSON body returns a content-addressed id", func(t *testing.T) {
		store := &mockDatasetStore{}
		handler := NewDatasetsHandler(store, &mockEnqueuer{}, &mockStatusWriter{})

		body := []byte(`{"comments":[{"text":"great tutorial"},{"text":"please add subtitles"}]}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp uploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.DatasetID)
		assert.Equal(t, 2, resp.CommentCount)
		require.NotNil(t, store.created)
		assert.Equal(t, resp.DatasetID, store.created.DatasetID)
	})

	t.Run("identical content yields the same id", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		upload := func() string {
			body := []byte(`{"comments":[{"text":"great tutorial"}]}`)
			req := httptest.NewRequest(http.MethodPost, "/v1/datasets", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.Upload(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resp uploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			return resp.DatasetID
		}

		assert.Equal(t, upload(), upload())
	})

	t.Run("raw CSV body", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		csv := "comment,likes\ngreat tutorial,5\ntoo fast for me,1\n"
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(csv))
		req.Header.Set("Content-Type", "text/csv")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp uploadResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.CommentCount)
	})

	t.Run("multipart CSV file", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", "comments.csv")
		require.NoError(t, err)
		fmt.Fprint(part, "comment\ngreat tutorial\n")
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("empty comment list returns 422", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		body := []byte(`{"comments":[{"text":"   "}]}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("unsupported content type returns 422", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader("x"))
		req.Header.Set("Content-Type", "application/xml")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("missing comments field returns field-level details", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var problem response.ProblemDetails
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
		assert.Equal(t, "Validation Error", problem.Title)
		require.Len(t, problem.Errors, 1)
		assert.Equal(t, "Comments", problem.Errors[0].Location)
	})

	t.Run("comment text with null bytes is rejected", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		body := []byte("{\"comments\":[{\"text\":\"bad\\u0000text\"}]}")
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		handler.Upload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("metadata differences produce distinct ids", func(t *testing.T) {
		handler := NewDatasetsHandler(&mockDatasetStore{}, &mockEnqueuer{}, &mockStatusWriter{})

		upload := func(body string) string {
			req := httptest.NewRequest(http.MethodPost, "/v1/datasets", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			handler.Upload(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resp uploadResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			return resp.DatasetID
		}

		first := upload(`{"comments":[{"text":"great tutorial","likes":5,"sentiment":0.9}]}`)
		second := upload(`{"comments":[{"text":"great tutorial","likes":9000,"sentiment":-0.9}]}`)
		assert.NotEqual(t, first, second)
	})
}

func TestDatasetsHandler_Analyze(t *testing.T) {
	datasetID := strings.Repeat("a1b2", 16)

	analyzeReq := func(id string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/v1/datasets/"+id+"/analyze", nil)
		req.SetPathValue("id", id)
		return req
	}

	t.Run("queues a job and initializes its status", func(t *testing.T) {
		enqueuer := &mockEnqueuer{}
		status := &mockStatusWriter{}
		handler := NewDatasetsHandler(&mockDatasetStore{}, enqueuer, status)

		rec := httptest.NewRecorder()
		handler.Analyze(rec, analyzeReq(datasetID))

		require.Equal(t, http.StatusAccepted, rec.Code)
		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.JobID)
		assert.Equal(t, datasetID, resp.DatasetID)
		assert.Equal(t, models.JobQueued, resp.Status)

		require.Len(t, enqueuer.inserted, 1)
		assert.Equal(t, resp.JobID, enqueuer.inserted[0].JobID)
		assert.Equal(t, datasetID, enqueuer.inserted[0].DatasetID)

		queued, ok := status.updates[resp.JobID]
		require.True(t, ok, "status record must exist before the job runs")
		assert.Equal(t, models.JobQueued, queued.Status)
		assert.Equal(t, 0.0, queued.Progress)
	})

	t.Run("malformed dataset id returns 400", func(t *testing.T) {
		enqueuer := &mockEnqueuer{}
		handler := NewDatasetsHandler(&mockDatasetStore{}, enqueuer, &mockStatusWriter{})

		rec := httptest.NewRecorder()
		handler.Analyze(rec, analyzeReq("ds-1"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, enqueuer.inserted)
	})

	t.Run("unknown dataset returns 404", func(t *testing.T) {
		store := &mockDatasetStore{getErr: apperrors.NewNotFoundError("dataset", "dataset not found")}
		enqueuer := &mockEnqueuer{}
		handler := NewDatasetsHandler(store, enqueuer, &mockStatusWriter{})

		rec := httptest.NewRecorder()
		handler.Analyze(rec, analyzeReq(strings.Repeat("f", 64)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, enqueuer.inserted)
	})

	t.Run("each submission gets a fresh job id", func(t *testing.T) {
		enqueuer := &mockEnqueuer{}
		handler := NewDatasetsHandler(&mockDatasetStore{}, enqueuer, &mockStatusWriter{})

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			handler.Analyze(rec, analyzeReq(datasetID))
			require.Equal(t, http.StatusAccepted, rec.Code)
		}

		require.Len(t, enqueuer.inserted, 2)
		assert.NotEqual(t, enqueuer.inserted[0].JobID, enqueuer.inserted[1].JobID)
	})

	t.Run("enqueue failure marks the job failed", func(t *testing.T) {
		enqueuer := &mockEnqueuer{err: errors.New("queue unavailable")}
		status := &mockStatusWriter{}
		handler := NewDatasetsHandler(&mockDatasetStore{}, enqueuer, status)

		rec := httptest.NewRecorder()
		handler.Analyze(rec, analyzeReq(datasetID))

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Len(t, status.updates, 1)
		for _, recorded := range status.updates {
			assert.Equal(t, models.JobFailed, recorded.Status)
			assert.Equal(t, 1.0, recorded.Progress)
			assert.NotEmpty(t, recorded.Error)
		}
	})
}

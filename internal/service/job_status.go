package service

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/models"
)

// JobStatusStore persists the per-job status record under job:<job_id>.
// The record is readable by any caller at any time and mutated only by the
// worker currently processing the job.
type JobStatusStore struct {
	store kvstore.Store
}

// NewJobStatusStore creates a job status store on the given key-value store.
func NewJobStatusStore(store kvstore.Store) *JobStatusStore {
	return &JobStatusStore{store: store}
}

// Update writes the status record for a job.
func (s *JobStatusStore) Update(ctx context.Context, jobID string, status models.JobStatus) error {
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("failed to marshal job status: %w", err)
	}
	return s.store.Set(ctx, kvstore.JobKey(jobID), payload)
}

// Get reads the status record for a job.
func (s *JobStatusStore) Get(ctx context.Context, jobID string) (*models.JobStatus, error) {
	payload, ok, err := s.store.Get(ctx, kvstore.JobKey(jobID))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewNotFoundError("job", fmt.Sprintf("job %s not found", jobID))
	}

	var status models.JobStatus
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job status: %w", err)
	}
	return &status, nil
}

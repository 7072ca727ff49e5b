package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/models"
)

func TestJobStatusStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewJobStatusStore(kvstore.NewMemoryStore())

		err := store.Update(ctx, "job-1", models.JobStatus{
			Status:   models.JobProcessing,
			Progress: 0.3,
		})
		require.NoError(t, err)

		status, err := store.Get(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, models.JobProcessing, status.Status)
		assert.Equal(t, 0.3, status.Progress)
		assert.Empty(t, status.Error)
	})

	t.Run("later update replaces the record", func(t *testing.T) {
		store := NewJobStatusStore(kvstore.NewMemoryStore())

		require.NoError(t, store.Update(ctx, "job-1", models.JobStatus{Status: models.JobQueued}))
		require.NoError(t, store.Update(ctx, "job-1", models.JobStatus{
			Status:   models.JobFailed,
			Progress: 1.0,
			Error:    "embedding provider: rate limited",
		}))

		status, err := store.Get(ctx, "job-1")
		require.NoError(t, err)
		assert.Equal(t, models.JobFailed, status.Status)
		assert.Equal(t, "embedding provider: rate limited", status.Error)
	})

	t.Run("unknown job is not found", func(t *testing.T) {
		store := NewJobStatusStore(kvstore.NewMemoryStore())

		_, err := store.Get(ctx, "missing")
		assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	})
}

package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
)

// JobInserter enqueues analysis jobs without the caller knowing about River.
type JobInserter interface {
	InsertAnalysisJob(ctx context.Context, args AnalysisJobArgs) error
}

// RiverJobInserter implements JobInserter using the River client.
type RiverJobInserter struct {
	client *river.Client[pgx.Tx]
}

var _ JobInserter = (*RiverJobInserter)(nil)

// NewRiverJobInserter creates a River-based job inserter.
func NewRiverJobInserter(client *river.Client[pgx.Tx]) *RiverJobInserter {
	return &RiverJobInserter{client: client}
}

// InsertAnalysisJob enqueues an analysis job with a single attempt. The
// pipeline does not retry internally; callers resubmit failed jobs.
func (r *RiverJobInserter) InsertAnalysisJob(ctx context.Context, args AnalysisJobArgs) error {
	_, err := r.client.Insert(ctx, args, &river.InsertOpts{
		Queue:       AnalysisQueueName,
		MaxAttempts: 1,
	})
	return err
}

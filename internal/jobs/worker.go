package jobs

import (
	"context"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/creatorpulse/hub/internal/models"
)

// PipelineRunner runs one analysis end to end.
type PipelineRunner interface {
	Run(ctx context.Context, jobID, datasetID string) error
}

// StatusWriter updates the per-job status record.
type StatusWriter interface {
	Update(ctx context.Context, jobID string, status models.JobStatus) error
}

// AnalysisWorker processes analysis jobs. The pipeline never retries
// internally, so the job is inserted with a single attempt: on failure the
// status record carries the causing error and the caller must resubmit.
type AnalysisWorker struct {
	river.WorkerDefaults[AnalysisJobArgs]
	pipeline PipelineRunner
	status   StatusWriter
}

// NewAnalysisWorker creates an analysis worker.
func NewAnalysisWorker(pipeline PipelineRunner, status StatusWriter) *AnalysisWorker {
	return &AnalysisWorker{pipeline: pipeline, status: status}
}

// Work processes one analysis job.
func (w *AnalysisWorker) Work(ctx context.Context, job *river.Job[AnalysisJobArgs]) error {
	args := job.Args

	slog.Info("processing analysis job",
		"job_id", args.JobID,
		"dataset_id", args.DatasetID,
		"river_job_id", job.ID,
	)

	if err := w.pipeline.Run(ctx, args.JobID, args.DatasetID); err != nil {
		slog.Error("analysis job failed",
			"job_id", args.JobID,
			"dataset_id", args.DatasetID,
			"error", err,
		)

		failed := models.JobStatus{
			Status:   models.JobFailed,
			Progress: 1.0,
			Error:    err.Error(),
		}
		if statusErr := w.status.Update(ctx, args.JobID, failed); statusErr != nil {
			slog.Error("failed to mark job failed",
				"job_id", args.JobID,
				"error", statusErr,
			)
		}

		return err
	}

	return nil
}

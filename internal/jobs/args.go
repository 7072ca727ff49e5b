// Package jobs provides the River workers and queue wiring for analysis jobs.
package jobs

// AnalysisJobArgs is the queue message for one analysis job. It only
// references the dataset; the dataset itself is already stored.
type AnalysisJobArgs struct {
	JobID     string `json:"job_id"`
	DatasetID string `json:"dataset_id"`
}

// Kind returns the job type identifier for River.
func (AnalysisJobArgs) Kind() string { return "analysis" }

// AnalysisQueueName is the dedicated queue for analysis jobs.
const AnalysisQueueName = "analysis"

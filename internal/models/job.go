package models

// JobState represents the lifecycle state of an analysis job.
type JobState string

const (
	JobQueued     JobState = "queued"
	JobProcessing JobState = "processing"
	JobCompleted  JobState = "completed"
	JobFailed     JobState = "failed"
)

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobStatus is the status record persisted under job:<job_id>, readable by any
// caller at any time. Mutated only by the worker processing the job.
type JobStatus struct {
	Status   JobState `json:"status"`
	Progress float64  `json:"progress"`
	Error    string   `json:"error,omitempty"`
}

// Package kvstore provides the content-addressed key-value store backing the
// job status records and the published analysis results.
package kvstore

import "context"

// Store is a minimal key-value contract: get by key, set by key. Writes are
// atomic per key; SetMulti writes all entries or none, which backs the
// atomic three-namespace result publish.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// SetMulti writes all entries atomically.
	SetMulti(ctx context.Context, entries map[string][]byte) error
}

// Key namespaces. One logical store serves several record kinds; callers
// prefix keys so namespaces can't collide.
const (
	JobKeyPrefix     = "job:"
	ResultKeyPrefix  = "results:"
	ClusterKeyPrefix = "clusters:"
	InsightKeyPrefix = "insights:"
)

// JobKey returns the status record key for a job id.
func JobKey(jobID string) string { return JobKeyPrefix + jobID }

// ResultKey returns the full-result key for a dataset id.
func ResultKey(datasetID string) string { return ResultKeyPrefix + datasetID }

// ClusterKey returns the cluster-assignments key for a dataset id.
func ClusterKey(datasetID string) string { return ClusterKeyPrefix + datasetID }

// InsightKey returns the impact-scores key for a dataset id.
func InsightKey(datasetID string) string { return InsightKeyPrefix + datasetID }

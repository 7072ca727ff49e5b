package models

import "time"

// Priority buckets an impact score for triage.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// ImpactScore is the ranked scoring row for one cluster, combining the
// cluster's audience share with its classification's strategic weight.
type ImpactScore struct {
	ClusterID       int            `json:"cluster_id"`
	Theme           string         `json:"theme"`
	Classification  Classification `json:"classification"`
	Insight         string         `json:"insight"`
	SuggestedAction string         `json:"suggested_action"`
	RiskFlag        string         `json:"risk_flag"`
	CommentSharePct float64        `json:"comment_share_pct"`
	ImpactScore     float64        `json:"impact_score"`
	RiskScore       float64        `json:"risk_score"`
	Priority        Priority       `json:"priority"`
}

// ClusterMetrics aggregates engagement and sentiment per cluster.
type ClusterMetrics struct {
	ClusterID     int     `json:"cluster_id"`
	CommentCount  int     `json:"comment_count"`
	AvgLikes      float64 `json:"avg_likes"`
	AvgSentiment  float64 `json:"avg_sentiment"`
	EngagementStd float64 `json:"engagement_std"`
}

// ProjectedPoint is one row of the 2-D projection used for visualization.
type ProjectedPoint struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Cluster   int     `json:"cluster"`
	Sentiment float64 `json:"sentiment"`
}

// KeywordCount is one entry of a per-cluster term-frequency table.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// Performance holds timing counters for one pipeline run.
type Performance struct {
	EmbeddingSeconds  float64 `json:"embedding_seconds"`
	ClusteringSeconds float64 `json:"clustering_seconds"`
	InsightSeconds    float64 `json:"insight_seconds"`
	TotalSeconds      float64 `json:"total_seconds"`
	CacheHits         int     `json:"cache_hits"`
	CacheMisses       int     `json:"cache_misses"`
	ProviderBatches   int     `json:"provider_batches"`
}

// AnalysisResult is the aggregate the orchestrator assembles for one run.
// Written once, read-only thereafter; overwritten wholesale on re-run.
type AnalysisResult struct {
	DatasetID          string                 `json:"dataset_id"`
	ClusterAssignments []int                  `json:"cluster_assignments"`
	ClusterMetrics     []ClusterMetrics       `json:"cluster_metrics"`
	TopInsights        []ImpactScore          `json:"top_insights"`
	Projection         []ProjectedPoint       `json:"embeddings_2d"`
	Keywords           map[int][]KeywordCount `json:"keywords"`
	Performance        Performance            `json:"performance"`
	CompletedAt        time.Time              `json:"completed_at"`
}

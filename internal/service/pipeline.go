package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	apperrors "github.com/creatorpulse/hub/internal/errors"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/models"
)

// DatasetSource loads stored datasets for processing.
type DatasetSource interface {
	GetByID(ctx context.Context, datasetID string) (*models.Dataset, error)
}

// Embedder is the embedding step boundary (cache + batcher).
type Embedder interface {
	Embed(ctx context.Context, texts []string, onProgress ProgressFunc) ([][]float32, *EmbedStats, error)
}

// Clusterer assigns one label in [0,k) per vector, deterministically per seed.
type Clusterer interface {
	FitPredict(vectors [][]float32, k, seed int) []int
}

// InsightSource produces the validated per-cluster insight.
type InsightSource interface {
	Generate(ctx context.Context, clusterID int, comments []string) (*models.ClusterInsight, error)
}

// StatusSink receives job status updates as the run advances.
type StatusSink interface {
	Update(ctx context.Context, jobID string, status models.JobStatus) error
}

// PipelineConfig carries the per-run tunables.
type PipelineConfig struct {
	ClusterCount       int
	ClusterSeed        int
	KeywordsPerCluster int
}

// Pipeline sequences the analysis stages for one job: embedding, clustering,
// insight generation, scoring, aggregation, and the atomic result publish.
// Stages run strictly in order; no stage overlaps another for the same job.
type Pipeline struct {
	datasets  DatasetSource
	embedder  Embedder
	clusterer Clusterer
	insights  InsightSource
	status    StatusSink
	results   kvstore.Store
	cfg       PipelineConfig
}

// Progress checkpoints. Any monotonically increasing schedule satisfies the
// status contract; these mirror the stage boundaries.
const (
	progressValidated      = 0.05
	progressEmbeddingStart = 0.3
	progressEmbeddingEnd   = 0.6
	progressClustered      = 0.65
	progressInsightsEnd    = 0.85
	progressScored         = 0.9
)

// NewPipeline creates the orchestrator with its collaborators injected.
func NewPipeline(
	datasets DatasetSource,
	embedder Embedder,
	clusterer Clusterer,
	insights InsightSource,
	status StatusSink,
	results kvstore.Store,
	cfg PipelineConfig,
) *Pipeline {
	if cfg.ClusterCount <= 0 {
		cfg.ClusterCount = 8
	}
	if cfg.KeywordsPerCluster <= 0 {
		cfg.KeywordsPerCluster = 10
	}
	return &Pipeline{
		datasets:  datasets,
		embedder:  embedder,
		clusterer: clusterer,
		insights:  insights,
		status:    status,
		results:   results,
		cfg:       cfg,
	}
}

// Run processes one job end to end. On success the result is published to the
// three namespaces atomically and the job is marked completed; any error
// propagates to the caller, which marks the job failed. The pipeline itself
// never retries and never substitutes defaults for failed stages.
func (p *Pipeline) Run(ctx context.Context, jobID, datasetID string) error {
	start := time.Now()
	perf := models.Performance{}

	dataset, err := p.datasets.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}
	if err := validateDataset(dataset); err != nil {
		return err
	}

	if err := p.status.Update(ctx, jobID, processing(progressValidated)); err != nil {
		return err
	}

	// Embedding.
	if err := p.status.Update(ctx, jobID, processing(progressEmbeddingStart)); err != nil {
		return err
	}

	texts := dataset.Texts()
	embedStart := time.Now()
	vectors, stats, err := p.embedder.Embed(ctx, texts, func(bp BatchProgress) {
		frac := float64(bp.BatchesDone) / float64(bp.BatchesTotal)
		prog := progressEmbeddingStart + frac*(progressEmbeddingEnd-progressEmbeddingStart)
		// Progress updates mid-stage are best-effort; a transient status
		// write failure must not abort an otherwise healthy embedding run.
		if err := p.status.Update(ctx, jobID, processing(prog)); err != nil {
			slog.Warn("failed to update embedding progress", "job_id", jobID, "error", err)
		}
	})
	if err != nil {
		return err
	}
	perf.EmbeddingSeconds = time.Since(embedStart).Seconds()
	perf.CacheHits = stats.CacheHits
	perf.CacheMisses = stats.CacheMisses
	perf.ProviderBatches = stats.ProviderBatches

	// Clustering.
	k := p.cfg.ClusterCount
	if k > len(vectors) {
		k = len(vectors)
	}
	clusterStart := time.Now()
	labels := p.clusterer.FitPredict(vectors, k, p.cfg.ClusterSeed)
	perf.ClusteringSeconds = time.Since(clusterStart).Seconds()

	if len(labels) != len(dataset.Comments) {
		return apperrors.NewClusterAlignmentError(len(labels), len(dataset.Comments))
	}

	if err := p.status.Update(ctx, jobID, processing(progressClustered)); err != nil {
		return err
	}

	// Group member indices per occupied cluster, ascending cluster id.
	members := make(map[int][]int)
	for i, label := range labels {
		members[label] = append(members[label], i)
	}
	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	// Insight per cluster, fail-fast: one bad response fails the whole job.
	insightStart := time.Now()
	total := len(dataset.Comments)
	impactScores := make([]models.ImpactScore, 0, len(clusterIDs))

	for n, clusterID := range clusterIDs {
		clusterTexts := make([]string, 0, len(members[clusterID]))
		for _, idx := range members[clusterID] {
			clusterTexts = append(clusterTexts, dataset.Comments[idx].Text)
		}

		insight, err := p.insights.Generate(ctx, clusterID, clusterTexts)
		if err != nil {
			return err
		}

		sharePct := round2(float64(len(clusterTexts)) / float64(total) * 100)
		impact, risk, priority := ScoreCluster(sharePct, insight.Classification)

		impactScores = append(impactScores, models.ImpactScore{
			ClusterID:       clusterID,
			Theme:           insight.Theme,
			Classification:  insight.Classification,
			Insight:         insight.Insight,
			SuggestedAction: insight.SuggestedAction,
			RiskFlag:        insight.RiskFlag,
			CommentSharePct: sharePct,
			ImpactScore:     round2(impact),
			RiskScore:       risk,
			Priority:        priority,
		})

		frac := float64(n+1) / float64(len(clusterIDs))
		prog := progressClustered + frac*(progressInsightsEnd-progressClustered)
		if err := p.status.Update(ctx, jobID, processing(prog)); err != nil {
			return err
		}
	}
	perf.InsightSeconds = time.Since(insightStart).Seconds()

	// Rank by impact descending; equal scores keep cluster-id order.
	sort.SliceStable(impactScores, func(i, j int) bool {
		return impactScores[i].ImpactScore > impactScores[j].ImpactScore
	})

	if err := p.status.Update(ctx, jobID, processing(progressScored)); err != nil {
		return err
	}

	// Aggregates: metrics, keyword tables, 2-D projection.
	result := &models.AnalysisResult{
		DatasetID:          datasetID,
		ClusterAssignments: labels,
		ClusterMetrics:     clusterMetrics(dataset, members, clusterIDs),
		TopInsights:        impactScores,
		Keywords:           make(map[int][]models.KeywordCount, len(clusterIDs)),
		CompletedAt:        time.Now().UTC(),
	}

	for _, clusterID := range clusterIDs {
		clusterTexts := make([]string, 0, len(members[clusterID]))
		for _, idx := range members[clusterID] {
			clusterTexts = append(clusterTexts, dataset.Comments[idx].Text)
		}
		result.Keywords[clusterID] = TopKeywords(clusterTexts, p.cfg.KeywordsPerCluster)
	}

	projected := ProjectTo2D(vectors)
	result.Projection = make([]models.ProjectedPoint, len(projected))
	for i, pt := range projected {
		result.Projection[i] = models.ProjectedPoint{
			X:         pt[0],
			Y:         pt[1],
			Cluster:   labels[i],
			Sentiment: dataset.Comments[i].Sentiment,
		}
	}

	perf.TotalSeconds = time.Since(start).Seconds()
	result.Performance = perf

	if err := p.publish(ctx, datasetID, result); err != nil {
		return err
	}

	if err := p.status.Update(ctx, jobID, models.JobStatus{Status: models.JobCompleted, Progress: 1.0}); err != nil {
		return err
	}

	slog.Info("analysis completed",
		"job_id", jobID,
		"dataset_id", datasetID,
		"comments", total,
		"clusters", len(clusterIDs),
		"total_seconds", perf.TotalSeconds,
	)

	return nil
}

// publish writes the full result, cluster assignments, and impact scores in
// one atomic multi-write so readers never observe a partial run.
func (p *Pipeline) publish(ctx context.Context, datasetID string, result *models.AnalysisResult) error {
	fullResult, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	assignments, err := json.Marshal(result.ClusterAssignments)
	if err != nil {
		return fmt.Errorf("failed to marshal cluster assignments: %w", err)
	}
	insights, err := json.Marshal(result.TopInsights)
	if err != nil {
		return fmt.Errorf("failed to marshal impact scores: %w", err)
	}

	return p.results.SetMulti(ctx, map[string][]byte{
		kvstore.ResultKey(datasetID):  fullResult,
		kvstore.ClusterKey(datasetID): assignments,
		kvstore.InsightKey(datasetID): insights,
	})
}

// validateDataset rejects datasets with no usable text before any provider
// call is made.
func validateDataset(dataset *models.Dataset) error {
	if len(dataset.Comments) == 0 {
		return apperrors.NewValidationError("comments", "dataset has no comments")
	}
	for i, c := range dataset.Comments {
		if strings.TrimSpace(c.Text) == "" {
			return apperrors.NewValidationError("text", fmt.Sprintf("comment %d has no text", i))
		}
	}
	return nil
}

// clusterMetrics aggregates engagement and sentiment per cluster.
func clusterMetrics(dataset *models.Dataset, members map[int][]int, clusterIDs []int) []models.ClusterMetrics {
	metrics := make([]models.ClusterMetrics, 0, len(clusterIDs))
	for _, clusterID := range clusterIDs {
		indices := members[clusterID]
		count := len(indices)

		var likesSum, sentimentSum float64
		for _, idx := range indices {
			likesSum += dataset.Comments[idx].Likes
			sentimentSum += dataset.Comments[idx].Sentiment
		}
		avgLikes := likesSum / float64(count)
		avgSentiment := sentimentSum / float64(count)

		var variance float64
		for _, idx := range indices {
			diff := dataset.Comments[idx].Likes - avgLikes
			variance += diff * diff
		}
		variance /= float64(count)

		metrics = append(metrics, models.ClusterMetrics{
			ClusterID:     clusterID,
			CommentCount:  count,
			AvgLikes:      round2(avgLikes),
			AvgSentiment:  round2(avgSentiment),
			EngagementStd: round2(math.Sqrt(variance)),
		})
	}
	return metrics
}

func processing(progress float64) models.JobStatus {
	return models.JobStatus{Status: models.JobProcessing, Progress: progress}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

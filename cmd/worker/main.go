package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"golang.org/x/time/rate"

	"github.com/creatorpulse/hub/internal/config"
	"github.com/creatorpulse/hub/internal/embeddings"
	"github.com/creatorpulse/hub/internal/jobs"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/llm"
	"github.com/creatorpulse/hub/internal/models"
	"github.com/creatorpulse/hub/internal/repository"
	"github.com/creatorpulse/hub/internal/service"
	"github.com/creatorpulse/hub/pkg/database"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg.LogLevel)

	if cfg.EmbeddingProviderAPIKey == "" {
		slog.Error("EMBEDDING_PROVIDER_API_KEY (or OPENAI_API_KEY) is required for the worker")
		os.Exit(1)
	}
	if cfg.OpenAIAPIKey == "" {
		slog.Error("OPENAI_API_KEY is required for insight generation")
		os.Exit(1)
	}

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		slog.Error("Failed to ensure database schema", "error", err)
		os.Exit(1)
	}

	// Embedding provider
	embeddingClient, err := newEmbeddingClient(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize embedding client", "error", err)
		os.Exit(1)
	}
	slog.Info("Embedding provider ready",
		"provider", cfg.EmbeddingProvider,
		"dimensions", cfg.EmbeddingDimensions,
		"batch_size", cfg.EmbeddingBatchSize,
	)

	// Content-addressed embedding cache over pgvector
	embeddingCacheRepo := repository.NewEmbeddingCacheRepository(db)
	var cacheOpts []service.EmbeddingCacheOption
	if cfg.EmbeddingRateLimit > 0 {
		cacheOpts = append(cacheOpts, service.WithRateLimiter(
			rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1),
		))
	}
	embedder := service.NewEmbeddingCache(embeddingCacheRepo, embeddingClient, cfg.EmbeddingBatchSize, cacheOpts...)

	// Insight generation with strict structured output
	insightClient := llm.NewOpenAIClient(cfg.OpenAIAPIKey,
		llm.WithModel(cfg.InsightModel),
		llm.WithResponseSchema[models.ClusterInsight]("cluster_insight"),
	)
	insightGenerator := service.NewInsightGenerator(insightClient)

	// Stores and pipeline
	kvStore := kvstore.NewPostgresStore(db)
	statusStore := service.NewJobStatusStore(kvStore)
	datasetsRepo := repository.NewDatasetsRepository(db)
	clusterer := service.NewMiniBatchKMeans(cfg.ClusterBatchSize)

	pipeline := service.NewPipeline(
		datasetsRepo,
		embedder,
		clusterer,
		insightGenerator,
		statusStore,
		kvStore,
		service.PipelineConfig{
			ClusterCount:       cfg.ClusterCount,
			ClusterSeed:        cfg.ClusterSeed,
			KeywordsPerCluster: cfg.KeywordsPerCluster,
		},
	)

	// Register workers
	workers := river.NewWorkers()
	river.AddWorker(workers, jobs.NewAnalysisWorker(pipeline, statusStore))

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			jobs.AnalysisQueueName: {MaxWorkers: cfg.WorkerMaxConcurrent},
		},
		Workers:      workers,
		ErrorHandler: &jobs.ErrorHandler{},
		JobTimeout:   30 * time.Minute,
	})
	if err != nil {
		slog.Error("Failed to initialize River client", "error", err)
		os.Exit(1)
	}

	if err := riverClient.Start(ctx); err != nil {
		slog.Error("Failed to start River client", "error", err)
		os.Exit(1)
	}
	slog.Info("Worker started",
		"queue", jobs.AnalysisQueueName,
		"max_concurrent", cfg.WorkerMaxConcurrent,
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down worker...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop waits for in-flight jobs to complete
	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("Worker forced to shutdown", "error", err)
	}

	slog.Info("Worker exited")
}

// newEmbeddingClient selects the embedding provider from configuration.
func newEmbeddingClient(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	switch strings.ToLower(cfg.EmbeddingProvider) {
	case "google":
		return embeddings.NewGoogleClient(ctx, cfg.EmbeddingProviderAPIKey,
			embeddings.WithGoogleModel(cfg.EmbeddingModel),
			embeddings.WithGoogleDimensions(cfg.EmbeddingDimensions),
		)
	default:
		return embeddings.NewOpenAIClient(cfg.EmbeddingProviderAPIKey,
			embeddings.WithOpenAIModel(cfg.EmbeddingModel),
			embeddings.WithOpenAIDimensions(cfg.EmbeddingDimensions),
		), nil
	}
}

// setupLogging configures slog with the specified log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

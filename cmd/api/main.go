package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/creatorpulse/hub/internal/api/handlers"
	"github.com/creatorpulse/hub/internal/api/middleware"
	"github.com/creatorpulse/hub/internal/config"
	"github.com/creatorpulse/hub/internal/jobs"
	"github.com/creatorpulse/hub/internal/kvstore"
	"github.com/creatorpulse/hub/internal/observability"
	"github.com/creatorpulse/hub/internal/repository"
	"github.com/creatorpulse/hub/internal/service"
	"github.com/creatorpulse/hub/pkg/cache"
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

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

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

	// The API process only inserts jobs; workers run in the worker binary.
	// An insert-only River client needs no queues and is never started.
	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{})
	if err != nil {
		slog.Error("Failed to initialize River client", "error", err)
		os.Exit(1)
	}
	jobInserter := jobs.NewRiverJobInserter(riverClient)

	// Shared stores
	kvStore := kvstore.NewPostgresStore(db)
	statusStore := service.NewJobStatusStore(kvStore)
	datasetsRepo := repository.NewDatasetsRepository(db)

	resultCache, err := cache.NewLoaderCache[[]byte](cfg.ResultCacheSize)
	if err != nil {
		slog.Error("Failed to initialize result cache", "error", err)
		os.Exit(1)
	}

	// Handlers
	datasetsHandler := handlers.NewDatasetsHandler(datasetsRepo, jobInserter, statusStore)
	jobsHandler := handlers.NewJobsHandler(statusStore)
	resultsHandler := handlers.NewResultsHandler(kvStore, resultCache)
	healthHandler := handlers.NewHealthHandler()

	metrics, metricsHandler := observability.NewMetrics()

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)
	publicMux.Handle("GET /metrics", metricsHandler)

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/datasets", datasetsHandler.Upload)
	protectedMux.HandleFunc("POST /v1/datasets/{id}/analyze", datasetsHandler.Analyze)
	protectedMux.HandleFunc("GET /v1/jobs/{id}", jobsHandler.Status)
	protectedMux.HandleFunc("GET /v1/datasets/{id}/results", resultsHandler.Results)
	protectedMux.HandleFunc("GET /v1/datasets/{id}/clusters", resultsHandler.Clusters)
	protectedMux.HandleFunc("GET /v1/datasets/{id}/insights", resultsHandler.Insights)
	protectedMux.HandleFunc("GET /v1/datasets/{id}/actions", resultsHandler.Actions)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.Auth(cfg.APIKey)(protectedHandler)

	// Combine both handlers
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// Apply logging to all requests, with metrics outermost so recorded
	// durations cover the full request time.
	handler := middleware.Metrics(metrics)(middleware.Logging(mainMux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
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

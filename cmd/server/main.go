package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/analyzer"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/config"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/db"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/repository"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/router"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/storage"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLoggerTo(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	if err := charts.Register(); err != nil {
		logger.Fatal("Failed to initialize chart renderer", "error", err)
	}

	crimeAnalyzer := analyzer.NewCrimeAnalysisClient(cfg.AnalysisBaseURL, cfg.AnalysisTimeout, logger)
	opts := []services.ViewServiceOption{}

	// Run history
	var database *sqlx.DB
	if cfg.HistoryEnabled() {
		database, err = db.NewSQLiteDB(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to open run history database", "error", err)
		}
		defer database.Close()
		opts = append(opts, services.WithRunRepository(repository.NewRunRepository(database)))
		logger.Info("Run history enabled", "database", cfg.DatabaseURL)
	}

	// Dataset archive
	if cfg.ArchiveEnabled() {
		initCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		archive, err := storage.NewMinioArchive(initCtx, cfg)
		cancel()
		if err != nil {
			logger.Fatal("Failed to initialize dataset archive", "error", err)
		}
		opts = append(opts, services.WithArchive(archive))
		logger.Info("Dataset archive enabled", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3BucketName)
	}

	views := services.NewViewService(crimeAnalyzer, logger, opts...)

	pages, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("Failed to parse page templates", "error", err)
	}

	// Setup HTTP router
	handler := router.NewRouter(views, pages, router.Options{
		MaxFileSize:   cfg.MaxFileSize,
		AllowedOrigin: cfg.AllowedOrigin,
	}, logger)

	// Create HTTP server. WriteTimeout leaves room for a full analysis round trip.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AnalysisTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweepViews(sweepCtx, views, cfg.SweepInterval, cfg.ViewTTL)

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "analysis_service", cfg.AnalysisBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
	views.Shutdown()

	logger.Info("Server exited")
}

// sweepViews unmounts views idle for longer than ttl until ctx ends.
func sweepViews(ctx context.Context, views *services.ViewService, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			views.Sweep(ttl)
		}
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"surveyrelay/internal/cache"
	"surveyrelay/internal/config"
	"surveyrelay/internal/logging"
	"surveyrelay/internal/service"
	"surveyrelay/internal/transport/rest"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logging.New("info").WithError(err).Fatal("failed to load configuration")
	}
	logger := logging.New(cfg.LogLevel)
	logger.Info("started")

	if !cfg.GitHub.HasToken() {
		logger.Warn("GITHUB_TOKEN not set, submissions will be rejected")
	}
	logger.WithField("issues_url", cfg.GitHub.IssuesURL()).Info("relaying submissions")

	// Rate limit store, shared through Redis when configured
	var store limiter.Store
	if cfg.RateLimit.Enabled {
		s, rdb, err := cache.NewRateLimitStore(ctx, cfg.RateLimit)
		if err != nil {
			logger.WithError(err).Fatal("failed to create rate limit store")
		}
		if rdb != nil {
			defer rdb.Close()
			logger.Info("connected to Redis")
		}
		store = s
		logger.WithFields(logrus.Fields{
			"per_minute": cfg.RateLimit.PerMinute,
			"storage":    cfg.RateLimit.Storage,
		}).Info("rate limiting enabled")
	}

	// Initialize services
	githubClient := service.NewGitHubClient(cfg.GitHub, logger)
	submitSvc := service.NewSubmitService(cfg.GitHub, githubClient, logger)

	// Create router with container
	container := &rest.Container{
		Config:         cfg,
		Logger:         logger,
		SubmitService:  submitSvc,
		RateLimitStore: store,
	}
	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", cfg.HTTPPort)
		logger.Info("Endpoints:")
		logger.Info("  POST /api/submit")
		logger.Info("  ANY  /api/health")
		logger.Info("  GET  /metrics")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("ListenAndServe")
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
		return
	}

	logger.Info("Server exited")
}

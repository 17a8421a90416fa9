package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mentornest/backend/libs/config"
	"github.com/mentornest/backend/libs/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadScheduler()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting MentorNest Scheduler")

	// Create scheduler instance
	scheduler := NewScheduler(cfg.APIBaseURL, cfg.APIKey, logger.Logger)

	// Start scheduler
	if err := scheduler.Start(cfg.CleanupCron); err != nil {
		logger.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}

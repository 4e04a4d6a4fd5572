package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"localizer/internal/bootstrap"
	"localizer/internal/config"
	"localizer/internal/logger"
	"localizer/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger, err := logger.NewWithFile(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Close()

	// Wire the pipeline
	app, err := bootstrap.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline: %v", err)
	}
	defer app.Close()

	// Initialize worker
	w := worker.New(cfg, logger, app.Core)

	// Start worker
	logger.Info("Starting worker...")
	go w.Start()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	w.Stop()
}

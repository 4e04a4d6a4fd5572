package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"localizer/internal/api"
	"localizer/internal/bootstrap"
	"localizer/internal/config"
	"localizer/internal/logger"
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

	// Initialize API server
	server := api.New(cfg, logger, app.Core, app.Store)

	go func() {
		logger.Info("Starting API server on port " + cfg.APIPort)
		if err := server.Start(); err != nil {
			logger.Error("Server stopped: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Shutdown error: %v", err)
	}
}

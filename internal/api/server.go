package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"localizer/internal/api/handlers"
	"localizer/internal/api/middleware"
	"localizer/internal/config"
	"localizer/internal/logger"
	"localizer/internal/pipeline"
	"localizer/internal/state"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, core *pipeline.Core, store state.Store) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	webhookHandler := handlers.NewWebhookHandler(core, cfg.ShopifyWebhookSecret, logger)
	adminHandler := handlers.NewAdminHandler(core, store, cfg.AdminSecret, cfg.Env, logger)

	// Routes
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "localizer is running",
			"status":  "healthy",
		})
	})

	webhooks := router.Group("/webhook")
	{
		webhooks.POST("/product-created", webhookHandler.ProductCreated)
		webhooks.POST("/product-updated", webhookHandler.ProductUpdated)
		webhooks.POST("/product-deleted", webhookHandler.ProductDeleted)
	}

	router.GET("/batch-update", adminHandler.BatchUpdate)
	router.GET("/logs", adminHandler.Logs)
	router.GET("/status", adminHandler.Status)

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for handler tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

package handlers

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"localizer/internal/logger"
	"localizer/internal/pipeline"
	"localizer/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	core   *pipeline.Core
	store  state.Store
	secret string
	env    string
	logger *logger.Logger
}

func NewAdminHandler(core *pipeline.Core, store state.Store, secret, env string, logger *logger.Logger) *AdminHandler {
	return &AdminHandler{
		core:   core,
		store:  store,
		secret: secret,
		env:    env,
		logger: logger,
	}
}

// BatchUpdate is the secret-gated manual sweep trigger. It acknowledges
// immediately; the sweep outcome is only visible through /status and /logs.
func (h *AdminHandler) BatchUpdate(c *gin.Context) {
	if !h.authorized(c.Query("secret")) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Unauthorized"})
		return
	}

	opts := pipeline.SweepOptions{
		ForceReprocess: c.Query("reprocess") == "true",
		RunID:          uuid.New().String(),
	}

	if h.core.SweepRunning() {
		c.JSON(http.StatusConflict, gin.H{"error": "Sweep already in progress"})
		return
	}

	go func() {
		if _, err := h.core.Sweep(context.Background(), opts); err != nil {
			h.logger.Error("Sweep %s failed: %v", opts.RunID, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "sweep started",
		"run_id":  opts.RunID,
		"force":   opts.ForceReprocess,
	})
}

// Logs serves the recent log tail.
func (h *AdminHandler) Logs(c *gin.Context) {
	c.String(http.StatusOK, strings.Join(h.logger.Tail(), "\n"))
}

// Status reports store and sweep state.
func (h *AdminHandler) Status(c *gin.Context) {
	records, err := h.store.Count(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to count records: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"env":           h.env,
		"records":       records,
		"sweep_running": h.core.SweepRunning(),
		"last_sweep":    h.core.LastSweep(),
	})
}

func (h *AdminHandler) authorized(secret string) bool {
	return h.secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) == 1
}

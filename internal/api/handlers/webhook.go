package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"localizer/internal/logger"
	"localizer/internal/pipeline"
	"localizer/internal/services/shopify"

	"github.com/gin-gonic/gin"
)

// processTimeout bounds one background pipeline run kicked off by a
// webhook.
const processTimeout = 5 * time.Minute

type WebhookHandler struct {
	core        *pipeline.Core
	transformer *shopify.Transformer
	secret      string
	logger      *logger.Logger
}

func NewWebhookHandler(core *pipeline.Core, secret string, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		core:        core,
		transformer: shopify.NewTransformer(),
		secret:      secret,
		logger:      logger,
	}
}

func (h *WebhookHandler) ProductCreated(c *gin.Context) { h.handle(c, pipeline.EventCreated) }
func (h *WebhookHandler) ProductUpdated(c *gin.Context) { h.handle(c, pipeline.EventUpdated) }
func (h *WebhookHandler) ProductDeleted(c *gin.Context) { h.handle(c, pipeline.EventDeleted) }

// handle validates and decodes the delivery, acknowledges immediately, and
// runs the pipeline in a detached goroutine. Processing failures are only
// observable through logs and state; the sender's retries are not a
// processing retry signal.
func (h *WebhookHandler) handle(c *gin.Context, kind pipeline.EventKind) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	if !h.verifySignature(payload, c.GetHeader("X-Shopify-Hmac-Sha256")) {
		h.logger.Error("Webhook signature mismatch from %s", c.ClientIP())
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid webhook signature"})
		return
	}

	var body shopify.WebhookPayload
	if err := json.Unmarshal(payload, &body); err != nil || body.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook payload"})
		return
	}

	item := h.transformer.FromWebhook(&body)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := h.core.HandleEvent(ctx, item, kind); err != nil {
			h.logger.Error("Webhook processing failed for item %d (%s): %v", item.ID, kind, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"message": "accepted"})
}

func (h *WebhookHandler) verifySignature(payload []byte, signature string) bool {
	if h.secret == "" {
		return true
	}
	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(payload)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

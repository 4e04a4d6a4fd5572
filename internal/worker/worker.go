// Package worker is the broker-side ingress adapter: it consumes relayed
// product events from Kafka and funnels them into the same reconciliation
// core the webhook path uses.
package worker

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"localizer/internal/config"
	"localizer/internal/logger"
	"localizer/internal/pipeline"
	"localizer/internal/services/shopify"

	"github.com/segmentio/kafka-go"
)

type Worker struct {
	config      *config.Config
	logger      *logger.Logger
	reader      *kafka.Reader
	core        *pipeline.Core
	transformer *shopify.Transformer
}

// Event is the envelope relayed over the product-events topic.
type Event struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

func New(cfg *config.Config, logger *logger.Logger, core *pipeline.Core) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        "localizer-worker",
		Topic:          "product-events",
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	return &Worker{
		config:      cfg,
		logger:      logger,
		reader:      reader,
		core:        core,
		transformer: shopify.NewTransformer(),
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for events...")

	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		message, err := w.reader.ReadMessage(ctx)
		cancel()

		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			continue
		}

		w.logger.Debug("Received message: %s", string(message.Value))

		var event Event
		if err := json.Unmarshal(message.Value, &event); err != nil {
			w.logger.Error("Failed to parse event: %v", err)
			continue
		}

		if err := w.process(event); err != nil {
			w.logger.Error("Failed to process event: %v", err)
			continue
		}

		w.logger.Debug("Event processed successfully")
	}
}

func (w *Worker) process(event Event) error {
	kind, ok := eventKind(event.Type)
	if !ok {
		w.logger.Debug("Ignoring event type %q", event.Type)
		return nil
	}

	var payload shopify.WebhookPayload
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return err
	}

	item := w.transformer.FromWebhook(&payload)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	return w.core.HandleEvent(ctx, item, kind)
}

func eventKind(eventType string) (pipeline.EventKind, bool) {
	switch {
	case strings.HasSuffix(eventType, "created"):
		return pipeline.EventCreated, true
	case strings.HasSuffix(eventType, "updated"):
		return pipeline.EventUpdated, true
	case strings.HasSuffix(eventType, "deleted"):
		return pipeline.EventDeleted, true
	default:
		return "", false
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}

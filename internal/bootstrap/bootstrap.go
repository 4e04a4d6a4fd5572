// Package bootstrap wires the shared pipeline dependencies for both
// binaries.
package bootstrap

import (
	"fmt"

	"localizer/internal/config"
	"localizer/internal/database"
	"localizer/internal/logger"
	"localizer/internal/pipeline"
	"localizer/internal/services/meta"
	"localizer/internal/services/openai"
	"localizer/internal/services/shopify"
	"localizer/internal/state"
)

type App struct {
	Core  *pipeline.Core
	Store state.Store

	db *database.Database
}

func New(cfg *config.Config, logger *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	store := state.NewDBStore(db.DB)

	catalog, err := pipeline.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load category catalog: %w", err)
	}

	gen := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	classifier := pipeline.NewClassifier(catalog, cfg.ClassifierThreshold, gen, logger)
	transformer := pipeline.NewContentTransformer(gen, classifier, pipeline.TransformerConfig{
		TargetLanguage: cfg.TargetLanguage,
		TitleMaxLength: cfg.TitleMaxLength,
		MarkerTag:      cfg.MarkerTag,
	}, logger)

	shopifyClient := shopify.NewClient(cfg.ShopifyStoreURL, cfg.ShopifyAccessToken, logger)
	metaClient := meta.NewClient(cfg.MetaGraphURL, cfg.MetaIGBusinessID, cfg.MetaPageID, cfg.MetaAccessToken, cfg.SyncToFacebook, logger)
	publisher := pipeline.NewChannelPublisher(shopifyClient, metaClient, logger)
	lister := shopify.NewCatalogLister(shopifyClient, logger)

	core := pipeline.NewCore(store, transformer, publisher, lister, pipeline.Options{
		CoalesceWindow: cfg.CoalesceWindow,
		MarkerTag:      cfg.MarkerTag,
		SweepDelay:     cfg.SweepDelay,
	}, logger)

	return &App{Core: core, Store: store, db: db}, nil
}

func (a *App) Close() error {
	return a.db.Close()
}

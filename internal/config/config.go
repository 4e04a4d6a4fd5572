package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Kafka
	KafkaBrokers string

	// API Configuration
	APIPort string
	APIHost string

	// Shopify
	ShopifyStoreURL      string
	ShopifyAccessToken   string
	ShopifyWebhookSecret string

	// OpenAI
	OpenAIAPIKey string
	OpenAIModel  string

	// Meta (Instagram / Facebook cross-posting)
	MetaGraphURL     string
	MetaIGBusinessID string
	MetaPageID       string
	MetaAccessToken  string
	SyncToFacebook   bool

	// Admin
	AdminSecret string

	// Pipeline tuning
	TargetLanguage      string
	CoalesceWindow      time.Duration
	SweepDelay          time.Duration
	MarkerTag           string
	TitleMaxLength      int
	ClassifierThreshold int
	CatalogPath         string

	// Environment
	Env      string
	LogLevel string
	LogFile  string
}

func Load() (*Config, error) {
	// Load .env file
	godotenv.Load()

	return &Config{
		DatabaseURL:          getEnv("DATABASE_URL", "sqlite://localizer.db"),
		KafkaBrokers:         getEnv("KAFKA_BROKERS", "localhost:9092"),
		APIPort:              getEnv("API_PORT", "8080"),
		APIHost:              getEnv("API_HOST", "0.0.0.0"),
		ShopifyStoreURL:      getEnv("SHOPIFY_STORE_URL", ""),
		ShopifyAccessToken:   getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		ShopifyWebhookSecret: getEnv("SHOPIFY_WEBHOOK_SECRET", ""),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		MetaGraphURL:         getEnv("META_GRAPH_URL", "https://graph.facebook.com/v19.0"),
		MetaIGBusinessID:     getEnv("META_IG_BUSINESS_ID", ""),
		MetaPageID:           getEnv("META_PAGE_ID", ""),
		MetaAccessToken:      getEnv("META_ACCESS_TOKEN", ""),
		SyncToFacebook:       getEnv("SYNC_TO_FACEBOOK", "false") == "true",
		AdminSecret:          getEnv("ADMIN_SECRET", ""),
		TargetLanguage:       getEnv("TARGET_LANGUAGE", "Arabic"),
		CoalesceWindow:       time.Duration(getEnvAsInt("COALESCE_WINDOW_SECONDS", 120)) * time.Second,
		SweepDelay:           time.Duration(getEnvAsInt("SWEEP_DELAY_MS", 1500)) * time.Millisecond,
		MarkerTag:            getEnv("MARKER_TAG", "AI-Optimized"),
		TitleMaxLength:       getEnvAsInt("TITLE_MAX_LENGTH", 70),
		ClassifierThreshold:  getEnvAsInt("CLASSIFIER_THRESHOLD", 5),
		CatalogPath:          getEnv("CATALOG_PATH", "catalog.json"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              getEnv("LOG_FILE", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

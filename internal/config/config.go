package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingAPIKey     string
	EmbeddingVectorSize int

	QdrantURL        string
	QdrantCollection string

	CatalogBaseURL   string
	CatalogAPIKey    string
	CatalogCacheTTL  time.Duration
	CatalogCacheSize int

	OpenAIBaseURL    string
	OpenAIAPIKey     string
	OpenAIModel      string
	AnthropicBaseURL string
	AnthropicAPIKey  string
	AnthropicModel   string
	DefaultProvider  string

	ResultLimit           int
	DocDiversityCap       int
	VectorScoreThreshold  float64
	VectorOverfetchFactor int

	DBPath    string
	APIPort   string
	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "https://api.openai.com"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "document_chunks"),

		CatalogBaseURL: getEnv("CATALOG_BASE_URL", ""),
		CatalogAPIKey:  getEnv("CATALOG_API_KEY", ""),

		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
		DefaultProvider:  strings.ToLower(getEnv("DEFAULT_MODEL_PROVIDER", "openai")),

		DBPath:    getEnv("DB_PATH", "./data/knowledge-ai.db"),
		APIPort:   getEnv("API_PORT", "9000"),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	// Parse EMBEDDING_VECTOR_SIZE.
	// Note: this must match the output vector size of the embeddings model and the
	// dimension of the pre-built Qdrant collection. If it changes, the collection
	// must be rebuilt by the offline indexer.
	vectorSize, err := getEnvInt("EMBEDDING_VECTOR_SIZE", 1536)
	if err != nil {
		return nil, err
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	cfg.ResultLimit, err = getEnvInt("RESULT_LIMIT", 5)
	if err != nil {
		return nil, err
	}
	if cfg.ResultLimit <= 0 {
		return nil, fmt.Errorf("RESULT_LIMIT must be greater than 0")
	}

	cfg.DocDiversityCap, err = getEnvInt("DOC_DIVERSITY_CAP", 2)
	if err != nil {
		return nil, err
	}
	if cfg.DocDiversityCap <= 0 {
		return nil, fmt.Errorf("DOC_DIVERSITY_CAP must be greater than 0")
	}

	// Threshold 0 means accept every nearest-neighbor match (favor recall).
	thresholdStr := getEnv("VECTOR_SCORE_THRESHOLD", "0")
	threshold, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return nil, fmt.Errorf("VECTOR_SCORE_THRESHOLD must be a valid float: %w", err)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("VECTOR_SCORE_THRESHOLD must be between 0 and 1")
	}
	cfg.VectorScoreThreshold = threshold

	cfg.VectorOverfetchFactor, err = getEnvInt("VECTOR_OVERFETCH_FACTOR", 3)
	if err != nil {
		return nil, err
	}
	if cfg.VectorOverfetchFactor < 1 {
		return nil, fmt.Errorf("VECTOR_OVERFETCH_FACTOR must be at least 1")
	}

	ttlSeconds, err := getEnvInt("CATALOG_CACHE_TTL_SECONDS", 300)
	if err != nil {
		return nil, err
	}
	if ttlSeconds <= 0 {
		return nil, fmt.Errorf("CATALOG_CACHE_TTL_SECONDS must be greater than 0")
	}
	cfg.CatalogCacheTTL = time.Duration(ttlSeconds) * time.Second

	cfg.CatalogCacheSize, err = getEnvInt("CATALOG_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}
	if cfg.CatalogCacheSize <= 0 {
		return nil, fmt.Errorf("CATALOG_CACHE_SIZE must be greater than 0")
	}

	// Parse log level
	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "info":
		cfg.LogLevel = slog.LevelInfo
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error")
	}

	// Validate required fields
	if cfg.CatalogBaseURL == "" {
		return nil, fmt.Errorf("CATALOG_BASE_URL is required")
	}
	switch cfg.DefaultProvider {
	case "openai", "anthropic":
	default:
		return nil, fmt.Errorf("DEFAULT_MODEL_PROVIDER must be openai or anthropic")
	}

	// Create ./data directory if it doesn't exist (for the facts DB file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return parsed, nil
}

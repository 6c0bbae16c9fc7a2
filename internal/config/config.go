// ABOUTME: Centralized configuration for the docqa pipeline
// ABOUTME: Loads an optional YAML file, then environment variables, with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the retrieval pipeline.
type Config struct {
	// Model service endpoints (OpenAI-compatible)
	EmbeddingBaseURL  string `yaml:"embedding_base_url"`
	GenerationBaseURL string `yaml:"generation_base_url"`
	APIKey            string `yaml:"api_key"`
	EmbeddingModel    string `yaml:"embedding_model"`
	ChatModel         string `yaml:"chat_model"`
	VectorDimension   int    `yaml:"vector_dimension"`

	// Chunking
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`

	// Retrieval
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`

	// Embedding request shaping
	MaxBatchSize int `yaml:"max_batch_size"`
	EmbedWorkers int `yaml:"embed_workers"`

	// Retry / timeout policy for remote model calls. The YAML file carries
	// these as plain seconds (retry_delay_secs, timeout_secs).
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"-"`
	Timeout    time.Duration `yaml:"-"`

	RetryDelaySecs int `yaml:"retry_delay_secs"`
	TimeoutSecs    int `yaml:"timeout_secs"`

	// Index persistence
	DBPath     string `yaml:"db_path"`
	Collection string `yaml:"collection"`
}

// DefaultDataDir returns the data directory for the index database,
// following the XDG spec.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return ".local/share/docqa"
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "docqa")
}

// Load builds the configuration: defaults, overridden by the YAML file at
// path (when non-empty), overridden by DOCQA_* environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{
		EmbeddingModel:  "text-embedding-3-small",
		ChatModel:       "gpt-4o-mini",
		VectorDimension: 1536,
		ChunkSize:       512,
		ChunkOverlap:    50,
		TopK:            5,
		MinScore:        0.75,
		MaxBatchSize:    64,
		EmbedWorkers:    3,
		MaxRetries:      3,
		RetryDelay:      2 * time.Second,
		Timeout:         30 * time.Second,
		DBPath:          filepath.Join(DefaultDataDir(), "index.db"),
		Collection:      "default",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if cfg.RetryDelaySecs > 0 {
			cfg.RetryDelay = time.Duration(cfg.RetryDelaySecs) * time.Second
		}
		if cfg.TimeoutSecs > 0 {
			cfg.Timeout = time.Duration(cfg.TimeoutSecs) * time.Second
		}
	}

	cfg.EmbeddingBaseURL = getEnv("DOCQA_EMBEDDING_BASE_URL", cfg.EmbeddingBaseURL)
	cfg.GenerationBaseURL = getEnv("DOCQA_GENERATION_BASE_URL", cfg.GenerationBaseURL)
	cfg.APIKey = getEnv("DOCQA_API_KEY", getEnv("OPENAI_API_KEY", cfg.APIKey))
	cfg.EmbeddingModel = getEnv("DOCQA_EMBEDDING_MODEL", cfg.EmbeddingModel)
	cfg.ChatModel = getEnv("DOCQA_CHAT_MODEL", cfg.ChatModel)
	cfg.VectorDimension = getEnvInt("DOCQA_VECTOR_DIMENSION", cfg.VectorDimension)
	cfg.ChunkSize = getEnvInt("DOCQA_CHUNK_SIZE", cfg.ChunkSize)
	cfg.ChunkOverlap = getEnvInt("DOCQA_CHUNK_OVERLAP", cfg.ChunkOverlap)
	cfg.TopK = getEnvInt("DOCQA_TOP_K", cfg.TopK)
	cfg.MinScore = getEnvFloat("DOCQA_MIN_SCORE", cfg.MinScore)
	cfg.MaxBatchSize = getEnvInt("DOCQA_MAX_BATCH_SIZE", cfg.MaxBatchSize)
	cfg.EmbedWorkers = getEnvInt("DOCQA_EMBED_WORKERS", cfg.EmbedWorkers)
	cfg.MaxRetries = getEnvInt("DOCQA_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryDelay = getEnvDuration("DOCQA_RETRY_DELAY", cfg.RetryDelay)
	cfg.Timeout = getEnvDuration("DOCQA_TIMEOUT", cfg.Timeout)
	cfg.DBPath = getEnv("DOCQA_DB_PATH", cfg.DBPath)
	cfg.Collection = getEnv("DOCQA_COLLECTION", cfg.Collection)

	return cfg, cfg.Validate()
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap must be in [0, chunk size), got %d with size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("vector dimension must be positive, got %d", c.VectorDimension)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("min score must be 0-1, got %f", c.MinScore)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxBatchSize <= 0 {
		return fmt.Errorf("max batch size must be positive, got %d", c.MaxBatchSize)
	}
	if c.EmbedWorkers < 1 || c.EmbedWorkers > 8 {
		return fmt.Errorf("embed workers must be 1-8, got %d", c.EmbedWorkers)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("max retries must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// Helper functions

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}

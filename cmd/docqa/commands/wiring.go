// ABOUTME: Shared dependency wiring for CLI commands
// ABOUTME: Builds config, index store, embedder, generator, and pipeline in one place
package commands

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/index"
	"github.com/harper/docqa/internal/llm"
	"github.com/harper/docqa/internal/pipeline"
)

// runtime bundles everything a command needs. Close releases the database.
type runtime struct {
	cfg   *config.Config
	store *index.Store
	pipe  *pipeline.Pipeline
	db    *index.DB
}

func (r *runtime) Close() error {
	return r.db.Close()
}

// newRuntime loads configuration and wires the pipeline. withGenerator skips
// the generation client for commands that only ingest or search.
func newRuntime(withGenerator bool) (*runtime, error) {
	// Load .env if present (for API keys)
	if err := godotenv.Load(); err != nil && verbose {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	db, err := index.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	store := index.NewStore(db, index.Options{})

	embedder, err := llm.NewEmbedder(llm.EmbedderConfig{
		BaseURL:      cfg.EmbeddingBaseURL,
		APIKey:       cfg.APIKey,
		Model:        cfg.EmbeddingModel,
		Dimension:    cfg.VectorDimension,
		MaxBatchSize: cfg.MaxBatchSize,
		Workers:      cfg.EmbedWorkers,
		MaxRetries:   cfg.MaxRetries,
		RetryDelay:   cfg.RetryDelay,
		Timeout:      cfg.Timeout,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing embedding client: %w", err)
	}

	var generator pipeline.Generator
	if withGenerator {
		generator = pipeline.WrapGenerator(llm.NewGenerator(llm.GeneratorConfig{
			BaseURL:    cfg.GenerationBaseURL,
			APIKey:     cfg.APIKey,
			Model:      cfg.ChatModel,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
			Timeout:    cfg.Timeout,
		}))
	}

	return &runtime{
		cfg:   cfg,
		store: store,
		pipe:  pipeline.New(embedder, store, generator),
		db:    db,
	}, nil
}

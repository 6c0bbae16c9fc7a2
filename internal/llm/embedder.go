// ABOUTME: Embedding client for OpenAI-compatible endpoints with batching and retries
// ABOUTME: Splits inputs into bounded batches and embeds them with a small worker pool
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
)

// EmbedderConfig holds configuration for the embedding client.
type EmbedderConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	Dimension    int
	MaxBatchSize int
	Workers      int
	MaxRetries   int
	RetryDelay   time.Duration
	Timeout      time.Duration
}

// Embedder turns texts into fixed-length vectors by calling a remote
// OpenAI-compatible embeddings endpoint.
type Embedder struct {
	client       *openai.Client
	model        openai.EmbeddingModel
	dimension    int
	maxBatchSize int
	workers      int
	maxRetries   int
	retryDelay   time.Duration
	timeout      time.Duration
}

// NewEmbedder creates an embedding client. Dimension is the embedding
// model's output dimensionality; every response vector is validated
// against it.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d",
			models.ErrInvalidConfiguration, cfg.Dimension)
	}
	if cfg.MaxBatchSize <= 0 {
		return nil, fmt.Errorf("%w: max batch size must be positive, got %d",
			models.ErrInvalidConfiguration, cfg.MaxBatchSize)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Embedder{
		client:       newClient(cfg.BaseURL, cfg.APIKey),
		model:        openai.EmbeddingModel(cfg.Model),
		dimension:    cfg.Dimension,
		maxBatchSize: cfg.MaxBatchSize,
		workers:      cfg.Workers,
		maxRetries:   cfg.MaxRetries,
		retryDelay:   cfg.RetryDelay,
		timeout:      cfg.Timeout,
	}, nil
}

// Dimension returns the configured output dimensionality.
func (e *Embedder) Dimension() int {
	return e.dimension
}

// Embed returns one vector per input text, in input order. Inputs are split
// into batches of at most MaxBatchSize, embedded with bounded concurrency,
// and each batch is retried with exponential backoff on transient failures.
// Either every input gets a vector or an error is returned; there are no
// silent gaps. Empty strings are embedded like any other text.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return [][]float64{}, nil
	}

	vectors := make([][]float64, len(texts))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(e.workers)

	for start := 0; start < len(texts); start += e.maxBatchSize {
		end := start + e.maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		eg.Go(func() error {
			batch, err := e.embedBatch(ctx, texts[start:end])
			if err != nil {
				if errors.Is(err, models.ErrInvalidConfiguration) || errors.Is(err, context.Canceled) {
					return err
				}
				return &EmbeddingUnavailableError{FirstIndex: start, LastIndex: end - 1, Err: err}
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embedBatch embeds a single batch, retrying transient failures until the
// backoff schedule gives up.
func (e *Embedder) embedBatch(ctx context.Context, batch []string) ([][]float64, error) {
	var vectors [][]float64

	err := retry.Do(ctx, util.NewBackoff(e.retryDelay, e.maxRetries), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		resp, err := e.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: batch,
			Model: e.model,
		})
		if err != nil {
			if util.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		if len(resp.Data) != len(batch) {
			return fmt.Errorf("embedding service returned %d vectors for %d inputs", len(resp.Data), len(batch))
		}

		out := make([][]float64, len(batch))
		for _, data := range resp.Data {
			if data.Index < 0 || data.Index >= len(batch) {
				return fmt.Errorf("embedding service returned out-of-range index %d", data.Index)
			}
			if len(data.Embedding) != e.dimension {
				return fmt.Errorf("%w: embedding dimension mismatch: expected %d, got %d",
					models.ErrInvalidConfiguration, e.dimension, len(data.Embedding))
			}
			vec := make([]float64, len(data.Embedding))
			for i, v := range data.Embedding {
				vec[i] = float64(v)
			}
			out[data.Index] = vec
		}
		for i, vec := range out {
			if vec == nil {
				return fmt.Errorf("embedding service returned no vector for input %d", i)
			}
		}

		vectors = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

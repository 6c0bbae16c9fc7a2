// ABOUTME: Shared OpenAI-compatible client construction and service error types
// ABOUTME: Both clients point at configurable base URLs for locally hosted model servers
package llm

import (
	"fmt"

	"github.com/harper/docqa/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// newClient builds a go-openai client against an OpenAI-compatible endpoint.
// An empty baseURL falls through to the official API.
func newClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// EmbeddingUnavailableError reports that the embedding service stayed
// unavailable for a batch after the retry budget was spent. FirstIndex and
// LastIndex name the failed inputs in the caller's original ordering.
type EmbeddingUnavailableError struct {
	FirstIndex int
	LastIndex  int
	Err        error
}

func (e *EmbeddingUnavailableError) Error() string {
	return fmt.Sprintf("embedding service unavailable for inputs %d-%d: %v", e.FirstIndex, e.LastIndex, e.Err)
}

func (e *EmbeddingUnavailableError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, models.ErrEmbeddingUnavailable) match.
func (e *EmbeddingUnavailableError) Is(target error) bool {
	return target == models.ErrEmbeddingUnavailable
}

// GenerationUnavailableError reports that the generation service stayed
// unavailable after the retry budget was spent.
type GenerationUnavailableError struct {
	Err error
}

func (e *GenerationUnavailableError) Error() string {
	return fmt.Sprintf("generation service unavailable: %v", e.Err)
}

func (e *GenerationUnavailableError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, models.ErrGenerationUnavailable) match.
func (e *GenerationUnavailableError) Is(target error) bool {
	return target == models.ErrGenerationUnavailable
}

// ABOUTME: Generation client for OpenAI-compatible chat completion endpoints
// ABOUTME: Renders augmented prompts into chat messages; supports one-shot and streamed output
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/util"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

const systemPrompt = `You are a question answering assistant. Answer the question using only the provided context. If the context does not contain the answer, say that no relevant information was found. Do not invent facts.`

// GeneratorConfig holds configuration for the generation client.
type GeneratorConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// Generator produces answers from augmented prompts by calling a remote
// OpenAI-compatible chat completion endpoint.
type Generator struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
}

// NewGenerator creates a generation client.
func NewGenerator(cfg GeneratorConfig) *Generator {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Generator{
		client:     newClient(cfg.BaseURL, cfg.APIKey),
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		timeout:    cfg.Timeout,
	}
}

// RenderMessages turns an augmented prompt into the chat message list sent
// to the generation service. The rendering is deterministic: identical
// prompts always produce identical messages.
func RenderMessages(prompt models.AugmentedPrompt) []openai.ChatCompletionMessage {
	var sb strings.Builder
	if len(prompt.Context) == 0 {
		sb.WriteString("No relevant context was found in the document index.\n")
	} else {
		sb.WriteString("Context:\n")
		for i, text := range prompt.Context {
			fmt.Fprintf(&sb, "[%d] %s\n", i+1, text)
		}
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(prompt.Query)

	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: sb.String()},
	}
}

// Complete sends the prompt and returns the generated text unmodified.
// Transient failures are retried; once the budget is spent the error wraps
// models.ErrGenerationUnavailable.
func (g *Generator) Complete(ctx context.Context, prompt models.AugmentedPrompt) (string, error) {
	var answer string

	err := retry.Do(ctx, util.NewBackoff(g.retryDelay, g.maxRetries), func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		resp, err := g.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: RenderMessages(prompt),
		})
		if err != nil {
			if util.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("generation service returned no choices")
		}

		answer = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", &GenerationUnavailableError{Err: err}
	}
	return answer, nil
}

// Stream opens a streamed completion for the prompt. The returned stream is
// a finite, non-restartable sequence of text fragments; the caller consumes
// it once with Recv until io.EOF and must Close it.
func (g *Generator) Stream(ctx context.Context, prompt models.AugmentedPrompt) (*TokenStream, error) {
	var stream *openai.ChatCompletionStream

	err := retry.Do(ctx, util.NewBackoff(g.retryDelay, g.maxRetries), func(ctx context.Context) error {
		s, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
			Model:    g.model,
			Messages: RenderMessages(prompt),
			Stream:   true,
		})
		if err != nil {
			if util.IsRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		stream = s
		return nil
	})
	if err != nil {
		return nil, &GenerationUnavailableError{Err: err}
	}
	return &TokenStream{stream: stream}, nil
}

// TokenStream delivers generated text incrementally.
type TokenStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next text fragment, or io.EOF when generation finishes.
func (s *TokenStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		return resp.Choices[0].Delta.Content, nil
	}
}

// Close releases the underlying connection. Safe to call after io.EOF.
func (s *TokenStream) Close() error {
	return s.stream.Close()
}

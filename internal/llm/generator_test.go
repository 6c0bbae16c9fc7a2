// ABOUTME: Tests for the generation client and augmented prompt rendering
// ABOUTME: Uses a fake chat completion endpoint, including SSE streaming
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/docqa/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

func newTestGenerator(baseURL string, retries int) *Generator {
	return NewGenerator(GeneratorConfig{
		BaseURL:    baseURL + "/v1",
		APIKey:     "test-key",
		Model:      "test-chat",
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
		Timeout:    5 * time.Second,
	})
}

func TestRenderMessages_Deterministic(t *testing.T) {
	prompt := models.AugmentedPrompt{
		Context: []string{"first chunk", "second chunk"},
		Query:   "what happened?",
	}

	a := RenderMessages(prompt)
	b := RenderMessages(prompt)

	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("RenderMessages() = %d messages, want 2", len(a))
	}
	if a[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %q, want system", a[0].Role)
	}
	if a[1].Content != b[1].Content {
		t.Error("RenderMessages() is not deterministic")
	}
	if !strings.Contains(a[1].Content, "[1] first chunk") || !strings.Contains(a[1].Content, "[2] second chunk") {
		t.Errorf("user message missing numbered context: %q", a[1].Content)
	}
	if !strings.Contains(a[1].Content, "Question: what happened?") {
		t.Errorf("user message missing question: %q", a[1].Content)
	}
}

func TestRenderMessages_EmptyContext(t *testing.T) {
	msgs := RenderMessages(models.AugmentedPrompt{Query: "anything?"})

	if !strings.Contains(msgs[1].Content, "No relevant context was found") {
		t.Errorf("empty-context message should say so explicitly: %q", msgs[1].Content)
	}
	if !strings.Contains(msgs[1].Content, "Question: anything?") {
		t.Errorf("user message missing question: %q", msgs[1].Content)
	}
}

func TestComplete_ReturnsAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "the answer"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 0)

	answer, err := g.Complete(context.Background(), models.AugmentedPrompt{Query: "q"})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if answer != "the answer" {
		t.Errorf("Complete() = %q, want %q", answer, "the answer")
	}
}

func TestComplete_UnavailableAfterRetries(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"error":{"message":"overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 2)

	_, err := g.Complete(context.Background(), models.AugmentedPrompt{Query: "q"})
	if !errors.Is(err, models.ErrGenerationUnavailable) {
		t.Fatalf("error = %v, want ErrGenerationUnavailable", err)
	}
	// Initial attempt plus two retries.
	if got := calls.Load(); got != 3 {
		t.Errorf("server saw %d calls, want 3", got)
	}
}

func TestStream_DeliversFragmentsThenEOF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{"Hel", "lo", " world"}
		for _, c := range chunks {
			payload, _ := json.Marshal(map[string]interface{}{
				"id":     "cmpl-1",
				"object": "chat.completion.chunk",
				"choices": []map[string]interface{}{
					{"index": 0, "delta": map[string]string{"content": c}},
				},
			})
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, 0)

	stream, err := g.Stream(context.Background(), models.AugmentedPrompt{Query: "q"})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer stream.Close()

	var sb strings.Builder
	for {
		fragment, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Recv() error = %v", err)
		}
		sb.WriteString(fragment)
	}

	if sb.String() != "Hello world" {
		t.Errorf("streamed text = %q, want %q", sb.String(), "Hello world")
	}
}

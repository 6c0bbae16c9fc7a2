// ABOUTME: Chunker splits document text into overlapping fixed-size token windows
// ABOUTME: Tokens keep their leading whitespace so chunk texts reassemble the input exactly
package chunker

import (
	"fmt"
	"strings"

	"github.com/harper/docqa/internal/models"
)

// Chunker cuts raw document text into overlapping token windows suitable
// for embedding. It is stateless and safe for concurrent use.
type Chunker struct{}

// New creates a Chunker.
func New() *Chunker {
	return &Chunker{}
}

// Split walks the token stream of text in windows of cfg.TargetSize tokens,
// advancing the window start by TargetSize-Overlap tokens each step. The
// final window may be shorter than TargetSize and is still emitted.
// Sequence numbers start at 0 and are stable across re-runs for identical
// input and parameters. Empty or whitespace-only input yields an empty
// slice, not an error.
func (c *Chunker) Split(text, sourceDocument string, cfg models.ChunkingConfig) ([]models.Chunk, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []models.Chunk{}, nil
	}

	step := cfg.TargetSize - cfg.Overlap
	chunks := []models.Chunk{}

	for start, seq := 0, 0; start < len(tokens); start, seq = start+step, seq+1 {
		end := start + cfg.TargetSize
		if end > len(tokens) {
			end = len(tokens)
		}

		chunks = append(chunks, models.Chunk{
			ID:             models.ChunkID(sourceDocument, seq),
			SourceDocument: sourceDocument,
			SequenceNumber: seq,
			Text:           strings.Join(tokens[start:end], ""),
			TokenCount:     end - start,
		})

		if end == len(tokens) {
			break
		}
	}

	return chunks, nil
}

// ValidateConfig rejects chunking parameters that cannot produce a valid
// window walk: a non-positive window, a negative overlap, or an overlap
// that would stop the window from advancing.
func ValidateConfig(cfg models.ChunkingConfig) error {
	if cfg.TargetSize <= 0 {
		return fmt.Errorf("%w: chunk target size must be positive, got %d",
			models.ErrInvalidConfiguration, cfg.TargetSize)
	}
	if cfg.Overlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative, got %d",
			models.ErrInvalidConfiguration, cfg.Overlap)
	}
	if cfg.Overlap >= cfg.TargetSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than target size %d",
			models.ErrInvalidConfiguration, cfg.Overlap, cfg.TargetSize)
	}
	return nil
}

// tokenize splits text into whitespace-delimited tokens. Each token carries
// the whitespace run that precedes it, and trailing whitespace attaches to
// the last token, so strings.Join(tokens, "") == text holds for any input
// containing at least one non-space character.
func tokenize(text string) []string {
	var tokens []string
	start := 0
	inWord := false

	for i, r := range text {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
		if inWord && isSpace {
			// Word ended; the next token starts here and will absorb
			// this whitespace run as its prefix.
			tokens = append(tokens, text[start:i])
			start = i
			inWord = false
		} else if !inWord && !isSpace {
			inWord = true
		}
	}

	if inWord {
		tokens = append(tokens, text[start:])
	} else if len(tokens) > 0 {
		// Trailing whitespace belongs to the last token.
		tokens[len(tokens)-1] += text[start:]
	}

	return tokens
}

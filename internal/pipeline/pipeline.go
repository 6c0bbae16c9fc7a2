// ABOUTME: Retrieval orchestrator wiring chunker, embedder, index, and generator
// ABOUTME: Ingestion is document-transactional; queries embed, search, and generate
package pipeline

import (
	"context"
	"fmt"

	"github.com/harper/docqa/internal/chunker"
	"github.com/harper/docqa/internal/llm"
	"github.com/harper/docqa/internal/models"
)

// Embedder turns texts into vectors. Satisfied by *llm.Embedder.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Index persists and searches vectors. Satisfied by *index.Store.
type Index interface {
	Upsert(ctx context.Context, collection string, records []models.IndexRecord) (int, error)
	Search(ctx context.Context, collection string, queryVector []float64, limit int, minScore float64) ([]models.RetrievalResult, error)
}

// TokenStream delivers generated text incrementally: Recv until io.EOF,
// then Close.
type TokenStream interface {
	Recv() (string, error)
	Close() error
}

// Generator produces answers from augmented prompts.
type Generator interface {
	Complete(ctx context.Context, prompt models.AugmentedPrompt) (string, error)
	Stream(ctx context.Context, prompt models.AugmentedPrompt) (TokenStream, error)
}

// WrapGenerator adapts the concrete llm generation client to the Generator
// interface. Needed because llm.Generator.Stream returns its own stream type.
func WrapGenerator(g *llm.Generator) Generator {
	return generatorAdapter{g}
}

type generatorAdapter struct {
	g *llm.Generator
}

func (a generatorAdapter) Complete(ctx context.Context, prompt models.AugmentedPrompt) (string, error) {
	return a.g.Complete(ctx, prompt)
}

func (a generatorAdapter) Stream(ctx context.Context, prompt models.AugmentedPrompt) (TokenStream, error) {
	s, err := a.g.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Document is one unit of ingestion: already-extracted plain text plus the
// source identifier that chunk identity is derived from.
type Document struct {
	SourceID string
	Text     string
}

// Pipeline orchestrates ingestion and retrieval-augmented answering. All
// dependencies are passed in explicitly; Pipeline holds no configuration
// defaults of its own.
type Pipeline struct {
	chunker   *chunker.Chunker
	embedder  Embedder
	index     Index
	generator Generator
}

// New creates a Pipeline over its collaborators. generator may be nil when
// only ingestion and raw search are needed.
func New(embedder Embedder, index Index, generator Generator) *Pipeline {
	return &Pipeline{
		chunker:   chunker.New(),
		embedder:  embedder,
		index:     index,
		generator: generator,
	}
}

// IngestDocument chunks, embeds, and indexes one document. The whole
// document is embedded before anything is written, so an embedding failure
// leaves the index untouched and the upsert is a single transaction. A
// document that produces zero chunks is a successful no-op.
func (p *Pipeline) IngestDocument(ctx context.Context, collection, sourceID, text string, cfg models.ChunkingConfig) (models.IngestReport, error) {
	report := models.IngestReport{SourceDocument: sourceID}

	chunks, err := p.chunker.Split(text, sourceID, cfg)
	if err != nil {
		return report, err
	}
	if len(chunks) == 0 {
		return report, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return report, fmt.Errorf("embed %q: %w", sourceID, err)
	}

	records := make([]models.IndexRecord, len(chunks))
	for i, c := range chunks {
		records[i] = models.IndexRecord{Chunk: c, Vector: vectors[i], Collection: collection}
	}

	written, err := p.index.Upsert(ctx, collection, records)
	if err != nil {
		return report, fmt.Errorf("index %q: %w", sourceID, err)
	}

	report.ChunksWritten = written
	return report, nil
}

// IngestDocuments ingests a batch of documents, one at a time. A failing
// document is recorded and skipped; the batch continues. Cancellation is
// checked between documents, and documents not reached are reported as
// failures rather than silently dropped.
func (p *Pipeline) IngestDocuments(ctx context.Context, collection string, docs []Document, cfg models.ChunkingConfig) models.BatchIngestReport {
	var batch models.BatchIngestReport

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			for _, skipped := range docs[i:] {
				batch.Failed++
				batch.Failures = append(batch.Failures, models.DocumentFailure{
					SourceDocument: skipped.SourceID,
					Err:            err,
					Reason:         err.Error(),
				})
			}
			return batch
		}

		report, err := p.IngestDocument(ctx, collection, doc.SourceID, doc.Text, cfg)
		if err != nil {
			batch.Failed++
			batch.Failures = append(batch.Failures, models.DocumentFailure{
				SourceDocument: doc.SourceID,
				Err:            err,
				Reason:         err.Error(),
			})
			continue
		}

		batch.Succeeded++
		batch.Reports = append(batch.Reports, report)
	}

	return batch
}

// Search embeds the query and returns raw retrieval results, without
// involving the generator.
func (p *Pipeline) Search(ctx context.Context, collection, query string, topK int, minScore float64) ([]models.RetrievalResult, error) {
	vectors, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return p.index.Search(ctx, collection, vectors[0], topK, minScore)
}

// BuildPrompt assembles the augmented prompt from retrieval results. The
// context texts keep the results' order (descending score), so identical
// retrievals always produce identical prompts.
func BuildPrompt(query string, results []models.RetrievalResult) models.AugmentedPrompt {
	prompt := models.AugmentedPrompt{Query: query, Context: []string{}}
	for _, res := range results {
		prompt.Context = append(prompt.Context, res.Chunk.Text)
	}
	return prompt
}

// AnswerQuery runs the full retrieval-augmented flow: embed the query,
// search the collection, build the prompt, and generate. Zero retrieval
// hits still produce an answer, from an explicitly empty context. The
// generated text is returned unmodified.
func (p *Pipeline) AnswerQuery(ctx context.Context, collection, query string, topK int, minScore float64) (models.Answer, error) {
	results, err := p.Search(ctx, collection, query, topK, minScore)
	if err != nil {
		return models.Answer{}, err
	}

	prompt := BuildPrompt(query, results)
	text, err := p.generator.Complete(ctx, prompt)
	if err != nil {
		return models.Answer{}, err
	}

	return models.Answer{Text: text, Prompt: prompt, Results: results}, nil
}

// StreamedAnswer carries the retrieval side of a streamed query. The caller
// drains Stream with Recv until io.EOF and must Close it.
type StreamedAnswer struct {
	Prompt  models.AugmentedPrompt
	Results []models.RetrievalResult
	Stream  TokenStream
}

// AnswerQueryStream is AnswerQuery with incremental output.
func (p *Pipeline) AnswerQueryStream(ctx context.Context, collection, query string, topK int, minScore float64) (*StreamedAnswer, error) {
	results, err := p.Search(ctx, collection, query, topK, minScore)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(query, results)
	stream, err := p.generator.Stream(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &StreamedAnswer{Prompt: prompt, Results: results, Stream: stream}, nil
}

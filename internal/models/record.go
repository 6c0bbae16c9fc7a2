// ABOUTME: Index records, retrieval results, and ingest reports
// ABOUTME: IndexRecord is owned by the vector index; RetrievalResult is ephemeral per query
package models

// IndexRecord pairs a chunk with its embedding vector inside a named
// collection. The vector index is the sole writer; updates replace the
// full record, never mutate it in place.
type IndexRecord struct {
	Chunk      Chunk     `json:"chunk"`
	Vector     []float64 `json:"vector"`
	Collection string    `json:"collection"`
}

// RetrievalResult is a single ranked search hit. Rank starts at 1.
type RetrievalResult struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// AugmentedPrompt combines a user query with retrieved context texts,
// ordered by descending relevance.
type AugmentedPrompt struct {
	Context []string `json:"context"`
	Query   string   `json:"query"`
}

// Answer is the result of a retrieval-augmented query: the generator's
// output, unmodified, plus the retrieval hits that backed it.
type Answer struct {
	Text    string            `json:"text"`
	Prompt  AugmentedPrompt   `json:"prompt"`
	Results []RetrievalResult `json:"results"`
}

// IngestReport summarizes a single document's ingestion.
type IngestReport struct {
	SourceDocument string `json:"source_document"`
	ChunksWritten  int    `json:"chunks_written"`
}

// DocumentFailure records why one document in a batch could not be ingested.
type DocumentFailure struct {
	SourceDocument string `json:"source_document"`
	Err            error  `json:"-"`
	Reason         string `json:"reason"`
}

// BatchIngestReport aggregates per-document outcomes for a bulk ingestion.
// One document failing does not abort the batch.
type BatchIngestReport struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Reports   []IngestReport    `json:"reports"`
	Failures  []DocumentFailure `json:"failures,omitempty"`
}

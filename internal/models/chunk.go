// ABOUTME: Chunk represents a token window cut from a source document
// ABOUTME: Chunk identity is sourceDocument + sequenceNumber, stable across re-ingestion
package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Chunk is a bounded contiguous slice of a source document's text,
// sized for embedding. Chunks are immutable once created.
type Chunk struct {
	ID             string `json:"id"`
	SourceDocument string `json:"source_document"`
	SequenceNumber int    `json:"sequence_number"`
	Text           string `json:"text"`
	TokenCount     int    `json:"token_count"`
}

// ChunkingConfig controls the token window size and overlap used
// when splitting a document. Both values are measured in tokens.
type ChunkingConfig struct {
	TargetSize int `json:"target_size" yaml:"target_size"`
	Overlap    int `json:"overlap" yaml:"overlap"`
}

// ChunkID derives a deterministic chunk ID from the source document and
// sequence number. Re-ingesting the same document with the same chunking
// parameters produces identical IDs, which is what makes upserts idempotent.
func ChunkID(sourceDocument string, sequenceNumber int) string {
	name := fmt.Sprintf("docqa://%s#%d", sourceDocument, sequenceNumber)
	return "chunk_" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}

// ABOUTME: Error taxonomy shared across the pipeline components
// ABOUTME: Sentinels for errors.Is checks; StorageError carries operation context
package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration marks fatal configuration errors: bad chunking
	// parameters, vector dimensionality mismatches. Never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmbeddingUnavailable is surfaced after the embedding client has
	// exhausted its retry budget against the embedding service.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable is surfaced after the generation client has
	// exhausted its retry budget against the chat completion service.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrCollectionNotFound is returned by strict-mode upsert/delete on a
	// collection that does not exist. Search treats a missing collection as
	// an empty result instead.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrStorageIO marks persistence-layer failures. Matched via errors.Is;
	// the concrete error is always a *StorageError.
	ErrStorageIO = errors.New("storage I/O error")
)

// StorageError wraps a persistence failure with the operation and collection
// it happened in, so callers can decide between retry and abort.
type StorageError struct {
	Op         string
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s on collection %q: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorageIO) match any StorageError.
func (e *StorageError) Is(target error) bool { return target == ErrStorageIO }

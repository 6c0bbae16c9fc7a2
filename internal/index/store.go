// ABOUTME: SQLite-backed vector index with collection-scoped upsert, search, and delete
// ABOUTME: Writes are serialized per collection; searches never take the write lock
package index

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harper/docqa/internal/models"
)

// Options configures index behavior.
type Options struct {
	// Strict makes upsert and delete fail with ErrCollectionNotFound on a
	// missing collection instead of auto-creating (upsert) or ignoring
	// (delete) it.
	Strict bool
}

// Store is the SQLite-backed vector index. It is the sole writer and sole
// source of truth for persisted records.
type Store struct {
	db     *DB
	strict bool

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// CollectionInfo summarizes one collection for listings.
type CollectionInfo struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Records   int    `json:"records"`
}

// NewStore creates a Store over an open database.
func NewStore(db *DB, opts Options) *Store {
	return &Store{
		db:     db,
		strict: opts.Strict,
		locks:  make(map[string]*sync.Mutex),
	}
}

// collectionLock returns the write lock for a collection, creating it on
// first use. Writes to different collections proceed independently.
func (s *Store) collectionLock(collection string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[collection]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[collection] = lock
	}
	return lock
}

// collectionDimension returns the pinned dimension for a collection, or
// sql.ErrNoRows when the collection does not exist.
func (s *Store) collectionDimension(ctx context.Context, collection string) (int, error) {
	var dim int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT dimension FROM collections WHERE name = ?`, collection).Scan(&dim)
	return dim, err
}

// Upsert inserts or replaces records keyed by chunk id and returns the
// number written. All records land in one transaction, so a concurrent
// search observes either none or all of them. The collection is created
// implicitly with the first record's dimensionality unless the store is
// strict. A vector whose dimensionality differs from the collection's is a
// fatal configuration error and rejects the whole call.
func (s *Store) Upsert(ctx context.Context, collection string, records []models.IndexRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	dim, err := s.collectionDimension(ctx, collection)
	if err == sql.ErrNoRows {
		if s.strict {
			return 0, fmt.Errorf("upsert into %q: %w", collection, models.ErrCollectionNotFound)
		}
		dim = len(records[0].Vector)
		if dim == 0 {
			return 0, fmt.Errorf("%w: cannot create collection %q from an empty vector",
				models.ErrInvalidConfiguration, collection)
		}
		if _, err := s.db.conn.ExecContext(ctx,
			`INSERT INTO collections (name, dimension) VALUES (?, ?)`, collection, dim); err != nil {
			return 0, &models.StorageError{Op: "create collection", Collection: collection, Err: err}
		}
	} else if err != nil {
		return 0, &models.StorageError{Op: "upsert", Collection: collection, Err: err}
	}

	for _, rec := range records {
		if len(rec.Vector) != dim {
			return 0, fmt.Errorf("%w: vector dimension mismatch in collection %q: expected %d, got %d (chunk %s)",
				models.ErrInvalidConfiguration, collection, dim, len(rec.Vector), rec.Chunk.ID)
		}
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, &models.StorageError{Op: "upsert", Collection: collection, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO records (id, collection, source_document, sequence_number, text, token_count, vector, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(collection, id) DO UPDATE SET
				source_document = excluded.source_document,
				sequence_number = excluded.sequence_number,
				text = excluded.text,
				token_count = excluded.token_count,
				vector = excluded.vector,
				updated_at = excluded.updated_at
		`, rec.Chunk.ID, collection, rec.Chunk.SourceDocument, rec.Chunk.SequenceNumber,
			rec.Chunk.Text, rec.Chunk.TokenCount, vectorToBlob(rec.Vector), now, now)
		if err != nil {
			return 0, &models.StorageError{Op: "upsert", Collection: collection, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, &models.StorageError{Op: "upsert", Collection: collection, Err: err}
	}
	return len(records), nil
}

// Search runs a cosine similarity scan over the collection and returns
// results sorted by descending score, ties broken by ascending sequence
// number, filtered to minScore and truncated to limit. A missing collection
// is an empty result, not an error.
func (s *Store) Search(ctx context.Context, collection string, queryVector []float64, limit int, minScore float64) ([]models.RetrievalResult, error) {
	dim, err := s.collectionDimension(ctx, collection)
	if err == sql.ErrNoRows {
		return []models.RetrievalResult{}, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "search", Collection: collection, Err: err}
	}

	if len(queryVector) != dim {
		return nil, fmt.Errorf("%w: query vector dimension mismatch in collection %q: expected %d, got %d",
			models.ErrInvalidConfiguration, collection, dim, len(queryVector))
	}
	if limit <= 0 {
		return []models.RetrievalResult{}, nil
	}

	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT id, source_document, sequence_number, text, token_count, vector
		FROM records
		WHERE collection = ?
	`, collection)
	if err != nil {
		return nil, &models.StorageError{Op: "search", Collection: collection, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var results []models.RetrievalResult
	for rows.Next() {
		var (
			chunk models.Chunk
			blob  []byte
		)
		if err := rows.Scan(&chunk.ID, &chunk.SourceDocument, &chunk.SequenceNumber,
			&chunk.Text, &chunk.TokenCount, &blob); err != nil {
			return nil, &models.StorageError{Op: "search", Collection: collection, Err: err}
		}

		score := CosineSimilarity(queryVector, blobToVector(blob))
		if score < minScore {
			continue
		}
		results = append(results, models.RetrievalResult{Chunk: chunk, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "search", Collection: collection, Err: err}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.SequenceNumber < results[j].Chunk.SequenceNumber
	})

	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Rank = i + 1
	}
	if results == nil {
		results = []models.RetrievalResult{}
	}
	return results, nil
}

// Delete removes records by id. A missing collection is a no-op unless the
// store is strict.
func (s *Store) Delete(ctx context.Context, collection string, ids []string) error {
	lock := s.collectionLock(collection)
	lock.Lock()
	defer lock.Unlock()

	_, err := s.collectionDimension(ctx, collection)
	if err == sql.ErrNoRows {
		if s.strict {
			return fmt.Errorf("delete from %q: %w", collection, models.ErrCollectionNotFound)
		}
		return nil
	}
	if err != nil {
		return &models.StorageError{Op: "delete", Collection: collection, Err: err}
	}

	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, collection)
	for _, id := range ids {
		args = append(args, id)
	}

	_, err = s.db.conn.ExecContext(ctx,
		`DELETE FROM records WHERE collection = ? AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return &models.StorageError{Op: "delete", Collection: collection, Err: err}
	}
	return nil
}

// Get retrieves a single record by chunk id, or nil when absent.
func (s *Store) Get(ctx context.Context, collection, id string) (*models.IndexRecord, error) {
	var (
		rec  models.IndexRecord
		blob []byte
	)
	err := s.db.conn.QueryRowContext(ctx, `
		SELECT id, source_document, sequence_number, text, token_count, vector
		FROM records
		WHERE collection = ? AND id = ?
	`, collection, id).Scan(&rec.Chunk.ID, &rec.Chunk.SourceDocument, &rec.Chunk.SequenceNumber,
		&rec.Chunk.Text, &rec.Chunk.TokenCount, &blob)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get", Collection: collection, Err: err}
	}

	rec.Vector = blobToVector(blob)
	rec.Collection = collection
	return &rec, nil
}

// Collections lists all collections with their record counts.
func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT c.name, c.dimension, COUNT(r.id)
		FROM collections c
		LEFT JOIN records r ON r.collection = c.name
		GROUP BY c.name, c.dimension
		ORDER BY c.name
	`)
	if err != nil {
		return nil, &models.StorageError{Op: "list collections", Collection: "", Err: err}
	}
	defer func() { _ = rows.Close() }()

	infos := []CollectionInfo{}
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Dimension, &info.Records); err != nil {
			return nil, &models.StorageError{Op: "list collections", Collection: "", Err: err}
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

// Count returns the number of records in a collection. A missing
// collection counts as zero.
func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&count)
	if err != nil {
		return 0, &models.StorageError{Op: "count", Collection: collection, Err: err}
	}
	return count, nil
}

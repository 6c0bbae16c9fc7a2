// ABOUTME: Tests for the SQLite vector index
// ABOUTME: Covers upsert semantics, search ordering, strict mode, and read/write isolation
package index

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harper/docqa/internal/models"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, opts)
}

func record(source string, seq int, vector []float64) models.IndexRecord {
	return models.IndexRecord{
		Chunk: models.Chunk{
			ID:             models.ChunkID(source, seq),
			SourceDocument: source,
			SequenceNumber: seq,
			Text:           fmt.Sprintf("%s chunk %d", source, seq),
			TokenCount:     3,
		},
		Vector: vector,
	}
}

func TestUpsert_AutoCreatesCollection(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	n, err := store.Upsert(ctx, "docs", []models.IndexRecord{
		record("a", 0, []float64{1, 0, 0}),
		record("a", 1, []float64{0, 1, 0}),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Upsert() = %d, want 2", n)
	}

	infos, err := store.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections() error = %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "docs" || infos[0].Dimension != 3 || infos[0].Records != 2 {
		t.Errorf("Collections() = %+v", infos)
	}
}

func TestUpsert_IdempotentReingest(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	records := []models.IndexRecord{
		record("a", 0, []float64{1, 0, 0}),
		record("a", 1, []float64{0, 1, 0}),
	}

	for i := 0; i < 3; i++ {
		if _, err := store.Upsert(ctx, "docs", records); err != nil {
			t.Fatalf("Upsert() run %d error = %v", i, err)
		}
	}

	count, err := store.Count(ctx, "docs")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("Count() = %d after re-ingest, want 2", count)
	}
}

func TestUpsert_ReplacesExistingRecord(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	first := record("a", 0, []float64{1, 0, 0})
	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{first}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	second := first
	second.Chunk.Text = "rewritten text"
	second.Vector = []float64{0, 0, 1}
	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{second}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := store.Get(ctx, "docs", first.Chunk.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() returned nil for existing record")
	}
	if got.Chunk.Text != "rewritten text" {
		t.Errorf("Text = %q, want the second write", got.Chunk.Text)
	}
	if got.Vector[2] != 1 || got.Vector[0] != 0 {
		t.Errorf("Vector = %v, want the second write", got.Vector)
	}
}

func TestUpsert_DimensionMismatch(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{record("a", 0, []float64{1, 0, 0})}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	_, err := store.Upsert(ctx, "docs", []models.IndexRecord{record("a", 1, []float64{1, 0})})
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("Upsert() error = %v, want ErrInvalidConfiguration", err)
	}

	// The mismatching call must not have written anything.
	count, _ := store.Count(ctx, "docs")
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestUpsert_StrictMissingCollection(t *testing.T) {
	store := newTestStore(t, Options{Strict: true})

	_, err := store.Upsert(context.Background(), "nope", []models.IndexRecord{record("a", 0, []float64{1})})
	if !errors.Is(err, models.ErrCollectionNotFound) {
		t.Errorf("Upsert() error = %v, want ErrCollectionNotFound", err)
	}
}

func TestSearch_OrderingAndTieBreak(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	_, err := store.Upsert(ctx, "docs", []models.IndexRecord{
		record("a", 0, []float64{1, 0, 0}),  // identical to seq 2: tie broken by sequence
		record("a", 1, []float64{0, 1, 0}),  // orthogonal to query
		record("b", 2, []float64{2, 0, 0}),  // same direction as seq 0, larger magnitude
		record("a", 3, []float64{1, 1, 0}),  // cos = ~0.707
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := store.Search(ctx, "docs", []float64{1, 0, 0}, 10, 0.1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Search() = %d results, want 3 (orthogonal chunk filtered)", len(results))
	}

	// Scores 1.0, 1.0, 0.707: the two perfect matches tie, lower sequence first.
	wantSeq := []int{0, 2, 3}
	for i, res := range results {
		if res.Chunk.SequenceNumber != wantSeq[i] {
			t.Errorf("result[%d] sequence = %d, want %d", i, res.Chunk.SequenceNumber, wantSeq[i])
		}
		if res.Rank != i+1 {
			t.Errorf("result[%d] rank = %d, want %d", i, res.Rank, i+1)
		}
		if i > 0 && res.Score > results[i-1].Score {
			t.Error("results not sorted by descending score")
		}
	}
}

func TestSearch_LimitAndMinScore(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	var records []models.IndexRecord
	for i := 0; i < 10; i++ {
		records = append(records, record("a", i, []float64{1, float64(i) * 0.2}))
	}
	if _, err := store.Upsert(ctx, "docs", records); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	results, err := store.Search(ctx, "docs", []float64{1, 0}, 3, 0.0)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 3 {
		t.Errorf("Search() = %d results, want limit 3", len(results))
	}

	strict, err := store.Search(ctx, "docs", []float64{1, 0}, 10, 0.99)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, res := range strict {
		if res.Score < 0.99 {
			t.Errorf("result score %f below minScore", res.Score)
		}
	}
}

func TestSearch_MissingCollectionIsEmpty(t *testing.T) {
	store := newTestStore(t, Options{})

	results, err := store.Search(context.Background(), "missing", []float64{1, 0}, 5, 0)
	if err != nil {
		t.Fatalf("Search() error = %v, want empty result", err)
	}
	if len(results) != 0 {
		t.Errorf("Search() = %d results, want 0", len(results))
	}
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{record("a", 0, []float64{1, 0, 0})}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	_, err := store.Search(ctx, "docs", []float64{1, 0}, 5, 0)
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("Search() error = %v, want ErrInvalidConfiguration", err)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t, Options{})
	ctx := context.Background()

	recs := []models.IndexRecord{
		record("a", 0, []float64{1, 0}),
		record("a", 1, []float64{0, 1}),
	}
	if _, err := store.Upsert(ctx, "docs", recs); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if err := store.Delete(ctx, "docs", []string{recs[0].Chunk.ID}); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	count, _ := store.Count(ctx, "docs")
	if count != 1 {
		t.Errorf("Count() = %d after delete, want 1", count)
	}

	// Missing collection: silent no-op by default, error in strict mode.
	if err := store.Delete(ctx, "missing", []string{"x"}); err != nil {
		t.Errorf("Delete() on missing collection = %v, want nil", err)
	}

	strictStore := newTestStore(t, Options{Strict: true})
	if err := strictStore.Delete(ctx, "missing", []string{"x"}); !errors.Is(err, models.ErrCollectionNotFound) {
		t.Errorf("strict Delete() error = %v, want ErrCollectionNotFound", err)
	}
}

func TestGet_MissingRecord(t *testing.T) {
	store := newTestStore(t, Options{})

	got, err := store.Get(context.Background(), "docs", "chunk_none")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v, want nil", got)
	}
}

func TestPersistence_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	store := NewStore(db, Options{})
	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{record("a", 0, []float64{1, 0})}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer func() { _ = db2.Close() }()

	store2 := NewStore(db2, Options{})
	results, err := store2.Search(ctx, "docs", []float64{1, 0}, 5, 0)
	if err != nil {
		t.Fatalf("Search() after reopen error = %v", err)
	}
	if len(results) != 1 {
		t.Errorf("Search() after reopen = %d results, want 1", len(results))
	}
}

func TestConcurrent_UpsertAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	store := NewStore(db, Options{})
	ctx := context.Background()

	if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{record("a", 0, []float64{1, 0})}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	id := models.ChunkID("a", 0)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Writer flips the record between two full versions.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			rec := record("a", 0, []float64{1, 0})
			if i%2 == 1 {
				rec.Chunk.Text = "version two"
				rec.Vector = []float64{0, 1}
			}
			if _, err := store.Upsert(ctx, "docs", []models.IndexRecord{rec}); err != nil {
				t.Errorf("concurrent Upsert() error = %v", err)
				break
			}
		}
		close(stop)
	}()

	// Reader must only ever observe one of the two complete versions.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			got, err := store.Get(ctx, "docs", id)
			if err != nil {
				t.Errorf("concurrent Get() error = %v", err)
				return
			}
			if got == nil {
				t.Error("record vanished during concurrent upsert")
				return
			}
			v1 := got.Chunk.Text == "a chunk 0" && got.Vector[0] == 1 && got.Vector[1] == 0
			v2 := got.Chunk.Text == "version two" && got.Vector[0] == 0 && got.Vector[1] == 1
			if !v1 && !v2 {
				t.Errorf("observed torn record: text=%q vector=%v", got.Chunk.Text, got.Vector)
				return
			}
		}
	}()

	wg.Wait()
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"scaled", []float64{1, 0}, []float64{5, 0}, 1.0},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"zero vector", []float64{0, 0}, []float64{1, 1}, 0.0},
		{"length mismatch", []float64{1, 0}, []float64{1, 0, 0}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("CosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestVectorBlobRoundTrip(t *testing.T) {
	vec := []float64{0.25, -1.5, 3.14159, 0}
	got := blobToVector(vectorToBlob(vec))
	if len(got) != len(vec) {
		t.Fatalf("round trip length = %d, want %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("round trip [%d] = %f, want %f", i, got[i], vec[i])
		}
	}
}

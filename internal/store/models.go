package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vaultsearch/internal/content"
)

// UpsertBatchSize is the maximum number of records written per upsert batch.
// Larger replacements are split by the store, mirroring the batch bound of
// managed vector services.
const UpsertBatchSize = 100

// ErrEmptyIndex is returned by Query when no generation has been published.
var ErrEmptyIndex = errors.New("search index is empty")

// Record is one chunk ready for persistence: text, display metadata, and its
// embedding vector.
type Record struct {
	DocumentID string       `json:"documentId"`
	Type       content.Type `json:"contentType"`
	Title      string       `json:"title"`
	Ordinal    int          `json:"ordinal"`
	Text       string       `json:"text"`
	Snippet    string       `json:"snippet"`
	Embedding  []float32    `json:"embedding"`
}

// Hit is one ranked chunk returned from a similarity query.
type Hit struct {
	DocumentID string
	Type       content.Type
	Title      string
	Ordinal    int
	Text       string
	Snippet    string
	Score      float64
}

// Status describes the currently published index generation.
type Status struct {
	Generation string
	IndexedAt  time.Time
	Documents  int
	Chunks     int
}

// Store persists chunk embeddings and answers nearest-neighbor queries.
// Replace swaps in a whole new generation atomically: readers see either the
// previous generation or the new one, never a mix.
type Store interface {
	// Replace writes records as a new generation and publishes it,
	// returning the new generation id. An empty record set publishes an
	// empty index.
	Replace(ctx context.Context, records []Record) (string, error)
	// Query returns up to topK hits ranked by descending similarity to
	// vector. topK <= 0 means no bound. A non-empty filter restricts hits
	// to that content type.
	Query(ctx context.Context, vector []float32, topK int, filter content.Type) ([]Hit, error)
	// Status reports the published generation and its size.
	Status(ctx context.Context) (Status, error)
	// Close releases the underlying database.
	Close() error
}

// validateRecords rejects malformed metadata before it reaches the index.
// Within one generation there is at most one record per (document, ordinal).
func validateRecords(records []Record, dimension int) error {
	seen := make(map[string]struct{}, len(records))
	for i, r := range records {
		if r.DocumentID == "" {
			return fmt.Errorf("record %d: missing document id", i)
		}
		if !content.ValidType(r.Type) {
			return fmt.Errorf("record %d (%s): unknown content type %q", i, r.DocumentID, r.Type)
		}
		if r.Title == "" {
			return fmt.Errorf("record %d (%s): missing title", i, r.DocumentID)
		}
		if r.Ordinal < 0 {
			return fmt.Errorf("record %d (%s): negative ordinal", i, r.DocumentID)
		}
		if r.Text == "" {
			return fmt.Errorf("record %d (%s): empty text", i, r.DocumentID)
		}
		if len(r.Embedding) != dimension {
			return fmt.Errorf("record %d (%s): embedding dimension %d, want %d",
				i, r.DocumentID, len(r.Embedding), dimension)
		}
		key := fmt.Sprintf("%s\x00%d", r.DocumentID, r.Ordinal)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("record %d: duplicate (document, ordinal) pair %s/%d",
				i, r.DocumentID, r.Ordinal)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// countDocuments returns the number of distinct document ids in records.
func countDocuments(records []Record) int {
	docs := make(map[string]struct{}, len(records))
	for _, r := range records {
		docs[r.DocumentID] = struct{}{}
	}
	return len(docs)
}

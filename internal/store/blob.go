package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vaultsearch/internal/content"
)

const (
	blobKeyPrefix  = "index:"
	blobPointerKey = "index:current"
)

// BlobStore is the brute-force backend: the entire index generation is
// serialized as one JSON blob in a key/value table. Queries deserialize the
// published blob and full-scan it with cosine similarity.
//
// Publication is write-new-key-then-swap-pointer: the blob is written under
// its generation key first, then the pointer key is updated, so a reader
// never observes a half-written generation.
type BlobStore struct {
	db        *sql.DB
	dimension int
}

// storedIndex is the serialized blob layout.
type storedIndex struct {
	Generation string    `json:"generation"`
	IndexedAt  time.Time `json:"indexedAt"`
	Records    []Record  `json:"records"`
}

// OpenBlob creates or opens the brute-force store at dbPath.
func OpenBlob(dbPath string, dimension int) (*BlobStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(kvDDL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &BlobStore{db: db, dimension: dimension}, nil
}

func (s *BlobStore) Replace(ctx context.Context, records []Record) (string, error) {
	if err := validateRecords(records, s.dimension); err != nil {
		return "", fmt.Errorf("validate records: %w", err)
	}

	gen := uuid.NewString()
	blob, err := json.Marshal(storedIndex{
		Generation: gen,
		IndexedAt:  time.Now().UTC(),
		Records:    records,
	})
	if err != nil {
		return "", fmt.Errorf("marshal index blob: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	// New generation first, pointer swap second, stale generations last.
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?)", blobKeyPrefix+gen, blob); err != nil {
		return "", fmt.Errorf("write generation blob: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO kv (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		blobPointerKey, []byte(gen)); err != nil {
		return "", fmt.Errorf("swap generation pointer: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM kv WHERE key LIKE ? AND key != ? AND key != ?",
		blobKeyPrefix+"%", blobKeyPrefix+gen, blobPointerKey); err != nil {
		return "", fmt.Errorf("drop stale generations: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("publish generation: %w", err)
	}
	return gen, nil
}

func (s *BlobStore) Query(ctx context.Context, vector []float32, topK int, filter content.Type) ([]Hit, error) {
	idx, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(idx.Records))
	for _, r := range idx.Records {
		if filter != content.TypeAny && r.Type != filter {
			continue
		}
		hits = append(hits, Hit{
			DocumentID: r.DocumentID,
			Type:       r.Type,
			Title:      r.Title,
			Ordinal:    r.Ordinal,
			Text:       r.Text,
			Snippet:    r.Snippet,
			Score:      Cosine(vector, r.Embedding),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *BlobStore) Status(ctx context.Context) (Status, error) {
	idx, err := s.load(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Generation: idx.Generation,
		IndexedAt:  idx.IndexedAt,
		Documents:  countDocuments(idx.Records),
		Chunks:     len(idx.Records),
	}, nil
}

func (s *BlobStore) Close() error { return s.db.Close() }

// load reads the published generation via the pointer key.
func (s *BlobStore) load(ctx context.Context) (*storedIndex, error) {
	var gen []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = ?", blobPointerKey).Scan(&gen)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyIndex
	}
	if err != nil {
		return nil, fmt.Errorf("read generation pointer: %w", err)
	}

	var blob []byte
	err = s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE key = ?", blobKeyPrefix+string(gen)).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrEmptyIndex
	}
	if err != nil {
		return nil, fmt.Errorf("read generation blob: %w", err)
	}

	var idx storedIndex
	if err := json.Unmarshal(blob, &idx); err != nil {
		return nil, fmt.Errorf("unmarshal index blob: %w", err)
	}
	return &idx, nil
}

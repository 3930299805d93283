package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"vaultsearch/internal/content"
)

func init() {
	sqlite_vec.Auto()
}

const (
	metaGeneration = "generation"
	metaIndexedAt  = "indexed_at"
)

// VecStore is the ANN backend: chunk vectors live in a sqlite-vec virtual
// table with cosine distance, topK and the content-type filter pushed down
// to the index instead of a full scan.
type VecStore struct {
	db        *sql.DB
	dimension int
}

// OpenVec creates or opens the ANN store at dbPath.
func OpenVec(dbPath string, dimension int) (*VecStore, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("invalid embedding dimension %d", dimension)
	}
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec(vecDDL(dimension)); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &VecStore{db: db, dimension: dimension}, nil
}

// Replace swaps in the new generation inside one transaction, so readers on
// other connections see either the old rows or the new ones.
func (s *VecStore) Replace(ctx context.Context, records []Record) (string, error) {
	if err := validateRecords(records, s.dimension); err != nil {
		return "", fmt.Errorf("validate records: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM vec_chunks"); err != nil {
		return "", fmt.Errorf("clear vectors: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return "", fmt.Errorf("clear chunks: %w", err)
	}

	for start := 0; start < len(records); start += UpsertBatchSize {
		end := min(start+UpsertBatchSize, len(records))
		if err := upsertBatch(ctx, tx, records[start:end]); err != nil {
			return "", err
		}
	}

	gen := uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339)
	for key, value := range map[string]string{metaGeneration: gen, metaIndexedAt: now} {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value); err != nil {
			return "", fmt.Errorf("set meta %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("publish generation: %w", err)
	}
	return gen, nil
}

func upsertBatch(ctx context.Context, tx *sql.Tx, batch []Record) error {
	chunkStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks (document_id, content_type, title, ordinal, content, snippet) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer chunkStmt.Close()

	vecStmt, err := tx.PrepareContext(ctx,
		"INSERT INTO vec_chunks (chunk_id, embedding, content_type) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer vecStmt.Close()

	for _, r := range batch {
		res, err := chunkStmt.ExecContext(ctx, r.DocumentID, string(r.Type), r.Title, r.Ordinal, r.Text, r.Snippet)
		if err != nil {
			return fmt.Errorf("insert chunk %s/%d: %w", r.DocumentID, r.Ordinal, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		blob, err := sqlite_vec.SerializeFloat32(r.Embedding)
		if err != nil {
			return fmt.Errorf("serialize embedding %s/%d: %w", r.DocumentID, r.Ordinal, err)
		}
		if _, err := vecStmt.ExecContext(ctx, id, blob, string(r.Type)); err != nil {
			return fmt.Errorf("insert embedding %s/%d: %w", r.DocumentID, r.Ordinal, err)
		}
	}
	return nil
}

func (s *VecStore) Query(ctx context.Context, vector []float32, topK int, filter content.Type) ([]Hit, error) {
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query vector dimension %d, want %d", len(vector), s.dimension)
	}
	if topK <= 0 {
		topK = 100
	}

	blob, err := sqlite_vec.SerializeFloat32(vector)
	if err != nil {
		return nil, fmt.Errorf("serialize query embedding: %w", err)
	}

	query := `
		SELECT c.document_id, c.content_type, c.title, c.ordinal, c.content, c.snippet, v.distance
		FROM vec_chunks v
		JOIN chunks c ON c.id = v.chunk_id
		WHERE v.embedding MATCH ?`
	args := []any{blob}
	if filter != content.TypeAny {
		query += " AND v.content_type = ?"
		args = append(args, string(filter))
	}
	query += " AND v.k = ? ORDER BY v.distance"
	args = append(args, topK)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var h Hit
		var ctype string
		var distance float64
		if err := rows.Scan(&h.DocumentID, &ctype, &h.Title, &h.Ordinal, &h.Text, &h.Snippet, &distance); err != nil {
			return nil, err
		}
		h.Type = content.Type(ctype)
		// Cosine distance is 1 - similarity.
		h.Score = 1 - distance
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Distinguish "nothing matched" from "nothing published yet".
	if len(hits) == 0 {
		gen, err := s.getMeta(ctx, metaGeneration)
		if err != nil {
			return nil, err
		}
		if gen == "" {
			return nil, ErrEmptyIndex
		}
	}
	return hits, nil
}

func (s *VecStore) Status(ctx context.Context) (Status, error) {
	gen, err := s.getMeta(ctx, metaGeneration)
	if err != nil {
		return Status{}, err
	}
	if gen == "" {
		return Status{}, ErrEmptyIndex
	}

	var st Status
	st.Generation = gen
	if raw, err := s.getMeta(ctx, metaIndexedAt); err == nil && raw != "" {
		st.IndexedAt, _ = time.Parse(time.RFC3339, raw)
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT document_id), COUNT(*) FROM chunks").Scan(&st.Documents, &st.Chunks); err != nil {
		return Status{}, err
	}
	return st, nil
}

func (s *VecStore) Close() error { return s.db.Close() }

func (s *VecStore) getMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

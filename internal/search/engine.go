package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"vaultsearch/internal/chunker"
	"vaultsearch/internal/content"
	"vaultsearch/internal/embedder"
	"vaultsearch/internal/store"
)

// DefaultLimit is used when a query does not specify one.
const DefaultLimit = 5

// Overfetch bounds: multiple chunks of one document can occupy the top of
// the ranked hit list, so the store is asked for generously more hits than
// the caller's limit before document-level dedup.
const (
	overfetchFactor = 10
	minOverfetch    = 50
)

// Query is one search request.
type Query struct {
	Text string
	// Limit caps the number of returned documents; <= 0 uses DefaultLimit.
	Limit int
	// Type restricts results to one content type; TypeAny matches all.
	Type content.Type
	// MinScore drops weak matches after dedup; 0 keeps everything.
	MinScore float64
}

// Result is one ranked document-level match.
type Result struct {
	DocumentID string       `json:"documentId"`
	Type       content.Type `json:"contentType"`
	Title      string       `json:"title"`
	Snippet    string       `json:"snippet"`
	Score      float64      `json:"score"`
}

// Engine orchestrates embedding the query, querying the index store,
// deduplicating per document, and ranking results.
type Engine struct {
	store    store.Store
	embedder embedder.Embedder
	cache    *Cache
	log      *slog.Logger
}

// NewEngine creates a query engine. cache may be nil to disable memoization.
func NewEngine(st store.Store, emb embedder.Embedder, cache *Cache) *Engine {
	return &Engine{
		store:    st,
		embedder: emb,
		cache:    cache,
		log:      slog.Default().With("component", "search"),
	}
}

// Search returns up to q.Limit distinct documents ranked by descending
// similarity, each represented by its best-scoring chunk. Empty query text
// returns an empty list without touching the embedder. An unreachable store
// or embedder surfaces as an error, never as a silent empty result.
func (e *Engine) Search(ctx context.Context, q Query) ([]Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return []Result{}, nil
	}
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	key := Key(text, q.Type)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			return clampResults(cached, q.MinScore, limit), nil
		}
	}

	vector, err := e.embedder.EmbedOne(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	topK := max(limit*overfetchFactor, minOverfetch)
	hits, err := e.store.Query(ctx, vector, topK, q.Type)
	if err != nil {
		if errors.Is(err, store.ErrEmptyIndex) {
			return []Result{}, nil
		}
		return nil, fmt.Errorf("search unavailable: %w", err)
	}

	results := dedupByDocument(hits)
	if e.cache != nil {
		e.cache.Put(key, results, e.cache.TTLFor(q.Type))
	}
	return clampResults(results, q.MinScore, limit), nil
}

// dedupByDocument scans a score-descending hit list and keeps the first
// (best-scoring) hit per document.
func dedupByDocument(hits []store.Hit) []Result {
	seen := make(map[string]struct{}, len(hits))
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		if _, dup := seen[h.DocumentID]; dup {
			continue
		}
		seen[h.DocumentID] = struct{}{}

		snippet := h.Snippet
		if snippet == "" {
			snippet = chunker.Snippet(h.Text)
		}
		results = append(results, Result{
			DocumentID: h.DocumentID,
			Type:       h.Type,
			Title:      h.Title,
			Snippet:    snippet,
			Score:      h.Score,
		})
	}
	return results
}

// clampResults applies the score threshold, then truncates to limit. The
// threshold runs after dedup so a strong duplicate chunk can never displace
// a distinct document.
func clampResults(results []Result, minScore float64, limit int) []Result {
	out := make([]Result, 0, limit)
	for _, r := range results {
		if minScore > 0 && r.Score < minScore {
			continue
		}
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out
}

package reindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"vaultsearch/internal/chunker"
	"vaultsearch/internal/content"
	"vaultsearch/internal/embedder"
	"vaultsearch/internal/store"
)

// ErrReindexRunning is returned when a reindex is triggered while another is
// in flight. Runs are serialized rather than raced: the caller retries later.
var ErrReindexRunning = errors.New("reindex already in progress")

const (
	defaultWorkers = 4

	// defaultEmbedRate throttles embedding calls during the reindex burst
	// so the embedding service is never overwhelmed.
	defaultEmbedRate = 8
)

// Config tunes the orchestrator.
type Config struct {
	// Workers bounds per-document concurrency; <= 0 uses a small default.
	Workers int
	// MaxChunkLen is the chunker's soft bound; <= 0 uses the chunker default.
	MaxChunkLen int
	// EmbedRate caps embedding calls per second; <= 0 uses a default.
	EmbedRate float64
}

// Stats reports the outcome of one reindex run.
type Stats struct {
	Documents  int
	Indexed    int
	Skipped    int
	Chunks     int
	Generation string
	Took       time.Duration
}

// Orchestrator walks the full document corpus, re-chunks and re-embeds
// everything, and replaces the index store contents wholesale. Queries keep
// reading the previous generation until the replace lands.
type Orchestrator struct {
	sources  []content.Source
	embedder embedder.Embedder
	store    store.Store
	cfg      Config
	limiter  *rate.Limiter
	log      *slog.Logger

	mu sync.Mutex // serializes Run
}

// New creates a reindex orchestrator over the given sources.
func New(sources []content.Source, emb embedder.Embedder, st store.Store, cfg Config) *Orchestrator {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MaxChunkLen <= 0 {
		cfg.MaxChunkLen = chunker.DefaultMaxLen
	}
	embedRate := cfg.EmbedRate
	if embedRate <= 0 {
		embedRate = defaultEmbedRate
	}
	return &Orchestrator{
		sources:  sources,
		embedder: emb,
		store:    st,
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(embedRate), 1),
		log:      slog.Default().With("component", "reindex"),
	}
}

// docResult is one document's contribution to the new generation.
type docResult struct {
	records []store.Record
	skipped bool
	failed  bool
}

// Run executes a full reindex. A source failure aborts the run with the
// previous generation untouched. A document whose embedding fails is dropped
// whole and the run continues; the run only fails outright when embedding
// made no progress at all.
func (o *Orchestrator) Run(ctx context.Context) (*Stats, error) {
	if !o.mu.TryLock() {
		return nil, ErrReindexRunning
	}
	defer o.mu.Unlock()

	start := time.Now()

	docs, err := o.collect(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Documents: len(docs)}

	// Per-document worker pool. Each worker assembles its document's
	// records in full, so chunk ordinals stay contiguous from 0 no matter
	// how documents interleave.
	docCh := make(chan content.Document)
	resCh := make(chan docResult)

	var wg sync.WaitGroup
	for range o.cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range docCh {
				resCh <- o.indexDocument(ctx, doc)
			}
		}()
	}
	go func() {
		defer close(docCh)
		for _, doc := range docs {
			select {
			case docCh <- doc:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(resCh)
	}()

	var records []store.Record
	failures := 0
	for res := range resCh {
		switch {
		case res.failed:
			failures++
			stats.Skipped++
		case res.skipped:
			stats.Skipped++
		default:
			records = append(records, res.records...)
			stats.Indexed++
			stats.Chunks += len(res.records)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(records) == 0 && failures > 0 {
		return stats, fmt.Errorf("reindex made no progress: all %d embeddable documents failed", failures)
	}

	gen, err := o.store.Replace(ctx, records)
	if err != nil {
		return stats, fmt.Errorf("replace index: %w", err)
	}
	stats.Generation = gen
	stats.Took = time.Since(start)

	o.log.Info("reindex complete",
		"generation", gen,
		"documents", stats.Documents,
		"indexed", stats.Indexed,
		"skipped", stats.Skipped,
		"chunks", stats.Chunks,
		"took", stats.Took.Round(time.Millisecond))
	return stats, nil
}

// collect materializes the full corpus. Any source failure aborts the run.
func (o *Orchestrator) collect(ctx context.Context) ([]content.Document, error) {
	var docs []content.Document
	for _, src := range o.sources {
		srcDocs, err := src.Documents(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect %s documents: %w", src.Name(), err)
		}
		for _, d := range srcDocs {
			if err := d.Validate(); err != nil {
				o.log.Warn("skipping invalid document", "source", src.Name(), "error", err)
				continue
			}
			docs = append(docs, d)
		}
	}
	return docs, nil
}

// indexDocument chunks and embeds one document. All-or-nothing: an embedding
// failure drops the whole document from the new generation.
func (o *Orchestrator) indexDocument(ctx context.Context, doc content.Document) docResult {
	chunks := chunker.Chunk(doc.Body, o.cfg.MaxChunkLen)
	if len(chunks) == 0 {
		return docResult{skipped: true}
	}

	if err := o.limiter.Wait(ctx); err != nil {
		return docResult{failed: true}
	}
	embeddings, err := o.embedder.Embed(ctx, chunks)
	if err != nil {
		o.log.Warn("dropping document: embedding failed", "document", doc.ID, "error", err)
		return docResult{failed: true}
	}

	records := make([]store.Record, len(chunks))
	for i, text := range chunks {
		records[i] = store.Record{
			DocumentID: doc.ID,
			Type:       doc.Type,
			Title:      doc.Title,
			Ordinal:    i,
			Text:       text,
			Snippet:    chunker.Snippet(text),
			Embedding:  embeddings[i],
		}
	}
	return docResult{records: records}
}

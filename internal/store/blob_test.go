package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultsearch/internal/content"
)

const testDim = 3

func openTestBlob(t *testing.T) *BlobStore {
	t.Helper()
	s, err := OpenBlob(filepath.Join(t.TempDir(), "index.db"), testDim)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func rec(docID string, ctype content.Type, ordinal int, emb []float32) Record {
	return Record{
		DocumentID: docID,
		Type:       ctype,
		Title:      "Title of " + docID,
		Ordinal:    ordinal,
		Text:       "chunk text for " + docID,
		Snippet:    "chunk text for " + docID,
		Embedding:  emb,
	}
}

func TestBlobQueryEmptyIndex(t *testing.T) {
	s := openTestBlob(t)
	_, err := s.Query(context.Background(), []float32{1, 0, 0}, 5, content.TypeAny)
	assert.ErrorIs(t, err, ErrEmptyIndex)
}

func TestBlobReplaceAndQuery(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	gen, err := s.Replace(ctx, []Record{
		rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0}),
		rec("note:b.md", content.TypeNote, 0, []float32{0, 1, 0}),
		rec("technology:go", content.TypeTechnology, 0, []float32{0.9, 0.1, 0}),
	})
	require.NoError(t, err)
	require.NotEmpty(t, gen)

	hits, err := s.Query(ctx, []float32{1, 0, 0}, 0, content.TypeAny)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Descending score order, exact match first.
	assert.Equal(t, "note:a.md", hits[0].DocumentID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i].Score, hits[i-1].Score)
	}
}

func TestBlobQueryTopK(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, []Record{
		rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0}),
		rec("note:b.md", content.TypeNote, 0, []float32{0, 1, 0}),
		rec("note:c.md", content.TypeNote, 0, []float32{0, 0, 1}),
	})
	require.NoError(t, err)

	hits, err := s.Query(ctx, []float32{1, 1, 1}, 2, content.TypeAny)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestBlobQueryFilter(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, []Record{
		rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0}),
		rec("technology:go", content.TypeTechnology, 0, []float32{1, 0, 0}),
		rec("project:vault", content.TypeProject, 0, []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	hits, err := s.Query(ctx, []float32{1, 0, 0}, 0, content.TypeTechnology)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "technology:go", hits[0].DocumentID)
}

func TestBlobReplaceSwapsGeneration(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	gen1, err := s.Replace(ctx, []Record{rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0})})
	require.NoError(t, err)
	gen2, err := s.Replace(ctx, []Record{rec("note:b.md", content.TypeNote, 0, []float32{0, 1, 0})})
	require.NoError(t, err)
	assert.NotEqual(t, gen1, gen2)

	// Only the new generation is visible.
	hits, err := s.Query(ctx, []float32{1, 1, 1}, 0, content.TypeAny)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "note:b.md", hits[0].DocumentID)

	st, err := s.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, gen2, st.Generation)
	assert.Equal(t, 1, st.Documents)
	assert.Equal(t, 1, st.Chunks)
	assert.False(t, st.IndexedAt.IsZero())
}

func TestBlobReplaceValidates(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	cases := map[string]Record{
		"missing id":       rec("", content.TypeNote, 0, []float32{1, 0, 0}),
		"unknown type":     rec("note:a.md", content.Type("weird"), 0, []float32{1, 0, 0}),
		"bad dimension":    rec("note:a.md", content.TypeNote, 0, []float32{1, 0}),
		"negative ordinal": rec("note:a.md", content.TypeNote, -1, []float32{1, 0, 0}),
	}
	for name, r := range cases {
		_, err := s.Replace(ctx, []Record{r})
		assert.Error(t, err, name)
	}

	// Duplicate (document, ordinal) within a generation.
	_, err := s.Replace(ctx, []Record{
		rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0}),
		rec("note:a.md", content.TypeNote, 0, []float32{0, 1, 0}),
	})
	assert.Error(t, err)
}

func TestBlobZeroVectorRecordDoesNotPoisonQuery(t *testing.T) {
	s := openTestBlob(t)
	ctx := context.Background()

	_, err := s.Replace(ctx, []Record{
		rec("note:zero.md", content.TypeNote, 0, []float32{0, 0, 0}),
		rec("note:a.md", content.TypeNote, 0, []float32{1, 0, 0}),
	})
	require.NoError(t, err)

	hits, err := s.Query(ctx, []float32{1, 0, 0}, 0, content.TypeAny)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "note:a.md", hits[0].DocumentID)
	assert.Equal(t, 0.0, hits[1].Score)
}

package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmptyBody(t *testing.T) {
	assert.Empty(t, Chunk("", DefaultMaxLen))
	assert.Empty(t, Chunk("\n\n\n\n", DefaultMaxLen))
}

func TestChunkDropsShortParagraphs(t *testing.T) {
	body := "tiny\n\nAlso short.\n\nThis paragraph is comfortably over the length floor."
	chunks := Chunk(body, DefaultMaxLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, "This paragraph is comfortably over the length floor.", chunks[0])
	assert.NotContains(t, chunks[0], "tiny")
}

func TestChunkAccumulatesUntilMaxLen(t *testing.T) {
	para := strings.Repeat("a", 100)
	body := strings.Join([]string{para, para, para, para, para, para, para}, "\n\n")
	chunks := Chunk(body, 512)

	// 100-byte paragraphs plus separators: roughly 5 per chunk before the
	// buffer passes 512.
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.NotEmpty(t, c)
	}
}

func TestChunkOversizedParagraphStaysWhole(t *testing.T) {
	// A 30-char paragraph followed by a 600-char paragraph
	// with maxLen 512 produces exactly two chunks.
	small := strings.Repeat("x", 30)
	large := strings.Repeat("y", 600)
	chunks := Chunk(small+"\n\n"+large, 512)

	require.Len(t, chunks, 2)
	assert.Equal(t, small, chunks[0])
	assert.Equal(t, large, chunks[1])
}

func TestChunkIdempotent(t *testing.T) {
	body := "First paragraph with enough length to pass the floor.\n\n" +
		"Second paragraph, also clearly long enough to be kept here.\n\n" +
		"Third paragraph rounding out the document with more prose."
	first := Chunk(body, 128)
	second := Chunk(body, 128)
	assert.Equal(t, first, second)
}

func TestChunkCoverage(t *testing.T) {
	paras := []string{
		"Alpha paragraph that is long enough to keep around.",
		"Beta paragraph, similarly long enough for the chunker.",
		"Gamma paragraph closes things out with sufficient length.",
	}
	chunks := Chunk(strings.Join(paras, "\n\n"), 64)

	// Every kept paragraph appears, in order, in exactly one chunk.
	chunkIdx := 0
	for _, p := range paras {
		found := -1
		for i := chunkIdx; i < len(chunks); i++ {
			if strings.Contains(chunks[i], p) {
				found = i
				break
			}
		}
		require.GreaterOrEqual(t, found, chunkIdx, "paragraph %q missing or out of order", p)
		chunkIdx = found

		count := 0
		for _, c := range chunks {
			count += strings.Count(c, p)
		}
		assert.Equal(t, 1, count, "paragraph %q should appear exactly once", p)
	}
}

func TestSnippet(t *testing.T) {
	short := "short text"
	assert.Equal(t, short, Snippet(short))

	long := strings.Repeat("é", 300)
	s := Snippet(long)
	assert.Equal(t, SnippetLen, len([]rune(s)))
}

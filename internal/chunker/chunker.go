package chunker

import (
	"regexp"
	"strings"
)

const (
	// DefaultMaxLen is the soft upper bound on chunk length in bytes.
	DefaultMaxLen = 512

	// minParagraphLen drops trivially short paragraphs (headings alone,
	// horizontal rules, stray links) before chunking.
	minParagraphLen = 20

	// SnippetLen bounds the display snippet derived from a chunk.
	SnippetLen = 200
)

var paragraphSplit = regexp.MustCompile(`\n\n+`)

// Chunk splits body into paragraph-aligned chunks of roughly maxLen bytes.
// Paragraphs shorter than the minimum length are dropped. Paragraphs are
// accumulated greedily: when appending the next paragraph would push a
// non-empty buffer past maxLen, the buffer is flushed and the paragraph
// starts a new one. A single paragraph longer than maxLen becomes its own
// oversized chunk rather than being split mid-sentence.
//
// A body with no paragraph over the length floor yields an empty slice; the
// caller should skip the document entirely.
func Chunk(body string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	var paragraphs []string
	for _, p := range paragraphSplit.Split(body, -1) {
		if len(strings.TrimSpace(p)) >= minParagraphLen {
			paragraphs = append(paragraphs, p)
		}
	}

	var chunks []string
	var buf strings.Builder
	for _, para := range paragraphs {
		if buf.Len() > 0 && buf.Len()+len(para) > maxLen {
			chunks = append(chunks, strings.TrimSpace(buf.String()))
			buf.Reset()
		}
		buf.WriteString(para)
		buf.WriteString("\n\n")
	}
	if strings.TrimSpace(buf.String()) != "" {
		chunks = append(chunks, strings.TrimSpace(buf.String()))
	}
	return chunks
}

// Snippet truncates a chunk's text for display. Truncation is rune-safe so a
// multibyte character is never split.
func Snippet(text string) string {
	if len(text) <= SnippetLen {
		return text
	}
	runes := []rune(text)
	if len(runes) <= SnippetLen {
		return text
	}
	return string(runes[:SnippetLen])
}

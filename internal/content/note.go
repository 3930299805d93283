package content

import (
	"path"
	"strings"
)

// skipPrefixes are vault directories that never hold publishable notes.
var skipPrefixes = []string{"Templates/", "Archive/"}

// skipFiles are individual vault files excluded from indexing.
var skipFiles = map[string]bool{"CLAUDE.md": true}

// indexableNote reports whether a vault-relative path should be indexed.
// publicOnly restricts the walk to the Public/ subtree.
func indexableNote(relPath string, publicOnly bool) bool {
	if !strings.HasSuffix(relPath, ".md") {
		return false
	}
	if skipFiles[relPath] {
		return false
	}
	for _, p := range skipPrefixes {
		if strings.HasPrefix(relPath, p) {
			return false
		}
	}
	if publicOnly && !strings.HasPrefix(relPath, "Public/") {
		return false
	}
	return true
}

// noteDocument builds a note Document from a vault-relative path and raw
// markdown. Frontmatter is stripped; the title comes from the first H1 or
// falls back to the filename.
func noteDocument(relPath, raw string) Document {
	body := stripFrontmatter(raw)
	title := firstHeading(body)
	if title == "" {
		title = strings.TrimSuffix(path.Base(relPath), ".md")
	}
	return Document{
		ID:    NoteID(relPath),
		Type:  TypeNote,
		Title: title,
		Body:  body,
	}
}

// stripFrontmatter removes a leading YAML frontmatter block delimited by
// "---" lines, if present.
func stripFrontmatter(raw string) string {
	if !strings.HasPrefix(raw, "---\n") {
		return raw
	}
	rest := raw[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return raw
	}
	after := rest[end+len("\n---"):]
	if nl := strings.IndexByte(after, '\n'); nl >= 0 {
		after = after[nl+1:]
	} else {
		after = ""
	}
	return strings.TrimLeft(after, "\n")
}

// firstHeading returns the text of the first H1 in the markdown, or "".
func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

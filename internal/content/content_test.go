package content

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidType(t *testing.T) {
	assert.True(t, ValidType(TypeNote))
	assert.True(t, ValidType(TypeProject))
	assert.True(t, ValidType(TypeTechnology))
	assert.False(t, ValidType(TypeAny))
	assert.False(t, ValidType(Type("blog")))
}

func TestDocumentValidate(t *testing.T) {
	ok := Document{ID: "note:a.md", Type: TypeNote, Title: "A"}
	assert.NoError(t, ok.Validate())

	assert.Error(t, Document{Type: TypeNote, Title: "A"}.Validate())
	assert.Error(t, Document{ID: "x", Type: Type("weird"), Title: "A"}.Validate())
	assert.Error(t, Document{ID: "x", Type: TypeNote}.Validate())
}

func TestIndexableNote(t *testing.T) {
	assert.True(t, indexableNote("Ideas/thing.md", false))
	assert.False(t, indexableNote("Ideas/thing.txt", false))
	assert.False(t, indexableNote("Templates/daily.md", false))
	assert.False(t, indexableNote("Archive/old.md", false))
	assert.False(t, indexableNote("CLAUDE.md", false))

	assert.True(t, indexableNote("Public/post.md", true))
	assert.False(t, indexableNote("Ideas/thing.md", true))
}

func TestNoteDocumentTitleFromHeading(t *testing.T) {
	doc := noteDocument("Ideas/k8s.md", "# Kubernetes Notes\n\nSome prose here.")
	assert.Equal(t, "note:Ideas/k8s.md", doc.ID)
	assert.Equal(t, TypeNote, doc.Type)
	assert.Equal(t, "Kubernetes Notes", doc.Title)
}

func TestNoteDocumentTitleFromFilename(t *testing.T) {
	doc := noteDocument("Ideas/untitled-thoughts.md", "Just prose, no heading.")
	assert.Equal(t, "untitled-thoughts", doc.Title)
}

func TestStripFrontmatter(t *testing.T) {
	raw := "---\ntags: [k8s]\ndraft: false\n---\n\n# Title\n\nBody text."
	body := stripFrontmatter(raw)
	assert.NotContains(t, body, "tags:")
	assert.Contains(t, body, "# Title")

	// No frontmatter passes through untouched.
	plain := "# Title\n\nBody."
	assert.Equal(t, plain, stripFrontmatter(plain))
}

func TestStripFrontmatterDegenerateBodies(t *testing.T) {
	// Bodies shorter than a delimiter line must pass through, not panic.
	for _, raw := range []string{"", "-", "--", "---", "---x", "---\n"} {
		assert.NotPanics(t, func() { stripFrontmatter(raw) }, "body %q", raw)
	}
	assert.Equal(t, "---", stripFrontmatter("---"))
	assert.Equal(t, "--- not a delimiter", stripFrontmatter("--- not a delimiter"))

	// An unterminated opening delimiter keeps the body intact.
	assert.Equal(t, "---\nno closing line", stripFrontmatter("---\nno closing line"))
}

func TestStaticSourceSynthesizesBodies(t *testing.T) {
	src := &StaticSource{
		Projects: []Project{{
			Slug:         "vault",
			Title:        "Vault",
			Description:  "Personal knowledge base.",
			Technologies: []string{"Go", "SQLite"},
		}},
		Technologies: []Technology{{
			Slug:        "go",
			Name:        "Go",
			Category:    "language",
			Description: "Compiled, concurrent, boring in the good way.",
		}},
	}

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	project := docs[0]
	assert.Equal(t, "project:vault", project.ID)
	assert.Equal(t, TypeProject, project.Type)
	assert.Contains(t, project.Body, "Vault: Personal knowledge base.")
	assert.Contains(t, project.Body, "Technologies: Go, SQLite.")

	tech := docs[1]
	assert.Equal(t, "technology:go", tech.ID)
	assert.Equal(t, "Go: Compiled, concurrent, boring in the good way. Category: language", tech.Body)
}

func TestLoadStaticMissingFile(t *testing.T) {
	src, err := LoadStatic(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestVaultSourceWalk(t *testing.T) {
	root := t.TempDir()
	write := func(rel, body string) {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("Ideas/k8s.md", "# Kubernetes Notes\n\nSome cluster prose.")
	write("Public/post.md", "# Published\n\nA public note body.")
	write("Templates/daily.md", "# Daily Template\n\nShould be skipped.")
	write("Ideas/image.png", "not markdown")

	src := NewVaultSource(root, false)
	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)

	ids := []string{docs[0].ID, docs[1].ID}
	assert.Contains(t, ids, "note:Ideas/k8s.md")
	assert.Contains(t, ids, "note:Public/post.md")

	// Public-only restricts to the Public/ subtree.
	pub := NewVaultSource(root, true)
	docs, err = pub.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "note:Public/post.md", docs[0].ID)
}

func TestVaultSourceMissingRoot(t *testing.T) {
	src := NewVaultSource(filepath.Join(t.TempDir(), "nope"), false)
	_, err := src.Documents(context.Background())
	assert.Error(t, err)
}

package content

import (
	"context"
	"fmt"
)

// Type classifies a document. The set is open: new types can be introduced
// by new sources, but everything that reaches the index store must pass
// ValidType first.
type Type string

const (
	TypeNote       Type = "note"
	TypeProject    Type = "project"
	TypeTechnology Type = "technology"

	// TypeAny is the zero filter: match every document type.
	TypeAny Type = ""
)

// ValidType reports whether t is a known document type.
func ValidType(t Type) bool {
	switch t {
	case TypeNote, TypeProject, TypeTechnology:
		return true
	}
	return false
}

// Document is a unit of indexable content. Documents are materialized fresh
// on every reindex and never persisted standalone; only their derived chunks
// reach the store.
type Document struct {
	// ID is stable and globally unique, e.g. "note:<path>",
	// "project:<slug>", "technology:<slug>".
	ID    string
	Type  Type
	Title string
	Body  string
}

// Validate checks the document is indexable.
func (d Document) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("document missing id")
	}
	if !ValidType(d.Type) {
		return fmt.Errorf("document %s: unknown type %q", d.ID, d.Type)
	}
	if d.Title == "" {
		return fmt.Errorf("document %s: missing title", d.ID)
	}
	return nil
}

// Source produces the documents of one content collection.
type Source interface {
	// Name identifies the source in logs and stats.
	Name() string
	// Documents returns every document the source currently holds.
	Documents(ctx context.Context) ([]Document, error)
}

// NoteID builds the document id for a vault note at the given path.
func NoteID(path string) string { return "note:" + path }

// ProjectID builds the document id for a project record.
func ProjectID(slug string) string { return "project:" + slug }

// TechnologyID builds the document id for a technology record.
func TechnologyID(slug string) string { return "technology:" + slug }

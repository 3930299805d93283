package content

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// maxNoteSize is the largest note we'll consider (1 MB).
const maxNoteSize = 1 << 20

// defaultVaultIgnores are used when no .vaultignore file exists.
var defaultVaultIgnores = []string{
	".git",
	".obsidian",
	".trash",
	"Templates",
	"Archive",
	"node_modules",
}

// VaultSource reads markdown notes from a local vault directory.
type VaultSource struct {
	root       string
	publicOnly bool
}

// NewVaultSource creates a source over the vault rooted at root. When
// publicOnly is set, only notes under Public/ are returned.
func NewVaultSource(root string, publicOnly bool) *VaultSource {
	return &VaultSource{root: root, publicOnly: publicOnly}
}

func (v *VaultSource) Name() string { return "vault" }

// Documents walks the vault and returns one Document per markdown note.
// Unreadable files are skipped; a missing root is an error.
func (v *VaultSource) Documents(ctx context.Context) ([]Document, error) {
	absRoot, err := filepath.Abs(v.root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(absRoot); err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}

	ignores := loadIgnorePatterns(absRoot)

	var docs []Document
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip errors, keep walking
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path == absRoot {
				return nil
			}
			rel, _ := filepath.Rel(absRoot, path)
			if matchesIgnore(d.Name(), filepath.ToSlash(rel), ignores) {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip symlinks.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		relPath, _ := filepath.Rel(absRoot, path)
		relPath = filepath.ToSlash(relPath)
		if !indexableNote(relPath, v.publicOnly) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxNoteSize || info.Size() == 0 {
			return nil
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		docs = append(docs, noteDocument(relPath, string(raw)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	return docs, nil
}

// loadIgnorePatterns reads .vaultignore from the vault root, falling back to
// the default patterns when the file is missing or empty.
func loadIgnorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ".vaultignore"))
	if err != nil {
		return defaultVaultIgnores
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if len(patterns) == 0 {
		return defaultVaultIgnores
	}
	return patterns
}

// matchesIgnore checks if a directory name or relative path matches any
// ignore pattern.
func matchesIgnore(name, relPath string, patterns []string) bool {
	for _, p := range patterns {
		if name == p {
			return true
		}
		if strings.HasPrefix(relPath, p) {
			return true
		}
		if matched, _ := filepath.Match(p, relPath); matched {
			return true
		}
		if matched, _ := filepath.Match(p, name); matched {
			return true
		}
	}
	return false
}

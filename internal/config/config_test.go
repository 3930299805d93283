package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendVec, cfg.Store.Backend)
	assert.Equal(t, "nomic-embed-text", cfg.Embedder.Model)
	assert.Equal(t, 768, cfg.Embedder.Dimension)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: blob\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendBlob, cfg.Store.Backend)
	assert.Equal(t, "vaultsearch.db", cfg.Store.Path)
	assert.Equal(t, "http://localhost:11434", cfg.Embedder.BaseURL)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  backend: pinecone\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestLoadRejectsGitHubWithoutRepo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  github:\n    token_env: GH_TOKEN\n"), 0o644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "sources.github.repo")
}

func TestGitHubTokenEnvFallback(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "default-token")
	t.Setenv("MY_TOKEN", "custom-token")

	g := &GitHubConfig{Repo: "me/vault"}
	assert.Equal(t, "default-token", g.GitHubToken())

	g.TokenEnv = "MY_TOKEN"
	assert.Equal(t, "custom-token", g.GitHubToken())
}

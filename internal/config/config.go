package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"vaultsearch/internal/embedder"
)

// Store backends.
const (
	BackendVec  = "vec"
	BackendBlob = "blob"
)

// StoreConfig selects and configures the index store backend.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// EmbedderConfig configures the Ollama embedding adapter.
type EmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// VaultConfig points at a local vault directory.
type VaultConfig struct {
	Dir        string `yaml:"dir"`
	PublicOnly bool   `yaml:"public_only"`
}

// GitHubConfig points at a GitHub-hosted vault repository.
type GitHubConfig struct {
	Repo       string `yaml:"repo"` // owner/name
	TokenEnv   string `yaml:"token_env"`
	Ref        string `yaml:"ref"`
	PublicOnly bool   `yaml:"public_only"`
}

// SourcesConfig enumerates the content collections to index.
type SourcesConfig struct {
	Vault       *VaultConfig  `yaml:"vault,omitempty"`
	GitHub      *GitHubConfig `yaml:"github,omitempty"`
	RecordsFile string        `yaml:"records_file"`
}

// SearchConfig tunes the query engine and result cache.
type SearchConfig struct {
	CacheDisabled    bool `yaml:"cache_disabled"`
	CacheTTLSecs     int  `yaml:"cache_ttl_secs"`
	NoteCacheTTLSecs int  `yaml:"note_cache_ttl_secs"`
}

// ReindexConfig tunes the reindex orchestrator.
type ReindexConfig struct {
	Workers     int     `yaml:"workers"`
	MaxChunkLen int     `yaml:"max_chunk_len"`
	EmbedRate   float64 `yaml:"embed_rate"`
}

// Config is the root application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store"`
	Embedder EmbedderConfig `yaml:"embedder"`
	Sources  SourcesConfig  `yaml:"sources"`
	Search   SearchConfig   `yaml:"search"`
	Reindex  ReindexConfig  `yaml:"reindex"`
}

// Load reads a config from path. A missing file returns defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the default configuration: ANN backend, local Ollama,
// a ./vault directory source.
func Default() *Config {
	cfg := &Config{
		Sources: SourcesConfig{
			Vault: &VaultConfig{Dir: "vault"},
		},
	}
	applyDefaults(cfg)
	return cfg
}

// GitHubToken resolves the configured token environment variable.
func (g *GitHubConfig) GitHubToken() string {
	if g == nil {
		return ""
	}
	env := g.TokenEnv
	if env == "" {
		env = "GITHUB_TOKEN"
	}
	return os.Getenv(env)
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = BackendVec
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "vaultsearch.db"
	}
	if cfg.Embedder.BaseURL == "" {
		cfg.Embedder.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedder.Model == "" {
		cfg.Embedder.Model = "nomic-embed-text"
	}
	if cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = embedder.DefaultDimension
	}
	if cfg.Embedder.TimeoutSecs == 0 {
		cfg.Embedder.TimeoutSecs = 120
	}
	if cfg.Sources.RecordsFile == "" {
		cfg.Sources.RecordsFile = "records.yaml"
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case BackendVec, BackendBlob:
	default:
		return fmt.Errorf("unknown store backend %q (want %q or %q)",
			cfg.Store.Backend, BackendVec, BackendBlob)
	}
	if cfg.Sources.GitHub != nil && cfg.Sources.GitHub.Repo == "" {
		return errors.New("sources.github.repo is required when the github source is configured")
	}
	return nil
}

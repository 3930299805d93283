package cmd

import (
	"fmt"
	"time"

	"vaultsearch/internal/config"
	"vaultsearch/internal/content"
	"vaultsearch/internal/embedder"
	"vaultsearch/internal/reindex"
	"vaultsearch/internal/search"
	"vaultsearch/internal/store"
)

// app bundles the wired components behind the CLI commands.
type app struct {
	cfg      *config.Config
	store    store.Store
	embedder embedder.Embedder
	engine   *search.Engine
	reindex  *reindex.Orchestrator
}

func newApp() (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	emb := embedder.NewOllamaEmbedder(
		cfg.Embedder.BaseURL,
		cfg.Embedder.Model,
		cfg.Embedder.Dimension,
		time.Duration(cfg.Embedder.TimeoutSecs)*time.Second,
	)

	var cache *search.Cache
	if !cfg.Search.CacheDisabled {
		cache = search.NewCache(
			time.Duration(cfg.Search.CacheTTLSecs)*time.Second,
			time.Duration(cfg.Search.NoteCacheTTLSecs)*time.Second,
		)
	}

	sources, err := buildSources(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &app{
		cfg:      cfg,
		store:    st,
		embedder: emb,
		engine:   search.NewEngine(st, emb, cache),
		reindex: reindex.New(sources, emb, st, reindex.Config{
			Workers:     cfg.Reindex.Workers,
			MaxChunkLen: cfg.Reindex.MaxChunkLen,
			EmbedRate:   cfg.Reindex.EmbedRate,
		}),
	}, nil
}

func (a *app) Close() error { return a.store.Close() }

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendBlob:
		return store.OpenBlob(cfg.Store.Path, cfg.Embedder.Dimension)
	case config.BackendVec:
		return store.OpenVec(cfg.Store.Path, cfg.Embedder.Dimension)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildSources(cfg *config.Config) ([]content.Source, error) {
	var sources []content.Source

	if v := cfg.Sources.Vault; v != nil {
		sources = append(sources, content.NewVaultSource(v.Dir, v.PublicOnly))
	}
	if g := cfg.Sources.GitHub; g != nil {
		src, err := content.NewGitHubSource(g.Repo, g.GitHubToken(), g.Ref, g.PublicOnly)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}

	static, err := content.LoadStatic(cfg.Sources.RecordsFile)
	if err != nil {
		return nil, err
	}
	sources = append(sources, static)

	return sources, nil
}

package content

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const githubTimeout = 30 * time.Second

// githubRate throttles content fetches well below the authenticated API
// limit (5000/hour) so a reindex never starves the rest of the site.
const githubRate = 4

// GitHubSource reads markdown notes from a GitHub-hosted vault repository.
type GitHubSource struct {
	client     *gh.Client
	owner      string
	repo       string
	ref        string
	publicOnly bool
	limiter    *rate.Limiter
	log        *slog.Logger
}

// NewGitHubSource creates a source over the repo "owner/name". An empty ref
// defaults to the repository's default branch head.
func NewGitHubSource(repo, token, ref string, publicOnly bool) (*GitHubSource, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid github repo %q, want owner/name", repo)
	}

	var hc *http.Client
	if token != "" {
		hc = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		))
	} else {
		hc = &http.Client{}
	}
	hc.Timeout = githubTimeout

	if ref == "" {
		ref = "HEAD"
	}

	return &GitHubSource{
		client:     gh.NewClient(hc),
		owner:      owner,
		repo:       name,
		ref:        ref,
		publicOnly: publicOnly,
		limiter:    rate.NewLimiter(rate.Limit(githubRate), 1),
		log:        slog.Default().With("source", "github", "repo", repo),
	}, nil
}

func (g *GitHubSource) Name() string { return "github" }

// Documents lists the repository tree and fetches every indexable note.
// Individual blob fetch failures are logged and skipped; a tree listing
// failure aborts the whole collection.
func (g *GitHubSource) Documents(ctx context.Context) ([]Document, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	tree, _, err := g.client.Git.GetTree(ctx, g.owner, g.repo, g.ref, true)
	if err != nil {
		return nil, fmt.Errorf("github tree fetch: %w", err)
	}

	var docs []Document
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		relPath := entry.GetPath()
		if !indexableNote(relPath, g.publicOnly) {
			continue
		}

		raw, err := g.fetchBlob(ctx, entry.GetSHA())
		if err != nil {
			g.log.Warn("skipping unreadable note", "path", relPath, "error", err)
			continue
		}
		docs = append(docs, noteDocument(relPath, raw))
	}
	return docs, nil
}

func (g *GitHubSource) fetchBlob(ctx context.Context, sha string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}
	blob, _, err := g.client.Git.GetBlob(ctx, g.owner, g.repo, sha)
	if err != nil {
		return "", fmt.Errorf("github blob fetch: %w", err)
	}
	content := blob.GetContent()
	if blob.GetEncoding() == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
		if err != nil {
			return "", fmt.Errorf("decode blob %s: %w", sha, err)
		}
		return string(decoded), nil
	}
	return content, nil
}

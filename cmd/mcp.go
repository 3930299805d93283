package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"vaultsearch/internal/content"
	"vaultsearch/internal/reindex"
	"vaultsearch/internal/search"
	"vaultsearch/internal/store"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing vault search tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	s := mcpserver.NewMCPServer("vaultsearch", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchVaultTool(), makeSearchHandler(a))
	s.AddTool(reindexVaultTool(), makeReindexHandler(a))
	s.AddTool(indexStatusTool(), makeStatusHandler(a))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchVaultTool() mcp.Tool {
	return mcp.NewTool("search_vault",
		mcp.WithDescription("Semantically search vault notes, projects, and technologies. Returns ranked documents with snippets and similarity scores."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of documents to return (default 5)"),
		),
		mcp.WithString("type",
			mcp.Description("Optional content type filter: note, project, or technology"),
		),
		mcp.WithNumber("min_score",
			mcp.Description("Only return results at or above this similarity score"),
		),
	)
}

func reindexVaultTool() mcp.Tool {
	return mcp.NewTool("reindex_vault",
		mcp.WithDescription("Rebuild the search index from all content sources. Queries keep serving the previous index until the rebuild completes."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(false),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		}),
	)
}

func indexStatusTool() mcp.Tool {
	return mcp.NewTool("index_status",
		mcp.WithDescription("Get the published index generation, its age, and document/chunk counts."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeSearchHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		ctype := content.Type(req.GetString("type", ""))
		if ctype != content.TypeAny && !content.ValidType(ctype) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown content type %q", ctype)), nil
		}

		results, err := a.engine.Search(ctx, search.Query{
			Text:     query,
			Limit:    req.GetInt("limit", search.DefaultLimit),
			Type:     ctype,
			MinScore: req.GetFloat("min_score", 0),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		return mcp.NewToolResultText(formatToolResults(query, results)), nil
	}
}

func makeReindexHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := a.reindex.Run(ctx)
		if err != nil {
			if errors.Is(err, reindex.ErrReindexRunning) {
				return mcp.NewToolResultError("a reindex is already in progress — try again once it finishes"), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("reindex failed: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Reindexed %d of %d documents (%d skipped) into %d chunks in %s.\nGeneration: %s",
			stats.Indexed, stats.Documents, stats.Skipped, stats.Chunks,
			stats.Took.Round(time.Millisecond), stats.Generation)), nil
	}
}

func makeStatusHandler(a *app) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st, err := a.store.Status(ctx)
		if err != nil {
			if errors.Is(err, store.ErrEmptyIndex) {
				return mcp.NewToolResultText("The index is empty. Call reindex_vault to build it."), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("status failed: %v", err)), nil
		}

		return mcp.NewToolResultText(fmt.Sprintf(
			"Generation %s, indexed at %s.\nDocuments: %d\nChunks: %d",
			st.Generation, st.IndexedAt.Format("2006-01-02 15:04:05 MST"),
			st.Documents, st.Chunks)), nil
	}
}

// --- Formatting helpers ---

func formatToolResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d documents)\n\n", query, len(results))
	for i, r := range results {
		fmt.Fprintf(&sb, "### Result %d: %s\n\n", i+1, r.Title)
		fmt.Fprintf(&sb, "**ID:** `%s`  \n**Type:** %s  \n**Score:** %.3f\n\n", r.DocumentID, r.Type, r.Score)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "%s\n\n", r.Snippet)
		}
	}
	return sb.String()
}

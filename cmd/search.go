package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"vaultsearch/internal/content"
	"vaultsearch/internal/search"
)

var (
	flagLimit    int
	flagType     string
	flagMinScore float64
	flagJSON     bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the vault and portfolio records",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctype := content.Type(flagType)
		if ctype != content.TypeAny && !content.ValidType(ctype) {
			return fmt.Errorf("unknown content type %q", flagType)
		}

		query := strings.Join(args, " ")
		results, err := a.engine.Search(cmd.Context(), search.Query{
			Text:     query,
			Limit:    flagLimit,
			Type:     ctype,
			MinScore: flagMinScore,
		})
		if err != nil {
			return err
		}

		if flagJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		out := formatResults(query, results)
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100)); err == nil {
			if rendered, err := r.Render(out); err == nil {
				fmt.Print(rendered)
				return nil
			}
		}
		fmt.Print(out)
		return nil
	},
}

// formatResults builds a markdown summary of the ranked hits.
func formatResults(query string, results []search.Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("No results for %q.\n", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Results for %q\n\n", query)
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. **%s** (%s, score %.3f)\n\n", i+1, r.Title, r.Type, r.Score)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   > %s\n\n", strings.ReplaceAll(r.Snippet, "\n", " "))
		}
	}
	return sb.String()
}

func init() {
	searchCmd.Flags().IntVar(&flagLimit, "limit", search.DefaultLimit, "maximum number of documents to return")
	searchCmd.Flags().StringVar(&flagType, "type", "", "restrict to a content type (note, project, technology)")
	searchCmd.Flags().Float64Var(&flagMinScore, "min-score", 0, "drop results scoring below this similarity")
	searchCmd.Flags().BoolVar(&flagJSON, "json", false, "emit results as JSON")
	rootCmd.AddCommand(searchCmd)
}

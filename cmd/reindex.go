package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Rebuild the search index from all content sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Println("Reindexing...")
		stats, err := a.reindex.Run(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", stats.Took.Round(time.Millisecond))
		fmt.Printf("  Documents: %d total, %d indexed, %d skipped\n",
			stats.Documents, stats.Indexed, stats.Skipped)
		fmt.Printf("  Chunks:    %d\n", stats.Chunks)
		fmt.Printf("  Generation: %s\n", stats.Generation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

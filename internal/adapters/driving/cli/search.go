package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textvault/textvault/internal/core/domain"
)

var (
	searchCutoff float64
	searchTopK   int
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored embeddings",
	Long: `Embeds the query and ranks stored records by cosine similarity.
Only results scoring strictly above the cutoff are returned.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Float64Var(&searchCutoff, "cutoff", 0, "minimum similarity score (0 uses the configured default)")
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results (0 uses the configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	cutoff := searchCutoff
	if cutoff == 0 {
		cutoff = cfg.Search.Cutoff
	}
	topK := searchTopK
	if topK == 0 {
		topK = cfg.Search.TopK
	}

	results, err := pipelineService.Search(context.Background(), domain.SearchRequest{
		Query:  args[0],
		Cutoff: cutoff,
		TopK:   topK,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, results[i].ID, results[i].Score)
		if results[i].ReferenceID != "" {
			cmd.Printf("      Reference: %s\n", results[i].ReferenceID)
		}
		cmd.Printf("      %s\n", snippet(results[i].Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates s to at most n characters for terminal display.
func snippet(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

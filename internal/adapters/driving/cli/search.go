package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/memora/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the acting user's knowledge store",
	Long: `Embeds the query and returns the most similar chunks from the
acting user's documents, ranked by cosine similarity.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	results, err := queryService.Search(cmd.Context(), userID, args[0], domain.SearchOptions{
		TopK: searchLimit,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchText(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		chunk := results[i].Chunk
		cmd.Printf("[%d] %s #%d (score %.4f)\n", i+1, chunk.DocumentID, chunk.Index, results[i].Score)
		cmd.Printf("    %s\n\n", snippet(chunk.Content, 160))
	}
	cmd.Printf("Total: %d results\n", len(results))
	return nil
}

// snippet trims content to a display length on a rune boundary.
func snippet(content string, max int) string {
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max]) + "..."
}

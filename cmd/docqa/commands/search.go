// ABOUTME: CLI command to run raw similarity search over a collection
// ABOUTME: Prints ranked chunks as a table or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchCollection string
	searchTopK       int
	searchMinScore   float64
)

// NewSearchCmd creates the search command
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search a collection by semantic similarity",
		Long: `Search a collection and print the ranked chunks without generating
an answer. Useful for inspecting what the query command would retrieve.

Examples:
  docqa search "error handling"
  docqa search --top-k 10 --min-score 0.5 "retry policy"
  docqa search --format json "backup schedule"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&searchCollection, "collection", "", "Collection to search (default from configuration)")
	cmd.Flags().IntVar(&searchTopK, "top-k", 0, "Maximum results (default from configuration)")
	cmd.Flags().Float64Var(&searchMinScore, "min-score", -1, "Minimum similarity score (default from configuration)")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	collection := searchCollection
	if collection == "" {
		collection = rt.cfg.Collection
	}
	topK := searchTopK
	if topK <= 0 {
		topK = rt.cfg.TopK
	}
	if err := validatePositiveInt(topK, "top-k"); err != nil {
		return err
	}
	minScore := searchMinScore
	if minScore < 0 {
		minScore = rt.cfg.MinScore
	}

	results, err := rt.pipe.Search(cmd.Context(), collection, args[0], topK, minScore)
	if err != nil {
		return fmt.Errorf("searching %q: %w", collection, err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results in %q for query: %s\n", collection, args[0])
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "RANK\tSCORE\tSOURCE\tSEQ\tPREVIEW\n")
		fmt.Fprintf(w, "----\t-----\t------\t---\t-------\n")

		for _, res := range results {
			fmt.Fprintf(w, "%d\t%.3f\t%s\t%d\t%s\n",
				res.Rank,
				res.Score,
				truncate(res.Chunk.SourceDocument, 25),
				res.Chunk.SequenceNumber,
				truncate(firstLine(res.Chunk.Text), 60))
		}
		w.Flush()

		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\nFound %d result(s)\n", len(results))
		}
	}

	return nil
}

// ABOUTME: CLI command to answer a question with retrieval-augmented generation
// ABOUTME: Supports one-shot answers and streamed output
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	queryCollection string
	queryTopK       int
	queryMinScore   float64
	queryStream     bool
)

// NewQueryCmd creates the query command
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Answer a question from the indexed documents",
		Long: `Answer a question using retrieval-augmented generation.

The question is embedded, the most relevant chunks are retrieved from the
collection, and a chat model generates the answer from that context. When
nothing relevant is found the model is told so explicitly.

Examples:
  docqa query "how do I rotate the API keys?"
  docqa query --collection handbook --top-k 8 "vacation policy"
  docqa query --stream "summarize the architecture"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&queryCollection, "collection", "", "Collection to retrieve from (default from configuration)")
	cmd.Flags().IntVar(&queryTopK, "top-k", 0, "Maximum context chunks (default from configuration)")
	cmd.Flags().Float64Var(&queryMinScore, "min-score", -1, "Minimum similarity score (default from configuration)")
	cmd.Flags().BoolVar(&queryStream, "stream", false, "Print the answer as it is generated")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	collection := queryCollection
	if collection == "" {
		collection = rt.cfg.Collection
	}
	topK := queryTopK
	if topK <= 0 {
		topK = rt.cfg.TopK
	}
	minScore := queryMinScore
	if minScore < 0 {
		minScore = rt.cfg.MinScore
	}

	ctx := cmd.Context()
	question := args[0]

	if queryStream {
		streamed, err := rt.pipe.AnswerQueryStream(ctx, collection, question, topK, minScore)
		if err != nil {
			return err
		}
		defer streamed.Stream.Close()

		for {
			fragment, err := streamed.Stream.Recv()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("streaming answer: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), fragment)
		}
		fmt.Fprintln(cmd.OutOrStdout())

		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "(%d chunk(s) retrieved from %q)\n", len(streamed.Results), collection)
		}
		return nil
	}

	answer, err := rt.pipe.AnswerQuery(ctx, collection, question, topK, minScore)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer.Text)
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n(%d chunk(s) retrieved from %q)\n", len(answer.Results), collection)
		for _, res := range answer.Results {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [%d] %.3f %s: %s\n",
				res.Rank, res.Score, res.Chunk.SourceDocument, truncate(firstLine(res.Chunk.Text), 60))
		}
	}
	return nil
}

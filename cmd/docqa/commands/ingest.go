// ABOUTME: CLI command to ingest documents into the index
// ABOUTME: Loads files or directories, chunks, embeds, and reports per-document outcomes
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/loader"
	"github.com/harper/docqa/internal/models"
	"github.com/harper/docqa/internal/pipeline"
)

var (
	ingestCollection string
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Ingest documents into the index",
		Long: `Ingest plain-text documents into a collection.

Each path may be a file or a directory; directories are walked recursively
and .txt/.md files are loaded. Documents are chunked into overlapping token
windows, embedded, and written to the index. Re-ingesting a document
replaces its existing chunks.

A document that fails does not abort the batch; failures are reported at
the end.

Examples:
  docqa ingest notes.txt
  docqa ingest --collection handbook docs/
  docqa ingest a.md b.md c.md`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringVar(&ingestCollection, "collection", "", "Target collection (default from configuration)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(false)
	if err != nil {
		return err
	}
	defer rt.Close()

	collection := ingestCollection
	if collection == "" {
		collection = rt.cfg.Collection
	}

	var docs []pipeline.Document
	for _, path := range args {
		loaded, err := loader.LoadPath(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		docs = append(docs, loaded...)
	}
	if len(docs) == 0 {
		return fmt.Errorf("no text documents found under the given paths")
	}

	chunking := models.ChunkingConfig{TargetSize: rt.cfg.ChunkSize, Overlap: rt.cfg.ChunkOverlap}
	batch := rt.pipe.IngestDocuments(cmd.Context(), collection, docs, chunking)

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(batch, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		for _, report := range batch.Reports {
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d chunk(s)\n", report.SourceDocument, report.ChunksWritten)
			}
		}
		for _, failure := range batch.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "  %s: FAILED: %s\n", failure.SourceDocument, failure.Reason)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d document(s) into %q, %d failed\n",
				batch.Succeeded, collection, batch.Failed)
		}
	}

	if batch.Failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed to ingest", batch.Failed, batch.Succeeded+batch.Failed)
	}
	return nil
}

// ABOUTME: CLI command to delete records from a collection
// ABOUTME: Removes chunks by id without touching the rest of the collection
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/index"
)

var (
	deleteCollection string
	deleteIDs        []string
)

// NewDeleteCmd creates the delete command
func NewDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete records from a collection",
		Long: `Delete records from a collection by chunk id.

Chunk ids are shown by 'docqa search --format json'.

Examples:
  docqa delete --collection handbook --ids chunk_abc,chunk_def`,
		Args: cobra.NoArgs,
		RunE: runDelete,
	}

	cmd.Flags().StringVar(&deleteCollection, "collection", "", "Collection to delete from (default from configuration)")
	cmd.Flags().StringSliceVar(&deleteIDs, "ids", nil, "Chunk ids to delete")
	_ = cmd.MarkFlagRequired("ids")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	if len(deleteIDs) == 0 {
		return fmt.Errorf("at least one chunk id is required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	collection := deleteCollection
	if collection == "" {
		collection = cfg.Collection
	}

	db, err := index.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	store := index.NewStore(db, index.Options{})
	if err := store.Delete(cmd.Context(), collection, deleteIDs); err != nil {
		return fmt.Errorf("deleting from %q: %w", collection, err)
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d record(s) from %q\n", len(deleteIDs), collection)
	}
	return nil
}

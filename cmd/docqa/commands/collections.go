// ABOUTME: CLI command to list index collections
// ABOUTME: Shows record counts and vector dimensions per collection
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/docqa/internal/config"
	"github.com/harper/docqa/internal/index"
)

// NewCollectionsCmd creates the collections command
func NewCollectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collections",
		Short: "List collections in the index",
		Long: `List every collection in the local index with its record count and
pinned vector dimension.`,
		Args: cobra.NoArgs,
		RunE: runCollections,
	}

	return cmd
}

func runCollections(cmd *cobra.Command, args []string) error {
	// Listing needs no model clients, only the database.
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	db, err := index.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}
	defer db.Close()

	store := index.NewStore(db, index.Options{})
	infos, err := store.Collections(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing collections: %w", err)
	}

	if len(infos) == 0 {
		if !quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "No collections yet. Run 'docqa ingest' first.")
		}
		return nil
	}

	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", jsonData)
	} else {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "NAME\tRECORDS\tDIMENSION\n")
		fmt.Fprintf(w, "----\t-------\t---------\n")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%d\t%d\n", info.Name, info.Records, info.Dimension)
		}
		w.Flush()
	}

	return nil
}

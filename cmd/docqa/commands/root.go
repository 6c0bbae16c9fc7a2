// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Holds the verbose/quiet/format flags shared by all subcommands
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	configFile   string
)

const banner = `
██████╗  ██████╗  ██████╗ ██████╗  █████╗
██╔══██╗██╔═══██╗██╔════╝██╔═══██╗██╔══██╗
██║  ██║██║   ██║██║     ██║   ██║███████║
██║  ██║██║   ██║██║     ██║▄▄ ██║██╔══██║
██████╔╝╚██████╔╝╚██████╗╚██████╔╝██║  ██║
╚═════╝  ╚═════╝  ╚═════╝ ╚══▀▀═╝ ╚═╝  ╚═╝
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docqa",
		Short: "Local retrieval-augmented question answering over your documents",
		Long: banner + `
docqa chunks plain-text documents, embeds them against an OpenAI-compatible
endpoint, stores the vectors in a local SQLite index, and answers questions
with retrieval-augmented generation.

Point it at a local model server (Ollama, llama.cpp, vLLM) or the OpenAI API
via DOCQA_EMBEDDING_BASE_URL / DOCQA_GENERATION_BASE_URL.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format (auto|json|table)")
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewCollectionsCmd())
	cmd.AddCommand(NewDeleteCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

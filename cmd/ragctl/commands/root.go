package commands

import (
	"github.com/spf13/cobra"
)

var environment string

// NewRootCmd creates the root command for ragctl
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragctl",
		Short: "Manage and query the document assistant from the terminal",
		Long: `ragctl talks to the same pipeline the HTTP server uses: it can
ingest documents into the vector index, ask questions over the ingested
corpus, and inspect the index state.

Examples:
  ragctl ingest docs/handbook.pdf notes.md
  ragctl ask "what does the handbook say about onboarding?"
  ragctl chat
  ragctl status`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&environment, "env", "local", "environment to run in (local, prod)")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewAskCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewStatusCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

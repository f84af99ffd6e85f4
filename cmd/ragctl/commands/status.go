package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/futig/rag-backend/internal/builder"
	"github.com/futig/rag-backend/internal/entity"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current vector index state",
		Args:  cobra.NoArgs,
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	core, err := builder.BuildCore(environment)
	if err != nil {
		return err
	}
	defer core.Close()

	stats, err := core.IndexUC.Stats(cmd.Context())
	if errors.Is(err, entity.ErrIndexNotFound) {
		fmt.Fprintln(cmd.OutOrStdout(), "No index has been built yet.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index stats: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Entries:   %d\n", stats.Entries)
	fmt.Fprintf(cmd.OutOrStdout(), "Dimension: %d\n", stats.Dimension)
	fmt.Fprintf(cmd.OutOrStdout(), "Model:     %s\n", stats.Model)
	return nil
}

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/futig/rag-backend/internal/builder"
	"github.com/futig/rag-backend/internal/entity"
)

var askSession string

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question over the ingested corpus",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}

	cmd.Flags().StringVar(&askSession, "session", "default", "conversation session id")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	core, err := builder.BuildCore(environment)
	if err != nil {
		return err
	}
	defer core.Close()

	answer, err := core.QueryUC.Query(cmd.Context(), args[0], askSession)
	if errors.Is(err, entity.ErrNoDocumentsIngested) {
		return fmt.Errorf("no documents have been ingested yet, run 'ragctl ingest' first")
	}
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

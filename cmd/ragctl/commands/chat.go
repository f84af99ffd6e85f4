package commands

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/futig/rag-backend/internal/builder"
	"github.com/futig/rag-backend/internal/entity"
)

var chatSession string

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question-answering session",
		Long: `Start an interactive loop where every question shares one
conversation session, so follow-up questions see the earlier exchanges.
Type "exit" or press Ctrl-D to leave.`,
		Args: cobra.NoArgs,
		RunE: runChat,
	}

	cmd.Flags().StringVar(&chatSession, "session", "", "conversation session id (random when empty)")

	return cmd
}

func runChat(cmd *cobra.Command, _ []string) error {
	core, err := builder.BuildCore(environment)
	if err != nil {
		return err
	}
	defer core.Close()

	sessionID := chatSession
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session %s. Type a question, or \"exit\" to quit.\n", sessionID)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			return nil
		}

		answer, err := core.QueryUC.Query(cmd.Context(), question, sessionID)
		if errors.Is(err, entity.ErrNoDocumentsIngested) {
			fmt.Fprintln(out, "No documents have been ingested yet, run 'ragctl ingest' first.")
			continue
		}
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		fmt.Fprintf(out, "%s\n\n", answer)
	}
}

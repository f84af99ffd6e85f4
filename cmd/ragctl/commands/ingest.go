package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/futig/rag-backend/internal/builder"
)

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <path>...",
		Short: "Load, chunk, embed and index documents",
		Long: `Ingest documents into the vector index. Paths may be local files
(.txt, .md, .pdf, .docx) or http(s) URLs. Files that cannot be read are
reported and skipped; the rest of the batch is still indexed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	core, err := builder.BuildCore(environment)
	if err != nil {
		return err
	}
	defer core.Close()

	report, err := core.IngestUC.Ingest(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("ingesting documents: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documents processed: %d\n", report.DocumentsProcessed)
	fmt.Fprintf(cmd.OutOrStdout(), "Chunks indexed:      %d\n", report.ChunksIndexed)

	if len(report.Failures) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Failures:\n")
		for _, f := range report.Failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", f.Path, f.Reason)
		}
	}
	return nil
}

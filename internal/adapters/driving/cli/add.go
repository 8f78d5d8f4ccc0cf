package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var addCmd = &cobra.Command{
	Use:   "add [file]...",
	Short: "Add documents to the library",
	Long: `Copies files into the data directory and indexes them.
Supported formats: pdf, docx, doc, xlsx, xls, csv. Failures are
reported per file; the rest of the batch still goes through.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func init() {
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := ingestService.Add(ctx, args)
	if err != nil {
		return fmt.Errorf("add failed: %w", err)
	}

	var indexed, skipped, failed int
	for i := range results {
		printIngestResult(cmd, &results[i])
		switch results[i].Outcome {
		case driving.IngestIndexed:
			indexed++
		case driving.IngestSkipped:
			skipped++
		case driving.IngestFailed:
			failed++
		}
	}

	cmd.Println()
	cmd.Printf("Added %d, skipped %d, failed %d.\n", indexed, skipped, failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// printIngestResult renders one per-file outcome line.
func printIngestResult(cmd *cobra.Command, res *driving.IngestResult) {
	name := filepath.Base(res.Path)
	switch res.Outcome {
	case driving.IngestIndexed:
		cmd.Printf("  indexed  %s (%d chunks)\n", name, res.Chunks)
	case driving.IngestSkipped:
		cmd.Printf("  skipped  %s (unchanged)\n", name)
	case driving.IngestFailed:
		cmd.Printf("  failed   %s: %v\n", name, res.Err)
	}
}

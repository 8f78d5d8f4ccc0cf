package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Index new and changed files in the data directory",
	Long: `Walks the data directory, indexing files that are new or whose
content changed, and dropping registry entries for files that are gone.
Useful after copying files in by hand.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Scanning data directory...")

	report, err := ingestService.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	printIngestReport(cmd, report)
	return nil
}

// printIngestReport renders a batch summary with per-file lines for
// everything that was not a skip.
func printIngestReport(cmd *cobra.Command, report *driving.IngestReport) {
	for i := range report.Results {
		if report.Results[i].Outcome == driving.IngestSkipped {
			continue
		}
		printIngestResult(cmd, &report.Results[i])
	}

	cmd.Println()
	cmd.Printf("Indexed %d, skipped %d, failed %d", report.Indexed, report.Skipped, report.Failed)
	if report.Removed > 0 {
		cmd.Printf(", removed %d", report.Removed)
	}
	cmd.Println(".")
}

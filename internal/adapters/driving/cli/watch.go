package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the data directory and index changes",
	Long: `Runs an initial scan, then watches the data directory and indexes
files as they appear, change, or disappear. Editor save bursts are
debounced. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if appSettings == nil {
		return errors.New("settings not loaded")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Catch up before watching so pre-existing changes are not missed.
	cmd.Println("Scanning data directory...")
	report, err := ingestService.Scan(ctx)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	printIngestReport(cmd, report)
	cmd.Println()

	w := watcher.New(appSettings.DataDir)
	defer w.Close() //nolint:errcheck // Close on shutdown, nothing to do with the error

	events, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}

	cmd.Printf("Watching %s (Ctrl-C to stop)\n", appSettings.DataDir)

	for ev := range events {
		name := filepath.Base(ev.Path)
		switch ev.Op {
		case watcher.OpUpdate:
			res, err := ingestService.Register(ctx, ev.Path)
			if err != nil {
				cmd.Printf("  failed   %s: %v\n", name, err)
				continue
			}
			printIngestResult(cmd, res)
		case watcher.OpRemove:
			err := ingestService.Remove(ctx, ev.Path)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				// Never registered, nothing to drop.
			case err != nil:
				cmd.Printf("  failed   %s: %v\n", name, err)
			default:
				cmd.Printf("  removed  %s\n", name)
			}
		}
	}

	cmd.Println("Watch stopped.")
	return nil
}

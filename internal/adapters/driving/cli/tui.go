package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse and search the library interactively",
	Long: `Open the full-screen terminal interface.

Search the index, browse the library, inspect documents, and edit
settings without leaving the keyboard. The menu lists every screen;
press ? there for the complete key reference.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Print the stack before the deferred terminal restore wipes it.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
		}
	}()

	app, err := tui.NewApp(&tui.Ports{
		Search:      searchService,
		Document:    documentService,
		Ingest:      ingestService,
		Settings:    settingsService,
		Maintenance: maintenanceService,
		Action:      actionService,
	})
	if err != nil {
		return fmt.Errorf("starting interface: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := app.Run(); err != nil {
		return fmt.Errorf("interface stopped: %w", err)
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [file]",
	Short: "Open a library document in its default application",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

var revealCmd = &cobra.Command{
	Use:   "reveal [file]",
	Short: "Show a library document in the file manager",
	Args:  cobra.ExactArgs(1),
	RunE:  runReveal,
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(revealCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errors.New("action service not configured")
	}

	path, err := resolveLibraryPath(args[0])
	if err != nil {
		return err
	}

	if err := actionService.OpenFile(context.Background(), path); err != nil {
		return fmt.Errorf("opening file: %w", err)
	}

	cmd.Printf("Opened %s\n", filepath.Base(path))
	return nil
}

func runReveal(cmd *cobra.Command, args []string) error {
	if actionService == nil {
		return errors.New("action service not configured")
	}

	path, err := resolveLibraryPath(args[0])
	if err != nil {
		return err
	}

	if err := actionService.RevealFile(context.Background(), path); err != nil {
		return fmt.Errorf("revealing file: %w", err)
	}

	cmd.Printf("Revealed %s\n", filepath.Base(path))
	return nil
}

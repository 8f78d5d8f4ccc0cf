package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexClearForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the vector index",
}

var indexRebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the index from scratch",
	Long: `Drops every vector and re-indexes all registered documents with the
current settings. Run this after changing the embedding model or chunk
parameters.`,
	Args: cobra.NoArgs,
	RunE: runIndexRebuild,
}

var indexClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove everything from the index",
	Long: `Empties the vector index and the document registry. Files in the
data directory are left in place; 'trove scan' re-indexes them.`,
	Args: cobra.NoArgs,
	RunE: runIndexClear,
}

var indexStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index health",
	Args:  cobra.NoArgs,
	RunE:  runIndexStatus,
}

func init() {
	indexClearCmd.Flags().BoolVar(&indexClearForce, "force", false, "skip the confirmation prompt")

	indexCmd.AddCommand(indexRebuildCmd)
	indexCmd.AddCommand(indexClearCmd)
	indexCmd.AddCommand(indexStatusCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexRebuild(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cmd.Println("Rebuilding index...")

	report, err := maintenanceService.RebuildIndex(ctx)
	if err != nil {
		return fmt.Errorf("rebuild failed: %w", err)
	}

	printIngestReport(cmd, report)
	return nil
}

func runIndexClear(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	if !indexClearForce {
		cmd.Print("This removes all documents from the index. Continue? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, _ := reader.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := maintenanceService.ClearIndex(context.Background()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	cmd.Println("Index cleared.")
	return nil
}

func runIndexStatus(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	status, err := maintenanceService.Status(context.Background())
	if err != nil {
		return fmt.Errorf("reading index status: %w", err)
	}

	cmd.Println("Index status:")
	cmd.Println()
	cmd.Printf("  Documents:  %d\n", status.Documents)
	cmd.Printf("  Chunks:     %d\n", status.Chunks)
	cmd.Printf("  Vectors:    %d\n", status.Vectors)
	if status.Model != "" {
		cmd.Printf("  Model:      %s (%d dimensions)\n", status.Model, status.Dimensions)
	}
	cmd.Printf("  Index file: %s\n", status.IndexPath)
	if status.Stale {
		cmd.Println()
		cmd.Println("  Warning: settings changed since the last rebuild; run 'trove index rebuild'.")
	}

	return nil
}

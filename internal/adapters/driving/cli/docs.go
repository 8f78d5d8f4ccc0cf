package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/core/domain"
)

var docsJSON bool

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "List indexed documents",
	Long:  `Lists every document in the library with size, modified time, and index status.`,
	Args:  cobra.NoArgs,
	RunE:  runDocsList,
}

var docsRemoveCmd = &cobra.Command{
	Use:   "remove [file]",
	Short: "Remove a document from the library",
	Long: `Removes a document: its library copy, registry entry, and index vectors.
The file may be given as a bare name (resolved against the data directory)
or as a path.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocsRemove,
}

func init() {
	docsCmd.Flags().BoolVar(&docsJSON, "json", false, "output as JSON")

	docsCmd.AddCommand(docsRemoveCmd)
	rootCmd.AddCommand(docsCmd)
}

// documentView is the JSON projection of a registry entry. Extracted
// content stays out of listings.
type documentView struct {
	ID       string
	Filename string
	Path     string
	Size     int64
	Modified time.Time
	Status   string
}

func runDocsList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := context.Background()

	docs, err := documentService.List(ctx)
	if err != nil {
		return fmt.Errorf("listing documents: %w", err)
	}

	if docsJSON {
		views := make([]documentView, 0, len(docs))
		for i := range docs {
			views = append(views, documentView{
				ID:       docs[i].ID,
				Filename: docs[i].Filename,
				Path:     docs[i].Path,
				Size:     docs[i].Size,
				Modified: docs[i].ModifiedAt,
				Status:   string(docs[i].Status),
			})
		}
		data, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("No documents in the library. Add some with 'trove add'.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  %s\n", d.Filename)
		cmd.Printf("    Size:     %s\n", humanize.Bytes(uint64(d.Size)))
		cmd.Printf("    Modified: %s\n", d.ModifiedAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("    Status:   %s\n", d.Status)
		if d.Status == domain.DocumentStatusFailed && d.Error != "" {
			cmd.Printf("    Error:    %s\n", d.Error)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocsRemove(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path, err := resolveLibraryPath(args[0])
	if err != nil {
		return err
	}

	if err := ingestService.Remove(context.Background(), path); err != nil {
		return fmt.Errorf("removing document: %w", err)
	}

	cmd.Printf("Removed %s\n", filepath.Base(path))
	return nil
}

// resolveLibraryPath turns a user-supplied argument into an absolute
// path. Bare filenames resolve against the data directory so
// 'trove docs remove report.pdf' works without the full path.
func resolveLibraryPath(arg string) (string, error) {
	if filepath.Base(arg) == arg && appSettings != nil {
		return filepath.Join(appSettings.DataDir, arg), nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

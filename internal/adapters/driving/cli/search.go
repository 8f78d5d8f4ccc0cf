package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/trove/internal/core/domain"
)

var searchLimit int
var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library by meaning",
	Long: `Performs semantic search across all indexed documents.
Queries match by meaning, so "time off rules" finds the vacation policy.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	resp, err := searchService.Search(ctx, args[0], domain.SearchOptions{Limit: searchLimit})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

// searchResultView is the JSON projection of a result. Content and raw
// embeddings never leave the process.
type searchResultView struct {
	Filename  string
	Extension string
	Path      string
	Score     float64
	Modified  time.Time
	Size      int64
	Preview   string
}

func searchViews(resp *domain.SearchResponse) []searchResultView {
	views := make([]searchResultView, 0, len(resp.Results))
	for i := range resp.Results {
		r := &resp.Results[i]
		views = append(views, searchResultView{
			Filename:  r.Document.Filename,
			Extension: r.Document.Extension,
			Path:      r.Document.Path,
			Score:     r.Score,
			Modified:  r.Document.ModifiedAt,
			Size:      r.Document.Size,
			Preview:   r.Preview,
		})
	}
	return views
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(searchViews(resp), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if resp.IndexStale {
		cmd.Println("Warning: settings changed since the last rebuild; run 'trove index rebuild'.")
		cmd.Println()
	}

	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range resp.Results {
		r := &resp.Results[i]

		name := r.Document.Filename
		if name == "" {
			name = r.Document.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, name, r.Score)
		cmd.Printf("      %s\n", r.Document.Path)
		cmd.Printf("      %s, modified %s\n",
			humanize.Bytes(uint64(r.Document.Size)),
			r.Document.ModifiedAt.Format("2006-01-02 15:04"))
		if r.Preview != "" {
			cmd.Printf("      %s\n", r.Preview)
		}
		cmd.Println()
	}

	return nil
}

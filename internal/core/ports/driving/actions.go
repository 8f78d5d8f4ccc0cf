package driving

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// FileActionService dispatches file actions to the local OS.
// Used by the CLI, TUI, and MCP adapters. Every path is validated to
// resolve inside the data directory before anything is executed.
type FileActionService interface {
	// OpenFile opens the file in the default application.
	// Fails with domain.ErrPathOutsideData for paths escaping the
	// data directory.
	OpenFile(ctx context.Context, path string) error

	// RevealFile shows the file in the OS file manager.
	RevealFile(ctx context.Context, path string) error

	// CopyToClipboard copies a result's matched text to the system
	// clipboard.
	CopyToClipboard(ctx context.Context, result *domain.SearchResult) error
}

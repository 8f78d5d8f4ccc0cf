package driving

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// DocumentService provides read access to the document registry.
type DocumentService interface {
	// List returns all root documents for display.
	List(ctx context.Context) ([]domain.Document, error)

	// Get looks up a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetByPath retrieves a root document by absolute path.
	GetByPath(ctx context.Context, path string) (*domain.Document, error)

	// GetContent returns the document's full extracted text.
	GetContent(ctx context.Context, documentID string) (string, error)
}

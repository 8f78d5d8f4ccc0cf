package driven

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// DocumentStore persists the document registry and chunks.
// Backed by SQLite.
type DocumentStore interface {
	// SaveDocument stores or updates a document keyed by ID.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores the chunks of a single document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument looks up a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetDocumentByPath retrieves a root document by its absolute path.
	GetDocumentByPath(ctx context.Context, path string) (*domain.Document, error)

	// GetSubDocuments retrieves sheet sub-documents of a root document.
	GetSubDocuments(ctx context.Context, parentID string) ([]domain.Document, error)

	// GetChunk looks up a single chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// DeleteDocument removes a document, its sub-documents, and all
	// their chunks.
	DeleteDocument(ctx context.Context, id string) error

	// DeleteChunks removes all chunks for a document.
	DeleteChunks(ctx context.Context, documentID string) error

	// ListDocuments returns all root documents ordered by filename.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// CountChunks returns the total number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// GetMeta reads a registry metadata value (index model, stale flag).
	// Returns domain.ErrNotFound for missing keys.
	GetMeta(ctx context.Context, key string) (string, error)

	// SetMeta writes a registry metadata value.
	SetMeta(ctx context.Context, key, value string) error

	// Clear empties documents and chunks, keeping metadata.
	Clear(ctx context.Context) error

	// Close releases the underlying database.
	Close() error
}

package driving

import "context"

// MaintenanceService exposes administrative index operations. These are
// whole-index actions, never partial.
type MaintenanceService interface {
	// RebuildIndex clears the vector index and re-ingests every
	// registered document from disk with the current settings. Clears
	// the index-stale flag on success.
	RebuildIndex(ctx context.Context) (*IngestReport, error)

	// ClearIndex empties the vector index and the document registry.
	ClearIndex(ctx context.Context) error

	// Status reports current index health.
	Status(ctx context.Context) (*IndexStatus, error)
}

// IndexStatus is a point-in-time view of the index.
type IndexStatus struct {
	// Documents is the number of registered root documents.
	Documents int

	// Chunks is the number of stored chunks.
	Chunks int

	// Vectors is the number of index entries.
	Vectors int

	// Dimensions is the index dimensionality.
	Dimensions int

	// Model is the embedding model the index was built with.
	Model string

	// Stale is true when settings changed since the last rebuild.
	Stale bool

	// IndexPath is the vector index file location.
	IndexPath string
}

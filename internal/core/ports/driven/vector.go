package driven

import "context"

// VectorIndex stores chunk embeddings and answers nearest-neighbour
// queries. Writes are mutually exclusive; searches run concurrently with
// each other and observe every insert atomically or not at all.
type VectorIndex interface {
	// Insert adds one entry. Fails with *domain.DimensionMismatchError
	// when the vector length differs from the index dimensionality.
	Insert(ctx context.Context, entry VectorEntry) error

	// RemoveDocument drops every entry belonging to the document and
	// returns how many were removed. Used on reindex and delete.
	RemoveDocument(ctx context.Context, documentID string) (int, error)

	// Search returns the k entries nearest to the query vector by L2
	// distance, ascending, with ties broken by insertion order. A k of
	// at least Len() returns every entry. Query vectors of the wrong
	// length fail with *domain.DimensionMismatchError.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of entries in the index.
	Len() int

	// Dimensions returns the index's established dimensionality.
	Dimensions() int

	// DocumentIDs returns the distinct document IDs present, for the
	// load-time consistency check against the registry.
	DocumentIDs() []string

	// Clear removes every entry, keeping the dimensionality.
	Clear(ctx context.Context) error

	// Save persists the index to disk. On failure the previous on-disk
	// state is retained (domain.ErrIndexIO).
	Save() error

	// Close saves and releases resources.
	Close() error
}

// VectorEntry is one insertable index record.
type VectorEntry struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string

	// DocumentID back-references the owning document.
	DocumentID string

	// Vector is the chunk embedding.
	Vector []float32
}

// VectorHit is one nearest-neighbour match.
type VectorHit struct {
	// ChunkID names the matched chunk.
	ChunkID string

	// DocumentID is the chunk's owning document.
	DocumentID string

	// Distance is the L2 distance to the query (smaller is closer).
	Distance float64
}

package domain

// SearchOptions tunes a single search call.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero means the configured
	// default limit.
	Limit int
}

// SearchResult represents a single search hit: the best-matching chunk of
// one document plus the metadata the caller displays.
type SearchResult struct {
	// Document owns the matched chunk.
	Document Document

	// Chunk is the highest-scoring chunk within the document.
	Chunk Chunk

	// Score is the similarity normalised to (0, 1].
	Score float64

	// Preview is a bounded excerpt of the matched chunk, with an
	// ellipsis marker when truncated.
	Preview string
}

// SearchResponse bundles ranked results with index health information.
type SearchResponse struct {
	// Results is ordered by non-increasing score.
	Results []SearchResult

	// IndexStale is true when settings changed since the last rebuild
	// (embedding model or chunk parameters) and results may be outdated.
	IndexStale bool
}

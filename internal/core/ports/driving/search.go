package driving

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// SearchService answers free-text queries against the indexed corpus.
type SearchService interface {
	// Search embeds the query, consults the vector index, collapses
	// chunks to one result per document, and returns ranked results
	// with previews. Empty queries fail with domain.ErrInvalidQuery;
	// zero results is a valid outcome.
	Search(ctx context.Context, query string, opts domain.SearchOptions) (*domain.SearchResponse, error)
}

package driven

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// EmbeddingValidator validates embedding provider configurations.
// Implementations verify a configuration by constructing the provider and
// pinging it.
type EmbeddingValidator interface {
	// ValidateEmbedding checks that the configuration can produce a
	// reachable embedding service.
	ValidateEmbedding(ctx context.Context, settings domain.EmbeddingSettings) error
}

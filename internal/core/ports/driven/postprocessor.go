package driven

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// PostProcessor is one stage of the chunking pipeline. The chunker is
// the standard first stage and records exact character offsets on each
// chunk it creates.
type PostProcessor interface {
	// Name identifies the stage in logs and configuration.
	Name() string

	// Process produces or transforms chunks for doc. A creating stage
	// (the chunker) is called with nil chunks; later stages receive
	// the slice and return the modified one.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline runs an ordered chain of PostProcessors.
type PostProcessorPipeline interface {
	// Process pushes doc through every stage and returns the chunks
	// the last one produced.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

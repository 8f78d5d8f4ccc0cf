package postprocessors

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// ErrNilDocument is returned when Process is called without a document.
var ErrNilDocument = errors.New("nil document")

// Pipeline runs a document through an ordered chain of processors,
// satisfying driven.PostProcessorPipeline.
type Pipeline struct {
	stages []driven.PostProcessor
}

// NewPipeline builds a pipeline that runs the stages in the order given.
func NewPipeline(stages ...driven.PostProcessor) *Pipeline {
	return &Pipeline{stages: stages}
}

// Process feeds doc through every stage and returns the final chunks.
// The first stage receives nil chunks and creates them from the
// document content. Cancellation is checked between stages so a long
// chain stops promptly once ctx is done.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}

	var chunks []domain.Chunk
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var err error
		chunks, err = stage.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
	}

	return chunks, nil
}

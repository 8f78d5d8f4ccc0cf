package postprocessors

import (
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/postprocessors/chunker"
)

// RegisterDefaults wires up the built-in processors. The chunker is
// the only stage shipped today.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", newChunker)
}

// newChunker builds the chunking stage. Recognised settings:
//
//	chunk_size    characters per chunk
//	overlap       characters shared between neighbouring chunks
//	word_boundary prefer chunk ends on whitespace
//
// Absent keys leave the chunker defaults in place.
func newChunker(settings Settings) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size := settings.Int("chunk_size", 0); size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap := settings.Int("overlap", -1); overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if settings.Bool("word_boundary", false) {
		opts = append(opts, chunker.WithWordBoundary())
	}

	return chunker.New(opts...), nil
}

// Package chunker splits extracted document text into overlapping chunks.
package chunker

import (
	"context"
	"iter"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/trove/internal/core/domain"
)

const (
	// DefaultChunkSize is the number of characters per chunk when no
	// option overrides it.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is how many characters consecutive chunks
	// share when no option overrides it.
	DefaultChunkOverlap = 200

	// maxBoundaryScan bounds how far a chunk end may move back to land
	// on whitespace in word-boundary mode.
	maxBoundaryScan = 100
)

// Processor cuts document content into fixed-size chunks that overlap
// by a configurable amount. It implements the PostProcessor interface.
type Processor struct {
	chunkSize    int
	overlap      int
	wordBoundary bool
}

// Span marks a half-open [Start, End) slice of the source text.
type Span struct {
	Start int
	End   int
}

// Option adjusts the chunk geometry.
type Option func(*Processor)

// WithChunkSize overrides the chunk length. Non-positive sizes are
// ignored.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size <= 0 {
			return
		}
		p.chunkSize = size
	}
}

// WithOverlap overrides the shared span between consecutive chunks.
// Negative overlaps are ignored.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap < 0 {
			return
		}
		p.overlap = overlap
	}
}

// WithWordBoundary makes the chunker prefer ending chunks at whitespace.
// The end of a non-final chunk may shift back by up to maxBoundaryScan
// characters; the following chunk still starts exactly overlap characters
// before the shifted end, so overlaps stay exact.
func WithWordBoundary() Option {
	return func(p *Processor) {
		p.wordBoundary = true
	}
}

// New builds a processor from the default geometry plus any options.
// An overlap that reaches the chunk size is cut to a quarter of it so
// every chunk advances.
func New(opts ...Option) *Processor {
	p := &Processor{chunkSize: DefaultChunkSize, overlap: DefaultChunkOverlap}
	for _, opt := range opts {
		opt(p)
	}
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}
	return p
}

func (p *Processor) Name() string { return "chunker" }

// Spans returns the chunk boundaries for content as a lazy sequence.
// Iteration may be abandoned at any point; each call restarts from the
// beginning, so the same processor can chunk any number of documents.
func (p *Processor) Spans(content string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		contentLen := len(content)
		start := 0

		for start < contentLen {
			end := start + p.chunkSize
			if end >= contentLen {
				yield(Span{Start: start, End: contentLen})
				return
			}

			if p.wordBoundary {
				end = p.snapEnd(content, end)
			}

			if !yield(Span{Start: start, End: end}) {
				return
			}

			// Next chunk repeats the last overlap characters
			start = end - p.overlap
		}
	}
}

// snapEnd moves end back to the last whitespace within the scan window.
// The window is capped so the next start always advances past the
// current one.
func (p *Processor) snapEnd(content string, end int) int {
	scan := maxBoundaryScan
	if limit := p.chunkSize - p.overlap - 1; scan > limit {
		scan = limit
	}
	if scan <= 0 {
		return end
	}

	window := content[end-scan : end]
	idx := strings.LastIndexFunc(window, unicode.IsSpace)
	if idx < 0 {
		return end
	}

	return end - scan + idx
}

// Process replaces any prior chunks with a fresh split of the document
// content. The incoming chunk slice is ignored.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	content := doc.Content
	if content == "" {
		return nil, nil
	}

	stride := p.chunkSize - p.overlap
	chunks := make([]domain.Chunk, 0, len(content)/stride+1)

	position := 0
	for span := range p.Spans(content) {
		chunks = append(chunks, domain.Chunk{
			ID:          uuid.New().String(),
			DocumentID:  doc.ID,
			Position:    position,
			StartOffset: span.Start,
			EndOffset:   span.End,
			Content:     content[span.Start:span.End],
		})
		position++
	}

	return chunks, nil
}

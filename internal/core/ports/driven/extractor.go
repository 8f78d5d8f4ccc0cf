package driven

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// Extractor converts one source file format into plain text.
// Implementations exist per format (pdf, docx, xlsx, csv).
type Extractor interface {
	// Extensions lists the file extensions this extractor handles,
	// lowercase without the leading dot.
	Extensions() []string

	// Extract reads the file and produces one Extraction per logical
	// document in reading order. Workbooks produce one Extraction per
	// sheet; every other format produces exactly one. Failures are
	// *domain.ExtractionError naming the file and reason; callers treat
	// them as per-file, never batch-fatal.
	Extract(ctx context.Context, path string) ([]domain.Extraction, error)
}

// ExtractorRegistry selects the extractor for a file. Selection happens
// once at ingestion time; the resolved FileType is stored on the Document.
type ExtractorRegistry interface {
	// ForPath returns the extractor responsible for the file's
	// extension. Returns domain.ErrUnsupportedFormat for anything
	// outside the ingestible set.
	ForPath(path string) (Extractor, error)

	// SupportedExtensions lists all registered extensions.
	SupportedExtensions() []string
}

package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across services and adapters. Callers wrap
// them with fmt.Errorf("...: %w", err) and match with errors.Is.
var (
	// ErrNotFound reports a lookup for a document, chunk, or key that
	// is not stored.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists reports an insert that collides with a stored
	// entity.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput reports arguments a service refuses to act on.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidQuery indicates an empty or malformed search query.
	// Rejected before the index is consulted.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidChunkParams indicates chunk size/overlap violate the
	// overlap < size invariant.
	ErrInvalidChunkParams = errors.New("invalid chunk parameters")

	// ErrUnsupportedFormat indicates a file extension outside the
	// ingestible set.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrExtraction is the class sentinel for per-file extraction
	// failures. Match with errors.Is; the concrete *ExtractionError
	// names the file and reason.
	ErrExtraction = errors.New("extraction failed")

	// ErrExtractorUnavailable indicates a required external tool
	// (pdftotext) is not installed.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrDimensionMismatch is the class sentinel for vector length vs
	// index dimensionality conflicts. A mismatch is fatal to the write
	// and means the index must be rebuilt after a model change.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrIndexIO indicates the vector index failed to persist or load.
	// The operation aborts; the index stays in its last-known-good state.
	ErrIndexIO = errors.New("vector index I/O failure")

	// ErrIndexClosed indicates an operation on a closed vector index.
	ErrIndexClosed = errors.New("vector index closed")

	// ErrPathOutsideData indicates a file action path that escapes the
	// configured data directory.
	ErrPathOutsideData = errors.New("path outside data directory")

	// ErrIngestInProgress indicates a batch ingestion or rebuild is
	// already running.
	ErrIngestInProgress = errors.New("ingestion in progress")

	// ErrEmbeddingUnavailable indicates the embedding service cannot be
	// reached or is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
)

// ExtractionError reports a per-file extraction failure: which file,
// which reason. Per-file failures never abort a multi-file batch.
type ExtractionError struct {
	// Path is the file that failed.
	Path string

	// Reason is the human-readable cause (encrypted PDF, legacy binary
	// format, malformed sheet).
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error formats the failure with file and reason.
func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Reason)
}

// Unwrap exposes the underlying cause.
func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the ErrExtraction class.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}

// NewExtractionError builds an ExtractionError for path with a reason and
// optional cause.
func NewExtractionError(path, reason string, err error) *ExtractionError {
	return &ExtractionError{Path: path, Reason: reason, Err: err}
}

// DimensionMismatchError reports a vector whose length does not match the
// index's established dimensionality.
type DimensionMismatchError struct {
	// Want is the index's dimensionality.
	Want int

	// Got is the offending vector's length.
	Got int
}

// Error formats the mismatch.
func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: index expects %d, got %d (rebuild the index after changing models)", e.Want, e.Got)
}

// Is lets errors.Is match the ErrDimensionMismatch class.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

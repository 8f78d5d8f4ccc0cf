package domain

import (
	"strings"
	"time"
)

// DocumentStatus tracks where a document sits in the ingestion lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// DocumentStatusPending means the document is registered but not yet indexed.
	DocumentStatusPending DocumentStatus = "pending"

	// DocumentStatusIndexed means chunks and vectors are current.
	DocumentStatusIndexed DocumentStatus = "indexed"

	// DocumentStatusStale means the file changed since it was last indexed.
	DocumentStatusStale DocumentStatus = "stale"

	// DocumentStatusFailed means the last ingestion attempt errored.
	// The Error field carries the reason.
	DocumentStatusFailed DocumentStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentStatusPending, DocumentStatusIndexed, DocumentStatusStale, DocumentStatusFailed:
		return true
	default:
		return false
	}
}

func (s DocumentStatus) String() string { return string(s) }

// Document represents a registered source file, or one sheet of a workbook
// registered as a sub-document of the file's root document.
type Document struct {
	// ID is the registry key. Chunks and index entries reference it.
	ID string

	// Path is the absolute file path. Unique per root document; sheet
	// sub-documents share their parent's path.
	Path string

	// Filename is the base name of the file.
	Filename string

	// Extension is the lowercase file extension without the leading dot.
	Extension string

	// FileType is the coarse category resolved once at ingestion.
	FileType FileType

	// Title is the human-readable title. For sheet sub-documents this
	// includes the sheet name.
	Title string

	// Content is the full extracted text before chunking. Chunk offsets
	// are measured against this string.
	Content string

	// Size is the file size in bytes.
	Size int64

	// ModifiedAt is the file's last-modified time at registration.
	ModifiedAt time.Time

	// ContentHash is the SHA-256 hex digest of the file bytes.
	// Unchanged hashes make re-ingestion a no-op.
	ContentHash string

	// Status is the current lifecycle state.
	Status DocumentStatus

	// Error holds the failure reason when Status is failed.
	Error string

	// ParentID links a sheet sub-document to its root document.
	ParentID *string

	// ChunkCount is the number of chunks currently indexed for this document.
	ChunkCount int

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the registry entry was last modified.
	UpdatedAt time.Time

	// IndexedAt is when the document was last successfully indexed.
	IndexedAt *time.Time
}

// IsSubDocument returns true for sheet sub-documents.
func (d *Document) IsSubDocument() bool {
	return d.ParentID != nil
}

// Chunk is one indexed slice of a document's extracted text. Search
// matches chunks, so a hit points into a document rather than at it.
// Chunks are immutable; reindexing a document replaces them wholesale.
type Chunk struct {
	// ID is the index key for this chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Position orders the chunk among its document's chunks, from 0.
	Position int

	// StartOffset is the chunk's first character offset in the extracted text.
	StartOffset int

	// EndOffset is one past the chunk's last character offset.
	EndOffset int

	// Content is the chunk's slice of the extracted text.
	Content string

	// Embedding is the chunk's vector, empty until the embedder has run.
	Embedding []float32
}

// Len returns the chunk length in characters.
func (c *Chunk) Len() int {
	return c.EndOffset - c.StartOffset
}

// Segment is one extracted run of text with a human-readable source
// location such as "page 3" or "row 12". Location may be empty.
type Segment struct {
	Text     string
	Location string
}

// Extraction is the ordered text of one logical document produced by an
// extractor. Workbooks yield one Extraction per sheet; everything else
// yields exactly one.
type Extraction struct {
	// Title is the human-readable title, usually derived from the filename.
	Title string

	// Sheet is the sheet name for workbook extractions, empty otherwise.
	Sheet string

	// Segments is the ordered sequence of extracted text runs.
	Segments []Segment
}

// Text joins all segments into the full extracted text. Chunk offsets are
// measured against this string.
func (e Extraction) Text() string {
	if len(e.Segments) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Segments))
	for _, s := range e.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}

// IsEmpty returns true when the extraction carries no text at all.
func (e Extraction) IsEmpty() bool {
	for _, s := range e.Segments {
		if strings.TrimSpace(s.Text) != "" {
			return false
		}
	}
	return true
}

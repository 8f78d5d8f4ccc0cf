package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocument_IndexingLifecycle(t *testing.T) {
	doc := Document{
		ID:       "doc-1",
		Path:     "/data/reports/q3.xlsx",
		Filename: "q3.xlsx",
		FileType: FileTypeSpreadsheet,
		Status:   DocumentStatusPending,
	}

	assert.Nil(t, doc.IndexedAt)
	assert.Zero(t, doc.ChunkCount)

	indexedAt := time.Now()
	doc.Status = DocumentStatusIndexed
	doc.ChunkCount = 7
	doc.IndexedAt = &indexedAt

	assert.Equal(t, DocumentStatusIndexed, doc.Status)
	require.NotNil(t, doc.IndexedAt)
	assert.Equal(t, indexedAt, *doc.IndexedAt)
}

func TestDocument_IsSubDocument(t *testing.T) {
	parentID := "root-1"

	root := Document{ID: "root-1"}
	sheet := Document{ID: "sheet-1", ParentID: &parentID}

	assert.False(t, root.IsSubDocument())
	assert.True(t, sheet.IsSubDocument())
}

func TestDocumentStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status DocumentStatus
		valid  bool
	}{
		{"pending", DocumentStatusPending, true},
		{"indexed", DocumentStatusIndexed, true},
		{"stale", DocumentStatusStale, true},
		{"failed", DocumentStatusFailed, true},
		{"empty", DocumentStatus(""), false},
		{"unknown", DocumentStatus("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
		})
	}
}

func TestChunk_Len(t *testing.T) {
	chunk := Chunk{
		ID:          "chunk-1",
		DocumentID:  "doc-1",
		Position:    2,
		StartOffset: 1600,
		EndOffset:   2600,
		Content:     "...",
	}

	assert.Equal(t, 1000, chunk.Len())
}

func TestExtraction_Text(t *testing.T) {
	ex := Extraction{
		Title: "notes",
		Segments: []Segment{
			{Text: "first line", Location: "page 1"},
			{Text: "second line", Location: "page 1"},
			{Text: "third line", Location: "page 2"},
		},
	}

	assert.Equal(t, "first line\nsecond line\nthird line", ex.Text())
}

func TestExtraction_Text_Empty(t *testing.T) {
	assert.Equal(t, "", Extraction{}.Text())
	assert.True(t, Extraction{}.IsEmpty())
}

func TestExtraction_IsEmpty(t *testing.T) {
	blank := Extraction{Segments: []Segment{{Text: "   "}, {Text: "\n\t"}}}
	assert.True(t, blank.IsEmpty())

	full := Extraction{Segments: []Segment{{Text: "   "}, {Text: "content"}}}
	assert.False(t, full.IsEmpty())
}

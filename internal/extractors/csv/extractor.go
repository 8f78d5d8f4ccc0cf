// Package csv extracts text from comma-separated value files.
package csv

import (
	"context"
	stdcsv "encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// cellSeparator joins the cells of a row into one text line.
const cellSeparator = " | "

// Extractor handles CSV files.
type Extractor struct{}

// New creates a new CSV extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"csv"}
}

// Extract flattens each row into one text line with cells joined by " | ".
// Rows keep their source numbering; blank rows are skipped.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Extraction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.NewExtractionError(path, "cannot open file", err)
	}
	defer f.Close()

	reader := stdcsv.NewReader(f)
	reader.FieldsPerRecord = -1 // Ragged rows are common in exports

	var segments []domain.Segment
	row := 0
	for {
		if row%256 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, domain.NewExtractionError(path, "malformed csv", err)
		}
		row++

		if isBlank(record) {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:     strings.Join(record, cellSeparator),
			Location: fmt.Sprintf("row %d", row),
		})
	}

	return []domain.Extraction{{
		Title:    titleFromFilename(path),
		Segments: segments,
	}}, nil
}

// isBlank reports whether every cell in the record is empty.
func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// titleFromFilename derives a readable title from the file name.
func titleFromFilename(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// Package xlsx extracts text from Excel workbooks.
//
// Each sheet becomes its own Extraction so the registry can index it as
// a logical sub-document. Legacy binary .xls files are routed here by
// the registry so the failure surfaces as a per-file extraction error.
package xlsx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// cellSeparator joins the cells of a row into one text line.
const cellSeparator = " | "

// Extractor handles Excel workbooks.
type Extractor struct{}

// New creates a new Excel extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"xlsx", "xls"}
}

// Extract reads every sheet in workbook order and flattens each row into
// one text line with cells joined by " | ". Sheets without content are
// dropped; row locations keep their sheet-local numbering.
func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Extraction, error) {
	if domain.NormaliseExtension(filepath.Ext(path)) == "xls" {
		return nil, domain.NewExtractionError(path,
			"legacy binary .xls format is not supported, convert to .xlsx", nil)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.NewExtractionError(path,
			"cannot open workbook, file may be encrypted or corrupt", err)
	}
	defer f.Close()

	title := titleFromFilename(path)

	var extractions []domain.Extraction
	for _, sheet := range f.GetSheetList() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, domain.NewExtractionError(path,
				fmt.Sprintf("cannot read sheet %q", sheet), err)
		}

		var segments []domain.Segment
		for i, row := range rows {
			if i%256 == 0 && ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if isBlank(row) {
				continue
			}
			segments = append(segments, domain.Segment{
				Text:     strings.Join(row, cellSeparator),
				Location: fmt.Sprintf("row %d", i+1),
			})
		}
		if len(segments) == 0 {
			continue
		}

		extractions = append(extractions, domain.Extraction{
			Title:    title,
			Sheet:    sheet,
			Segments: segments,
		})
	}

	return extractions, nil
}

// isBlank reports whether every cell in the row is empty.
func isBlank(row []string) bool {
	for _, cell := range row {
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

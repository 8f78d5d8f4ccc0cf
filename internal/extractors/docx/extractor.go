// Package docx extracts text from Word documents.
//
// Only the OOXML .docx container is parsed directly. Legacy binary .doc
// files are routed here by the registry so the failure surfaces as a
// per-file extraction error instead of rejecting the whole batch.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// cellSeparator joins table cells into one text line.
const cellSeparator = " | "

// Extractor handles Word documents.
type Extractor struct{}

// New creates a new Word extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"docx", "doc"}
}

// Extract parses the document archive and emits one segment per
// paragraph, followed by one segment per table row.
func (e *Extractor) Extract(_ context.Context, path string) ([]domain.Extraction, error) {
	if domain.NormaliseExtension(filepath.Ext(path)) == "doc" {
		return nil, domain.NewExtractionError(path,
			"legacy binary .doc format is not supported, convert to .docx", nil)
	}

	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, domain.NewExtractionError(path,
			"not a valid Word document archive", err)
	}
	defer reader.Close()

	body, err := readDocumentXML(&reader.Reader)
	if err != nil {
		return nil, domain.NewExtractionError(path, "cannot read document body", err)
	}

	return []domain.Extraction{{
		Title:    extractTitle(&reader.Reader, path),
		Segments: collectSegments(body),
	}}, nil
}

// readDocumentXML parses word/document.xml from the archive.
// A missing body is treated as an empty document, matching how
// word processors handle stripped archives.
func readDocumentXML(reader *zip.Reader) (documentXML, error) {
	var doc documentXML
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return doc, err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return doc, err
		}

		if err := xml.Unmarshal(content, &doc); err != nil {
			return doc, err
		}
		return doc, nil
	}
	return doc, nil
}

// documentXML represents the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

// collectSegments turns body paragraphs and table rows into segments.
// Empty paragraphs and rows are dropped; locations keep source numbering.
func collectSegments(doc documentXML) []domain.Segment {
	var segments []domain.Segment

	for i, para := range doc.Body.Paragraphs {
		text := paragraphText(para)
		if text == "" {
			continue
		}
		segments = append(segments, domain.Segment{
			Text:     text,
			Location: fmt.Sprintf("paragraph %d", i+1),
		})
	}

	for ti, tbl := range doc.Body.Tables {
		for ri, row := range tbl.Rows {
			cells := make([]string, 0, len(row.Cells))
			blank := true
			for _, cell := range row.Cells {
				text := cellText(cell)
				if text != "" {
					blank = false
				}
				cells = append(cells, text)
			}
			if blank {
				continue
			}
			segments = append(segments, domain.Segment{
				Text:     strings.Join(cells, cellSeparator),
				Location: fmt.Sprintf("table %d row %d", ti+1, ri+1),
			})
		}
	}

	return segments
}

// paragraphText concatenates all run text in a paragraph.
func paragraphText(para paragraph) string {
	var result strings.Builder
	for _, run := range para.Runs {
		for _, text := range run.Text {
			result.WriteString(text.Content)
		}
	}
	return strings.TrimSpace(result.String())
}

// cellText joins the paragraphs of a table cell with spaces.
func cellText(cell tableCell) string {
	var parts []string
	for _, para := range cell.Paragraphs {
		if text := paragraphText(para); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle extracts the title from docProps/core.xml or falls back to filename.
func extractTitle(reader *zip.Reader, path string) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			break
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil && core.Title != "" {
			return strings.TrimSpace(core.Title)
		}
		break
	}

	return titleFromFilename(path)
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

package domain

import "strings"

// FileType is the coarse document category, resolved from the extension
// once at ingestion time and stored on the Document.
type FileType string

// Supported file types.
const (
	// FileTypePDF covers .pdf files.
	FileTypePDF FileType = "pdf"

	// FileTypeWord covers .docx and legacy .doc files.
	FileTypeWord FileType = "word"

	// FileTypeSpreadsheet covers .xlsx and legacy .xls workbooks.
	FileTypeSpreadsheet FileType = "spreadsheet"

	// FileTypeCSV covers .csv files.
	FileTypeCSV FileType = "csv"

	// FileTypeOther is anything unrecognised. Not ingestible.
	FileTypeOther FileType = "other"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypePDF, FileTypeWord, FileTypeSpreadsheet, FileTypeCSV, FileTypeOther:
		return true
	default:
		return false
	}
}

// Ingestible returns true if documents of this type can be indexed.
func (t FileType) Ingestible() bool {
	return t.IsValid() && t != FileTypeOther
}

// String returns the string representation.
func (t FileType) String() string {
	return string(t)
}

// Description returns a human-readable description of the type.
func (t FileType) Description() string {
	switch t {
	case FileTypePDF:
		return "PDF document"
	case FileTypeWord:
		return "Word document"
	case FileTypeSpreadsheet:
		return "Excel workbook"
	case FileTypeCSV:
		return "CSV file"
	case FileTypeOther:
		return "Unsupported file"
	default:
		return unknownDescription
	}
}

// FileTypeForExtension maps a file extension to its type. The extension
// may be any case and may carry a leading dot.
func FileTypeForExtension(ext string) FileType {
	switch NormaliseExtension(ext) {
	case "pdf":
		return FileTypePDF
	case "docx", "doc":
		return FileTypeWord
	case "xlsx", "xls":
		return FileTypeSpreadsheet
	case "csv":
		return FileTypeCSV
	default:
		return FileTypeOther
	}
}

// NormaliseExtension lowercases an extension and strips any leading dot.
func NormaliseExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// AllowedExtensions lists the extensions accepted for ingestion, in
// display order.
func AllowedExtensions() []string {
	return []string{"pdf", "docx", "doc", "xlsx", "xls", "csv"}
}

// ExtensionAllowed returns true if files with this extension can be ingested.
func ExtensionAllowed(ext string) bool {
	return FileTypeForExtension(ext).Ingestible()
}

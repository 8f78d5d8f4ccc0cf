// Package messages holds the Bubbletea message vocabulary shared by
// the TUI screens. Commands started by one screen report back through
// these types, and the app model routes each result to the screen that
// owns it.
package messages

import (
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// ViewType identifies one screen of the interface.
type ViewType int

const (
	// ViewMenu is the top-level navigation screen.
	ViewMenu ViewType = iota
	// ViewSearch is the query-and-results screen.
	ViewSearch
	// ViewDocuments lists the document library.
	ViewDocuments
	// ViewDocContent shows the extracted text of one document.
	ViewDocContent
	// ViewDocDetails shows the metadata card of one document.
	ViewDocDetails
	// ViewStatus shows index health and rebuild controls.
	ViewStatus
	// ViewSettings edits the application settings.
	ViewSettings
	// ViewHelp is the keyboard reference.
	ViewHelp
)

var viewNames = [...]string{
	ViewMenu:       "menu",
	ViewSearch:     "search",
	ViewDocuments:  "documents",
	ViewDocContent: "doc_content",
	ViewDocDetails: "doc_details",
	ViewStatus:     "status",
	ViewSettings:   "settings",
	ViewHelp:       "help",
}

func (v ViewType) String() string {
	if v >= 0 && int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

// ViewChanged asks the app to switch to another screen.
type ViewChanged struct {
	View ViewType
}

// Quit asks the app to exit.
type Quit struct{}

// ErrorOccurred reports a failure to the active screen.
type ErrorOccurred struct {
	Err error
}

// SearchCompleted delivers the outcome of a search command.
type SearchCompleted struct {
	Response *domain.SearchResponse
	Err      error
}

// DocumentsLoaded delivers the library listing.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// DocumentSelected asks the app to open a document in the content
// screen.
type DocumentSelected struct {
	Document domain.Document
}

// DocumentContentLoaded delivers the extracted text of a document.
type DocumentContentLoaded struct {
	DocumentID string
	Content    string
	Err        error
}

// DocumentDetailsLoaded delivers a freshly fetched document record for
// the details screen.
type DocumentDetailsLoaded struct {
	DocumentID string
	Document   *domain.Document
	Err        error
}

// DocumentRemoved reports the outcome of removing a document from the
// library.
type DocumentRemoved struct {
	Path string
	Err  error
}

// StatusLoaded delivers an index status snapshot.
type StatusLoaded struct {
	Status *driving.IndexStatus
	Err    error
}

// RebuildCompleted reports the outcome of an index rebuild.
type RebuildCompleted struct {
	Report *driving.IngestReport
	Err    error
}

// SettingsLoaded delivers the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved reports the outcome of saving the settings.
type SettingsSaved struct {
	Err error
}

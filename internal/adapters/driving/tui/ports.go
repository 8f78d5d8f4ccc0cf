// Package tui implements the interactive terminal interface. It is a
// driving adapter: the Bubble Tea program talks to the core services
// through the interfaces collected in Ports.
package tui

import (
	"errors"

	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// Validation sentinels for required ports.
var (
	ErrMissingSearchService   = errors.New("tui: search service is required")
	ErrMissingDocumentService = errors.New("tui: document service is required")
)

// Ports collects the core services the TUI drives. Search and Document
// are required. The rest are optional; views that need a missing one
// report unavailability per operation.
type Ports struct {
	Search   driving.SearchService
	Document driving.DocumentService

	// Ingest registers and removes documents.
	Ingest driving.IngestService

	// Settings reads and updates application settings.
	Settings driving.SettingsService

	// Maintenance exposes index status and rebuild.
	Maintenance driving.MaintenanceService

	// Action dispatches file actions (open, reveal, copy).
	Action driving.FileActionService
}

// Validate reports whether the required services are present.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}

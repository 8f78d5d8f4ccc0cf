package mcp

import (
	"errors"

	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// ErrMissingSearchService is returned when Ports carries no search
// service.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// Ports collects the core services the MCP server exposes. Search is
// required. Document is optional; the document tools and resources
// report unavailability per call when it is absent.
type Ports struct {
	Search   driving.SearchService
	Document driving.DocumentService
}

// Validate reports whether the required services are present.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

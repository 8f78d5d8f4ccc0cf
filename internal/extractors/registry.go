package extractors

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to their extractors.
// It implements the ExtractorRegistry interface.
type Registry struct {
	byExtension map[string]driven.Extractor
}

// NewRegistry creates an empty extractor registry.
func NewRegistry() *Registry {
	return &Registry{
		byExtension: make(map[string]driven.Extractor),
	}
}

// Register adds an extractor under every extension it reports.
// Later registrations win on conflict.
func (r *Registry) Register(e driven.Extractor) {
	for _, ext := range e.Extensions() {
		r.byExtension[domain.NormaliseExtension(ext)] = e
	}
}

// ForPath returns the extractor responsible for the file's extension.
// Returns domain.ErrUnsupportedFormat for anything not registered.
func (r *Registry) ForPath(path string) (driven.Extractor, error) {
	ext := domain.NormaliseExtension(filepath.Ext(path))
	e, ok := r.byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Base(path))
	}
	return e, nil
}

// SupportedExtensions lists all registered extensions, sorted.
func (r *Registry) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExtension))
	for ext := range r.byExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

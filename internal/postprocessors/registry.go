package postprocessors

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Settings holds processor options as they come out of the config
// decoder. Lookups on a nil map are safe and return the fallback.
type Settings map[string]any

// Int returns the integer at key, or fallback when the key is absent
// or holds a non-numeric value. TOML decodes integers as int64 and
// JSON as float64; both are accepted.
func (s Settings) Int(key string, fallback int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return fallback
}

// Bool returns the boolean at key, or fallback when absent.
func (s Settings) Bool(key string, fallback bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return fallback
}

// Factory builds a processor from its settings.
type Factory func(settings Settings) (driven.PostProcessor, error)

// Registry resolves processor names to factories. It lets pipelines be
// assembled from configuration without the caller knowing concrete
// processor types.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Registering a name twice
// replaces the earlier factory.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Build constructs the named processor with the given settings.
func (r *Registry) Build(name string, settings Settings) (driven.PostProcessor, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown processor %q", name)
	}
	return factory(settings)
}

// Names returns the registered processor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

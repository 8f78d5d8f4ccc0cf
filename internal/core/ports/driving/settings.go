package driving

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// SettingsService reads, edits, and persists the settings snapshot.
type SettingsService interface {
	// Get retrieves the current settings snapshot.
	Get() (*domain.AppSettings, error)

	// Save validates and persists a full settings snapshot. Changes to
	// the embedding model or chunk parameters mark the index stale.
	Save(settings *domain.AppSettings) error

	// Update sets a single field by dot-notation key ("embedding.model",
	// "chunker.chunk_size") from its string representation.
	Update(key, value string) error

	// Reset restores documented defaults.
	Reset() error

	// GetDefaults returns the documented default settings.
	GetDefaults() domain.AppSettings

	// IndexStale reports whether the index must be rebuilt before
	// results are trustworthy.
	IndexStale() bool

	// ClearIndexStale clears the stale flag after a successful rebuild.
	ClearIndexStale() error

	// ValidateEmbeddingConfig validates the embedding configuration by
	// constructing the provider and pinging it.
	ValidateEmbeddingConfig(ctx context.Context) error

	// Keys lists the updatable dot-notation keys with current values.
	Keys() []SettingsKey
}

// SettingsKey describes one updatable configuration field.
type SettingsKey struct {
	// Key is the dot-notation name.
	Key string

	// Value is the current value rendered as a string.
	Value string

	// Description explains the field.
	Description string
}

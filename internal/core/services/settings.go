package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var _ driving.SettingsService = (*SettingsService)(nil)

// Dot-notation keys under which settings persist in the config store.
//
//nolint:gosec // G101: config key names, not credentials.
const (
	keyDataDir       = "data_dir"
	keyVectorDBPath  = "vector_db_path"
	keyDatabasePath  = "database_path"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyChunkSize     = "chunker.chunk_size"
	keyChunkOverlap  = "chunker.overlap"
	keySearchLimit   = "search.default_limit"
	keyIngestWorkers = "ingest.workers"
	keyIngestTimeout = "ingest.document_timeout"
	keyIndexStale    = "index.stale"
)

// Environment fallbacks consulted when the store carries no value.
const (
	envOpenAIAPIKey  = "OPENAI_API_KEY"
	envOllamaBaseURL = "TROVE_OLLAMA_URL"
)

// maskedSecretRender replaces the API key anywhere settings render.
const maskedSecretRender = "********"

// SettingsService manages application settings backed by the config store.
type SettingsService struct {
	configStore driven.ConfigStore
	validator   driven.EmbeddingValidator
}

// NewSettingsService creates a new settings service. The validator may be
// nil, in which case ValidateEmbeddingConfig is a no-op.
func NewSettingsService(configStore driven.ConfigStore, validator driven.EmbeddingValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validator:   validator,
	}
}

// Get retrieves the current settings snapshot. Unset keys fall back to
// documented defaults; the OpenAI API key and Ollama base URL also fall
// back to the environment.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	// The base URL carries no default here; each embedding adapter
	// falls back to its own endpoint.
	embedding := domain.EmbeddingSettings{
		Provider: s.getProvider(defaults.Embedding.Provider),
		Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
		BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
		APIKey:   s.configStore.GetString(keyEmbedAPIKey),
	}
	if embedding.APIKey == "" {
		embedding.APIKey = os.Getenv(envOpenAIAPIKey)
	}
	if embedding.BaseURL == "" {
		embedding.BaseURL = os.Getenv(envOllamaBaseURL)
	}

	return &domain.AppSettings{
		DataDir:      s.getString(keyDataDir, defaults.DataDir),
		VectorDBPath: s.getString(keyVectorDBPath, defaults.VectorDBPath),
		DatabasePath: s.getString(keyDatabasePath, defaults.DatabasePath),
		Embedding:    embedding,
		Chunker: domain.ChunkerSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunker.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunker.Overlap),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(keySearchLimit, defaults.Search.DefaultLimit),
		},
		Ingest: domain.IngestSettings{
			Workers:         s.getInt(keyIngestWorkers, defaults.Ingest.Workers),
			DocumentTimeout: s.getDuration(keyIngestTimeout, defaults.Ingest.DocumentTimeout),
		},
	}, nil
}

// Save validates and persists a full settings snapshot. Changes to the
// embedding provider or model, or to chunk parameters, mark the index
// stale: its vectors no longer match what ingestion would produce.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	current, err := s.Get()
	if err != nil {
		return err
	}

	if err := s.writeAll(settings); err != nil {
		return err
	}

	if indexAffected(current, settings) {
		return s.MarkIndexStale()
	}
	return nil
}

// Update sets a single field by dot-notation key from its string
// representation. The full snapshot is validated before persisting.
func (s *SettingsService) Update(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	switch key {
	case keyDataDir:
		settings.DataDir = value
	case keyVectorDBPath:
		settings.VectorDBPath = value
	case keyDatabasePath:
		settings.DatabasePath = value
	case keyEmbedProvider:
		settings.Embedding.Provider = domain.EmbeddingProvider(value)
	case keyEmbedModel:
		settings.Embedding.Model = value
	case keyEmbedBaseURL:
		settings.Embedding.BaseURL = value
	case keyEmbedAPIKey:
		settings.Embedding.APIKey = value
	case keyChunkSize:
		n, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		settings.Chunker.ChunkSize = n
	case keyChunkOverlap:
		n, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		settings.Chunker.Overlap = n
	case keySearchLimit:
		n, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		settings.Search.DefaultLimit = n
	case keyIngestWorkers:
		n, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		settings.Ingest.Workers = n
	case keyIngestTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be a duration like \"90s\" or \"2m\"", domain.ErrInvalidInput, key)
		}
		settings.Ingest.DocumentTimeout = d
	default:
		return fmt.Errorf("%w: unknown settings key %q", domain.ErrInvalidInput, key)
	}

	return s.Save(settings)
}

// Reset restores documented defaults. The index-stale flag is set when
// the prior configuration indexed with a different model or chunking.
func (s *SettingsService) Reset() error {
	prior, err := s.Get()
	if err != nil {
		return err
	}

	if err := s.configStore.Reset(); err != nil {
		return fmt.Errorf("reset config: %w", err)
	}

	defaults := domain.DefaultAppSettings()
	if err := s.writeAll(&defaults); err != nil {
		return err
	}

	if indexAffected(prior, &defaults) {
		return s.MarkIndexStale()
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// IndexStale reports whether the index must be rebuilt before results
// are trustworthy.
func (s *SettingsService) IndexStale() bool {
	return s.configStore.GetBool(keyIndexStale)
}

// ClearIndexStale clears the stale flag after a successful rebuild.
func (s *SettingsService) ClearIndexStale() error {
	if err := s.configStore.Set(keyIndexStale, false); err != nil {
		return fmt.Errorf("clear stale flag: %w", err)
	}
	return nil
}

// ValidateEmbeddingConfig validates the embedding configuration by
// constructing the provider and pinging it.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.validator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.validator.ValidateEmbedding(ctx, settings.Embedding)
}

// Keys lists the updatable dot-notation keys with current values.
// The API key renders masked.
func (s *SettingsService) Keys() []driving.SettingsKey {
	settings, err := s.Get()
	if err != nil {
		return nil
	}

	apiKey := ""
	if settings.Embedding.APIKey != "" {
		apiKey = maskedSecretRender
	}

	return []driving.SettingsKey{
		{Key: keyDataDir, Value: settings.DataDir, Description: "Directory holding ingested documents"},
		{Key: keyVectorDBPath, Value: settings.VectorDBPath, Description: "Vector index file location"},
		{Key: keyDatabasePath, Value: settings.DatabasePath, Description: "Document registry database location"},
		{Key: keyEmbedProvider, Value: settings.Embedding.Provider.String(), Description: "Embedding backend: local, ollama, or openai"},
		{Key: keyEmbedModel, Value: settings.Embedding.Model, Description: "Embedding model name"},
		{Key: keyEmbedBaseURL, Value: settings.Embedding.BaseURL, Description: "Embedding API endpoint (Ollama)"},
		{Key: keyEmbedAPIKey, Value: apiKey, Description: "Embedding API key (OpenAI)"},
		{Key: keyChunkSize, Value: strconv.Itoa(settings.Chunker.ChunkSize), Description: "Maximum chunk length in characters"},
		{Key: keyChunkOverlap, Value: strconv.Itoa(settings.Chunker.Overlap), Description: "Characters shared by consecutive chunks"},
		{Key: keySearchLimit, Value: strconv.Itoa(settings.Search.DefaultLimit), Description: "Default search result count"},
		{Key: keyIngestWorkers, Value: strconv.Itoa(settings.Ingest.Workers), Description: "Documents processed concurrently"},
		{Key: keyIngestTimeout, Value: settings.Ingest.DocumentTimeout.String(), Description: "Per-document processing timeout"},
	}
}

// writeAll persists every settings field to the config store.
func (s *SettingsService) writeAll(settings *domain.AppSettings) error {
	if err := s.configStore.Set(keyDataDir, settings.DataDir); err != nil {
		return fmt.Errorf("save data dir: %w", err)
	}
	if err := s.configStore.Set(keyVectorDBPath, settings.VectorDBPath); err != nil {
		return fmt.Errorf("save vector db path: %w", err)
	}
	if err := s.configStore.Set(keyDatabasePath, settings.DatabasePath); err != nil {
		return fmt.Errorf("save database path: %w", err)
	}
	if err := s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, settings.Embedding.Model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if err := s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL); err != nil {
		return fmt.Errorf("save embedding base_url: %w", err)
	}
	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != os.Getenv(envOpenAIAPIKey) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if err := s.configStore.Set(keyChunkSize, settings.Chunker.ChunkSize); err != nil {
		return fmt.Errorf("save chunk size: %w", err)
	}
	if err := s.configStore.Set(keyChunkOverlap, settings.Chunker.Overlap); err != nil {
		return fmt.Errorf("save chunk overlap: %w", err)
	}
	if err := s.configStore.Set(keySearchLimit, settings.Search.DefaultLimit); err != nil {
		return fmt.Errorf("save search limit: %w", err)
	}
	if err := s.configStore.Set(keyIngestWorkers, settings.Ingest.Workers); err != nil {
		return fmt.Errorf("save ingest workers: %w", err)
	}
	if err := s.configStore.Set(keyIngestTimeout, settings.Ingest.DocumentTimeout.String()); err != nil {
		return fmt.Errorf("save ingest timeout: %w", err)
	}
	return nil
}

// MarkIndexStale flags the index as out of date with the active
// settings. Called internally on index-affecting changes, and at startup
// when the on-disk index was built under different settings.
func (s *SettingsService) MarkIndexStale() error {
	if err := s.configStore.Set(keyIndexStale, true); err != nil {
		return fmt.Errorf("set stale flag: %w", err)
	}
	return nil
}

// indexAffected reports whether the change invalidates existing vectors.
// A provider switch counts even at equal dimensions: different backends
// produce different vector spaces for the same model name.
func indexAffected(before, after *domain.AppSettings) bool {
	return before.Embedding.Provider != after.Embedding.Provider ||
		before.Embedding.Model != after.Embedding.Model ||
		before.Chunker.ChunkSize != after.Chunker.ChunkSize ||
		before.Chunker.Overlap != after.Chunker.Overlap
}

// parseIntValue converts a settings value to an int.
func parseIntValue(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
	}
	return n, nil
}

// The read helpers below fall back to the supplied default whenever a
// key is unset or its stored value does not parse.

func (s *SettingsService) getString(key, fallback string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return fallback
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}

func (s *SettingsService) getProvider(fallback domain.EmbeddingProvider) domain.EmbeddingProvider {
	provider := domain.EmbeddingProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return fallback
	}
	return provider
}

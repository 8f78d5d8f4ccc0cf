package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

const unknownDescription = "Unknown"

// EmbeddingProvider identifies an embedding backend.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderLocal is the built-in deterministic feature-hashing
	// embedder. Works offline with no external services.
	EmbeddingProviderLocal EmbeddingProvider = "local"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderLocal, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderLocal
}

func (p EmbeddingProvider) String() string { return string(p) }

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderLocal:
		return "Built-in (offline, deterministic)"
	case EmbeddingProviderOllama:
		return "Ollama (local server)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every supported provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderLocal,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns the default model for each provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderLocal:  "all-MiniLM-L6-v2",
		EmbeddingProviderOllama: "nomic-embed-text",
		EmbeddingProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
// The vector index refuses vectors whose length differs from the active
// model's dimensions.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Sentence-transformer models (local provider, Ollama)
		"all-MiniLM-L6-v2":        384,
		"paraphrase-MiniLM-L6-v2": 384,
		"all-mpnet-base-v2":       768,
		"nomic-embed-text":        768,
		"mxbai-embed-large":       1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
	}
}

// ModelDimensions returns the dimensions for a model name, or false if
// the model is unknown.
func ModelDimensions(model string) (int, bool) {
	dims, ok := EmbeddingDimensions()[model]
	return dims, ok
}

// KnownEmbeddingModels returns all recognised model names, sorted.
func KnownEmbeddingModels() []string {
	dims := EmbeddingDimensions()
	names := make([]string, 0, len(dims))
	for name := range dims {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EmbeddingSettings selects the embedding backend and model.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider EmbeddingProvider

	// Model is the embedding model name. Must be a known model.
	Model string

	// BaseURL overrides the Ollama server address. Ignored by the
	// other providers.
	BaseURL string

	// APIKey authenticates against OpenAI. Ignored by the local
	// providers.
	APIKey string
}

// IsConfigured returns true if the provider can be constructed as-is.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if _, ok := ModelDimensions(e.Model); !ok {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Dimensions returns the active model's vector dimensions, or zero when
// the model is unknown.
func (e EmbeddingSettings) Dimensions() int {
	dims, _ := ModelDimensions(e.Model)
	return dims
}

// ChunkerSettings holds text chunking parameters.
type ChunkerSettings struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// Overlap is the number of characters shared by consecutive chunks.
	// Must be strictly less than ChunkSize.
	Overlap int
}

// Validate checks the chunk parameter invariant.
func (c ChunkerSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size %d: %w", c.ChunkSize, ErrInvalidChunkParams)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("overlap %d with chunk size %d: %w", c.Overlap, c.ChunkSize, ErrInvalidChunkParams)
	}
	return nil
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// DefaultLimit is the result count used when a query does not
	// specify one.
	DefaultLimit int
}

// IngestSettings holds ingestion pipeline configuration.
type IngestSettings struct {
	// Workers is the number of documents processed concurrently.
	Workers int

	// DocumentTimeout bounds the extract+chunk+embed time for a single
	// document. A timed-out document fails alone; the batch continues.
	DocumentTimeout time.Duration
}

// AppSettings holds all application settings. Services receive an
// immutable snapshot at construction; updates produce a new snapshot
// through the settings service rather than mutating shared state.
type AppSettings struct {
	// DataDir is the directory holding ingested documents.
	DataDir string

	// VectorDBPath is the vector index file location.
	VectorDBPath string

	// DatabasePath is the sqlite registry location.
	DatabasePath string

	// Embedding selects the embedding backend and model.
	Embedding EmbeddingSettings

	// Chunker holds chunking parameters.
	Chunker ChunkerSettings

	// Search holds search behaviour settings.
	Search SearchSettings

	// Ingest holds ingestion pipeline settings.
	Ingest IngestSettings
}

// Validate checks cross-field invariants before settings are persisted.
func (s AppSettings) Validate() error {
	if s.DataDir == "" {
		return fmt.Errorf("data directory must not be empty: %w", ErrInvalidInput)
	}
	if s.VectorDBPath == "" {
		return fmt.Errorf("vector db path must not be empty: %w", ErrInvalidInput)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("embedding provider %q: %w", s.Embedding.Provider, ErrInvalidInput)
	}
	if _, ok := ModelDimensions(s.Embedding.Model); !ok {
		return fmt.Errorf("embedding model %q: %w", s.Embedding.Model, ErrInvalidInput)
	}
	if err := s.Chunker.Validate(); err != nil {
		return err
	}
	if s.Search.DefaultLimit <= 0 {
		return fmt.Errorf("default limit %d: %w", s.Search.DefaultLimit, ErrInvalidInput)
	}
	if s.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest workers %d: %w", s.Ingest.Workers, ErrInvalidInput)
	}
	return nil
}

// DefaultAppSettings returns settings with documented defaults. Paths are
// rooted under the per-OS application data directory.
func DefaultAppSettings() AppSettings {
	base := AppDataDir()
	return AppSettings{
		DataDir:      filepath.Join(base, "documents"),
		VectorDBPath: filepath.Join(base, "index", "vectors.idx"),
		DatabasePath: filepath.Join(base, "trove.db"),
		Embedding: EmbeddingSettings{
			Provider: EmbeddingProviderLocal,
			Model:    "all-MiniLM-L6-v2",
		},
		Chunker: ChunkerSettings{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Search: SearchSettings{
			DefaultLimit: 10,
		},
		Ingest: IngestSettings{
			Workers:         4,
			DocumentTimeout: 2 * time.Minute,
		},
	}
}

// AppDataDir returns the per-OS application data directory:
// %APPDATA%\Trove on Windows, ~/Library/Application Support/Trove on
// macOS, $XDG_DATA_HOME/trove (default ~/.local/share/trove) elsewhere.
func AppDataDir() string {
	switch runtime.GOOS {
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Trove")
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", "Trove")
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "trove")
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", "trove")
		}
	}
	// Last resort when the home directory cannot be resolved.
	return filepath.Join(".", ".trove")
}

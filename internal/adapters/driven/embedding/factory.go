// Package embedding provides factory functions for creating embedding
// service adapters.
package embedding

import (
	"context"
	"fmt"
	"time"

	hashembed "github.com/custodia-labs/trove/internal/adapters/driven/embedding/hash"
	ollamaembed "github.com/custodia-labs/trove/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/trove/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateService creates the appropriate embedding service based on settings.
func CreateService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider %q with model %q is not fully configured",
			domain.ErrEmbeddingUnavailable, settings.Provider, settings.Model)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderLocal:
		return createHashEmbedding(settings), nil

	case domain.EmbeddingProviderOllama:
		return createOllamaEmbedding(settings), nil

	case domain.EmbeddingProviderOpenAI:
		return createOpenAIEmbedding(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateAndValidateService creates an embedding service and validates
// connectivity. Returns the service if successful, or an error with guidance.
func CreateAndValidateService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w. Run 'trove settings setup' to fix", err)
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'trove settings setup' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	return svc, nil
}

// ValidateConfig validates an embedding configuration by creating a service
// and pinging it. This is intended for the settings setup wizard to validate
// credentials on configuration.
func ValidateConfig(settings domain.EmbeddingSettings) error {
	svc, err := CreateService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// createHashEmbedding creates the built-in deterministic embedding service.
func createHashEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	return hashembed.NewEmbeddingService(hashembed.Config{
		Model:      settings.Model,
		Dimensions: settings.Dimensions(),
	})
}

// createOllamaEmbedding creates an Ollama embedding service.
func createOllamaEmbedding(settings domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := settings.Dimensions()
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAIEmbedding creates an OpenAI embedding service.
func createOpenAIEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: settings.Dimensions(),
	})
}

package embedding

import (
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/trove/internal/core/domain"
)

func TestCreateService(t *testing.T) {
	tests := []struct {
		name        string
		settings    domain.EmbeddingSettings
		wantDims    int
		wantErr     bool
		errContains string
	}{
		{
			name: "local provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderLocal,
				Model:    "all-MiniLM-L6-v2",
			},
			wantDims: 384,
		},
		{
			name: "local provider with larger model",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderLocal,
				Model:    "all-mpnet-base-v2",
			},
			wantDims: 768,
		},
		{
			name: "ollama provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOllama,
				BaseURL:  "http://localhost:11434",
				Model:    "nomic-embed-text",
			},
			wantDims: 768,
		},
		{
			name: "openai provider creates service",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOpenAI,
				APIKey:   "test-key",
				Model:    "text-embedding-3-small",
			},
			wantDims: 1536,
		},
		{
			name: "openai without api key returns error",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOpenAI,
				Model:    "text-embedding-3-small",
			},
			wantErr:     true,
			errContains: "not fully configured",
		},
		{
			name: "unknown model returns error",
			settings: domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderLocal,
				Model:    "mystery-model",
			},
			wantErr:     true,
			errContains: "not fully configured",
		},
		{
			name: "unknown provider returns error",
			settings: domain.EmbeddingSettings{
				Provider: "unknown",
				Model:    "all-MiniLM-L6-v2",
			},
			wantErr: true,
		},
		{
			name:     "zero settings returns error",
			settings: domain.EmbeddingSettings{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateService(tt.settings)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
				if svc != nil {
					t.Error("expected nil service on error")
					svc.Close()
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc == nil {
				t.Fatal("expected non-nil service")
			}
			defer svc.Close()

			if got := svc.Dimensions(); got != tt.wantDims {
				t.Errorf("Dimensions() = %d, want %d", got, tt.wantDims)
			}
			if got := svc.ModelName(); got != tt.settings.Model {
				t.Errorf("ModelName() = %q, want %q", got, tt.settings.Model)
			}
		})
	}
}

func TestCreateService_UnconfiguredWrapsSentinel(t *testing.T) {
	_, err := CreateService(domain.EmbeddingSettings{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("error should wrap ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestCreateAndValidateService(t *testing.T) {
	t.Run("local provider validates without network", func(t *testing.T) {
		svc, err := CreateAndValidateService(domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderLocal,
			Model:    "all-MiniLM-L6-v2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if svc == nil {
			t.Fatal("expected non-nil service")
		}
		svc.Close()
	})

	t.Run("unconfigured settings include wizard guidance", func(t *testing.T) {
		svc, err := CreateAndValidateService(domain.EmbeddingSettings{})
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if svc != nil {
			t.Error("expected nil service")
			svc.Close()
		}
		if !strings.Contains(err.Error(), "trove settings setup") {
			t.Errorf("error %q should mention the setup command", err.Error())
		}
	})

	t.Run("unreachable ollama returns unavailable error", func(t *testing.T) {
		svc, err := CreateAndValidateService(domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  "http://127.0.0.1:1", // nothing listens here
			Model:    "nomic-embed-text",
		})
		if err == nil {
			if svc != nil {
				svc.Close()
			}
			t.Fatal("expected error, got nil")
		}
		if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
			t.Errorf("error should wrap ErrEmbeddingUnavailable, got %v", err)
		}
	})
}

func TestValidateConfig(t *testing.T) {
	t.Run("local provider passes", func(t *testing.T) {
		err := ValidateConfig(domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderLocal,
			Model:    "all-MiniLM-L6-v2",
		})
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("openai without key fails", func(t *testing.T) {
		err := ValidateConfig(domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOpenAI,
			Model:    "text-embedding-3-small",
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("unreachable ollama fails ping", func(t *testing.T) {
		err := ValidateConfig(domain.EmbeddingSettings{
			Provider: domain.EmbeddingProviderOllama,
			BaseURL:  "http://127.0.0.1:1",
			Model:    "nomic-embed-text",
		})
		if err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestCreateOllamaEmbedding_KnownModelDimensions(t *testing.T) {
	svc := createOllamaEmbedding(domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOllama,
		BaseURL:  "http://localhost:11434",
		Model:    "mxbai-embed-large",
	})
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if got := svc.Dimensions(); got != 1024 {
		t.Errorf("Dimensions() = %d, want 1024", got)
	}
}

func TestCreateOpenAIEmbedding_Success(t *testing.T) {
	svc, err := createOpenAIEmbedding(domain.EmbeddingSettings{
		Provider: domain.EmbeddingProviderOpenAI,
		APIKey:   "test-key",
		BaseURL:  "https://api.openai.com/v1",
		Model:    "text-embedding-3-large",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected non-nil service")
	}
	defer svc.Close()

	if got := svc.Dimensions(); got != 3072 {
		t.Errorf("Dimensions() = %d, want 3072", got)
	}
}

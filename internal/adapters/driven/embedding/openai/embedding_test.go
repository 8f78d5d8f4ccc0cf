package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestService(t *testing.T, baseURL, model string) *EmbeddingService {
	t.Helper()
	svc, err := NewEmbeddingService(Config{
		APIKey:            "test-key",
		BaseURL:           baseURL,
		Model:             model,
		RequestsPerSecond: 1000, // keep tests fast
	})
	if err != nil {
		t.Fatalf("NewEmbeddingService failed: %v", err)
	}
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	if err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"small model", Config{APIKey: "k", Model: "text-embedding-3-small"}, 1536},
		{"large model", Config{APIKey: "k", Model: "text-embedding-3-large"}, 3072},
		{"legacy ada model", Config{APIKey: "k", Model: "text-embedding-ada-002"}, fallbackDimensions},
		{"explicit override", Config{APIKey: "k", Model: "text-embedding-3-small", Dimensions: 256}, 256},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := svc.Dimensions(); got != tt.want {
				t.Errorf("Dimensions() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEmbedBatch_ReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req struct {
			Model      string   `json:"model"`
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "text-embedding-3-small" || len(req.Input) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Dimensions != 1536 {
			t.Errorf("dimensions = %d, want 1536", req.Dimensions)
		}

		// Entries on purpose arrive out of input order.
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-3-small")
	vectors, err := svc.EmbedBatch(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	if len(vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not reassembled by index: %v", vectors)
	}
}

func TestEmbedBatch_LegacyModelOmitsDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if _, ok := raw["dimensions"]; ok {
			t.Error("legacy models must not receive a dimensions field")
		}

		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{0.5}}},
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-ada-002")
	if _, err := svc.EmbedBatch(context.Background(), []string{"a"}); err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
}

func TestEmbedBatch_NoTexts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-3-small")
	vectors, err := svc.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil vectors, got %v", vectors)
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"index": 0, "embedding": []float32{0.1}}},
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-3-small")
	_, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error when counts differ")
	}
}

func TestEmbedBatch_APIErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided"},
		})
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-3-small")
	_, err := svc.EmbedBatch(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !strings.Contains(err.Error(), "Incorrect API key") {
		t.Errorf("error should carry the API message, got: %v", err)
	}
}

func TestPing_SendsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL, "text-embedding-3-small")
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

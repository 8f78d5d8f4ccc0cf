// Package ollama embeds text through a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults for unset Config fields.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text
)

// errBodyLimit bounds how much of an error response ends up in messages.
const errBodyLimit = 2048

// Config holds the connection settings for an Ollama server.
type Config struct {
	// BaseURL points at the server root.
	BaseURL string

	// Model selects the embedding model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Dimensions is the embedding vector size. Zero resolves it from
	// the model name.
	Dimensions int
}

// withDefaults fills every unset field.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Dimensions == 0 {
		if dims, ok := domain.ModelDimensions(c.Model); ok {
			c.Dimensions = dims
		} else {
			c.Dimensions = DefaultDimensions
		}
	}
	return c
}

// EmbeddingService talks to the Ollama /api/embed endpoint. The
// endpoint accepts a batch of inputs natively, so EmbedBatch is a
// single round trip.
type EmbeddingService struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
}

// embedRequest matches the /api/embed request body.
type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// embedResponse matches the /api/embed response body.
type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// NewEmbeddingService builds a client for the configured server. Every
// Config field has a default, so the zero Config is usable.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	cfg = cfg.withDefaults()
	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}
}

// Embed generates a vector embedding for one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("ollama: empty response")
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one request. Ollama returns
// embeddings in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload, err := json.Marshal(embedRequest{Model: s.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("ollama: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/api/embed", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ollama: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("ollama: decode response: %w", err)
	}
	if len(decoded.Embeddings) != len(texts) {
		return nil, fmt.Errorf("ollama: got %d embeddings for %d inputs",
			len(decoded.Embeddings), len(texts))
	}
	return decoded.Embeddings, nil
}

// send executes req. Non-200 statuses come back as errors carrying the
// server's message, with the body consumed.
func (s *EmbeddingService) send(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// Dimensions returns the width of the vectors this client produces.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the configured model identifier.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the server is reachable. It lists local models rather
// than running inference, so it stays cheap even with large models.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: build request: %w", err)
	}

	resp, err := s.send(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// Close drops idle connections held by the HTTP client.
func (s *EmbeddingService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// statusError extracts the error detail Ollama sends on failure.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

	var detail struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Error != "" {
		return fmt.Errorf("ollama: %s (status %d)", detail.Error, resp.StatusCode)
	}
	return fmt.Errorf("ollama: unexpected status %d", resp.StatusCode)
}

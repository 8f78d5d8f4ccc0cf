// Package openai embeds text through the OpenAI embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Defaults for unset Config fields.
const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultModel             = "text-embedding-3-small"
	DefaultTimeout           = 60 * time.Second
	DefaultRequestsPerSecond = 5
)

// fallbackDimensions is used for models the domain table does not
// know, such as text-embedding-ada-002.
const fallbackDimensions = 1536

// errBodyLimit bounds how much of an error response ends up in messages.
const errBodyLimit = 2048

// Config holds the connection settings for the OpenAI API.
type Config struct {
	// APIKey authenticates every request. Required.
	APIKey string

	// BaseURL points at the API root. Azure and other compatible
	// gateways can be substituted here.
	BaseURL string

	// Model selects the embedding model.
	Model string

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Dimensions overrides the vector width. Only the
	// text-embedding-3 family honours an override.
	Dimensions int

	// RequestsPerSecond caps the client-side request rate.
	RequestsPerSecond float64
}

// withDefaults fills every unset field except APIKey, which has no
// sensible default.
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
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = DefaultRequestsPerSecond
	}
	return c
}

// vectorWidth resolves the embedding size for the configured model.
func (c Config) vectorWidth() int {
	if c.Dimensions != 0 {
		return c.Dimensions
	}
	if dims, ok := domain.ModelDimensions(c.Model); ok {
		return dims
	}
	return fallbackDimensions
}

// EmbeddingService generates embeddings through the OpenAI API. A
// client-side rate limiter spaces out requests so bulk ingestion does
// not trip the account's request quota.
type EmbeddingService struct {
	client     *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
	model      string
	dimensions int
}

// embeddingRequest is the /embeddings request body. Dimensions is only
// honoured by the text-embedding-3 family and is omitted otherwise.
type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

// embeddingResponse is the /embeddings response body. Entries carry an
// index because the API does not promise input order.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// NewEmbeddingService validates cfg and builds the client. The API key
// is the only required field.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: missing API key")
	}
	cfg = cfg.withDefaults()

	return &EmbeddingService{
		client:     &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		dimensions: cfg.vectorWidth(),
	}, nil
}

// Embed generates a vector embedding for one text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("openai: empty response")
	}
	return vectors[0], nil
}

// EmbedBatch embeds all texts in one request. Entries are reassembled
// by their response index, so output order always equals input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("openai: rate limit wait: %w", err)
	}

	req, err := s.newEmbedRequest(ctx, texts)
	if err != nil {
		return nil, err
	}

	resp, err := s.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	return orderVectors(decoded, len(texts))
}

// newEmbedRequest builds the /embeddings POST for one batch.
func (s *EmbeddingService) newEmbedRequest(ctx context.Context, texts []string) (*http.Request, error) {
	body := embeddingRequest{Model: s.model, Input: texts}
	if s.customDimensions() {
		body.Dimensions = s.dimensions
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+"/embeddings", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// send authorizes and executes req. Non-200 statuses come back as
// errors carrying the server's message, with the body consumed.
func (s *EmbeddingService) send(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}
	return resp, nil
}

// orderVectors places each response entry at its declared index.
func orderVectors(decoded embeddingResponse, count int) ([][]float32, error) {
	if len(decoded.Data) != count {
		return nil, fmt.Errorf("openai: got %d embeddings for %d inputs",
			len(decoded.Data), count)
	}

	vectors := make([][]float32, count)
	for _, entry := range decoded.Data {
		if entry.Index < 0 || entry.Index >= count {
			return nil, fmt.Errorf("openai: embedding index %d out of range", entry.Index)
		}
		vectors[entry.Index] = entry.Embedding
	}
	return vectors, nil
}

// customDimensions reports whether the dimensions override should be
// sent. Only the text-embedding-3 family accepts one.
func (s *EmbeddingService) customDimensions() bool {
	return s.dimensions > 0 && strings.HasPrefix(s.model, "text-embedding-3")
}

// Dimensions returns the width of the vectors this client produces.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the configured model identifier.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping checks the API key by listing models. No inference runs, so the
// call is free and fast.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
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

// statusError extracts the message OpenAI sends on failure.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errBodyLimit))

	var detail struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &detail) == nil && detail.Error.Message != "" {
		return fmt.Errorf("openai: %s (status %d)", detail.Error.Message, resp.StatusCode)
	}
	return fmt.Errorf("openai: unexpected status %d", resp.StatusCode)
}

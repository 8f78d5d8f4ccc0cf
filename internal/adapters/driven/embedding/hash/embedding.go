// Package hash provides a deterministic local embedding service.
//
// Vectors come from signed feature hashing of unigram and bigram tokens,
// seeded by the model name so each model projects into its own space with
// its own dimensionality. The same (model, text) pair always produces the
// same vector, embedding works offline and needs no vocabulary fitting.
package hash

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "all-MiniLM-L6-v2"
	DefaultDimensions = 384
)

// bigramWeight scales phrase features relative to single tokens.
const bigramWeight = 0.5

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Model is the embedding model name. It seeds the hash space and
	// selects the vector dimensionality.
	Model string

	// Dimensions overrides the dimensionality derived from the model.
	Dimensions int
}

// EmbeddingService generates embeddings by feature hashing.
type EmbeddingService struct {
	model        string
	dimensions   int
	seed         uint64
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbeddingService creates a new hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		if dims, ok := domain.ModelDimensions(cfg.Model); ok {
			cfg.Dimensions = dims
		} else {
			cfg.Dimensions = DefaultDimensions
		}
	}

	return &EmbeddingService{
		model:        cfg.Model,
		dimensions:   cfg.Dimensions,
		seed:         seedFor(cfg.Model),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, s.dimensions)

	tokens := s.tokenize(text)
	if len(tokens) == 0 {
		return vec, nil
	}

	// Log-scaled term frequencies keep repeated tokens from dominating
	tf := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		tf[tok]++
	}
	for i := 0; i+1 < len(tokens); i++ {
		tf[tokens[i]+" "+tokens[i+1]]++
	}

	for feature, count := range tf {
		weight := 1 + math.Log(float64(count))
		if strings.ContainsRune(feature, ' ') {
			weight *= bigramWeight
		}
		h := s.hash(feature)
		bucket := int(h % uint64(s.dimensions))
		if h&(1<<63) != 0 {
			weight = -weight
		}
		vec[bucket] += float32(weight)
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch generates embeddings for multiple texts.
// Output order always equals input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := s.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int { return s.dimensions }

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string { return s.model }

// Ping always succeeds; the hashing embedder has no external dependency.
func (s *EmbeddingService) Ping(_ context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// tokenize lowercases the text and extracts word tokens, dropping
// stopwords.
func (s *EmbeddingService) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := s.tokenPattern.FindAllString(lower, -1)
	if len(raw) == 0 {
		return nil
	}
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := s.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

// hash maps a feature into the model's hash space.
func (s *EmbeddingService) hash(feature string) uint64 {
	h := fnv.New64a()
	var seedBytes [8]byte
	for i := range seedBytes {
		seedBytes[i] = byte(s.seed >> (8 * i))
	}
	h.Write(seedBytes[:])
	h.Write([]byte(feature))
	return h.Sum64()
}

// seedFor derives a stable per-model seed.
func seedFor(model string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(model))
	return h.Sum64()
}

// normalize scales the vector to unit length in place.
func normalize(vec []float32) {
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

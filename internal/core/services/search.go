package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
	"github.com/custodia-labs/trove/internal/logger"
)

var _ driving.SearchService = (*SearchService)(nil)

// candidateMultiplier is how many index hits are fetched per requested
// result. Collapsing to one result per document eats candidates, so the
// index is over-queried.
const candidateMultiplier = 4

// minCandidates is the floor on fetched candidates regardless of limit.
const minCandidates = 20

// fallbackLimit is used when neither the query nor settings carry one.
const fallbackLimit = 10

// previewMaxLen is the preview length cap in bytes.
const previewMaxLen = 200

// previewBoundaryScan bounds how far a preview cut moves back to land on
// a word boundary.
const previewBoundaryScan = 40

// SearchService answers free-text queries against the vector index.
type SearchService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedder    driven.EmbeddingService
	settings    domain.SearchSettings
	settingsSvc driving.SettingsService
}

// NewSearchService creates a new search service. The settings service is
// consulted for the index-stale flag on every query; it may be nil.
func NewSearchService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedder driven.EmbeddingService,
	settings domain.SearchSettings,
	settingsSvc driving.SettingsService,
) *SearchService {
	return &SearchService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedder:    embedder,
		settings:    settings,
		settingsSvc: settingsSvc,
	}
}

// Search embeds the query, fetches nearest chunks, collapses them to one
// result per root document, and returns ranked results with previews.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidQuery)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.settings.DefaultLimit
	}
	if limit <= 0 {
		limit = fallbackLimit
	}

	candidates := limit * candidateMultiplier
	if candidates < minCandidates {
		candidates = minCandidates
	}
	logger.Debug("Query: %q, limit: %d, candidates: %d", query, limit, candidates)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectorIndex.Search(ctx, vector, candidates)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	logger.Debug("Index returned %d candidates", len(hits))

	results, err := s.collapseHits(ctx, hits, limit)
	if err != nil {
		return nil, err
	}
	logger.Info("Search %q: %d results", query, len(results))

	resp := &domain.SearchResponse{Results: results}
	if s.settingsSvc != nil {
		resp.IndexStale = s.settingsSvc.IndexStale()
	}
	return resp, nil
}

// collapseHits hydrates index hits and keeps the best chunk per root
// document. Hits arrive in ascending distance order, so the first chunk
// seen for a document is its best one and output order is already by
// non-increasing similarity.
func (s *SearchService) collapseHits(
	ctx context.Context, hits []driven.VectorHit, limit int,
) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, limit)
	seen := make(map[string]bool)

	for _, hit := range hits {
		if len(results) == limit {
			break
		}

		chunk, err := s.docStore.GetChunk(ctx, hit.ChunkID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get chunk %s: %w", hit.ChunkID, err)
		}

		root, err := s.rootDocument(ctx, chunk.DocumentID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if seen[root.ID] {
			continue
		}

		// A file deleted behind the registry's back must not surface.
		if _, err := os.Stat(root.Path); err != nil {
			logger.Debug("Skipping vanished file: %s", root.Path)
			continue
		}

		seen[root.ID] = true
		results = append(results, domain.SearchResult{
			Document: *root,
			Chunk:    *chunk,
			Score:    1.0 / (1.0 + hit.Distance),
			Preview:  buildPreview(chunk.Content),
		})
	}

	return results, nil
}

// rootDocument resolves a chunk's owning document to its root. Sheet
// sub-documents collapse onto their parent workbook.
func (s *SearchService) rootDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if doc.ParentID == nil {
		return doc, nil
	}

	root, err := s.docStore.GetDocument(ctx, *doc.ParentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get document %s: %w", *doc.ParentID, err)
	}
	return root, nil
}

// buildPreview produces a bounded single-line excerpt of chunk content.
// Cuts land on a word boundary when one exists within the scan window,
// and truncation is marked with an ellipsis.
func buildPreview(content string) string {
	text := strings.Join(strings.Fields(content), " ")
	if len(text) <= previewMaxLen {
		return text
	}

	cut := previewMaxLen
	window := text[previewMaxLen-previewBoundaryScan : previewMaxLen]
	if idx := strings.LastIndexFunc(window, unicode.IsSpace); idx >= 0 {
		cut = previewMaxLen - previewBoundaryScan + idx
	} else {
		// No space in the window; back up to a rune boundary instead.
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
	}

	return strings.TrimRight(text[:cut], " ") + "..."
}

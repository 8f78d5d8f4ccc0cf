package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/trove/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// mockSettingsService implements driving.SettingsService for stale-flag
// checks.
type mockSettingsService struct {
	stale        bool
	staleCleared bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, nil
}

func (m *mockSettingsService) Save(_ *domain.AppSettings) error { return nil }
func (m *mockSettingsService) Update(_, _ string) error         { return nil }
func (m *mockSettingsService) Reset() error                     { return nil }

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) IndexStale() bool { return m.stale }

func (m *mockSettingsService) ClearIndexStale() error {
	m.stale = false
	m.staleCleared = true
	return nil
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error { return nil }
func (m *mockSettingsService) Keys() []driving.SettingsKey                     { return nil }

// --- Test fixtures ---

// searchFixture bundles a search service with seeded stores.
type searchFixture struct {
	svc         *SearchService
	docStore    *memory.DocumentStore
	index       *mockVectorIndex
	embedder    *mockEmbedder
	settingsSvc *mockSettingsService
	dataDir     string
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	fix := &searchFixture{
		docStore:    memory.NewDocumentStore(),
		index:       newMockVectorIndex(),
		embedder:    &mockEmbedder{},
		settingsSvc: &mockSettingsService{},
		dataDir:     t.TempDir(),
	}
	fix.svc = NewSearchService(
		fix.docStore,
		fix.index,
		fix.embedder,
		domain.SearchSettings{DefaultLimit: 10},
		fix.settingsSvc,
	)
	return fix
}

// seedIndexed stores an indexed root document with one chunk and a real
// file behind it. Returns the document and its chunk ID.
func (f *searchFixture) seedIndexed(t *testing.T, id, name, content string) (*domain.Document, string) {
	t.Helper()
	ctx := context.Background()

	path := writeTestFile(t, f.dataDir, name, content)
	now := time.Now()
	doc := domain.Document{
		ID:          id,
		Path:        path,
		Filename:    name,
		Extension:   domain.NormaliseExtension(filepath.Ext(name)),
		FileType:    domain.FileTypeForExtension(filepath.Ext(name)),
		Title:       titleFromFilename(path),
		Content:     content,
		Size:        int64(len(content)),
		ModifiedAt:  now,
		ContentHash: "hash-" + id,
		Status:      domain.DocumentStatusIndexed,
		ChunkCount:  1,
		CreatedAt:   now,
		UpdatedAt:   now,
		IndexedAt:   &now,
	}
	require.NoError(t, f.docStore.SaveDocument(ctx, &doc))

	chunkID := id + "-chunk-0"
	require.NoError(t, f.docStore.SaveChunks(ctx, []domain.Chunk{{
		ID:         chunkID,
		DocumentID: id,
		Position:   0,
		EndOffset:  len(content),
		Content:    content,
	}}))
	return &doc, chunkID
}

func hit(chunkID, docID string, distance float64) driven.VectorHit {
	return driven.VectorHit{ChunkID: chunkID, DocumentID: docID, Distance: distance}
}

// --- Tests ---

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	fix := newSearchFixture(t)

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := fix.svc.Search(context.Background(), query, domain.SearchOptions{})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery, "query %q", query)
	}
}

func TestSearchService_Search_ReturnsRankedResults(t *testing.T) {
	fix := newSearchFixture(t)
	ctx := context.Background()

	_, chunkA := fix.seedIndexed(t, "doc-a", "alpha.csv", "first document text")
	_, chunkB := fix.seedIndexed(t, "doc-b", "beta.csv", "second document text")
	fix.index.searchHits = []driven.VectorHit{
		hit(chunkA, "doc-a", 0.5),
		hit(chunkB, "doc-b", 1.0),
	}

	resp, err := fix.svc.Search(ctx, "document text", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "doc-a", resp.Results[0].Document.ID)
	assert.Equal(t, "doc-b", resp.Results[1].Document.ID)
	assert.InDelta(t, 1.0/1.5, resp.Results[0].Score, 1e-9)
	assert.InDelta(t, 1.0/2.0, resp.Results[1].Score, 1e-9)
	assert.Greater(t, resp.Results[0].Score, resp.Results[1].Score)
	assert.Equal(t, "first document text", resp.Results[0].Preview)
	assert.False(t, resp.IndexStale)
}

func TestSearchService_Search_ExactMatchScoresOne(t *testing.T) {
	fix := newSearchFixture(t)

	_, chunkID := fix.seedIndexed(t, "doc-a", "alpha.csv", "identical text")
	fix.index.searchHits = []driven.VectorHit{hit(chunkID, "doc-a", 0)}

	resp, err := fix.svc.Search(context.Background(), "identical text", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, 1.0, resp.Results[0].Score)
}

func TestSearchService_Search_CollapsesPerDocument(t *testing.T) {
	fix := newSearchFixture(t)
	ctx := context.Background()

	doc, _ := fix.seedIndexed(t, "doc-a", "alpha.csv", "chunk zero")
	// A second chunk of the same document.
	require.NoError(t, fix.docStore.SaveChunks(ctx, []domain.Chunk{
		{ID: "doc-a-chunk-0", DocumentID: "doc-a", Position: 0, Content: "chunk zero"},
		{ID: "doc-a-chunk-1", DocumentID: "doc-a", Position: 1, Content: "chunk one"},
	}))
	fix.index.searchHits = []driven.VectorHit{
		hit("doc-a-chunk-1", "doc-a", 0.2),
		hit("doc-a-chunk-0", "doc-a", 0.9),
	}

	resp, err := fix.svc.Search(ctx, "chunk", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, doc.ID, resp.Results[0].Document.ID)
	// The closer chunk wins the document's single slot.
	assert.Equal(t, "doc-a-chunk-1", resp.Results[0].Chunk.ID)
	assert.Equal(t, "chunk one", resp.Results[0].Preview)
}

func TestSearchService_Search_SubDocumentHitResolvesRoot(t *testing.T) {
	fix := newSearchFixture(t)
	ctx := context.Background()

	root, _ := fix.seedIndexed(t, "root-1", "revenue.xlsx", "")
	rootID := root.ID
	now := time.Now()
	sub := domain.Document{
		ID:        "sub-1",
		Path:      root.Path,
		Filename:  root.Filename,
		Title:     "Revenue (Q1)",
		Content:   "jan feb mar",
		ParentID:  &rootID,
		Status:    domain.DocumentStatusIndexed,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, fix.docStore.SaveDocument(ctx, &sub))
	require.NoError(t, fix.docStore.SaveChunks(ctx, []domain.Chunk{{
		ID: "sub-1-chunk-0", DocumentID: "sub-1", Position: 0, Content: "jan feb mar",
	}}))
	fix.index.searchHits = []driven.VectorHit{hit("sub-1-chunk-0", "sub-1", 0.3)}

	resp, err := fix.svc.Search(ctx, "january revenue", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	// The result surfaces the workbook, not the sheet entry.
	assert.Equal(t, "root-1", resp.Results[0].Document.ID)
	assert.Equal(t, "sub-1-chunk-0", resp.Results[0].Chunk.ID)
}

func TestSearchService_Search_SheetsOfOneWorkbookShareSlot(t *testing.T) {
	fix := newSearchFixture(t)
	ctx := context.Background()

	root, _ := fix.seedIndexed(t, "root-1", "revenue.xlsx", "")
	rootID := root.ID
	for i, name := range []string{"sub-1", "sub-2"} {
		sub := domain.Document{
			ID:       name,
			Path:     root.Path,
			Filename: root.Filename,
			Content:  "sheet content",
			ParentID: &rootID,
			Status:   domain.DocumentStatusIndexed,
		}
		require.NoError(t, fix.docStore.SaveDocument(ctx, &sub))
		require.NoError(t, fix.docStore.SaveChunks(ctx, []domain.Chunk{{
			ID: name + "-chunk-0", DocumentID: name, Position: i, Content: "sheet content",
		}}))
	}
	fix.index.searchHits = []driven.VectorHit{
		hit("sub-1-chunk-0", "sub-1", 0.2),
		hit("sub-2-chunk-0", "sub-2", 0.4),
	}

	resp, err := fix.svc.Search(ctx, "sheet", domain.SearchOptions{})

	require.NoError(t, err)
	// Both sheets belong to one workbook, so it occupies one slot.
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "root-1", resp.Results[0].Document.ID)
	assert.Equal(t, "sub-1-chunk-0", resp.Results[0].Chunk.ID)
}

func TestSearchService_Search_SkipsDeletedFile(t *testing.T) {
	fix := newSearchFixture(t)

	doc, chunkID := fix.seedIndexed(t, "doc-a", "alpha.csv", "content")
	fix.index.searchHits = []driven.VectorHit{hit(chunkID, "doc-a", 0.1)}
	require.NoError(t, os.Remove(doc.Path))

	resp, err := fix.svc.Search(context.Background(), "content", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchService_Search_SkipsVanishedChunk(t *testing.T) {
	fix := newSearchFixture(t)

	_, chunkID := fix.seedIndexed(t, "doc-a", "alpha.csv", "content")
	fix.index.searchHits = []driven.VectorHit{
		hit("no-such-chunk", "doc-a", 0.1),
		hit(chunkID, "doc-a", 0.5),
	}

	resp, err := fix.svc.Search(context.Background(), "content", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, chunkID, resp.Results[0].Chunk.ID)
}

func TestSearchService_Search_SkipsVanishedDocument(t *testing.T) {
	fix := newSearchFixture(t)
	ctx := context.Background()

	// Chunk survives but its document is gone from the registry.
	require.NoError(t, fix.docStore.SaveDocument(ctx, &domain.Document{ID: "doc-x", Path: "/tmp/x.csv"}))
	require.NoError(t, fix.docStore.SaveChunks(ctx, []domain.Chunk{{
		ID: "orphan-chunk", DocumentID: "doc-x", Content: "text",
	}}))
	require.NoError(t, fix.docStore.DeleteDocument(ctx, "doc-x"))
	require.NoError(t, fix.docStore.SaveChunks(ctx, []domain.Chunk{{
		ID: "orphan-chunk", DocumentID: "doc-x", Content: "text",
	}}))
	fix.index.searchHits = []driven.VectorHit{hit("orphan-chunk", "doc-x", 0.1)}

	resp, err := fix.svc.Search(ctx, "text", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchService_Search_LimitTruncates(t *testing.T) {
	fix := newSearchFixture(t)

	var hits []driven.VectorHit
	for i, id := range []string{"doc-a", "doc-b", "doc-c"} {
		_, chunkID := fix.seedIndexed(t, id, id+".csv", "content "+id)
		hits = append(hits, hit(chunkID, id, float64(i)))
	}
	fix.index.searchHits = hits

	resp, err := fix.svc.Search(context.Background(), "content", domain.SearchOptions{Limit: 2})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "doc-a", resp.Results[0].Document.ID)
	assert.Equal(t, "doc-b", resp.Results[1].Document.ID)
}

func TestSearchService_Search_DefaultLimitFromSettings(t *testing.T) {
	fix := newSearchFixture(t)
	fix.svc = NewSearchService(
		fix.docStore, fix.index, fix.embedder,
		domain.SearchSettings{DefaultLimit: 1}, fix.settingsSvc,
	)

	_, chunkA := fix.seedIndexed(t, "doc-a", "alpha.csv", "a")
	_, chunkB := fix.seedIndexed(t, "doc-b", "beta.csv", "b")
	fix.index.searchHits = []driven.VectorHit{
		hit(chunkA, "doc-a", 0.1),
		hit(chunkB, "doc-b", 0.2),
	}

	resp, err := fix.svc.Search(context.Background(), "letters", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestSearchService_Search_WidensCandidatePool(t *testing.T) {
	fix := newSearchFixture(t)

	_, err := fix.svc.Search(context.Background(), "anything", domain.SearchOptions{})
	require.NoError(t, err)
	// Default limit 10 widens to 40 candidates before collapsing.
	assert.Equal(t, 40, fix.index.lastK)

	_, err = fix.svc.Search(context.Background(), "anything", domain.SearchOptions{Limit: 2})
	require.NoError(t, err)
	// Small limits still fetch a floor of 20 candidates.
	assert.Equal(t, 20, fix.index.lastK)
}

func TestSearchService_Search_EmptyIndex(t *testing.T) {
	fix := newSearchFixture(t)

	resp, err := fix.svc.Search(context.Background(), "anything", domain.SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearchService_Search_EmbedError(t *testing.T) {
	fix := newSearchFixture(t)
	fix.embedder.embedErr = errors.New("provider down")

	_, err := fix.svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearchService_Search_IndexError(t *testing.T) {
	fix := newSearchFixture(t)
	fix.index.searchErr = errors.New("index corrupt")

	_, err := fix.svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "search index")
}

func TestSearchService_Search_IndexStaleFlag(t *testing.T) {
	fix := newSearchFixture(t)
	fix.settingsSvc.stale = true

	resp, err := fix.svc.Search(context.Background(), "query", domain.SearchOptions{})

	require.NoError(t, err)
	assert.True(t, resp.IndexStale)
}

func TestSearchService_Search_PreviewTruncatesLongChunk(t *testing.T) {
	fix := newSearchFixture(t)

	content := strings.TrimSpace(strings.Repeat("alpha beta gamma delta ", 20))
	_, chunkID := fix.seedIndexed(t, "doc-a", "alpha.csv", content)
	fix.index.searchHits = []driven.VectorHit{hit(chunkID, "doc-a", 0.1)}

	resp, err := fix.svc.Search(context.Background(), "alpha", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)

	preview := resp.Results[0].Preview
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.LessOrEqual(t, len(preview), 203)

	// The cut lands on a word boundary.
	trimmed := strings.TrimSuffix(preview, "...")
	assert.True(t, strings.HasPrefix(content, trimmed))
	assert.Equal(t, byte(' '), content[len(trimmed)])
}

func TestSearchService_Search_PreviewCollapsesWhitespace(t *testing.T) {
	fix := newSearchFixture(t)

	_, chunkID := fix.seedIndexed(t, "doc-a", "alpha.csv", "line one\n\nline two\t\tend")
	fix.index.searchHits = []driven.VectorHit{hit(chunkID, "doc-a", 0.1)}

	resp, err := fix.svc.Search(context.Background(), "lines", domain.SearchOptions{})

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "line one line two end", resp.Results[0].Preview)
}

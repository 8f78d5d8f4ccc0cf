package cli

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

// runCLI executes the root command with the given arguments and returns
// everything it printed. Argument and output wiring are restored when
// the test finishes.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// setupTestServices swaps every service for a happy-path mock and
// returns a cleanup that restores the previous wiring.
func setupTestServices() func() {
	oldIngest := ingestService
	oldSearch := searchService
	oldDocument := documentService
	oldSettings := settingsService
	oldMaintenance := maintenanceService
	oldAction := actionService
	oldAppSettings := appSettings

	ingestService = &mockIngestService{}
	searchService = &mockSearchService{}
	documentService = &mockDocumentService{}
	settingsService = &mockSettingsService{settings: testAppSettings()}
	maintenanceService = &mockMaintenanceService{}
	actionService = &mockActionService{}
	settings := testAppSettings()
	appSettings = &settings

	return func() {
		ingestService = oldIngest
		searchService = oldSearch
		documentService = oldDocument
		settingsService = oldSettings
		maintenanceService = oldMaintenance
		actionService = oldAction
		appSettings = oldAppSettings
	}
}

func testAppSettings() domain.AppSettings {
	settings := domain.DefaultAppSettings()
	settings.DataDir = "/data/trove/documents"
	return settings
}

var testModTime = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func testDocuments() []domain.Document {
	return []domain.Document{
		{
			ID:         "doc-1",
			Path:       "/data/trove/documents/budget-report.xlsx",
			Filename:   "budget-report.xlsx",
			Extension:  "xlsx",
			Size:       24576,
			ModifiedAt: testModTime,
			Status:     domain.DocumentStatusIndexed,
		},
		{
			ID:         "doc-2",
			Path:       "/data/trove/documents/vacation-policy.pdf",
			Filename:   "vacation-policy.pdf",
			Extension:  "pdf",
			Size:       10240,
			ModifiedAt: testModTime,
			Status:     domain.DocumentStatusIndexed,
		},
	}
}

// Search service mocks.

type mockSearchService struct {
	lastQuery string
	lastOpts  domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context, query string, opts domain.SearchOptions,
) (*domain.SearchResponse, error) {
	m.lastQuery = query
	m.lastOpts = opts

	docs := testDocuments()
	return &domain.SearchResponse{
		Results: []domain.SearchResult{
			{
				Document: docs[0],
				Score:    0.92,
				Preview:  "Quarterly budget figures for every department...",
			},
			{
				Document: docs[1],
				Score:    0.87,
				Preview:  "Employees accrue vacation days monthly...",
			},
		},
	}, nil
}

type mockSearchServiceEmpty struct{}

func (m *mockSearchServiceEmpty) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) (*domain.SearchResponse, error) {
	return &domain.SearchResponse{}, nil
}

type mockSearchServiceStale struct{}

func (m *mockSearchServiceStale) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) (*domain.SearchResponse, error) {
	return &domain.SearchResponse{IndexStale: true}, nil
}

type mockSearchServiceError struct{}

func (m *mockSearchServiceError) Search(
	_ context.Context, _ string, _ domain.SearchOptions,
) (*domain.SearchResponse, error) {
	return nil, errors.New("index unavailable")
}

// Document service mocks.

type mockDocumentService struct{}

func (m *mockDocumentService) List(_ context.Context) ([]domain.Document, error) {
	return testDocuments(), nil
}

func (m *mockDocumentService) Get(_ context.Context, documentID string) (*domain.Document, error) {
	for _, doc := range testDocuments() {
		if doc.ID == documentID {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetByPath(_ context.Context, path string) (*domain.Document, error) {
	for _, doc := range testDocuments() {
		if doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return "extracted document text", nil
}

type mockDocumentServiceEmpty struct {
	mockDocumentService
}

func (m *mockDocumentServiceEmpty) List(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

type mockDocumentServiceError struct {
	mockDocumentService
}

func (m *mockDocumentServiceError) List(_ context.Context) ([]domain.Document, error) {
	return nil, errors.New("registry unavailable")
}

// Ingest service mocks.

type mockIngestService struct {
	removed []string
}

func (m *mockIngestService) Add(_ context.Context, paths []string) ([]driving.IngestResult, error) {
	results := make([]driving.IngestResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, driving.IngestResult{
			Path:    p,
			Outcome: driving.IngestIndexed,
			Chunks:  3,
		})
	}
	return results, nil
}

func (m *mockIngestService) Register(_ context.Context, path string) (*driving.IngestResult, error) {
	return &driving.IngestResult{Path: path, Outcome: driving.IngestIndexed, Chunks: 2}, nil
}

func (m *mockIngestService) Scan(_ context.Context) (*driving.IngestReport, error) {
	report := &driving.IngestReport{}
	report.Add(driving.IngestResult{
		Path:    "/data/trove/documents/budget-report.xlsx",
		Outcome: driving.IngestIndexed,
		Chunks:  3,
	})
	report.Add(driving.IngestResult{
		Path:    "/data/trove/documents/vacation-policy.pdf",
		Outcome: driving.IngestSkipped,
	})
	return report, nil
}

func (m *mockIngestService) Remove(_ context.Context, path string) error {
	m.removed = append(m.removed, path)
	return nil
}

func (m *mockIngestService) Reconcile(_ context.Context) (int, error) {
	return 0, nil
}

type mockIngestServiceError struct{}

func (m *mockIngestServiceError) Add(_ context.Context, _ []string) ([]driving.IngestResult, error) {
	return nil, errors.New("data directory unavailable")
}

func (m *mockIngestServiceError) Register(_ context.Context, _ string) (*driving.IngestResult, error) {
	return nil, errors.New("data directory unavailable")
}

func (m *mockIngestServiceError) Scan(_ context.Context) (*driving.IngestReport, error) {
	return nil, errors.New("data directory unavailable")
}

func (m *mockIngestServiceError) Remove(_ context.Context, _ string) error {
	return errors.New("data directory unavailable")
}

func (m *mockIngestServiceError) Reconcile(_ context.Context) (int, error) {
	return 0, errors.New("data directory unavailable")
}

// Settings service mocks.

type mockSettingsService struct {
	settings domain.AppSettings
	updates  map[string]string
	stale    bool
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	settings := m.settings
	return &settings, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Update(key, value string) error {
	if m.updates == nil {
		m.updates = make(map[string]string)
	}
	m.updates[key] = value
	return nil
}

func (m *mockSettingsService) Reset() error {
	m.settings = domain.DefaultAppSettings()
	return nil
}

func (m *mockSettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

func (m *mockSettingsService) IndexStale() bool {
	return m.stale
}

func (m *mockSettingsService) ClearIndexStale() error {
	m.stale = false
	return nil
}

func (m *mockSettingsService) ValidateEmbeddingConfig(_ context.Context) error {
	return nil
}

func (m *mockSettingsService) Keys() []driving.SettingsKey {
	return []driving.SettingsKey{
		{Key: "data_dir", Value: m.settings.DataDir, Description: "Directory holding ingested documents"},
		{Key: "embedding.provider", Value: m.settings.Embedding.Provider.String(), Description: "Embedding backend"},
		{Key: "embedding.model", Value: m.settings.Embedding.Model, Description: "Embedding model name"},
		{Key: "chunker.chunk_size", Value: strconv.Itoa(m.settings.Chunker.ChunkSize), Description: "Maximum chunk length"},
		{Key: "chunker.overlap", Value: strconv.Itoa(m.settings.Chunker.Overlap), Description: "Chunk overlap"},
		{Key: "search.default_limit", Value: strconv.Itoa(m.settings.Search.DefaultLimit), Description: "Default result count"},
	}
}

type mockSettingsServiceError struct {
	mockSettingsService
}

func (m *mockSettingsServiceError) Get() (*domain.AppSettings, error) {
	return nil, errors.New("config store unavailable")
}

func (m *mockSettingsServiceError) Update(_, _ string) error {
	return errors.New("config store unavailable")
}

// Maintenance service mocks.

type mockMaintenanceService struct {
	stale   bool
	cleared bool
}

func (m *mockMaintenanceService) RebuildIndex(_ context.Context) (*driving.IngestReport, error) {
	report := &driving.IngestReport{}
	report.Add(driving.IngestResult{
		Path:    "/data/trove/documents/budget-report.xlsx",
		Outcome: driving.IngestIndexed,
		Chunks:  3,
	})
	report.Add(driving.IngestResult{
		Path:    "/data/trove/documents/vacation-policy.pdf",
		Outcome: driving.IngestIndexed,
		Chunks:  2,
	})
	return report, nil
}

func (m *mockMaintenanceService) ClearIndex(_ context.Context) error {
	m.cleared = true
	return nil
}

func (m *mockMaintenanceService) Status(_ context.Context) (*driving.IndexStatus, error) {
	return &driving.IndexStatus{
		Documents:  2,
		Chunks:     5,
		Vectors:    5,
		Dimensions: 384,
		Model:      "all-MiniLM-L6-v2",
		Stale:      m.stale,
		IndexPath:  "/data/trove/index/vectors.idx",
	}, nil
}

type mockMaintenanceServiceError struct{}

func (m *mockMaintenanceServiceError) RebuildIndex(_ context.Context) (*driving.IngestReport, error) {
	return nil, errors.New("index unavailable")
}

func (m *mockMaintenanceServiceError) ClearIndex(_ context.Context) error {
	return errors.New("index unavailable")
}

func (m *mockMaintenanceServiceError) Status(_ context.Context) (*driving.IndexStatus, error) {
	return nil, errors.New("index unavailable")
}

// Action service mocks.

type mockActionService struct {
	opened   []string
	revealed []string
}

func (m *mockActionService) OpenFile(_ context.Context, path string) error {
	m.opened = append(m.opened, path)
	return nil
}

func (m *mockActionService) RevealFile(_ context.Context, path string) error {
	m.revealed = append(m.revealed, path)
	return nil
}

func (m *mockActionService) CopyToClipboard(_ context.Context, _ *domain.SearchResult) error {
	return nil
}

type mockActionServiceError struct{}

func (m *mockActionServiceError) OpenFile(_ context.Context, _ string) error {
	return domain.ErrPathOutsideData
}

func (m *mockActionServiceError) RevealFile(_ context.Context, _ string) error {
	return domain.ErrPathOutsideData
}

func (m *mockActionServiceError) CopyToClipboard(_ context.Context, _ *domain.SearchResult) error {
	return domain.ErrPathOutsideData
}

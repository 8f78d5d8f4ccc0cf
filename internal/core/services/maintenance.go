package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
	"github.com/custodia-labs/trove/internal/logger"
)

var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService performs whole-index administrative operations.
type MaintenanceService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	ingest      driving.IngestService
	settingsSvc driving.SettingsService
	settings    domain.AppSettings
}

// NewMaintenanceService creates a new maintenance service.
func NewMaintenanceService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	ingest driving.IngestService,
	settingsSvc driving.SettingsService,
	settings domain.AppSettings,
) *MaintenanceService {
	return &MaintenanceService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		ingest:      ingest,
		settingsSvc: settingsSvc,
		settings:    settings,
	}
}

// RebuildIndex drops every vector and re-ingests all registered documents
// from disk with the active settings. The stale flag is cleared once the
// scan completes.
func (s *MaintenanceService) RebuildIndex(ctx context.Context) (*driving.IngestReport, error) {
	logger.Section("Rebuild Index")

	if err := s.vectorIndex.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear index: %w", err)
	}
	if err := s.vectorIndex.Save(); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	// An unchanged content hash short-circuits re-indexing, so every
	// root is marked stale before the scan.
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	now := time.Now()
	for i := range docs {
		doc := docs[i]
		doc.Status = domain.DocumentStatusStale
		doc.UpdatedAt = now
		if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
			return nil, fmt.Errorf("mark %s stale: %w", doc.Filename, err)
		}
	}

	report, err := s.ingest.Scan(ctx)
	if err != nil {
		return report, err
	}

	// Failed documents hold no vectors, so the index is consistent with
	// the active settings even when some files errored.
	if s.settingsSvc != nil {
		if err := s.settingsSvc.ClearIndexStale(); err != nil {
			logger.Warn("Could not clear stale flag: %v", err)
		}
	}

	logger.Info("Rebuild complete: %d indexed, %d failed", report.Indexed, report.Failed)
	return report, nil
}

// ClearIndex empties the vector index and the document registry. Staged
// files in the data directory are untouched; a scan re-indexes them.
func (s *MaintenanceService) ClearIndex(ctx context.Context) error {
	logger.Section("Clear Index")

	if err := s.vectorIndex.Clear(ctx); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	if err := s.vectorIndex.Save(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := s.docStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear registry: %w", err)
	}

	logger.Info("Index and registry cleared")
	return nil
}

// Status reports a point-in-time view of index health.
func (s *MaintenanceService) Status(ctx context.Context) (*driving.IndexStatus, error) {
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	chunks, err := s.docStore.CountChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}

	model, err := s.docStore.GetMeta(ctx, metaIndexModel)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("read index model: %w", err)
	}

	status := &driving.IndexStatus{
		Documents:  len(docs),
		Chunks:     chunks,
		Vectors:    s.vectorIndex.Len(),
		Dimensions: s.vectorIndex.Dimensions(),
		Model:      model,
		IndexPath:  s.settings.VectorDBPath,
	}
	if s.settingsSvc != nil {
		status.Stale = s.settingsSvc.IndexStale()
	}
	return status, nil
}

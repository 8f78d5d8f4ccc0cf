package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
	"github.com/custodia-labs/trove/internal/logger"
)

var _ driving.IngestService = (*IngestService)(nil)

// metaIndexModel is the registry metadata key recording which embedding
// model the vector index was last built with.
const metaIndexModel = "index_model"

// IngestService runs the extract, chunk, embed, index pipeline over files
// in the data directory.
type IngestService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	extractors  driven.ExtractorRegistry
	pipeline    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	settings    domain.AppSettings

	// One batch at a time. Add, Scan and index rebuilds share the guard.
	mu      sync.Mutex
	running bool
}

// NewIngestService creates a new ingest service. Settings are a snapshot;
// a changed configuration requires a new service instance.
func NewIngestService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	extractors driven.ExtractorRegistry,
	pipeline driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	settings domain.AppSettings,
) *IngestService {
	if abs, err := filepath.Abs(settings.DataDir); err == nil {
		settings.DataDir = abs
	}
	return &IngestService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		extractors:  extractors,
		pipeline:    pipeline,
		embedder:    embedder,
		settings:    settings,
	}
}

// Add copies files into the data directory and indexes them on the worker
// pool. Per-file failures appear in the results; the batch continues.
func (s *IngestService) Add(ctx context.Context, paths []string) ([]driving.IngestResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no files given", domain.ErrInvalidInput)
	}
	if err := s.beginBatch(); err != nil {
		return nil, err
	}
	defer s.endBatch()

	logger.Section("Ingestion")

	// Stage every file into the data directory first, then index the
	// staged copies concurrently.
	staged := make([]string, len(paths))
	results := make([]driving.IngestResult, len(paths))
	for i, path := range paths {
		dest, err := s.stage(path)
		if err != nil {
			logger.Warn("Cannot stage %s: %v", path, err)
			results[i] = driving.IngestResult{Path: path, Outcome: driving.IngestFailed, Err: err}
			continue
		}
		staged[i] = dest
	}

	s.runPool(ctx, staged, results)

	if err := s.finishBatch(ctx); err != nil {
		return results, err
	}
	return results, nil
}

// Register ingests a single file already inside the data directory.
// Unchanged files (same content hash, indexed status) are skipped.
func (s *IngestService) Register(ctx context.Context, path string) (*driving.IngestResult, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if !s.insideDataDir(abs) {
		return nil, fmt.Errorf("%w: %s", domain.ErrPathOutsideData, path)
	}

	res := s.ingestOne(ctx, abs)

	if err := s.finishBatch(ctx); err != nil {
		return &res, err
	}
	return &res, nil
}

// Scan walks the data directory, indexing new and changed files and
// dropping registry entries whose files no longer exist.
func (s *IngestService) Scan(ctx context.Context) (*driving.IngestReport, error) {
	if err := s.beginBatch(); err != nil {
		return nil, err
	}
	defer s.endBatch()

	logger.Section("Scan")

	paths, err := s.collectFiles()
	if err != nil {
		return nil, fmt.Errorf("walk data directory: %w", err)
	}
	logger.Info("Found %d ingestible files in %s", len(paths), s.settings.DataDir)

	results := make([]driving.IngestResult, len(paths))
	s.runPool(ctx, paths, results)

	report := &driving.IngestReport{}
	for _, r := range results {
		report.Add(r)
	}

	// Drop registry entries whose file vanished so no stale vectors
	// remain queryable.
	docs, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return report, fmt.Errorf("list documents: %w", err)
	}
	for i := range docs {
		if _, statErr := os.Stat(docs[i].Path); !errors.Is(statErr, fs.ErrNotExist) {
			continue
		}
		logger.Debug("Removing vanished file: %s", docs[i].Path)
		if err := s.removeDocument(ctx, &docs[i]); err != nil {
			logger.Error("Failed to remove %s: %v", docs[i].Path, err)
			continue
		}
		report.Removed++
	}

	if err := s.finishBatch(ctx); err != nil {
		return report, err
	}
	return report, nil
}

// Remove deletes a document: registry entry, sub-documents, chunks, and
// vectors. The staged file is deleted so the next scan does not re-add it.
func (s *IngestService) Remove(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	doc, err := s.docStore.GetDocumentByPath(ctx, abs)
	if err != nil {
		return err
	}

	if err := s.removeDocument(ctx, doc); err != nil {
		return err
	}
	if s.insideDataDir(abs) {
		if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Could not delete staged file %s: %v", abs, err)
		}
	}

	if err := s.vectorIndex.Save(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	logger.Info("Removed %s", filepath.Base(abs))
	return nil
}

// Reconcile drops index entries whose document is no longer registered.
// A crashed ingest can leave orphaned vectors; this runs at startup.
func (s *IngestService) Reconcile(ctx context.Context) (int, error) {
	removed := 0
	for _, id := range s.vectorIndex.DocumentIDs() {
		_, err := s.docStore.GetDocument(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return removed, fmt.Errorf("get document %s: %w", id, err)
		}
		n, err := s.vectorIndex.RemoveDocument(ctx, id)
		if err != nil {
			return removed, fmt.Errorf("remove orphaned vectors for %s: %w", id, err)
		}
		removed += n
	}
	if removed > 0 {
		logger.Info("Reconcile dropped %d orphaned vectors", removed)
		if err := s.vectorIndex.Save(); err != nil {
			return removed, fmt.Errorf("save index: %w", err)
		}
	}
	return removed, nil
}

// --- batch machinery ---

func (s *IngestService) beginBatch() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrIngestInProgress
	}
	s.running = true
	return nil
}

func (s *IngestService) endBatch() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// finishBatch persists the index and records the model it was built with.
func (s *IngestService) finishBatch(ctx context.Context) error {
	if err := s.vectorIndex.Save(); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	if err := s.docStore.SetMeta(ctx, metaIndexModel, s.embedder.ModelName()); err != nil {
		return fmt.Errorf("record index model: %w", err)
	}
	return nil
}

// runPool processes paths on the configured number of workers. Entries
// with an empty path (staging already failed) are left untouched.
// Cancellation stops scheduling new documents; in-flight ones finish.
func (s *IngestService) runPool(ctx context.Context, paths []string, results []driving.IngestResult) {
	workers := s.settings.Ingest.Workers
	if workers <= 0 {
		workers = 1
	}

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.idx] = s.ingestOne(ctx, j.path)
			}
		}()
	}

dispatch:
	for i, path := range paths {
		if path == "" {
			continue
		}
		select {
		case jobs <- job{idx: i, path: path}:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Mark anything cancellation left unscheduled.
	for i := range paths {
		if paths[i] != "" && results[i].Outcome == "" {
			results[i] = driving.IngestResult{
				Path:    paths[i],
				Outcome: driving.IngestFailed,
				Err:     ctx.Err(),
			}
		}
	}
}

// stage validates a file and copies it into the data directory.
// A file already inside the data directory is not copied.
func (s *IngestService) stage(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if !domain.ExtensionAllowed(filepath.Ext(abs)) {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, filepath.Base(abs))
	}
	if _, err := os.Stat(abs); err != nil {
		return "", err
	}

	dest := filepath.Join(s.settings.DataDir, filepath.Base(abs))
	if dest == abs {
		return abs, nil
	}

	if err := os.MkdirAll(s.settings.DataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	if err := copyFile(abs, dest); err != nil {
		return "", fmt.Errorf("copy into data directory: %w", err)
	}
	logger.Debug("Staged %s -> %s", abs, dest)
	return dest, nil
}

// ingestOne runs the full pipeline for a single file. Failures are
// recorded on the registry entry and reported in the result, never
// propagated as batch errors.
func (s *IngestService) ingestOne(ctx context.Context, path string) driving.IngestResult {
	res := driving.IngestResult{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		res.Outcome = driving.IngestFailed
		res.Err = err
		return res
	}
	sum, err := hashFile(path)
	if err != nil {
		res.Outcome = driving.IngestFailed
		res.Err = err
		return res
	}

	existing, err := s.docStore.GetDocumentByPath(ctx, path)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		res.Outcome = driving.IngestFailed
		res.Err = err
		return res
	}

	if existing != nil && existing.ContentHash == sum && existing.Status == domain.DocumentStatusIndexed {
		logger.Debug("Unchanged, skipping: %s", filepath.Base(path))
		res.Outcome = driving.IngestSkipped
		return res
	}

	// Per-document timeout bounds extract+chunk+embed so one bad file
	// cannot hang a batch.
	docCtx := ctx
	if t := s.settings.Ingest.DocumentTimeout; t > 0 {
		var cancel context.CancelFunc
		docCtx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}

	logger.Debug("Processing: %s", filepath.Base(path))
	chunkCount, err := s.indexDocument(docCtx, path, info, sum, existing)
	if err != nil {
		logger.Warn("Failed to index %s: %v", filepath.Base(path), err)
		s.recordFailure(ctx, path, info, sum, existing, err)
		res.Outcome = driving.IngestFailed
		res.Err = err
		return res
	}

	logger.Info("Indexed %s (%d chunks)", filepath.Base(path), chunkCount)
	res.Outcome = driving.IngestIndexed
	res.Chunks = chunkCount
	return res
}

// indexUnit pairs a document with the chunks built from its content.
type indexUnit struct {
	doc    domain.Document
	chunks []domain.Chunk
}

// indexDocument replaces a document's indexed state: old chunks and
// vectors are dropped, then the file is extracted, chunked, embedded and
// inserted. Returns the number of chunks indexed.
func (s *IngestService) indexDocument(
	ctx context.Context,
	path string,
	info fs.FileInfo,
	sum string,
	existing *domain.Document,
) (int, error) {
	extractor, err := s.extractors.ForPath(path)
	if err != nil {
		return 0, err
	}

	rootID := uuid.New().String()
	createdAt := time.Now()
	if existing != nil {
		rootID = existing.ID
		createdAt = existing.CreatedAt
		// Drop the previous chunks and vectors first: a failed attempt
		// must not leave vectors for the old content queryable.
		if err := s.dropDocumentData(ctx, existing); err != nil {
			return 0, err
		}
	}

	extractions, err := extractor.Extract(ctx, path)
	if err != nil {
		return 0, err
	}

	units := s.buildUnits(rootID, path, info, sum, createdAt, extractions)

	total := 0
	for i := range units {
		if err := s.chunkAndEmbed(ctx, &units[i]); err != nil {
			return 0, err
		}
		total += len(units[i].chunks)
	}

	now := time.Now()
	indexedAt := now
	for i := range units {
		units[i].doc.Status = domain.DocumentStatusIndexed
		units[i].doc.IndexedAt = &indexedAt
		units[i].doc.UpdatedAt = now
		if err := s.docStore.SaveDocument(ctx, &units[i].doc); err != nil {
			return 0, fmt.Errorf("save document: %w", err)
		}
		if err := s.docStore.SaveChunks(ctx, units[i].chunks); err != nil {
			return 0, fmt.Errorf("save chunks: %w", err)
		}
		for _, chunk := range units[i].chunks {
			err := s.vectorIndex.Insert(ctx, driven.VectorEntry{
				ChunkID:    chunk.ID,
				DocumentID: chunk.DocumentID,
				Vector:     chunk.Embedding,
			})
			if err != nil {
				return 0, fmt.Errorf("insert vector: %w", err)
			}
		}
	}

	return total, nil
}

// buildUnits turns extractions into documents. A single sheetless
// extraction becomes the root document itself; workbook sheets become
// sub-documents of a contentless root.
func (s *IngestService) buildUnits(
	rootID, path string,
	info fs.FileInfo,
	sum string,
	createdAt time.Time,
	extractions []domain.Extraction,
) []indexUnit {
	now := time.Now()
	ext := filepath.Ext(path)
	root := domain.Document{
		ID:          rootID,
		Path:        path,
		Filename:    filepath.Base(path),
		Extension:   domain.NormaliseExtension(ext),
		FileType:    domain.FileTypeForExtension(ext),
		Title:       titleFromFilename(path),
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		ContentHash: sum,
		Status:      domain.DocumentStatusPending,
		CreatedAt:   createdAt,
		UpdatedAt:   now,
	}
	if len(extractions) > 0 && extractions[0].Title != "" {
		root.Title = extractions[0].Title
	}

	if len(extractions) == 1 && extractions[0].Sheet == "" {
		root.Content = extractions[0].Text()
		return []indexUnit{{doc: root}}
	}

	units := make([]indexUnit, 0, len(extractions)+1)
	units = append(units, indexUnit{doc: root})
	for _, e := range extractions {
		title := e.Title
		if e.Sheet != "" {
			title = fmt.Sprintf("%s (%s)", e.Title, e.Sheet)
		}
		units = append(units, indexUnit{doc: domain.Document{
			ID:          uuid.New().String(),
			Path:        path,
			Filename:    root.Filename,
			Extension:   root.Extension,
			FileType:    root.FileType,
			Title:       title,
			Content:     e.Text(),
			Size:        info.Size(),
			ModifiedAt:  info.ModTime(),
			ContentHash: sum,
			Status:      domain.DocumentStatusPending,
			ParentID:    &root.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}})
	}
	return units
}

// chunkAndEmbed fills a unit's chunks with embedded content.
func (s *IngestService) chunkAndEmbed(ctx context.Context, u *indexUnit) error {
	chunks, err := s.pipeline.Process(ctx, &u.doc)
	if err != nil {
		return fmt.Errorf("chunk %q: %w", u.doc.Title, err)
	}
	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i := range chunks {
			texts[i] = chunks[i].Content
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed %q: %w", u.doc.Title, err)
		}
		if len(vectors) != len(chunks) {
			return fmt.Errorf("embed %q: got %d vectors for %d chunks", u.doc.Title, len(vectors), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}
	u.chunks = chunks
	u.doc.ChunkCount = len(chunks)
	return nil
}

// dropDocumentData removes a document's chunks, its sub-documents, and
// every associated vector. The root registry entry itself survives.
func (s *IngestService) dropDocumentData(ctx context.Context, doc *domain.Document) error {
	subs, err := s.docStore.GetSubDocuments(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("get sub-documents: %w", err)
	}
	for i := range subs {
		if _, err := s.vectorIndex.RemoveDocument(ctx, subs[i].ID); err != nil {
			return fmt.Errorf("remove vectors: %w", err)
		}
		if err := s.docStore.DeleteDocument(ctx, subs[i].ID); err != nil {
			return fmt.Errorf("delete sub-document: %w", err)
		}
	}
	if _, err := s.vectorIndex.RemoveDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("remove vectors: %w", err)
	}
	if err := s.docStore.DeleteChunks(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	return nil
}

// removeDocument deletes a document, its sub-documents, chunks and vectors.
func (s *IngestService) removeDocument(ctx context.Context, doc *domain.Document) error {
	if err := s.dropDocumentData(ctx, doc); err != nil {
		return err
	}
	if err := s.docStore.DeleteDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// recordFailure marks the registry entry failed with the cause. The entry
// keeps its identity so a later fix re-indexes under the same ID.
func (s *IngestService) recordFailure(
	ctx context.Context,
	path string,
	info fs.FileInfo,
	sum string,
	existing *domain.Document,
	cause error,
) {
	now := time.Now()
	doc := domain.Document{
		ID:          uuid.New().String(),
		Path:        path,
		Filename:    filepath.Base(path),
		Extension:   domain.NormaliseExtension(filepath.Ext(path)),
		FileType:    domain.FileTypeForExtension(filepath.Ext(path)),
		Title:       titleFromFilename(path),
		Size:        info.Size(),
		ModifiedAt:  info.ModTime(),
		ContentHash: sum,
		CreatedAt:   now,
	}
	if existing != nil {
		doc.ID = existing.ID
		doc.Title = existing.Title
		doc.CreatedAt = existing.CreatedAt
	}
	doc.Status = domain.DocumentStatusFailed
	doc.Error = cause.Error()
	doc.UpdatedAt = now

	if err := s.docStore.SaveDocument(ctx, &doc); err != nil {
		logger.Error("Failed to record failure for %s: %v", path, err)
	}
}

// collectFiles walks the data directory for ingestible files, sorted by
// the walk order (lexical within each directory).
func (s *IngestService) collectFiles() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.settings.DataDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.settings.DataDir {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != s.settings.DataDir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if domain.ExtensionAllowed(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// insideDataDir reports whether path resolves inside the data directory.
func (s *IngestService) insideDataDir(path string) bool {
	return pathInsideRoot(s.settings.DataDir, path)
}

// hashFile returns the SHA-256 hex digest of the file contents.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dest, replacing any existing file.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// titleFromFilename derives a readable title from the file name.
func titleFromFilename(path string) string {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore holds documents, chunks, and registry metadata in
// process memory. It mirrors the SQLite adapter's observable behavior,
// including ordering, so service tests can swap it in directly.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	chunkDoc  map[string]string
	meta      map[string]string

	// seq records insertion order so GetSubDocuments can return sheets
	// in registration order, matching the SQLite adapter.
	seq     map[string]int
	nextSeq int
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		chunkDoc:  make(map[string]string),
		meta:      make(map[string]string),
		seq:       make(map[string]int),
	}
}

// SaveDocument stores or updates a document keyed by ID.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; !exists {
		s.seq[doc.ID] = s.nextSeq
		s.nextSeq++
	}
	s.documents[doc.ID] = *doc
	return nil
}

// SaveChunks replaces a document's chunks with the given batch, kept
// sorted by position. All chunks in one batch belong to one document.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docID := chunks[0].DocumentID
	s.dropChunksLocked(docID)

	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	sort.Slice(stored, func(i, j int) bool {
		return stored[i].Position < stored[j].Position
	})

	s.chunks[docID] = stored
	for _, chunk := range stored {
		s.chunkDoc[chunk.ID] = docID
	}
	return nil
}

// GetDocument looks up a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// GetDocumentByPath retrieves a root document by its absolute path.
// Sheet sub-documents share their parent's path and are skipped.
func (s *DocumentStore) GetDocumentByPath(_ context.Context, path string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, doc := range s.documents {
		if doc.ParentID == nil && doc.Path == path {
			return &doc, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetSubDocuments retrieves sheet sub-documents in registration order.
func (s *DocumentStore) GetSubDocuments(_ context.Context, parentID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var subs []domain.Document
	for _, doc := range s.documents {
		if doc.ParentID != nil && *doc.ParentID == parentID {
			subs = append(subs, doc)
		}
	}
	sort.Slice(subs, func(i, j int) bool {
		return s.seq[subs[i].ID] < s.seq[subs[j].ID]
	})
	return subs, nil
}

// GetChunk retrieves a chunk by ID through the chunk index.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docID, ok := s.chunkDoc[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	for _, chunk := range s.chunks[docID] {
		if chunk.ID == id {
			return &chunk, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetChunks retrieves all chunks for a document, ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	return result, nil
}

// DeleteDocument removes a document, its sub-documents, and their chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for subID, doc := range s.documents {
		if doc.ParentID != nil && *doc.ParentID == id {
			s.removeLocked(subID)
		}
	}
	s.removeLocked(id)
	return nil
}

// DeleteChunks removes all chunks for a document.
func (s *DocumentStore) DeleteChunks(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dropChunksLocked(documentID)
	return nil
}

// ListDocuments returns all root documents ordered like the SQLite
// adapter: case-insensitive filename, then path.
func (s *DocumentStore) ListDocuments(_ context.Context) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var roots []domain.Document
	for _, doc := range s.documents {
		if doc.ParentID == nil {
			roots = append(roots, doc)
		}
	}
	sort.Slice(roots, func(i, j int) bool {
		fi, fj := strings.ToLower(roots[i].Filename), strings.ToLower(roots[j].Filename)
		if fi != fj {
			return fi < fj
		}
		return roots[i].Path < roots[j].Path
	})
	return roots, nil
}

// CountChunks returns the total number of stored chunks.
func (s *DocumentStore) CountChunks(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, chunks := range s.chunks {
		total += len(chunks)
	}
	return total, nil
}

// GetMeta reads a registry metadata value.
func (s *DocumentStore) GetMeta(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.meta[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return val, nil
}

// SetMeta writes a registry metadata value.
func (s *DocumentStore) SetMeta(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meta[key] = value
	return nil
}

// Clear empties documents and chunks, keeping metadata.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[string]domain.Document)
	s.chunks = make(map[string][]domain.Chunk)
	s.chunkDoc = make(map[string]string)
	s.seq = make(map[string]int)
	s.nextSeq = 0
	return nil
}

// Close releases resources (no-op for memory store).
func (s *DocumentStore) Close() error {
	return nil
}

// removeLocked deletes one document with its chunks and bookkeeping.
// Callers hold the write lock.
func (s *DocumentStore) removeLocked(id string) {
	s.dropChunksLocked(id)
	delete(s.documents, id)
	delete(s.seq, id)
}

// dropChunksLocked removes a document's chunks and their index entries.
// Callers hold the write lock.
func (s *DocumentStore) dropChunksLocked(docID string) {
	for _, chunk := range s.chunks[docID] {
		delete(s.chunkDoc, chunk.ID)
	}
	delete(s.chunks, docID)
}

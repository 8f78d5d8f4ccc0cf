package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/trove/internal/core/domain"
	"github.com/custodia-labs/trove/internal/core/ports/driven"
	"github.com/custodia-labs/trove/internal/core/ports/driving"
)

var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService provides read access to the document registry.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService wraps the registry in the read-only driving port.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// List returns all root documents ordered by filename.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Get looks up a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetByPath retrieves a root document by absolute path.
func (s *DocumentService) GetByPath(ctx context.Context, path string) (*domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return s.docStore.GetDocumentByPath(ctx, abs)
}

// GetContent returns the document's full extracted text. For a workbook
// root the sheet sub-documents are joined in registration order.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if doc.Content != "" || doc.IsSubDocument() {
		return doc.Content, nil
	}

	subs, err := s.docStore.GetSubDocuments(ctx, documentID)
	if err != nil {
		return "", err
	}
	if len(subs) == 0 {
		return "", nil
	}

	parts := make([]string, 0, len(subs))
	for _, sub := range subs {
		parts = append(parts, sub.Title+"\n"+sub.Content)
	}
	return strings.Join(parts, "\n\n"), nil
}

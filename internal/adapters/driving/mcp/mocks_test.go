package mcp

import (
	"context"

	"github.com/custodia-labs/trove/internal/core/domain"
)

// mockSearchService returns the configured response or error.
type mockSearchService struct {
	response *domain.SearchResponse
	err      error
}

func (m *mockSearchService) Search(context.Context, string, domain.SearchOptions) (*domain.SearchResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.response == nil {
		return &domain.SearchResponse{}, nil
	}
	return m.response, nil
}

// mockDocumentService returns the configured fixtures or error.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	content   string
	err       error
}

func (m *mockDocumentService) List(context.Context) ([]domain.Document, error) {
	return m.documents, m.err
}

func (m *mockDocumentService) Get(context.Context, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetByPath(context.Context, string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetContent(context.Context, string) (string, error) {
	return m.content, m.err
}

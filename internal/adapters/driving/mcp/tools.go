package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/trove/internal/core/domain"
)

var errNoDocumentService = errors.New("document service not available")

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the free-text query; matches by meaning, not keywords"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results (0 uses the configured default)"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results    []SearchResultOutput `json:"results"`
	Count      int                  `json:"count"`
	IndexStale bool                 `json:"index_stale,omitempty"`
}

// SearchResultOutput is one hit in the tool response.
type SearchResultOutput struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Path       string  `json:"path"`
	Score      float64 `json:"score"`
	Preview    string  `json:"preview,omitempty"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct{}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput describes one library document.
type DocumentOutput struct {
	ID       string    `json:"id"`
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
	Status   string    `json:"status"`
}

// GetInput is the input schema for the get_document tool.
type GetInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document ID from search or listing results"`
}

// GetOutput is the output schema for the get_document tool.
type GetOutput struct {
	Document DocumentOutput `json:"document"`
	Content  string         `json:"content"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search the document library by meaning",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List every document in the library",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document",
		Description: "Fetch a document's metadata and full extracted text",
	}, s.handleGet)
}

func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.SearchOptions{Limit: input.Limit}
	resp, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results:    make([]SearchResultOutput, len(resp.Results)),
		Count:      len(resp.Results),
		IndexStale: resp.IndexStale,
	}

	for i := range resp.Results {
		r := &resp.Results[i]
		output.Results[i] = SearchResultOutput{
			DocumentID: r.Document.ID,
			Filename:   r.Document.Filename,
			Path:       r.Document.Path,
			Score:      r.Score,
			Preview:    r.Preview,
		}
	}

	return nil, output, nil
}

func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	if s.ports.Document == nil {
		return nil, ListOutput{}, errNoDocumentService
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, ListOutput{}, err
	}

	output := ListOutput{
		Documents: make([]DocumentOutput, len(docs)),
		Count:     len(docs),
	}
	for i := range docs {
		output.Documents[i] = documentOutput(&docs[i])
	}

	return nil, output, nil
}

func (s *Server) handleGet(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetInput,
) (*mcp.CallToolResult, GetOutput, error) {
	if s.ports.Document == nil {
		return nil, GetOutput{}, errNoDocumentService
	}

	doc, err := s.ports.Document.Get(ctx, input.DocumentID)
	if err != nil {
		return nil, GetOutput{}, err
	}

	content, err := s.ports.Document.GetContent(ctx, input.DocumentID)
	if err != nil {
		return nil, GetOutput{}, err
	}

	return nil, GetOutput{
		Document: documentOutput(doc),
		Content:  content,
	}, nil
}

func documentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		ID:       doc.ID,
		Filename: doc.Filename,
		Path:     doc.Path,
		Size:     doc.Size,
		Modified: doc.ModifiedAt,
		Status:   string(doc.Status),
	}
}

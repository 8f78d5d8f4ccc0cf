package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme prefixes every resource URI this server publishes.
const uriScheme = "trove://"

const (
	mimeJSON = "application/json"
	mimeText = "text/plain"
)

func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all documents in the library",
		MIMEType:    mimeJSON,
	}, s.handleLibraryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "document/{documentId}",
		Name:        "document-text",
		Description: "Full extracted text of a specific document",
		MIMEType:    mimeText,
	}, s.handleContentResource)
}

// handleLibraryResource serves the library listing as JSON. It uses
// the same projection as the list_documents tool, and reads as an
// empty list while no document service is wired.
func (s *Server) handleLibraryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	listing := []DocumentOutput{}
	if s.ports.Document != nil {
		docs, err := s.ports.Document.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing library: %w", err)
		}
		for i := range docs {
			listing = append(listing, documentOutput(&docs[i]))
		}
	}

	data, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding documents: %w", err)
	}

	return resourceResult(req.Params.URI, mimeJSON, string(data)), nil
}

// handleContentResource serves one document's extracted text.
func (s *Server) handleContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, ok := documentIDFromURI(req.Params.URI)
	if !ok || s.ports.Document == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	text, err := s.ports.Document.GetContent(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", docID, err)
	}

	return resourceResult(req.Params.URI, mimeText, text), nil
}

// documentIDFromURI parses URIs of the form trove://document/{documentId}.
func documentIDFromURI(uri string) (string, bool) {
	id, ok := strings.CutPrefix(uri, uriScheme+"document/")
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

func resourceResult(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

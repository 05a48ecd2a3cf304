package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for pdfsift resources.
	uriScheme = "pdfsift://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "PDF documents under the served directory",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{key}",
		Name:        "document-text",
		Description: "Cached text of a document",
		MIMEType:    "text/plain",
	}, s.handleDocumentTextResource)
}

// handleDocumentsResource lists the documents and whether each is cached.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	type docInfo struct {
		Key      string `json:"key"`
		Location string `json:"location"`
		Size     int64  `json:"size"`
		Cached   bool   `json:"cached"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		_, cached := s.entry(docs[i].Key)
		infos[i] = docInfo{
			Key:      docs[i].Key,
			Location: s.ports.locate(docs[i]),
			Size:     docs[i].Size,
			Cached:   cached,
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling documents: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDocumentTextResource returns the cached text of one document:
// the text layer followed by the recognised text.
func (s *Server) handleDocumentTextResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entry, ok := s.entry(extractDocumentKey(req.Params.URI))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var parts []string
	for _, text := range []string{entry.Text, entry.OCR} {
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     strings.Join(parts, "\n"),
		}},
	}, nil
}

// extractDocumentKey extracts the key from a URI like
// pdfsift://documents/{key}. Keys may contain escaped slashes.
func extractDocumentKey(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	key, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return key
}

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the string to look for; case is ignored"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of matches to return (default all)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Matches    []MatchOutput `json:"matches"`
	Count      int           `json:"count"`
	Total      int           `json:"total"`
	Unreadable int           `json:"unreadable"`
}

// MatchOutput is one matching document.
type MatchOutput struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Via      string `json:"via"`
}

// GetTextInput is the input schema for the get_text tool.
type GetTextInput struct {
	Key string `json:"key" jsonschema:"document key as returned by search"`
}

// GetTextOutput is the output schema for the get_text tool.
type GetTextOutput struct {
	Key        string `json:"key"`
	Text       string `json:"text"`
	OCR        string `json:"ocr"`
	TextStatus string `json:"text_status"`
	OCRStatus  string `json:"ocr_status"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "List the PDF documents that contain a string",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_text",
		Description: "Return the cached text of a document",
	}, s.handleGetText)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	docs, err := s.ports.Documents(ctx)
	if err != nil {
		return nil, SearchOutput{}, fmt.Errorf("listing documents: %w", err)
	}

	report, err := s.ports.Search.Search(ctx, docs, input.Query, nil)
	if flushErr := s.flush(ctx); flushErr != nil {
		logger.Warn("saving cache: %v", flushErr)
	}
	if err != nil {
		return nil, SearchOutput{}, err
	}

	stats := report.Stats()
	output := SearchOutput{
		Matches:    []MatchOutput{},
		Total:      stats.Total,
		Unreadable: stats.Encrypted + stats.Unreadable,
	}
	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		if !o.Matched {
			continue
		}
		if input.Limit > 0 && len(output.Matches) >= input.Limit {
			break
		}
		output.Matches = append(output.Matches, MatchOutput{
			Key:      o.Document.Key,
			Location: s.ports.locate(o.Document),
			Via:      o.Via.String(),
		})
	}
	output.Count = len(output.Matches)

	return nil, output, nil
}

// handleGetText handles the get_text tool invocation.
func (s *Server) handleGetText(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetTextInput,
) (*mcp.CallToolResult, GetTextOutput, error) {
	entry, ok := s.entry(input.Key)
	if !ok {
		return nil, GetTextOutput{}, fmt.Errorf("%w: %s is not cached", domain.ErrNotFound, input.Key)
	}

	return nil, GetTextOutput{
		Key:        input.Key,
		Text:       entry.Text,
		OCR:        entry.OCR,
		TextStatus: entry.TextStatus.String(),
		OCRStatus:  entry.OCRStatus.String(),
	}, nil
}

func (s *Server) entry(key string) (domain.Entry, bool) {
	if s.ports.Cache == nil || key == "" {
		return domain.Entry{}, false
	}
	return s.ports.Cache.Get(key)
}

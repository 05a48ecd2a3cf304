package mcp

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// Ports aggregates the services the MCP server needs.
type Ports struct {
	// Search answers queries over a document set.
	Search driving.SearchService

	// Cache exposes cached text. Optional; without it the text tool and
	// document resources report nothing cached.
	Cache driving.CacheService

	// Documents lists the current documents. It is called per request so
	// files added while the server runs are searched too.
	Documents func(ctx context.Context) ([]domain.Document, error)

	// Locate renders a document for output. Defaults to its key.
	Locate func(doc domain.Document) string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Documents == nil {
		return ErrMissingDocuments
	}
	return nil
}

func (p *Ports) locate(doc domain.Document) string {
	if p.Locate == nil {
		return doc.Key
	}
	return p.Locate(doc)
}

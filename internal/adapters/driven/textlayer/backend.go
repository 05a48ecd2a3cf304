// Package textlayer implements the extraction backend that decodes text
// stored explicitly in a document. Engines are tried in configured order.
package textlayer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Name identifies the backend when no engine produced a result.
const Name = "textlayer"

// Ensure Backend implements the interface.
var _ driven.ExtractionBackend = (*Backend)(nil)

// Backend runs text-layer engines in order until one reads the document.
type Backend struct {
	engines []driven.TextLayerEngine
}

// New creates a text-layer backend over the given engines.
func New(engines ...driven.TextLayerEngine) *Backend {
	return &Backend{engines: engines}
}

// Name returns the backend identity.
func (b *Backend) Name() string {
	return Name
}

// Kind returns BackendTextLayer.
func (b *Backend) Kind() domain.BackendKind {
	return domain.BackendTextLayer
}

// Engines returns the engine names in order.
func (b *Backend) Engines() []string {
	names := make([]string, 0, len(b.engines))
	for _, e := range b.engines {
		names = append(names, e.Name())
	}
	return names
}

// Extract returns the text of the first engine that reads the document.
// An engine reporting encryption ends the chain; any other failure moves
// on to the next engine.
func (b *Backend) Extract(ctx context.Context, doc domain.Document) domain.ExtractionResult {
	if len(b.engines) == 0 {
		return domain.NewFailedResult(Name, fmt.Errorf("%w: no text-layer engines configured", domain.ErrEngine))
	}

	var errs []error
	for _, engine := range b.engines {
		text, pages, err := read(ctx, engine, doc.Path)
		if err == nil {
			logger.Debug("%s: text layer read by %s (%d pages)", doc.Key, engine.Name(), pages)
			return domain.NewTextResult(engine.Name(), text, pages)
		}
		if errors.Is(err, domain.ErrEncrypted) {
			logger.Debug("%s: encrypted (%s)", doc.Key, engine.Name())
			return domain.NewFailedResult(engine.Name(), err)
		}

		logger.Debug("%s: %s failed: %v", doc.Key, engine.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", engine.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}

	return domain.NewFailedResult(Name, fmt.Errorf("%w: %w", domain.ErrEngine, errors.Join(errs...)))
}

// read concatenates all page texts in page order, separated by newlines.
func read(ctx context.Context, engine driven.TextLayerEngine, path string) (string, int, error) {
	doc, err := engine.Open(ctx, path)
	if err != nil {
		return "", 0, err
	}
	defer doc.Close()

	pages := doc.PageCount()
	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		text, err := doc.PageText(ctx, page)
		if err != nil {
			return "", 0, err
		}
		if page > 1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}
	return sb.String(), pages, nil
}

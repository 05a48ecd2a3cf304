// Package ocr implements the extraction backend that recovers text from
// rasterised pages. One backend value serves one resolution, so a pipeline
// configured with several resolutions holds several backends.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.ExtractionBackend = (*Backend)(nil)

// Backend renders each page and passes it to the first working recognizer.
type Backend struct {
	rasterizer  driven.Rasterizer
	recognizers []driven.Recognizer
	dpi         int
	languages   []string
}

// New creates a recognition backend for one resolution.
func New(rasterizer driven.Rasterizer, recognizers []driven.Recognizer, dpi int, languages []string) *Backend {
	return &Backend{
		rasterizer:  rasterizer,
		recognizers: recognizers,
		dpi:         dpi,
		languages:   languages,
	}
}

// Name returns the backend identity, e.g. "tesseract@100dpi".
func (b *Backend) Name() string {
	return fmt.Sprintf("tesseract@%ddpi", b.dpi)
}

// Kind returns BackendRecognition.
func (b *Backend) Kind() domain.BackendKind {
	return domain.BackendRecognition
}

// DPI returns the rendering resolution.
func (b *Backend) DPI() int {
	return b.dpi
}

// Extract recognises every page in order and concatenates the results.
// A page no recognizer can read fails the whole pass.
func (b *Backend) Extract(ctx context.Context, doc domain.Document) domain.ExtractionResult {
	if len(b.recognizers) == 0 {
		return domain.NewFailedResult(b.Name(), fmt.Errorf("%w: no recognition engines configured", domain.ErrEngine))
	}

	rd, err := b.rasterizer.Open(ctx, doc.Path)
	if err != nil {
		logger.Debug("%s: %s cannot open: %v", doc.Key, b.Name(), err)
		return domain.NewFailedResult(b.Name(), err)
	}
	defer rd.Close()

	opts := driven.RecognizeOptions{Languages: b.languages, DPI: b.dpi}
	pages := rd.PageCount()
	preferred := 0

	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		png, err := rd.Render(ctx, page, b.dpi)
		if err != nil {
			return domain.NewFailedResult(b.Name(), fmt.Errorf("%w: %w", domain.ErrEngine, err))
		}

		text, used, err := b.recognize(ctx, png, opts, preferred)
		if err != nil {
			return domain.NewFailedResult(b.Name(), fmt.Errorf("page %d: %w", page, err))
		}
		preferred = used

		if page > 1 {
			sb.WriteByte('\n')
		}
		sb.WriteString(text)
	}

	logger.Debug("%s: recognised %d pages at %d dpi", doc.Key, pages, b.dpi)
	return domain.NewTextResult(b.Name(), sb.String(), pages)
}

// recognize tries the preferred recognizer first, then the others in order.
// It returns the index of the recognizer that succeeded so later pages
// skip engines already known not to work.
func (b *Backend) recognize(ctx context.Context, png []byte, opts driven.RecognizeOptions, preferred int) (string, int, error) {
	var errs []error
	for i := preferred; i < len(b.recognizers); i++ {
		r := b.recognizers[i]
		text, err := r.Recognize(ctx, png, opts)
		if err == nil {
			return text, i, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", preferred, fmt.Errorf("%w: %w", domain.ErrEngine, errors.Join(errs...))
}

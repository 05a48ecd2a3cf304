// Package gopdf is an in-process text-layer engine built on
// github.com/ledongthuc/pdf. It needs no external programs and is the
// default primary engine.
package gopdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Name identifies the engine.
const Name = "gopdf"

// Ensure Engine implements the interface.
var _ driven.TextLayerEngine = (*Engine)(nil)

// Engine decodes the text layer in process.
type Engine struct{}

// New creates a new engine.
func New() *Engine {
	return &Engine{}
}

// Name returns the engine identifier.
func (e *Engine) Name() string {
	return Name
}

type opened struct {
	file   *os.File
	reader *pdf.Reader
}

// Open parses the cross-reference table and trailer.
// Parsing runs in a goroutine raced against ctx because the parser does not
// observe cancellation.
func (e *Engine) Open(ctx context.Context, path string) (driven.TextDocument, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	o, err := guard(ctx, func() (opened, error) {
		f, r, err := pdf.Open(path)
		if err != nil {
			return opened{}, err
		}
		return opened{file: f, reader: r}, nil
	}, func(o opened) {
		if o.file != nil {
			_ = o.file.Close()
		}
	})
	if err != nil {
		return nil, classify(ctx, path, err)
	}

	if !o.reader.Trailer().Key("Encrypt").IsNull() {
		_ = o.file.Close()
		return nil, fmt.Errorf("%s: %w", path, domain.ErrEncrypted)
	}

	return &document{file: o.file, reader: o.reader}, nil
}

// classify maps parser failures onto domain errors.
func classify(ctx context.Context, path string, err error) error {
	switch {
	case ctx.Err() != nil:
		return err
	case errors.Is(err, domain.ErrCorrupt):
		return fmt.Errorf("%s: %w", path, err)
	case errors.Is(err, pdf.ErrInvalidPassword),
		strings.Contains(strings.ToLower(err.Error()), "encrypt"):
		return fmt.Errorf("%s: %w", path, domain.ErrEncrypted)
	default:
		return fmt.Errorf("%w: %s: %v", domain.ErrCorrupt, path, err)
	}
}

type document struct {
	file   *os.File
	reader *pdf.Reader
}

func (d *document) PageCount() int {
	return d.reader.NumPage()
}

func (d *document) PageText(ctx context.Context, page int) (string, error) {
	if page < 1 || page > d.reader.NumPage() {
		return "", fmt.Errorf("%w: page %d of %d", domain.ErrInvalidInput, page, d.reader.NumPage())
	}
	return guard(ctx, func() (string, error) {
		p := d.reader.Page(page)
		if p.V.IsNull() {
			return "", nil
		}
		return p.GetPlainText(nil)
	}, nil)
}

func (d *document) Close() error {
	return d.file.Close()
}

// guard runs fn in a goroutine and returns early when ctx is done.
// Panics raised by the parser on malformed input are reported as
// domain.ErrCorrupt. If ctx wins, release is called with the late result.
func guard[T any](ctx context.Context, fn func() (T, error), release func(T)) (T, error) {
	type result struct {
		value T
		err   error
	}

	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	done := make(chan result, 1)
	go func() {
		var res result
		defer func() {
			if r := recover(); r != nil {
				res = result{err: fmt.Errorf("%w: %v", domain.ErrCorrupt, r)}
			}
			done <- res
		}()
		res.value, res.err = fn()
	}()

	select {
	case res := <-done:
		return res.value, res.err
	case <-ctx.Done():
		if release != nil {
			go func() {
				if res := <-done; res.err == nil {
					release(res.value)
				}
			}()
		}
		return zero, ctx.Err()
	}
}

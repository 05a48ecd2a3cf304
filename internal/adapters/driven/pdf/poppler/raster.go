package poppler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// RasterEngineName identifies the pdftoppm engine.
const RasterEngineName = "pdftoppm"

// Ensure Rasterizer implements the interface.
var _ driven.Rasterizer = (*Rasterizer)(nil)

// Rasterizer renders pages to PNG with pdftoppm.
type Rasterizer struct {
	runner driven.CommandRunner
	tools  Tools
}

// NewRasterizer creates a pdftoppm rasterizer.
func NewRasterizer(runner driven.CommandRunner, tools Tools) *Rasterizer {
	return &Rasterizer{runner: runner, tools: tools.withDefaults()}
}

// Name returns the engine identifier.
func (r *Rasterizer) Name() string {
	return RasterEngineName
}

// Open probes the document with pdfinfo.
func (r *Rasterizer) Open(ctx context.Context, path string) (driven.RasterDocument, error) {
	info, err := probe(ctx, r.runner, r.tools.PDFInfo, path)
	if err != nil {
		return nil, err
	}
	return &rasterDocument{runner: r.runner, tool: r.tools.PDFToPPM, path: path, pages: info.Pages}, nil
}

type rasterDocument struct {
	runner driven.CommandRunner
	tool   string
	path   string
	pages  int
}

func (d *rasterDocument) PageCount() int {
	return d.pages
}

func (d *rasterDocument) Render(ctx context.Context, page, dpi int) ([]byte, error) {
	if dpi <= 0 {
		return nil, fmt.Errorf("%w: resolution %d", domain.ErrInvalidInput, dpi)
	}
	n := strconv.Itoa(page)
	out, err := d.runner.Run(ctx, d.tool,
		"-q", "-png", "-r", strconv.Itoa(dpi), "-f", n, "-l", n, "-singlefile", d.path, "-")
	if err != nil {
		return nil, fmt.Errorf("render page %d: %w", page, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: page %d rendered no image", domain.ErrEngine, page)
	}
	return out, nil
}

func (d *rasterDocument) Close() error {
	return nil
}

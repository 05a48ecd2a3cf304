package poppler

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// TextEngineName identifies the pdftotext engine.
const TextEngineName = "pdftotext"

// Ensure TextEngine implements the interface.
var _ driven.TextLayerEngine = (*TextEngine)(nil)

// TextEngine extracts the text layer with pdftotext.
type TextEngine struct {
	runner driven.CommandRunner
	tools  Tools
}

// NewTextEngine creates a pdftotext engine.
func NewTextEngine(runner driven.CommandRunner, tools Tools) *TextEngine {
	return &TextEngine{runner: runner, tools: tools.withDefaults()}
}

// Name returns the engine identifier.
func (e *TextEngine) Name() string {
	return TextEngineName
}

// Open probes the document with pdfinfo.
func (e *TextEngine) Open(ctx context.Context, path string) (driven.TextDocument, error) {
	info, err := probe(ctx, e.runner, e.tools.PDFInfo, path)
	if err != nil {
		return nil, err
	}
	return &textDocument{runner: e.runner, tool: e.tools.PDFToText, path: path, pages: info.Pages}, nil
}

type textDocument struct {
	runner driven.CommandRunner
	tool   string
	path   string
	pages  int
}

func (d *textDocument) PageCount() int {
	return d.pages
}

func (d *textDocument) PageText(ctx context.Context, page int) (string, error) {
	n := strconv.Itoa(page)
	out, err := d.runner.Run(ctx, d.tool, "-q", "-enc", "UTF-8", "-f", n, "-l", n, d.path, "-")
	if err != nil {
		return "", fmt.Errorf("page %d: %w", page, err)
	}
	return string(out), nil
}

func (d *textDocument) Close() error {
	return nil
}

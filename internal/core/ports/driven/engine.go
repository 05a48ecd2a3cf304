package driven

import "context"

// TextLayerEngine decodes text stored explicitly in a document.
// Implementations may be in-process parsers or external programs.
type TextLayerEngine interface {
	// Name returns the engine identifier.
	Name() string

	// Open prepares the document for extraction.
	// Returns an error wrapping domain.ErrEncrypted if the document reports
	// an encryption flag, or domain.ErrCorrupt if it cannot be parsed.
	Open(ctx context.Context, path string) (TextDocument, error)
}

// TextDocument is an opened document handle of a TextLayerEngine.
type TextDocument interface {
	// PageCount returns the number of pages.
	PageCount() int

	// PageText returns the text of a page. Pages are numbered from 1.
	PageText(ctx context.Context, page int) (string, error)

	// Close releases resources.
	Close() error
}

// Rasterizer renders document pages to images.
type Rasterizer interface {
	// Name returns the engine identifier.
	Name() string

	// Open prepares the document for rendering.
	// Returns an error wrapping domain.ErrEncrypted for encrypted documents.
	Open(ctx context.Context, path string) (RasterDocument, error)
}

// RasterDocument is an opened document handle of a Rasterizer.
type RasterDocument interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Render rasterises a page at the given resolution and returns PNG bytes.
	// Pages are numbered from 1.
	Render(ctx context.Context, page, dpi int) ([]byte, error)

	// Close releases resources.
	Close() error
}

// RecognizeOptions configures a recognition call.
type RecognizeOptions struct {
	// Languages is opaque engine configuration (e.g. "rus", "eng").
	Languages []string

	// DPI is the resolution the image was rendered at.
	DPI int
}

// Recognizer runs optical character recognition on an image.
type Recognizer interface {
	// Name returns the engine identifier.
	Name() string

	// Recognize returns the text recognised in a PNG image.
	Recognize(ctx context.Context, png []byte, opts RecognizeOptions) (string, error)
}

// CommandRunner executes external programs.
// It is the seam used to fake poppler and tesseract in tests.
type CommandRunner interface {
	// Run executes the named program and returns its standard output.
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

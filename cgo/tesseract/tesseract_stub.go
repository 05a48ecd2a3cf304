//go:build !cgo

package tesseract

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Name identifies the engine.
const Name = "gosseract"

// Ensure Recognizer implements the interface.
var _ driven.Recognizer = (*Recognizer)(nil)

// Recognizer runs libtesseract in process.
// This is a stub for builds without CGO.
type Recognizer struct{}

// New creates a new recognizer.
func New() *Recognizer {
	return &Recognizer{}
}

// Available reports whether the in-process engine was compiled in.
func Available() bool {
	return false
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return Name
}

// Recognize always fails without CGO.
func (r *Recognizer) Recognize(_ context.Context, _ []byte, _ driven.RecognizeOptions) (string, error) {
	return "", domain.ErrNotImplemented
}

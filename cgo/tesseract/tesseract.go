//go:build cgo

package tesseract

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Name identifies the engine.
const Name = "gosseract"

// Ensure Recognizer implements the interface.
var _ driven.Recognizer = (*Recognizer)(nil)

// Recognizer runs libtesseract in process.
type Recognizer struct {
	clientFactory func() *gosseract.Client
}

// New creates a new recognizer.
func New() *Recognizer {
	return &Recognizer{clientFactory: gosseract.NewClient}
}

// Available reports whether the in-process engine was compiled in.
func Available() bool {
	return true
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return Name
}

// Recognize runs recognition on a PNG image.
// A client is not safe for concurrent use, so each call gets its own.
// The call is raced against ctx; an abandoned client is closed when the
// library returns.
func (r *Recognizer) Recognize(ctx context.Context, png []byte, opts driven.RecognizeOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)

	go func() {
		c := r.clientFactory()
		defer c.Close()
		text, err := recognize(c, png, opts)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func recognize(c *gosseract.Client, png []byte, opts driven.RecognizeOptions) (string, error) {
	if err := c.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(opts.Languages) > 0 {
		if err := c.SetLanguage(opts.Languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	if opts.DPI > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("user_defined_dpi"), strconv.Itoa(opts.DPI)); err != nil {
			return "", fmt.Errorf("set dpi: %w", err)
		}
	}
	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return text, nil
}

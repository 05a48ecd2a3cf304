// Package tesseractcli runs optical character recognition through the
// tesseract command-line program.
package tesseractcli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Name identifies the engine.
const Name = "tesseract"

// Ensure Recognizer implements the interface.
var _ driven.Recognizer = (*Recognizer)(nil)

// Recognizer passes page images to the tesseract binary.
type Recognizer struct {
	runner driven.CommandRunner
	tool   string
}

// New creates a recognizer running the given program (default "tesseract").
func New(runner driven.CommandRunner, tool string) *Recognizer {
	if tool == "" {
		tool = Name
	}
	return &Recognizer{runner: runner, tool: tool}
}

// Name returns the engine identifier.
func (r *Recognizer) Name() string {
	return Name
}

// Recognize writes the image to a temporary file and reads the recognised
// text from standard output.
func (r *Recognizer) Recognize(ctx context.Context, png []byte, opts driven.RecognizeOptions) (string, error) {
	f, err := os.CreateTemp("", "pdfsift-page-*.png")
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(png); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	out, err := r.runner.Run(ctx, r.tool, Args(f.Name(), opts)...)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Args builds the tesseract command line for an image file.
func Args(image string, opts driven.RecognizeOptions) []string {
	args := []string{image, "stdout"}
	if len(opts.Languages) > 0 {
		args = append(args, "-l", strings.Join(opts.Languages, "+"))
	}
	if opts.DPI > 0 {
		args = append(args, "--dpi", strconv.Itoa(opts.DPI))
	}
	return args
}

package tesseractcli

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// mockRunner records the call and checks the image file exists while running.
type mockRunner struct {
	output  []byte
	err     error
	name    string
	args    []string
	content []byte
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	m.content, _ = os.ReadFile(args[0])
	return m.output, m.err
}

func TestNew(t *testing.T) {
	r := New(&mockRunner{}, "")
	assert.Equal(t, Name, r.Name())
	assert.Equal(t, "tesseract", r.tool)

	r = New(&mockRunner{}, "/usr/local/bin/tesseract")
	assert.Equal(t, "/usr/local/bin/tesseract", r.tool)
}

func TestRecognize(t *testing.T) {
	runner := &mockRunner{output: []byte("Договор №1\n")}
	r := New(runner, "")

	text, err := r.Recognize(context.Background(), []byte("png-bytes"), driven.RecognizeOptions{
		Languages: []string{"rus", "eng"},
		DPI:       100,
	})
	require.NoError(t, err)
	assert.Equal(t, "Договор №1\n", text)

	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []byte("png-bytes"), runner.content)
	require.Len(t, runner.args, 6)
	assert.Equal(t, []string{"stdout", "-l", "rus+eng", "--dpi", "100"}, runner.args[1:])

	// The temporary image is removed afterwards.
	_, statErr := os.Stat(runner.args[0])
	assert.True(t, os.IsNotExist(statErr))
}

func TestRecognize_Error(t *testing.T) {
	runner := &mockRunner{err: domain.ErrToolNotFound}

	_, err := New(runner, "").Recognize(context.Background(), []byte("png"), driven.RecognizeOptions{})
	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name     string
		opts     driven.RecognizeOptions
		expected []string
	}{
		{"no options", driven.RecognizeOptions{}, []string{"img.png", "stdout"}},
		{"single language", driven.RecognizeOptions{Languages: []string{"rus"}}, []string{"img.png", "stdout", "-l", "rus"}},
		{"dpi only", driven.RecognizeOptions{DPI: 300}, []string{"img.png", "stdout", "--dpi", "300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Args("img.png", tt.opts))
		})
	}
}

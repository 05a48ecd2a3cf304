package textlayer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// stubEngine serves fixed pages or a fixed open error.
type stubEngine struct {
	name    string
	pages   []string
	openErr error
	pageErr error
	opened  int
	closed  int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Open(_ context.Context, _ string) (driven.TextDocument, error) {
	s.opened++
	if s.openErr != nil {
		return nil, s.openErr
	}
	return &stubDocument{engine: s}, nil
}

type stubDocument struct {
	engine *stubEngine
}

func (d *stubDocument) PageCount() int { return len(d.engine.pages) }

func (d *stubDocument) PageText(_ context.Context, page int) (string, error) {
	if d.engine.pageErr != nil {
		return "", d.engine.pageErr
	}
	return d.engine.pages[page-1], nil
}

func (d *stubDocument) Close() error {
	d.engine.closed++
	return nil
}

var testDoc = domain.Document{Key: "a.pdf", Path: "/docs/a.pdf", Name: "a.pdf"}

func TestBackend_Identity(t *testing.T) {
	b := New(&stubEngine{name: "gopdf"}, &stubEngine{name: "pdftotext"})
	assert.Equal(t, Name, b.Name())
	assert.Equal(t, domain.BackendTextLayer, b.Kind())
	assert.Equal(t, []string{"gopdf", "pdftotext"}, b.Engines())
}

func TestBackend_Extract_FirstEngineWins(t *testing.T) {
	first := &stubEngine{name: "gopdf", pages: []string{"Договор №1", "стр. 2"}}
	second := &stubEngine{name: "pdftotext", pages: []string{"unused"}}

	result := New(first, second).Extract(context.Background(), testDoc)

	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "gopdf", result.Backend)
	assert.Equal(t, "Договор №1\nстр. 2", result.Text)
	assert.Equal(t, 2, result.Pages)
	assert.Equal(t, 1, first.closed)
	assert.Equal(t, 0, second.opened)
}

func TestBackend_Extract_FallsThroughOnFailure(t *testing.T) {
	first := &stubEngine{name: "gopdf", openErr: fmt.Errorf("%w: bad xref", domain.ErrCorrupt)}
	second := &stubEngine{name: "pdftotext", pages: []string{"text"}}

	result := New(first, second).Extract(context.Background(), testDoc)

	assert.Equal(t, domain.StatusOK, result.Status)
	assert.Equal(t, "pdftotext", result.Backend)
	assert.Equal(t, "text", result.Text)
}

func TestBackend_Extract_PageErrorFallsThrough(t *testing.T) {
	first := &stubEngine{name: "gopdf", pages: []string{"a"}, pageErr: errors.New("bad content stream")}
	second := &stubEngine{name: "pdftotext", pages: []string{"b"}}

	result := New(first, second).Extract(context.Background(), testDoc)

	assert.Equal(t, "pdftotext", result.Backend)
	assert.Equal(t, 1, first.closed)
}

func TestBackend_Extract_EncryptedStopsChain(t *testing.T) {
	first := &stubEngine{name: "gopdf", openErr: fmt.Errorf("a.pdf: %w", domain.ErrEncrypted)}
	second := &stubEngine{name: "pdftotext", pages: []string{"should not run"}}

	result := New(first, second).Extract(context.Background(), testDoc)

	assert.Equal(t, domain.StatusEncrypted, result.Status)
	assert.Empty(t, result.Text)
	assert.Equal(t, 0, second.opened)
}

func TestBackend_Extract_AllFail(t *testing.T) {
	first := &stubEngine{name: "gopdf", openErr: domain.ErrCorrupt}
	second := &stubEngine{name: "pdftotext", openErr: domain.ErrToolNotFound}

	result := New(first, second).Extract(context.Background(), testDoc)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, Name, result.Backend)
	assert.Empty(t, result.Text)
	require.Error(t, result.Err)
	assert.ErrorIs(t, result.Err, domain.ErrEngine)
	assert.ErrorIs(t, result.Err, domain.ErrToolNotFound)
	assert.Contains(t, result.Reason(), "gopdf")
}

func TestBackend_Extract_BlankTextIsEmpty(t *testing.T) {
	result := New(&stubEngine{name: "gopdf", pages: []string{" ", "\n"}}).Extract(context.Background(), testDoc)

	assert.Equal(t, domain.StatusEmpty, result.Status)
	assert.True(t, result.Success())
}

func TestBackend_Extract_NoEngines(t *testing.T) {
	result := New().Extract(context.Background(), testDoc)
	assert.Equal(t, domain.StatusFailed, result.Status)
}

func TestBackend_Extract_CancelledStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	first := &stubEngine{name: "gopdf", openErr: context.Canceled}
	second := &stubEngine{name: "pdftotext", pages: []string{"x"}}

	result := New(first, second).Extract(ctx, testDoc)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.Equal(t, 0, second.opened)
}

package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// stubBackend returns canned results per document key and counts calls.
type stubBackend struct {
	name     string
	kind     domain.BackendKind
	results  map[string]domain.ExtractionResult
	blocking bool
	block    map[string]bool

	mu    sync.Mutex
	calls map[string]int
}

func newTextBackend(results map[string]domain.ExtractionResult) *stubBackend {
	return &stubBackend{name: "gopdf", kind: domain.BackendTextLayer, results: results}
}

func newOCRBackend(dpi int, results map[string]domain.ExtractionResult) *stubBackend {
	return &stubBackend{name: fmt.Sprintf("tesseract@%ddpi", dpi), kind: domain.BackendRecognition, results: results}
}

func (b *stubBackend) Name() string             { return b.name }
func (b *stubBackend) Kind() domain.BackendKind { return b.kind }

func (b *stubBackend) Extract(ctx context.Context, doc domain.Document) domain.ExtractionResult {
	b.mu.Lock()
	if b.calls == nil {
		b.calls = make(map[string]int)
	}
	b.calls[doc.Key]++
	b.mu.Unlock()

	if b.blocking || b.block[doc.Key] {
		<-ctx.Done()
		return domain.NewFailedResult(b.name, ctx.Err())
	}

	result, ok := b.results[doc.Key]
	if !ok {
		return domain.NewTextResult(b.name, "", 1)
	}
	result.Backend = b.name
	return result
}

// Calls returns how often a key was extracted.
func (b *stubBackend) Calls(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[key]
}

// Total returns the number of Extract calls.
func (b *stubBackend) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		n += c
	}
	return n
}

func text(s string) domain.ExtractionResult {
	return domain.NewTextResult("", s, 1)
}

func encrypted() domain.ExtractionResult {
	return domain.NewFailedResult("", fmt.Errorf("locked: %w", domain.ErrEncrypted))
}

func failed() domain.ExtractionResult {
	return domain.NewFailedResult("", fmt.Errorf("%w: broken xref", domain.ErrCorrupt))
}

// repairFunc adapts a function to the PostProcessorPipeline port.
type repairFunc func(string) (string, error)

func (f repairFunc) Process(_ context.Context, text string) (string, error) {
	return f(text)
}

var upper = repairFunc(func(s string) (string, error) { return strings.ToUpper(s), nil })

func testDoc(key string) domain.Document {
	return domain.Document{Key: key, Path: "/docs/" + key, Name: key}
}

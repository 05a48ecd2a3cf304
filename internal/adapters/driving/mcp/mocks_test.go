package mcp

import (
	"context"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

// mockSearchService matches documents whose key contains the query.
type mockSearchService struct {
	unreadable map[string]bool
	err        error
	queries    []string
}

func (m *mockSearchService) Search(
	_ context.Context,
	docs []domain.Document,
	query string,
	_ driving.Observer,
) (*domain.RunReport, error) {
	m.queries = append(m.queries, query)
	if m.err != nil {
		return nil, m.err
	}

	report := &domain.RunReport{ID: "run-1", Query: m.NewQuery(query)}
	for _, doc := range docs {
		o := domain.Outcome{Document: doc, Entry: domain.Entry{TextStatus: domain.StatusOK}}
		switch {
		case m.unreadable[doc.Key]:
			o.Entry = domain.Entry{TextStatus: domain.StatusFailed, OCRStatus: domain.StatusFailed}
		case strings.Contains(doc.Key, query):
			o.Matched = true
			o.Via = domain.MatchText
		}
		report.Outcomes = append(report.Outcomes, o)
	}
	return report, nil
}

func (m *mockSearchService) Matches(_ context.Context, doc domain.Document, q domain.Query) (domain.Outcome, error) {
	return domain.Outcome{Document: doc, Matched: strings.Contains(doc.Key, q.Raw)}, m.err
}

func (m *mockSearchService) Index(_ context.Context, docs []domain.Document, _ driving.Observer) (*domain.RunReport, error) {
	return &domain.RunReport{Outcomes: make([]domain.Outcome, len(docs))}, m.err
}

func (m *mockSearchService) NewQuery(raw string) domain.Query {
	return domain.Query{Raw: raw, Light: raw, Strict: raw}
}

// mockCacheService serves fixed entries and counts flushes.
type mockCacheService struct {
	entries  map[string]domain.Entry
	flushErr error
	flushes  int
}

func (m *mockCacheService) Get(key string) (domain.Entry, bool) {
	e, ok := m.entries[key]
	return e, ok
}

func (m *mockCacheService) Snapshot() map[string]domain.Entry { return m.entries }
func (m *mockCacheService) Path() string                      { return "" }
func (m *mockCacheService) Len() int                          { return len(m.entries) }
func (m *mockCacheService) Added() int                        { return 0 }
func (m *mockCacheService) Close() error                      { return nil }

func (m *mockCacheService) Flush(_ context.Context) error {
	m.flushes++
	return m.flushErr
}

// listDocuments returns a Documents port over fixed keys.
func listDocuments(keys ...string) func(context.Context) ([]domain.Document, error) {
	return func(context.Context) ([]domain.Document, error) {
		docs := make([]domain.Document, len(keys))
		for i, k := range keys {
			docs[i] = domain.Document{Key: k, Name: k, Path: "/docs/" + k, Size: int64(len(k))}
		}
		return docs, nil
	}
}

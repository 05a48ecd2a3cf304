package services

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchOptions tunes a SearchService.
type SearchOptions struct {
	// Workers bounds concurrent documents. Defaults to runtime.NumCPU().
	Workers int

	// Timeout bounds the extraction of one document. Zero disables it.
	Timeout time.Duration

	// RetryFailed re-extracts entries cached as unreadable, once per run.
	RetryFailed bool
}

// SearchService answers "which documents contain this string" from the
// text cache, extracting on demand.
type SearchService struct {
	pipeline   *Pipeline
	store      *TextStore
	normaliser driven.ContentNormaliser
	opts       SearchOptions
	now        func() time.Time
}

// NewSearchService creates a new search service.
func NewSearchService(
	pipeline *Pipeline,
	store *TextStore,
	normaliser driven.ContentNormaliser,
	opts SearchOptions,
) *SearchService {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &SearchService{
		pipeline:   pipeline,
		store:      store,
		normaliser: normaliser,
		opts:       opts,
		now:        time.Now,
	}
}

// NewQuery normalises a query string with both profiles.
func (s *SearchService) NewQuery(raw string) domain.Query {
	return domain.Query{
		Raw:    raw,
		Light:  s.normaliser.Light(raw),
		Strict: s.normaliser.Strict(raw),
	}
}

// Search checks every document for the query.
func (s *SearchService) Search(
	ctx context.Context, docs []domain.Document, query string, observe driving.Observer,
) (*domain.RunReport, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	q := s.NewQuery(query)
	logger.Section("Search")
	logger.Debug("query %q light %q strict %q", q.Raw, q.Light, q.Strict)

	return s.run(ctx, docs, q, observe, func(ctx context.Context, doc domain.Document) (domain.Outcome, error) {
		return s.Matches(ctx, doc, q)
	})
}

// Index extracts and caches every document without searching.
func (s *SearchService) Index(
	ctx context.Context, docs []domain.Document, observe driving.Observer,
) (*domain.RunReport, error) {
	logger.Section("Index")

	return s.run(ctx, docs, domain.Query{}, observe, func(ctx context.Context, doc domain.Document) (domain.Outcome, error) {
		entry, produced, err := s.resolve(ctx, doc, nil)
		if err != nil {
			return domain.Outcome{}, err
		}
		return domain.Outcome{Document: doc, Cached: !produced, Entry: entry}, nil
	})
}

// Matches checks a single document. The cached entry is used when present;
// otherwise the document is extracted once and cached.
func (s *SearchService) Matches(ctx context.Context, doc domain.Document, query domain.Query) (domain.Outcome, error) {
	entry, produced, err := s.resolve(ctx, doc, s.hint(query))
	if err != nil {
		return domain.Outcome{}, err
	}

	via := s.match(entry, query)
	return domain.Outcome{
		Document: doc,
		Matched:  via != domain.MatchNone,
		Via:      via,
		Cached:   !produced,
		Entry:    entry,
	}, nil
}

// match compares the light query against the text layer and the strict
// query against recognition output. An empty needle never matches.
func (s *SearchService) match(entry domain.Entry, query domain.Query) domain.MatchVia {
	if query.Light != "" && strings.Contains(s.normaliser.Light(entry.Text), query.Light) {
		return domain.MatchText
	}
	if query.Strict != "" && strings.Contains(s.normaliser.Strict(entry.OCR), query.Strict) {
		return domain.MatchOCR
	}
	return domain.MatchNone
}

func (s *SearchService) hint(query domain.Query) domain.Hint {
	return func(textLayer, recognition string) bool {
		return s.match(domain.Entry{Text: textLayer, OCR: recognition}, query) != domain.MatchNone
	}
}

// resolve returns the entry for doc, extracting when it is missing, when
// it is unreadable and retries are enabled, or when recognition was
// deferred or stopped early and the cached text does not answer the hint.
func (s *SearchService) resolve(
	ctx context.Context, doc domain.Document, hint domain.Hint,
) (domain.Entry, bool, error) {
	need := func(entry domain.Entry, found bool) bool {
		switch {
		case !found:
			return true
		case hint != nil && s.pipeline.Pending(entry):
			// Resuming only runs passes the entry has not recorded.
			return !hint(entry.Text, entry.OCR)
		case s.store.Fresh(doc.Key):
			return false
		case s.opts.RetryFailed && entry.Unreadable():
			return true
		default:
			return false
		}
	}

	return s.store.Resolve(ctx, doc.Key, need, func() (domain.Entry, error) {
		return s.produce(ctx, doc, hint)
	})
}

// produce runs the pipeline under the per-document timeout. A timeout is
// recorded as an unreadable result; cancellation of the run is returned
// as an error so nothing is cached for the document.
func (s *SearchService) produce(ctx context.Context, doc domain.Document, hint domain.Hint) (domain.Entry, error) {
	dctx, cancel := s.documentContext(ctx)
	defer cancel()

	prev, found := s.store.Get(doc.Key)
	retry := s.opts.RetryFailed && prev.Unreadable() && !s.store.Fresh(doc.Key)
	upgrade := found && s.pipeline.Pending(prev) && !retry

	var entry domain.Entry
	if upgrade {
		logger.Debug("%s: resuming recognition after %v", doc.Key, prev.OCRPasses)
		rec := s.pipeline.Recognize(dctx, doc, prev, hint)
		entry = prev
		entry.OCR = rec.Text
		entry.OCRStatus = rec.Status
		entry.OCRBackend = rec.Backend
		entry.OCRPasses = rec.Passes
		entry.ExtractedAt = s.now()
	} else {
		logger.Debug("%s: extracting", doc.Key)
		entry = domain.NewEntry(doc.Key, s.pipeline.Extract(dctx, doc, hint), s.now())
	}

	if err := ctx.Err(); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *SearchService) documentContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// run processes documents on a bounded worker pool. Outcomes keep input
// order; the observer is called as each document completes.
func (s *SearchService) run(
	ctx context.Context,
	docs []domain.Document,
	query domain.Query,
	observe driving.Observer,
	check func(context.Context, domain.Document) (domain.Outcome, error),
) (*domain.RunReport, error) {
	report := &domain.RunReport{
		ID:        uuid.NewString(),
		Query:     query,
		Outcomes:  make([]domain.Outcome, len(docs)),
		StartedAt: s.now(),
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		done int
	)
	g.SetLimit(s.opts.Workers)

	finish := func(i int, outcome domain.Outcome) {
		mu.Lock()
		defer mu.Unlock()
		report.Outcomes[i] = outcome
		done++
		if observe != nil {
			observe(done, len(docs), outcome)
		}
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			finish(i, domain.Outcome{Document: doc, Err: err})
			continue
		}
		g.Go(func() error {
			outcome, err := check(ctx, doc)
			if err != nil {
				outcome = domain.Outcome{Document: doc, Err: err}
			}
			finish(i, outcome)
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = s.now()

	stats := report.Stats()
	logger.Info("run %s: %d documents, %d matched, %d extracted, %s",
		report.ID, stats.Total, stats.Matched, stats.Extracted, domain.FormatElapsed(report.Elapsed()))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("run interrupted: %w", err)
	}
	return report, nil
}

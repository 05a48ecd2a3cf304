package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
	"github.com/custodia-labs/pdfsift/internal/progress"
)

// session is one search or index run over a document root.
type session struct {
	settings  domain.Settings
	connector *filesystem.Connector
	docs      []domain.Document
	engine    *driving.Engine
}

// openSession resolves settings, walks root and opens the engine.
func openSession(cmd *cobra.Command, root string) (*session, error) {
	_, settings, err := loadSettings(overrides(cmd))
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	connector := filesystem.New(root, filesystem.Options{
		Extensions: settings.Extensions,
		SkipHidden: true,
		KeyMode:    settings.KeyMode,
	})
	docs, err := connector.Walk(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("found %d documents under %s", len(docs), connector.Root())

	engine, err := factory.OpenEngine(ctx, settings, connector.Root())
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return &session{settings: settings, connector: connector, docs: docs, engine: engine}, nil
}

// observer advances the progress bar and logs each outcome.
func (s *session) observer(bar *progress.Progress) driving.Observer {
	return func(done, _ int, o domain.Outcome) {
		bar.Update(done, o.Document.Key)
		logger.Info("%s: %s", o.Document.Key, describeOutcome(o))
	}
}

// flush saves the cache even when the run was interrupted.
func (s *session) flush(ctx context.Context) error {
	if err := s.engine.Cache.Flush(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("saving cache: %w", err)
	}
	if p := s.engine.Cache.Path(); p != "" && s.engine.Cache.Added() > 0 {
		logger.Info("saved %d new entries to %s", s.engine.Cache.Added(), p)
	}
	return nil
}

func (s *session) close() {
	if err := s.engine.Cache.Close(); err != nil {
		logger.Warn("closing cache: %v", err)
	}
}

func describeOutcome(o domain.Outcome) string {
	switch {
	case o.Err != nil:
		return "not processed: " + o.Err.Error()
	case o.Matched:
		return "found via " + o.Via.String()
	case o.Entry.Encrypted():
		return "encrypted"
	case o.Entry.Unreadable():
		return "unreadable"
	default:
		return "not found"
	}
}

// printSummary writes the run statistics to w.
func printSummary(w io.Writer, report *domain.RunReport, searched bool) {
	st := newStyles(w)
	stats := report.Stats()
	elapsed := domain.FormatElapsed(report.Elapsed())

	if searched {
		fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Found %d of %d documents", stats.Matched, stats.Total))+
			st.Muted.Render(" in "+elapsed))
	} else {
		fmt.Fprintln(w, st.Title.Render(fmt.Sprintf("Indexed %d documents", stats.Total-stats.Errored))+
			st.Muted.Render(" in "+elapsed))
	}
	fmt.Fprintln(w, st.Muted.Render(fmt.Sprintf("%d cached, %d extracted, %d recognised",
		stats.Cached, stats.Extracted, stats.Recognised)))

	if unread := stats.Encrypted + stats.Unreadable; unread > 0 {
		fmt.Fprintln(w, st.Warning.Render(fmt.Sprintf("%d of %d documents could not be read (%d encrypted, %d unreadable)",
			unread, stats.Total, stats.Encrypted, stats.Unreadable)))
	}
	if stats.Errored > 0 {
		fmt.Fprintln(w, st.Warning.Render(fmt.Sprintf("Interrupted: %d documents not processed", stats.Errored)))
	}
}

// interrupted reports whether err came from cancelling the run.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

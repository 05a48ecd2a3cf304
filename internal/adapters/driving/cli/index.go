package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/logger"
	"github.com/custodia-labs/pdfsift/internal/progress"
)

var indexWatch bool

var indexCmd = &cobra.Command{
	Use:   "index <dir>",
	Short: "Extract and cache the text of every document",
	Long: `Extracts the text layer and, unless OCR is disabled, the recognised
text of every PDF under dir so later searches are answered from the cache.

With --watch the command keeps running and indexes documents as they are
added. Documents that are already cached keep their cached text. Press
Ctrl+C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	addRunFlags(indexCmd)
	indexCmd.Flags().BoolVarP(&indexWatch, "watch", "w", false, "keep indexing documents as they are added")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd, args[0])
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	bar := progress.New("Indexing", len(s.docs))
	report, runErr := s.engine.Search.Index(ctx, s.docs, s.observer(bar))
	bar.Done()

	flushErr := s.flush(ctx)
	if report != nil {
		printSummary(cmd.ErrOrStderr(), report, false)
	}
	if err := errors.Join(runErr, flushErr); err != nil || !indexWatch {
		return err
	}

	return watchIndex(cmd, s)
}

// watchIndex indexes documents reported by the connector until the
// command is cancelled. Each document is flushed as soon as it is cached.
func watchIndex(cmd *cobra.Command, s *session) error {
	ctx := cmd.Context()
	docs, err := s.connector.Watch(ctx)
	if err != nil {
		return err
	}
	defer s.connector.Close()

	st := newStyles(cmd.ErrOrStderr())
	cmd.PrintErrln(st.Muted.Render("Watching " + s.connector.Root() + " (Ctrl+C to stop)"))

	for doc := range docs {
		report, err := s.engine.Search.Index(ctx, []domain.Document{doc}, nil)
		if err != nil {
			if interrupted(err) {
				break
			}
			logger.Error("indexing %s: %v", doc.Key, err)
			continue
		}
		if err := s.flush(ctx); err != nil {
			logger.Error("%v", err)
		}
		cmd.PrintErrln(doc.Key + ": " + describeOutcome(report.Outcomes[0]))
	}
	return nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pdfsift/internal/connectors/filesystem"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/progress"
)

var (
	searchJSON     bool
	searchAbsolute bool
)

var searchCmd = &cobra.Command{
	Use:   "search <dir> <query>",
	Short: "List documents containing a string",
	Long: `Searches every PDF under dir for query and prints the matching
documents, one per line, in directory order.

Matching ignores case. OCR text is compared after reducing both sides to
the configured alphabet, so recognition noise such as stray punctuation
does not prevent a match. A summary is written to stderr.`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	addRunFlags(searchCmd)
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().BoolVar(&searchAbsolute, "absolute", false, "print absolute paths instead of keys")
	searchCmd.Flags().String("url-prefix", "", "print matches as URLs under this prefix")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	root, query := args[0], args[1]
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	s, err := openSession(cmd, root)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := cmd.Context()
	bar := progress.New("Searching", len(s.docs))
	report, runErr := s.engine.Search.Search(ctx, s.docs, query, s.observer(bar))
	bar.Done()

	flushErr := s.flush(ctx)
	if report == nil {
		return errors.Join(runErr, flushErr)
	}

	if searchJSON {
		if err := printSearchJSON(cmd, report, s.settings); err != nil {
			return err
		}
	} else {
		for _, doc := range report.Matches() {
			cmd.Println(filesystem.ResolveLocation(doc, s.settings.URLPrefix, searchAbsolute))
		}
	}
	printSummary(cmd.ErrOrStderr(), report, true)

	return errors.Join(runErr, flushErr)
}

type jsonMatch struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Via      string `json:"via"`
	Cached   bool   `json:"cached"`
}

type jsonSearchReport struct {
	ID         string      `json:"id"`
	Query      string      `json:"query"`
	Matches    []jsonMatch `json:"matches"`
	Total      int         `json:"total"`
	Cached     int         `json:"cached"`
	Extracted  int         `json:"extracted"`
	Encrypted  int         `json:"encrypted"`
	Unreadable int         `json:"unreadable"`
	Skipped    int         `json:"skipped"`
	Elapsed    string      `json:"elapsed"`
}

func printSearchJSON(cmd *cobra.Command, report *domain.RunReport, settings domain.Settings) error {
	stats := report.Stats()
	out := jsonSearchReport{
		ID:         report.ID,
		Query:      report.Query.Raw,
		Matches:    []jsonMatch{},
		Total:      stats.Total,
		Cached:     stats.Cached,
		Extracted:  stats.Extracted,
		Encrypted:  stats.Encrypted,
		Unreadable: stats.Unreadable,
		Skipped:    stats.Errored,
		Elapsed:    domain.FormatElapsed(report.Elapsed()),
	}
	for i := range report.Outcomes {
		o := &report.Outcomes[i]
		if !o.Matched {
			continue
		}
		out.Matches = append(out.Matches, jsonMatch{
			Key:      o.Document.Key,
			Location: filesystem.ResolveLocation(o.Document, settings.URLPrefix, searchAbsolute),
			Via:      o.Via.String(),
			Cached:   o.Cached,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

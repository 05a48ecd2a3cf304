package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
)

var (
	cacheRoot   string
	cacheFormat string
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the text cache",
	Long: `Inspects the text cache of a document directory. Each directory has
its own cache unless --cache names a file.`,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache location",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, _ []string, cache driving.CacheService) error {
		cmd.Println(displayPath(cache.Path()))
		return nil
	}),
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise cached entries",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, _ []string, cache driving.CacheService) error {
		entries := cache.Snapshot()

		textStatus := make(map[domain.ExtractionStatus]int)
		ocrStatus := make(map[domain.ExtractionStatus]int)
		var encrypted, unreadable int
		for _, e := range entries {
			textStatus[e.TextStatus]++
			ocrStatus[e.OCRStatus]++
			if e.Encrypted() {
				encrypted++
			}
			if e.Unreadable() {
				unreadable++
			}
		}

		cmd.Printf("Cache:      %s\n", displayPath(cache.Path()))
		cmd.Printf("Entries:    %d\n", len(entries))
		cmd.Printf("Encrypted:  %d\n", encrypted)
		cmd.Printf("Unreadable: %d\n", unreadable)
		printStatusCounts(cmd, "Text layer", textStatus)
		printStatusCounts(cmd, "OCR", ocrStatus)
		return nil
	}),
}

var cacheShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a cached entry",
	Args:  cobra.ExactArgs(1),
	RunE: withCache(func(cmd *cobra.Command, args []string, cache driving.CacheService) error {
		entry, ok := cache.Get(args[0])
		if !ok {
			return fmt.Errorf("%w: %s is not cached", domain.ErrNotFound, args[0])
		}
		data, err := yaml.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		cmd.Printf("key: %s\n%s", args[0], data)
		return nil
	}),
}

var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every cached entry to stdout",
	Args:  cobra.NoArgs,
	RunE: withCache(func(cmd *cobra.Command, _ []string, cache driving.CacheService) error {
		data, err := exportEntries(cache.Snapshot(), cacheFormat)
		if err != nil {
			return err
		}
		cmd.Print(string(data))
		return nil
	}),
}

func init() {
	cacheCmd.PersistentFlags().StringVarP(&cacheRoot, "root", "r", ".", "document directory the cache belongs to")
	addCacheFlags(cacheCmd, true)
	cacheExportCmd.Flags().StringVarP(&cacheFormat, "format", "f", "json", "output format: json or yaml")

	cacheCmd.AddCommand(cachePathCmd, cacheStatsCmd, cacheShowCmd, cacheExportCmd)
	rootCmd.AddCommand(cacheCmd)
}

// withCache opens the cache for the selected root and closes it after run.
func withCache(
	run func(cmd *cobra.Command, args []string, cache driving.CacheService) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		_, settings, err := loadSettings(overrides(cmd))
		if err != nil {
			return err
		}
		cache, err := factory.OpenCache(cmd.Context(), settings, cacheRoot)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer cache.Close()
		return run(cmd, args, cache)
	}
}

// exportEntries renders entries keyed by document key.
func exportEntries(entries map[string]domain.Entry, format string) ([]byte, error) {
	switch format {
	case "json":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return nil, fmt.Errorf("failed to marshal entries: %w", err)
		}
		return buf.Bytes(), nil
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal entries: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: export format %q", domain.ErrUnsupportedType, format)
	}
}

func printStatusCounts(cmd *cobra.Command, label string, counts map[domain.ExtractionStatus]int) {
	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)

	cmd.Printf("%s:\n", label)
	for _, s := range statuses {
		status := domain.ExtractionStatus(s)
		name := s
		if name == "" {
			name = "unrecorded"
		}
		cmd.Printf("  %-10s %d (%s)\n", name, counts[status], status.Description())
	}
}

func displayPath(p string) string {
	if p == "" {
		return "(in memory)"
	}
	return p
}

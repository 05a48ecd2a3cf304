package cli

import (
	"github.com/spf13/cobra"
)

// flagKey binds a command-line flag to the config key it overrides.
type flagKey struct {
	flag string
	key  string
}

var runFlagKeys = []flagKey{
	{"ocr", "recognition.mode"},
	{"dpi", "recognition.dpi"},
	{"lang", "recognition.languages"},
	{"alphabet", "normalise.alphabet"},
	{"repair", "normalise.repair"},
	{"workers", "search.workers"},
	{"timeout", "search.timeout"},
	{"retry-failed", "search.retry_failed"},
	{"ext", "search.extensions"},
	{"cache", "cache.path"},
	{"backend", "cache.backend"},
	{"key", "cache.key"},
	{"url-prefix", "output.url_prefix"},
}

// addCacheFlags registers the flags that locate a cache.
func addCacheFlags(cmd *cobra.Command, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	flags.String("cache", "", "cache file (default: one per directory under ~/.pdfsift/cache)")
	flags.String("backend", "", "cache backend: json or sqlite")
	flags.String("key", "", "cache key: path (relative path) or name (file name)")
}

// addRunFlags registers the flags shared by search and index.
func addRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("ocr", "", "when to run OCR: always, fallback or never")
	flags.String("dpi", "", "OCR resolutions, lowest first (e.g. 100,300)")
	flags.String("lang", "", "OCR languages (e.g. rus+eng)")
	flags.String("alphabet", "", "letters kept when matching OCR text: russian, cyrillic, latin, letters, none or custom:<letters>")
	flags.String("repair", "", "text repair steps, comma separated (e.g. cp1252_cyrillic,whitespace:max_blank_lines=0)")
	flags.Int("workers", 0, "documents processed concurrently (default: number of CPUs)")
	flags.Duration("timeout", 0, "time limit per document (default 10m)")
	flags.Bool("retry-failed", false, "extract documents cached as unreadable again")
	flags.String("ext", "", "file extensions treated as documents (default .pdf)")
	flags.Bool("no-cache", false, "keep extracted text in memory only")
	addCacheFlags(cmd, false)
}

// overrides collects changed flags as config overrides.
func overrides(cmd *cobra.Command) map[string]string {
	out := make(map[string]string)
	for _, fk := range runFlagKeys {
		if f := cmd.Flags().Lookup(fk.flag); f != nil && f.Changed {
			out[fk.key] = f.Value.String()
		}
	}
	if noCache, err := cmd.Flags().GetBool("no-cache"); err == nil && noCache {
		out["cache.backend"] = "memory"
	}
	return out
}

package postprocessors

import (
	"strconv"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/postprocessors/glyphmap"
	"github.com/custodia-labs/pdfsift/internal/postprocessors/whitespace"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register(glyphmap.Name, buildGlyphMap)
	r.Register(whitespace.Name, buildWhitespace)
}

// buildGlyphMap creates the cp1252 to cyrillic repair processor.
// Supported config keys:
//   - min_word (int): Shortest word that is repaired (default: 2)
func buildGlyphMap(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []glyphmap.Option

	if size := getIntFromConfig(cfg, "min_word"); size > 0 {
		opts = append(opts, glyphmap.WithMinWord(size))
	}

	return glyphmap.New(opts...), nil
}

// buildWhitespace creates a whitespace collapsing processor.
// Supported config keys:
//   - max_blank_lines (int): Blank lines kept between paragraphs (default: 1)
func buildWhitespace(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []whitespace.Option

	if _, ok := cfg["max_blank_lines"]; ok {
		opts = append(opts, whitespace.WithMaxBlankLines(getIntFromConfig(cfg, "max_blank_lines")))
	}

	return whitespace.New(opts...), nil
}

// getIntFromConfig extracts an int from step parameters. Values parsed
// from a step spec arrive as strings; decoded config values as numbers.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

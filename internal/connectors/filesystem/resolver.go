package filesystem

import (
	"net/url"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// ResolveLocation returns how a matched document is printed.
// With a prefix the key is appended to it, each path segment escaped.
// Otherwise the absolute path or the key is returned.
func ResolveLocation(doc domain.Document, prefix string, absolute bool) string {
	if prefix != "" {
		segments := strings.Split(doc.Key, "/")
		for i, s := range segments {
			segments[i] = url.PathEscape(s)
		}
		return prefix + strings.Join(segments, "/")
	}
	if absolute {
		return doc.Path
	}
	return doc.Key
}

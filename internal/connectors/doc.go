// Package connectors provides the document sources pdfsift reads from.
// Each connector enumerates candidate files and yields domain.Document
// values with stable cache keys.
package connectors

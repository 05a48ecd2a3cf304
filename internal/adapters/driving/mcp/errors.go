// Package mcp serves pdfsift over the Model Context Protocol so assistants
// can ask which documents under a directory contain a string and read the
// cached text of a document.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingDocuments is returned when no document lister is provided.
var ErrMissingDocuments = errors.New("mcp: document lister is required")

// Package poppler drives the poppler-utils programs.
//
// pdfinfo reports the page count and encryption flag, pdftotext decodes the
// text layer one page at a time and pdftoppm renders pages to PNG for
// optical recognition. Programs are executed through a CommandRunner so
// they can be faked in tests and killed on timeout.
//
// Build requires nothing; at runtime the programs must be in PATH or
// configured via the tools.* settings.
package poppler

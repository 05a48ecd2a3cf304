// Package tesseract provides in-process optical character recognition
// through github.com/otiai10/gosseract. It implements the driven.Recognizer
// interface.
//
// Build requires:
//   - Tesseract and Leptonica development libraries
//   - Install via: brew install tesseract (macOS) or
//     apt install libtesseract-dev libleptonica-dev (Linux)
//
// Builds without CGO get a stub that reports domain.ErrNotImplemented, and
// the recognition backend falls through to the tesseract binary.
package tesseract

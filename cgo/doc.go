// Package cgo provides CGO bindings for native libraries.
// This package isolates all CGO code from the pure Go core.
//
// Sub-packages:
//   - tesseract: libtesseract bindings for in-process optical recognition
package cgo

// Package normalisers provides implementations of the ContentNormaliser
// interface. A normaliser turns extracted text and queries into a canonical
// form so that substring matching is robust against case and OCR noise.
//
// The same normaliser is applied to both sides of every comparison.
package normalisers

// Package profile implements the light and strict normalisation profiles.
//
// The light profile composes text to NFC and case-folds it. The strict
// profile additionally drops every rune outside a configured alphabet,
// which turns "garbled but substring-bearing" OCR output into text that
// still matches a query normalised the same way.
package profile

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.ContentNormaliser = (*Normaliser)(nil)

// Normaliser applies the light and strict profiles.
// It is safe for concurrent use.
type Normaliser struct {
	alphabet Alphabet
}

// New creates a normaliser restricting strict output to the given alphabet.
func New(alphabet string) (*Normaliser, error) {
	a, err := ParseAlphabet(alphabet)
	if err != nil {
		return nil, err
	}
	return &Normaliser{alphabet: a}, nil
}

// Alphabet returns the alphabet of the strict profile.
func (n *Normaliser) Alphabet() Alphabet {
	return n.alphabet
}

// Light composes text to NFC and case-folds it.
func (n *Normaliser) Light(text string) string {
	if text == "" {
		return ""
	}
	// A Caser holds state and must not be shared between goroutines.
	folded := cases.Fold().String(norm.NFC.String(text))
	return norm.NFC.String(folded)
}

// Strict applies the light profile and drops runes outside the alphabet.
func (n *Normaliser) Strict(text string) string {
	light := n.Light(text)
	if n.alphabet.Unrestricted() {
		return light
	}
	var b strings.Builder
	b.Grow(len(light))
	for _, r := range light {
		if n.alphabet.Contains(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

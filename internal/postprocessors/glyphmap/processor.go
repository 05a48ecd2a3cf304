// Package glyphmap repairs Cyrillic text that was decoded as Windows-1252.
//
// PDFs produced by some Windows tooling embed fonts whose glyphs carry
// Windows-1251 codes without a ToUnicode map. Text extraction then yields
// Latin-1 letters ("Äîãîâîð") where Cyrillic ones ("Договор") were meant.
// The processor maps such words back, leaving words that contain any
// other letter untouched.
package glyphmap

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// Name is the registry name of the processor.
const Name = "cp1252_cyrillic"

// DefaultMinWord is the shortest word that is repaired.
const DefaultMinWord = 2

// table maps a Windows-1252 rune to the Windows-1251 rune with the same code.
var table = buildTable()

func buildTable() map[rune]rune {
	t := make(map[rune]rune, 66)
	add := func(b byte) {
		latin := charmap.Windows1252.DecodeByte(b)
		cyrillic := charmap.Windows1251.DecodeByte(b)
		if latin != cyrillic {
			t[latin] = cyrillic
		}
	}
	for b := 0xC0; b <= 0xFF; b++ {
		add(byte(b))
	}
	// Ё and ё live outside the letter block.
	add(0xA8)
	add(0xB8)
	return t
}

// Processor remaps mis-decoded words.
// It implements the PostProcessor interface.
type Processor struct {
	minWord int
}

// Option configures the processor.
type Option func(*Processor)

// WithMinWord sets the shortest word length, in runes, that is repaired.
func WithMinWord(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.minWord = n
		}
	}
}

// New creates a new glyph map processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{minWord: DefaultMinWord}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process rewrites every word made only of mapped runes.
func (p *Processor) Process(_ context.Context, text string) (string, error) {
	if !strings.ContainsFunc(text, mapped) {
		return text, nil
	}

	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))

	for i := 0; i < len(runes); {
		if !wordRune(runes[i]) {
			b.WriteRune(runes[i])
			i++
			continue
		}
		j := i
		for j < len(runes) && wordRune(runes[j]) {
			j++
		}
		p.writeWord(&b, runes[i:j])
		i = j
	}

	return b.String(), nil
}

func (p *Processor) writeWord(b *strings.Builder, word []rune) {
	repair := len(word) >= p.minWord
	for _, r := range word {
		if !mapped(r) {
			repair = false
			break
		}
	}
	for _, r := range word {
		if repair {
			r = table[r]
		}
		b.WriteRune(r)
	}
}

func mapped(r rune) bool {
	_, ok := table[r]
	return ok
}

// wordRune covers letters plus the mapped symbols (× ÷ ¨ ¸) that stand in
// for Cyrillic letters.
func wordRune(r rune) bool {
	return unicode.IsLetter(r) || mapped(r)
}

package profile

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Alphabet reports whether a rune survives strict normalisation.
type Alphabet struct {
	name     string
	contains func(r rune) bool
}

// Name returns the alphabet specification it was parsed from.
func (a Alphabet) Name() string {
	return a.name
}

// Contains reports whether r is part of the alphabet.
func (a Alphabet) Contains(r rune) bool {
	if a.contains == nil {
		return true
	}
	return a.contains(r)
}

// Unrestricted returns true if the alphabet keeps every rune.
func (a Alphabet) Unrestricted() bool {
	return a.contains == nil
}

const customPrefix = "custom:"

// ParseAlphabet parses an alphabet specification.
//
// Supported values:
//   - russian: а-я and ё (the default)
//   - cyrillic: every Unicode Cyrillic letter
//   - latin: a-z
//   - letters: any Unicode letter
//   - none: no restriction
//   - custom:<runes>: exactly the listed runes, case-folded
func ParseAlphabet(spec string) (Alphabet, error) {
	name := strings.TrimSpace(spec)
	switch strings.ToLower(name) {
	case "", "russian":
		return Alphabet{name: "russian", contains: isRussian}, nil
	case "cyrillic":
		return Alphabet{name: "cyrillic", contains: func(r rune) bool {
			return unicode.Is(unicode.Cyrillic, r) && unicode.IsLetter(r)
		}}, nil
	case "latin":
		return Alphabet{name: "latin", contains: func(r rune) bool {
			return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		}}, nil
	case "letters":
		return Alphabet{name: "letters", contains: unicode.IsLetter}, nil
	case "none":
		return Alphabet{name: "none"}, nil
	}

	if strings.HasPrefix(name, customPrefix) {
		runes := cases.Fold().String(strings.TrimPrefix(name, customPrefix))
		if runes == "" {
			return Alphabet{}, fmt.Errorf("alphabet %q: no runes listed", spec)
		}
		set := make(map[rune]struct{}, len(runes))
		for _, r := range runes {
			set[r] = struct{}{}
		}
		return Alphabet{name: name, contains: func(r rune) bool {
			_, ok := set[r]
			return ok
		}}, nil
	}

	return Alphabet{}, fmt.Errorf("unknown alphabet %q", spec)
}

func isRussian(r rune) bool {
	switch {
	case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я':
		return true
	case r == 'ё' || r == 'Ё':
		return true
	default:
		return false
	}
}

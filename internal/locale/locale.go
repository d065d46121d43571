// Package locale answers whether a short path segment is a known language code.
package locale

import (
	"golang.org/x/text/language"
)

// Lookup reports whether code is a recognized language identifier.
// Implementations must be safe for concurrent use.
type Lookup interface {
	IsKnownLanguageCode(code string) bool
}

// ISO639 recognizes two-letter ISO 639-1 codes (lower case only) using the
// CLDR tables shipped with golang.org/x/text.
type ISO639 struct{}

// Default returns the lookup used when none is injected.
func Default() Lookup {
	return ISO639{}
}

// IsKnownLanguageCode implements Lookup
func (ISO639) IsKnownLanguageCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'a' || code[i] > 'z' {
			return false
		}
	}

	// ParseBase rejects well-formed codes missing from the registry.
	_, err := language.ParseBase(code)
	return err == nil
}

// Set is a fixed lookup, mostly useful in tests.
type Set map[string]struct{}

// NewSet builds a Set from the given codes.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

// IsKnownLanguageCode implements Lookup
func (s Set) IsKnownLanguageCode(code string) bool {
	_, ok := s[code]
	return ok
}

package locale

import "testing"

func TestISO639_IsKnownLanguageCode(t *testing.T) {
	lookup := Default()

	testCases := []struct {
		code     string
		expected bool
	}{
		{"en", true},
		{"de", true},
		{"fr", true},
		{"ja", true},
		{"EN", false},
		{"eng", false},
		{"blog", false},
		{"zz", false},
		{"", false},
		{"e1", false},
	}

	for _, tc := range testCases {
		if got := lookup.IsKnownLanguageCode(tc.code); got != tc.expected {
			t.Errorf("For code '%s': expected %v, got %v", tc.code, tc.expected, got)
		}
	}
}

func TestSet_IsKnownLanguageCode(t *testing.T) {
	set := NewSet("en", "it")

	if !set.IsKnownLanguageCode("it") {
		t.Error("Expected 'it' to be known")
	}
	if set.IsKnownLanguageCode("de") {
		t.Error("Expected 'de' to be unknown")
	}
}

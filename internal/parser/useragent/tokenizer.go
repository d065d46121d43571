package useragent

import (
	"regexp"
	"strings"
)

// leading "Name With Spaces/1.2" product
var spacedProductPattern = regexp.MustCompile(`^[\s\w]+/[\d\.]+`)

// preprocess removes the spaces of a leading product token so it survives
// whitespace tokenization as one token.
func preprocess(userAgent string) string {
	loc := spacedProductPattern.FindStringIndex(userAgent)
	if loc == nil {
		return userAgent
	}
	return strings.ReplaceAll(userAgent[:loc[1]], " ", "") + userAgent[loc[1]:]
}

// tokenize splits a User-Agent on spaces outside parentheses. A parenthesized
// clause is one token with its inner spaces kept; the parentheses themselves
// only delimit.
func tokenize(userAgent string) []string {
	var (
		tokens  []string
		current strings.Builder
		inside  bool
	)

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range userAgent {
		switch {
		case r == '(':
			inside = true
			flush()
		case r == ')':
			inside = false
			flush()
		case r == ' ' && !inside:
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return tokens
}

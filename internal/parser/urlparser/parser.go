// Package urlparser decomposes URL-like strings into protocol, port, domain
// levels, path segments, query parameters and fragment identifiers.
package urlparser

import (
	"regexp"
	"strconv"
	"strings"

	"weblynx/internal/locale"
	"weblynx/internal/parser/components"
	"weblynx/internal/parser/tree"

	"github.com/pterm/pterm"
)

// MaxInputLength bounds the text handed to the matchers.
const MaxInputLength = 8 << 10

// DefaultTargetType is reported when the path does not end in a known file extension.
const DefaultTargetType = "page"

var (
	// loose "looks like a URL" check: an explicit scheme or a www host
	urlPattern = regexp.MustCompile("(?i)^(?:\\w+://|www\\d{0,3}[.])[^\\s()<>]+[^\\s`!()\\[\\]{};:'\".,<>?«»“”‘’]")

	fragmentPattern     = regexp.MustCompile(`#(\w+)$`)
	protocolHostPattern = regexp.MustCompile(`^(?:(\w*)://)*([\[\]:@\w.\-]+)`)
	portPattern         = regexp.MustCompile(`:(\d+)$`)
	queryPattern        = regexp.MustCompile(`\?.+=.+`)
	pathPattern         = regexp.MustCompile(`^/.+`)
)

// Parser decomposes URLs. It holds no per-call state and is safe for concurrent use.
type Parser struct {
	locale locale.Lookup
	logger *pterm.Logger
}

// NewParser creates a URL parser. A nil lookup disables language detection
// in paths; a nil logger disables logging.
func NewParser(lookup locale.Lookup, logger *pterm.Logger) *Parser {
	if logger == nil {
		logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Parser{
		locale: lookup,
		logger: logger,
	}
}

// Name returns the parser name
func (p *Parser) Name() string {
	return "url"
}

// Parse decomposes raw. It never fails: text that does not look like a URL
// yields a result with every component absent.
func (p *Parser) Parse(raw string) *Result {
	working := strings.TrimPrefix(raw, "+")
	if len(working) > MaxInputLength {
		working = working[:MaxInputLength]
	}

	result := &Result{
		Raw:                 raw,
		FragmentIdentifiers: []string{},
		TargetType:          DefaultTargetType,
	}

	if !urlPattern.MatchString(working) {
		p.logger.Trace("Text does not look like a URL", p.logger.Args("url", truncate(raw, 100)))
		return result
	}

	working = result.extractFragments(working)

	match := protocolHostPattern.FindStringSubmatchIndex(working)
	if match == nil {
		return result
	}

	if match[2] != -1 && match[3] > match[2] {
		protocol := working[match[2]:match[3]]
		result.Protocol = &protocol
	}

	authority := result.extractPort(working[match[4]:match[5]])
	result.Domain = components.NewDomain(authority)

	remainder := working[match[1]:]
	switch {
	case queryPattern.MatchString(remainder):
		result.Query = components.NewQuery(remainder, p.locale)
	case pathPattern.MatchString(remainder):
		result.Subdirectories = components.NewPathSegments(remainder, p.locale)
		result.inferTargetType()
	}

	return result
}

// ParseLink returns the nested components of link. It satisfies components.LinkParser.
func (p *Parser) ParseLink(link string) *tree.Record {
	return p.Parse(link).Components()
}

// extractFragments strips trailing "#token" fragments, keeping them in textual order.
func (r *Result) extractFragments(working string) string {
	for {
		m := fragmentPattern.FindStringSubmatchIndex(working)
		if m == nil {
			return working
		}
		r.FragmentIdentifiers = append([]string{working[m[2]:m[3]]}, r.FragmentIdentifiers...)
		working = working[:m[0]]
	}
}

// extractPort removes a trailing ":<digits>" from authority and records it.
// Without one, the scheme's default port is used when the scheme is known.
func (r *Result) extractPort(authority string) string {
	if m := portPattern.FindStringSubmatchIndex(authority); m != nil {
		if port, err := strconv.Atoi(authority[m[2]:m[3]]); err == nil {
			r.Port = &port
			return authority[:m[0]]
		}
	}

	if r.Protocol != nil {
		if port, ok := DefaultPort(strings.ToLower(*r.Protocol)); ok {
			r.Port = &port
		}
	}
	return authority
}

// inferTargetType reports the extension of the last path segment when it is a
// known file type. Otherwise the current target type is kept.
func (r *Result) inferTargetType() {
	last := r.Subdirectories.Last()
	dot := strings.LastIndex(last, ".")
	if dot == -1 {
		return
	}
	if ext := last[dot+1:]; IsFileExtension(ext) {
		r.TargetType = ext
	}
}

// truncate truncates a string to maxLen characters for logging
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

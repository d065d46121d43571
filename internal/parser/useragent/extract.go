package useragent

import (
	"regexp"
	"slices"
	"strings"

	"weblynx/internal/parser/components"
)

// a parenthesized bot clause left in the token stream
var botTokenPattern = regexp.MustCompile(`^compatible;\s.+https?://.+/.+`)

// extraction walks the token list of one User-Agent. Positional reads are
// guarded: a missing token reads as "".
type extraction struct {
	tokens []string
	result *Result
}

func (x *extraction) at(i int) string {
	if i < 0 || i >= len(x.tokens) {
		return ""
	}
	return x.tokens[i]
}

func (x *extraction) from(i int) []string {
	if i >= len(x.tokens) {
		return nil
	}
	return x.tokens[i:]
}

// compatibility returns the "name/version" tokens at index from and later that
// contain none of exclude and are not a bot clause.
func (x *extraction) compatibility(from int, exclude ...string) []string {
	var out []string
	for _, token := range x.from(from) {
		if containsAny(token, exclude) || !components.IsProductToken(token) || botTokenPattern.MatchString(token) {
			continue
		}
		out = append(out, token)
	}
	return out
}

// first returns the first token at index from or later containing substr.
func (x *extraction) first(from int, substr string) string {
	for _, token := range x.from(from) {
		if strings.Contains(token, substr) {
			return token
		}
	}
	return ""
}

// versioned is first for a "marker/version" token. A bare "marker/" takes the
// following token as its version when that token is not a product itself,
// as in "Chrome/ 1".
func (x *extraction) versioned(from int, marker string) string {
	for i := from; i < len(x.tokens); i++ {
		token := x.tokens[i]
		if !strings.Contains(token, marker) {
			continue
		}
		if next := x.at(i + 1); strings.HasSuffix(token, marker+"/") && next != "" && !components.IsProductToken(next) {
			return token + next
		}
		return token
	}
	return ""
}

// single returns the token containing substr when exactly one token at index
// from or later does.
func (x *extraction) single(from int, substr string) string {
	found := ""
	for _, token := range x.from(from) {
		if strings.Contains(token, substr) {
			if found != "" {
				return ""
			}
			found = token
		}
	}
	return found
}

// others returns the tokens at index from or later that are not in taken.
func (x *extraction) others(from int, taken []string) []string {
	var out []string
	for _, token := range x.from(from) {
		if !slices.Contains(taken, token) {
			out = append(out, token)
		}
	}
	return out
}

// platform removes every device marker from terms. The first one found
// becomes the Device, built with buildToken.
func (x *extraction) platform(terms []string, buildToken string) []string {
	rest := make([]string, 0, len(terms))
	for _, term := range terms {
		if !components.IsDevice(term) {
			rest = append(rest, term)
			continue
		}
		if x.result.Device == nil {
			x.result.Device = components.NewDevice(term, buildToken)
		}
	}
	return rest
}

func (x *extraction) engine(i int) {
	if token := x.at(i); token != "" {
		x.result.LayoutEngine = components.NewProduct(token)
	}
}

func (x *extraction) extract(family Family) {
	switch family {
	case FamilyFirefox:
		x.firefox()
	case FamilyChrome:
		x.webkit("Chrome")
	case FamilyOpera:
		x.webkit("OPR")
	case FamilySafari:
		x.safari()
	case FamilyIE:
		x.ie()
	case FamilyBrowserless:
		x.browserless()
	}
}

// Mozilla/5.0 (Windows NT 6.1; Win64; x64; rv:47.0) Gecko/20100101 Firefox/47.0
func (x *extraction) firefox() {
	clauses := strings.Split(x.at(1), "; ")

	var gecko *string
	if i := slices.IndexFunc(clauses, func(c string) bool { return strings.HasPrefix(c, "rv:") }); i >= 0 {
		if v := strings.TrimPrefix(clauses[i], "rv:"); v != "" {
			gecko = &v
		}
		clauses = slices.Delete(clauses, i, i+1)
	}

	terms := x.platform(clauses, "")

	var compat []string
	for _, token := range x.compatibility(2, "Firefox") {
		if strings.HasPrefix(token, "Gecko/") {
			continue
		}
		compat = append(compat, token)
	}

	token := x.single(2, "Firefox")
	if token == "" {
		token = "Firefox"
	}

	browser := components.NewBrowser(token, components.NewProducts(compat))
	browser.GeckoReleaseVersion = gecko
	x.result.Browser = browser
	x.result.OS = components.NewOS(terms)

	if engine := x.first(2, "Gecko/"); engine != "" {
		x.result.LayoutEngine = components.NewProduct(engine)
	}
}

// Chrome and Opera share one layout: platform clause, engine, KHTML clause,
// then product tokens among which marker names the browser.
func (x *extraction) webkit(marker string) {
	terms := x.platform(strings.Split(x.at(1), "; "), "")
	compat := x.compatibility(4, marker)

	x.result.OS = components.NewOS(terms)
	x.result.Browser = components.NewBrowser(x.versioned(2, marker), components.NewProducts(compat))
	x.engine(2)
}

func (x *extraction) safari() {
	switch first := x.at(0); {
	case strings.HasPrefix(first, "Mozilla/"):
		terms := x.platform(strings.Split(x.at(1), "; "), x.single(4, "Mobile"))
		compat := x.compatibility(4, "Safari", "Version", "Mobile")

		x.result.OS = components.NewOS(terms)
		browser := components.NewBrowser(x.first(2, "Safari"), components.NewProducts(compat))
		if version := x.single(4, "Version"); version != "" {
			browser.WithVersionToken(version)
		}
		x.result.Browser = browser
		x.engine(2)

	case strings.HasPrefix(first, "Safari/"):
		compat := x.compatibility(1)
		x.result.OS = macOS(x.others(1, compat))
		x.result.Browser = components.NewBrowser(first, components.NewProducts(compat))

	case strings.HasPrefix(first, "MobileSafari/"):
		compat := x.compatibility(1)
		x.result.OS = macOS(nil)
		x.result.Browser = components.NewBrowser(first, components.NewProducts(compat))
	}
}

// Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1; Trident/4.0; SLCC2)
func (x *extraction) ie() {
	clauses := strings.Split(x.at(1), "; ")

	var terms []string
	if len(clauses) > 3 {
		terms = x.platform(clauses[3:], "")
	}

	if len(clauses) > 2 {
		x.result.OS = components.NewOS([]string{clauses[2]})
	}

	browser := ""
	if len(clauses) > 1 {
		browser = strings.Replace(clauses[1], " ", "/", 1)
	}
	x.result.Browser = components.NewBrowser(browser, components.NewProducts(terms))
}

func (x *extraction) browserless() {
	switch first := x.at(0); {
	case strings.HasPrefix(first, "Mozilla/"):
		// a bare "Mozilla/5.0" carries nothing beyond the product
		if len(x.tokens) < 2 {
			return
		}
		terms := x.platform(strings.Split(x.at(1), "; "), x.single(4, "Mobile"))
		compat := x.compatibility(4, "Mobile")

		x.result.OS = components.NewOS(terms)
		x.result.Browser = components.NewBrowser("", components.NewProducts(compat))
		x.engine(2)

	case strings.HasPrefix(first, "curl/"):
		if len(x.tokens) < 2 {
			return
		}
		compat := x.compatibility(2)
		x.result.OS = components.NewOS([]string{x.at(1)})
		x.result.Browser = components.NewBrowser("", components.NewProducts(compat))

	case strings.HasPrefix(first, "com.apple.WebKit.WebContent/"):
		compat := x.compatibility(1)
		x.result.OS = macOS(x.others(1, compat))
		x.result.Browser = components.NewBrowser("", components.NewProducts(compat))
	}
}

// macOS builds an OS for Apple-only agents that do not name their platform.
// The first remaining token, if any, qualifies it.
func macOS(others []string) *components.OS {
	terms := []string{"macOS"}
	if len(others) > 0 {
		terms = append(terms, strings.Split(others[0], "; ")...)
	}
	return components.NewOS(terms)
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package useragent

import "regexp"

// Family is the browser category a User-Agent is classified into.
type Family string

const (
	FamilyFirefox     Family = "firefox"
	FamilyOpera       Family = "opera"
	FamilyChrome      Family = "chrome"
	FamilySafari      Family = "safari"
	FamilyIE          Family = "ie"
	FamilyBrowserless Family = "browserless"
)

type familyPattern struct {
	family  Family
	pattern *regexp.Regexp
}

// familyPatterns are tried in order and the first match wins. The patterns
// overlap: Opera strings also satisfy the Chrome pattern and Chrome strings the
// browserless WebKit one, so the more specific entries come first.
var familyPatterns = []familyPattern{
	{FamilyFirefox, regexp.MustCompile(`^Mozilla/.+\s\((.+;\s)+rv:.+\)\sGecko/.+\sFirefox/.+`)},
	{FamilyFirefox, regexp.MustCompile(`^Mozilla/.+\s\((.+;\s)+rv:.+\).+`)},
	{FamilyOpera, regexp.MustCompile(`^Mozilla/.+\s\(.+\)\sAppleWebKit/.+\s\(KHTML,\slike\sGecko\)\sChrome/.+\sSafari/.+\sOPR/.+`)},
	{FamilyChrome, regexp.MustCompile(`^Mozilla/.+\s\(.+\)\sAppleWebKit/.+\s\(KHTML,\slike\sGecko\)\sChrome/.+\sSafari/.+`)},
	{FamilySafari, regexp.MustCompile(`^Mozilla/.+\s\(.+\)\sAppleWebKit/.+\s\(KHTML,\slike\sGecko\)\s(Version/.+\s)?(Mobile/.+\s)?Safari/.+`)},
	{FamilySafari, regexp.MustCompile(`^Safari/.+\(.+\)`)},
	{FamilySafari, regexp.MustCompile(`^MobileSafari/.+(\s.+/.+)*`)},
	{FamilyIE, regexp.MustCompile(`^Mozilla/.+\s\(.+MSIE.+\)`)},
	{FamilyBrowserless, regexp.MustCompile(`^Mozilla/.+\s\(.+\)\sAppleWebKit/.+\s\(KHTML,\slike\sGecko\)`)},
	{FamilyBrowserless, regexp.MustCompile(`^curl/.+(\s\(.+\).+)?`)},
	{FamilyBrowserless, regexp.MustCompile(`^.+/[\.\d]+$`)},
	{FamilyBrowserless, regexp.MustCompile(`^com\.apple\.WebKit\.WebContent/.+`)},
}

// classify returns the family of the first matching pattern.
func classify(userAgent string) (Family, bool) {
	for _, fp := range familyPatterns {
		if fp.pattern.MatchString(userAgent) {
			return fp.family, true
		}
	}
	return "", false
}

// familyOrder returns the family tag of every pattern in evaluation order.
func familyOrder() []Family {
	order := make([]Family, 0, len(familyPatterns))
	for _, fp := range familyPatterns {
		order = append(order, fp.family)
	}
	return order
}

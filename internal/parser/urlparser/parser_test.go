package urlparser

import (
	"reflect"
	"strings"
	"testing"

	"weblynx/internal/locale"
	"weblynx/internal/parser/tree"

	"github.com/pterm/pterm"
)

func newTestParser() *Parser {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	return NewParser(locale.Default(), logger)
}

func strVal(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestParser_Name(t *testing.T) {
	if name := newTestParser().Name(); name != "url" {
		t.Errorf("Expected name 'url', got '%s'", name)
	}
}

func TestParser_FullURL(t *testing.T) {
	r := newTestParser().Parse("https://john.doe@www.example.com:123/forum/questions/?tag=networking&order=newest#top")

	if strVal(r.Protocol) != "https" {
		t.Errorf("Expected protocol 'https', got '%s'", strVal(r.Protocol))
	}
	if r.Port == nil || *r.Port != 123 {
		t.Errorf("Expected port 123, got %v", r.Port)
	}
	if r.Domain == nil {
		t.Fatal("Expected domain, got nil")
	}
	if strVal(r.Domain.TopLevelDomain) != "com" || strVal(r.Domain.SecondLevelDomain) != "example" {
		t.Errorf("Expected example.com, got %s.%s", strVal(r.Domain.SecondLevelDomain), strVal(r.Domain.TopLevelDomain))
	}
	if !reflect.DeepEqual(r.Domain.UserInfo, []string{"john", "doe"}) {
		t.Errorf("Expected user info [john doe], got %v", r.Domain.UserInfo)
	}
	if r.Subdirectories != nil {
		t.Errorf("Expected no top-level path, got %v", r.Subdirectories.Segments)
	}
	if r.Query == nil {
		t.Fatal("Expected query, got nil")
	}
	expected := map[string]string{"tag": "networking", "order": "newest"}
	if !reflect.DeepEqual(r.Query.Params, expected) {
		t.Errorf("Expected params %v, got %v", expected, r.Query.Params)
	}
	if !reflect.DeepEqual(r.FragmentIdentifiers, []string{"top"}) {
		t.Errorf("Expected fragments [top], got %v", r.FragmentIdentifiers)
	}
	if r.TargetType != DefaultTargetType {
		t.Errorf("Expected target type '%s', got '%s'", DefaultTargetType, r.TargetType)
	}
}

func TestParser_NoSchemeIsEmpty(t *testing.T) {
	r := newTestParser().Parse("neilpatel.com/blog/complete-guide-structuring-urls/")

	if !r.IsEmpty() {
		t.Errorf("Expected empty result, got protocol=%s domain=%v", strVal(r.Protocol), r.Domain)
	}
	if r.Port != nil {
		t.Errorf("Expected absent port, got %d", *r.Port)
	}

	flat := r.FlatComponents()
	if _, ok := flat["protocol"]; ok {
		t.Errorf("Expected no protocol key in %v", flat)
	}
	if flat["target_type"] != "page" {
		t.Errorf("Expected target type 'page', got %v", flat["target_type"])
	}
}

func TestParser_WWWWithoutScheme(t *testing.T) {
	r := newTestParser().Parse("www.example.com/about")

	if r.Protocol != nil {
		t.Errorf("Expected absent protocol, got '%s'", strVal(r.Protocol))
	}
	if r.Domain == nil || r.Domain.Host() != "www.example.com" {
		t.Errorf("Expected host www.example.com, got %v", r.Domain)
	}
	if r.Port != nil {
		t.Errorf("Expected absent port without scheme, got %d", *r.Port)
	}
}

func TestParser_DefaultPorts(t *testing.T) {
	testCases := []struct {
		url  string
		port int
	}{
		{"http://www.example.com/", 80},
		{"https://www.example.com/", 443},
		{"ftp://ftp.is.co.za/rfc/rfc1808.txt", 21},
		{"ldap://[2001:db8::7]/c=GB?objectClass?one", 389},
		{"HTTPS://example.org", 443},
		{"telnet://192.0.2.16:80/", 80},
	}

	p := newTestParser()
	for _, tc := range testCases {
		r := p.Parse(tc.url)
		if r.Port == nil {
			t.Errorf("For '%s': expected port %d, got nil", tc.url, tc.port)
			continue
		}
		if *r.Port != tc.port {
			t.Errorf("For '%s': expected port %d, got %d", tc.url, tc.port, *r.Port)
		}
	}
}

func TestParser_UnknownSchemeHasNoPort(t *testing.T) {
	r := newTestParser().Parse("urn://example.com/x")
	if r.Port != nil {
		t.Errorf("Expected absent port, got %d", *r.Port)
	}
	if strVal(r.Protocol) != "urn" {
		t.Errorf("Expected protocol 'urn', got '%s'", strVal(r.Protocol))
	}
}

func TestParser_IPHosts(t *testing.T) {
	p := newTestParser()

	r := p.Parse("ldap://[2001:db8::7]/c=GB?objectClass?one")
	if r.Domain == nil || strVal(r.Domain.TopLevelDomain) != "2001:db8::7" {
		t.Errorf("Expected IPv6 literal as top level, got %v", r.Domain)
	}

	r = p.Parse("telnet://192.0.2.16:80/")
	if r.Domain == nil || strVal(r.Domain.TopLevelDomain) != "192.0.2.16" {
		t.Errorf("Expected IPv4 literal as top level, got %v", r.Domain)
	}
	if r.Subdirectories != nil || r.Query != nil {
		t.Error("Expected no path or query for a root path")
	}
}

func TestParser_TargetType(t *testing.T) {
	testCases := []struct {
		url      string
		expected string
	}{
		{"http://www.example.com/index.php", "php"},
		{"http://www.example.com/files/report.final.pdf", "pdf"},
		{"http://www.example.com/files/archive.unknownext", "page"},
		{"http://www.example.com/about/", "page"},
		{"http://www.example.com/", "page"},
	}

	p := newTestParser()
	for _, tc := range testCases {
		if got := p.Parse(tc.url).TargetType; got != tc.expected {
			t.Errorf("For '%s': expected target type '%s', got '%s'", tc.url, tc.expected, got)
		}
	}
}

func TestParser_LanguagePath(t *testing.T) {
	r := newTestParser().Parse("https://blog.hubspot.com/en/marketing/parts-url")

	if r.Subdirectories == nil {
		t.Fatal("Expected path, got nil")
	}
	if strVal(r.Subdirectories.Language) != "en" {
		t.Errorf("Expected language 'en', got '%s'", strVal(r.Subdirectories.Language))
	}
	if !reflect.DeepEqual(r.Subdirectories.Segments, []string{"marketing", "parts-url"}) {
		t.Errorf("Expected [marketing parts-url], got %v", r.Subdirectories.Segments)
	}
	if !reflect.DeepEqual(r.Domain.OtherLevelDomains, []string{"blog"}) {
		t.Errorf("Expected other levels [blog], got %v", r.Domain.OtherLevelDomains)
	}
}

func TestParser_WebcacheQuery(t *testing.T) {
	r := newTestParser().Parse("http://webcache.googleusercontent.com/search?q=cache:T5hudFlBksUJ:www.example.com/+&cd=14&hl=en&ct=clnk&gl=us")

	if r.Query == nil {
		t.Fatal("Expected query, got nil")
	}
	if r.Query.Params["q"] != "cache:T5hudFlBksUJ:www.example.com/+" {
		t.Errorf("Expected cache query value, got '%s'", r.Query.Params["q"])
	}
	if r.Query.Params["gl"] != "us" {
		t.Errorf("Expected gl 'us', got '%s'", r.Query.Params["gl"])
	}
	if len(r.Query.Path) != 1 || !reflect.DeepEqual(r.Query.Path[0].Segments, []string{"search"}) {
		t.Errorf("Expected query path [search], got %v", r.Query.Path)
	}
}

func TestParser_LeadingPlus(t *testing.T) {
	r := newTestParser().Parse("+http://www.google.com/bot.html")

	if strVal(r.Protocol) != "http" {
		t.Errorf("Expected protocol 'http', got '%s'", strVal(r.Protocol))
	}
	if r.TargetType != "html" {
		t.Errorf("Expected target type 'html', got '%s'", r.TargetType)
	}
	if r.Raw != "+http://www.google.com/bot.html" {
		t.Errorf("Expected raw input kept, got '%s'", r.Raw)
	}
}

func TestParser_Fragments(t *testing.T) {
	r := newTestParser().Parse("http://example.com/docs/page#section_2")

	if !reflect.DeepEqual(r.FragmentIdentifiers, []string{"section_2"}) {
		t.Errorf("Expected [section_2], got %v", r.FragmentIdentifiers)
	}
	if !reflect.DeepEqual(r.Subdirectories.Segments, []string{"docs", "page"}) {
		t.Errorf("Expected fragment removed from path, got %v", r.Subdirectories.Segments)
	}
}

func TestParser_LongInputIsBounded(t *testing.T) {
	long := "http://example.com/" + strings.Repeat("a/", MaxInputLength)

	r := newTestParser().Parse(long)
	if r.Domain == nil || r.Domain.Host() != "example.com" {
		t.Errorf("Expected host example.com, got %v", r.Domain)
	}
	if r.Raw != long {
		t.Error("Expected raw input to be kept intact")
	}
}

func TestResult_ComponentsKeyOrder(t *testing.T) {
	r := newTestParser().Parse("https://www.example.com/a/b")

	keys := r.Components().Keys()
	expected := []string{"domain", "subdirectories", "protocol", "port", "fragment_identifiers", "target_type"}
	if !reflect.DeepEqual(keys, expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}
}

func TestResult_ComponentsIsPure(t *testing.T) {
	r := newTestParser().Parse("https://john.doe@www.example.com:123/forum/questions/?tag=networking&order=newest#top")

	first := r.Components()
	second := r.Components()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical output, got %v and %v", first, second)
	}
}

func TestResult_FlatComponents(t *testing.T) {
	r := newTestParser().Parse("https://john.doe@www.example.com:123/forum/questions/?tag=networking&order=newest#top")

	flat := r.FlatComponents()
	expected := map[string]any{
		"domain.top_level_domain":       "com",
		"domain.second_level_domain":    "example",
		"domain.other_level_domains.1":  "www",
		"domain.user_info.1":            "john",
		"domain.user_info.2":            "doe",
		"query.path.1.subdirectories.1": "forum",
		"query.path.1.subdirectories.2": "questions",
		"query.query":                   map[string]string{"tag": "networking", "order": "newest"},
		"protocol":                      "https",
		"port":                          123,
		"fragment_identifiers.1":        "top",
		"target_type":                   "page",
	}
	if !reflect.DeepEqual(flat, expected) {
		t.Errorf("Expected %v, got %v", expected, flat)
	}
}

func TestParser_ParseLink(t *testing.T) {
	rec := newTestParser().ParseLink("+http://www.bing.com/bingbot.htm")

	domain, ok := rec.Get("domain")
	if !ok {
		t.Fatal("Expected domain in link record")
	}
	d, ok := domain.(*tree.Record)
	if !ok {
		t.Fatalf("Expected domain record, got %T", domain)
	}
	if sld, _ := d.Get("second_level_domain"); !reflect.DeepEqual(sld, tree.Text("bing")) {
		t.Errorf("Expected second level 'bing', got %v", sld)
	}
}

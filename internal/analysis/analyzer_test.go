package analysis

import (
	"errors"
	"strings"
	"testing"
	"time"

	"weblynx/internal/locale"
	"weblynx/internal/parser/caddy"

	"github.com/pterm/pterm"
)

const chromeUA = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_11_6) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/55.0.2883.95 Safari/537.36"

func newTestAnalyzer(t *testing.T, cacheSize int64) *Analyzer {
	t.Helper()
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	a, err := NewAnalyzer(locale.Default(), cacheSize, logger)
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	t.Cleanup(a.Close)
	return a
}

func TestAnalyzer_UserAgent(t *testing.T) {
	a := newTestAnalyzer(t, 100)

	result, err := a.UserAgent(chromeUA)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Family != "chrome" {
		t.Errorf("Expected family 'chrome', got '%s'", result.Family)
	}

	a.cache.Wait()
	cached, err := a.UserAgent(chromeUA)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached != result {
		t.Error("Expected the second lookup to be served from cache")
	}
}

func TestAnalyzer_UserAgentErrors(t *testing.T) {
	a := newTestAnalyzer(t, 0)

	testCases := []struct {
		input    string
		expected error
	}{
		{"", ErrEmptyInput},
		{"   ", ErrEmptyInput},
		{strings.Repeat("a", 9000), ErrInputTooLong},
		{"random text", ErrUnrecognized},
	}

	for _, tc := range testCases {
		if _, err := a.UserAgent(tc.input); !errors.Is(err, tc.expected) {
			t.Errorf("Expected %v, got %v", tc.expected, err)
		}
	}
}

func TestAnalyzer_URL(t *testing.T) {
	a := newTestAnalyzer(t, 0)

	result, err := a.URL("https://www.example.com/en/about/")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Domain == nil || result.Domain.Host() != "www.example.com" {
		t.Errorf("Expected host 'www.example.com', got %+v", result.Domain)
	}

	empty, err := a.URL("neilpatel.com/blog")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !empty.IsEmpty() {
		t.Error("Expected an empty result for a URL without scheme")
	}

	if _, err := a.URL(""); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("Expected ErrEmptyInput, got %v", err)
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(t, 100)

	event := &caddy.CaddyRequestEvent{
		Timestamp:     time.Date(2025, 10, 18, 10, 0, 0, 0, time.UTC),
		SourceName:    "caddy-access",
		ClientIP:      "203.0.113.7",
		Method:        "GET",
		StatusCode:    200,
		Host:          "shop.example.com",
		Path:          "/de/catalog/item.php",
		QueryString:   "id=3",
		RequestScheme: "https",
		UserAgent:     chromeUA,
		Referer:       "https://www.google.com/search?q=shop",
	}

	result := a.Analyze(event)

	if result.SourceName != "caddy-access" || result.ClientIP != "203.0.113.7" {
		t.Errorf("Expected event fields to be copied, got %+v", result)
	}
	if result.Summary.Family != "chrome" {
		t.Errorf("Expected family 'chrome', got '%s'", result.Summary.Family)
	}
	if result.Request == nil || result.Request.Query == nil {
		t.Fatalf("Expected the request URL to carry a query, got %+v", result.Request)
	}
	if result.Request.Query.Params["id"] != "3" {
		t.Errorf("Expected query id=3, got %v", result.Request.Query.Params)
	}
	if result.RefererPage == nil || result.RefererPage.Domain == nil {
		t.Fatal("Expected the referer to be decomposed")
	}
	if result.RefererPage.Domain.Host() != "www.google.com" {
		t.Errorf("Expected referer host 'www.google.com', got '%s'", result.RefererPage.Domain.Host())
	}
}

func TestAnalyzer_AnalyzeMissingFields(t *testing.T) {
	a := newTestAnalyzer(t, 0)

	result := a.Analyze(&caddy.CaddyRequestEvent{Referer: "-"})

	if result.Agent != nil || result.Request != nil || result.RefererPage != nil {
		t.Errorf("Expected no decompositions, got %+v", result)
	}
	if result.Summary.Family != "unknown" {
		t.Errorf("Expected family 'unknown', got '%s'", result.Summary.Family)
	}
}

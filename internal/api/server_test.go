package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"weblynx/internal/analysis"
	"weblynx/internal/api/handlers"
	"weblynx/internal/database"
	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	"weblynx/internal/locale"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const firefoxUA = "Mozilla/5.0 (Windows NT 6.1; Win64; x64; rv:47.0) Gecko/20100101 Firefox/47.0"

func newTestRouter(t *testing.T) (*gin.Engine, repositories.RequestRecordRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)

	db, err := database.NewConnection(&database.Config{Path: database.MemoryPath}, logger)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	analyzer, err := analysis.NewAnalyzer(locale.Default(), 100, logger)
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	t.Cleanup(analyzer.Close)

	recordRepo := repositories.NewRequestRecordRepository(db, logger)
	statsRepo := repositories.NewStatsRepository(db, logger)

	router := NewRouter(Handlers{
		Parse:     handlers.NewParseHandler(analyzer, logger),
		Dashboard: handlers.NewDashboardHandler(recordRepo, statsRepo, logger),
		System:    handlers.NewSystemHandler(recordRepo, nil, nil, logger, database.MemoryPath),
	}, logger)

	return router, recordRepo
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}
}

func TestParseUserAgent_Flat(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(handlers.ParseRequest{Value: firefoxUA, Flat: true})
	w := doRequest(router, http.MethodPost, "/api/v1/parse/useragent", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Value      string         `json:"value"`
		Components map[string]any `json:"components"`
	}
	decode(t, w, &resp)

	if resp.Components["browser.browser_name"] != "Firefox" {
		t.Errorf("Expected browser.browser_name 'Firefox', got %v", resp.Components["browser.browser_name"])
	}
	if resp.Components["browser.browser_version"] != "47.0" {
		t.Errorf("Expected browser.browser_version '47.0', got %v", resp.Components["browser.browser_version"])
	}
	if resp.Components["is_bot"] != false {
		t.Errorf("Expected is_bot false, got %v", resp.Components["is_bot"])
	}
}

func TestParseUserAgent_Nested(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/parse/useragent", `{"value":"`+firefoxUA+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Components map[string]any `json:"components"`
	}
	decode(t, w, &resp)

	browser, ok := resp.Components["browser"].(map[string]any)
	if !ok {
		t.Fatalf("Expected a nested browser record, got %v", resp.Components["browser"])
	}
	if browser["browser_name"] != "Firefox" {
		t.Errorf("Expected browser_name 'Firefox', got %v", browser["browser_name"])
	}
}

func TestParseUserAgent_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	testCases := []struct {
		name     string
		body     string
		expected int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"empty value", `{"value":"   "}`, http.StatusBadRequest},
		{"too long", `{"value":"` + strings.Repeat("a", 9000) + `"}`, http.StatusBadRequest},
		{"unrecognized", `{"value":"totally unknown agent"}`, http.StatusUnprocessableEntity},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(router, http.MethodPost, "/api/v1/parse/useragent", tc.body)
			if w.Code != tc.expected {
				t.Errorf("Expected %d, got %d: %s", tc.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestParseURL(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/parse/url",
		`{"value":"https://shop.example.com/en/products/list.php","flat":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Recognized bool           `json:"recognized"`
		Components map[string]any `json:"components"`
	}
	decode(t, w, &resp)

	if !resp.Recognized {
		t.Error("Expected the URL to be recognized")
	}
	if resp.Components["protocol"] != "https" {
		t.Errorf("Expected protocol 'https', got %v", resp.Components["protocol"])
	}
	if resp.Components["port"] != float64(443) {
		t.Errorf("Expected port 443, got %v", resp.Components["port"])
	}
	if resp.Components["subdirectories.language"] != "en" {
		t.Errorf("Expected language 'en', got %v", resp.Components["subdirectories.language"])
	}
	if resp.Components["target_type"] != "php" {
		t.Errorf("Expected target_type 'php', got %v", resp.Components["target_type"])
	}
}

func TestParseURL_NotAURL(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/v1/parse/url", `{"value":"just some words","flat":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Recognized bool           `json:"recognized"`
		Components map[string]any `json:"components"`
	}
	decode(t, w, &resp)

	if resp.Recognized {
		t.Error("Expected plain text not to be recognized")
	}
	if resp.Components["target_type"] != "page" {
		t.Errorf("Expected default target_type 'page', got %v", resp.Components["target_type"])
	}
}

func seedRecords(t *testing.T, repo repositories.RequestRecordRepository) {
	t.Helper()
	now := time.Now().UTC()
	records := []*models.RequestRecord{
		{SourceName: "s", Timestamp: now.Add(-3 * time.Minute), ClientIP: "10.0.0.1", RequestHash: "h1", UAFamily: "chrome", Domain: "a.example.com"},
		{SourceName: "s", Timestamp: now.Add(-2 * time.Minute), ClientIP: "10.0.0.2", RequestHash: "h2", UAFamily: "bot", IsBot: true, BotName: "Googlebot", Domain: "a.example.com"},
		{SourceName: "s", Timestamp: now.Add(-1 * time.Minute), ClientIP: "10.0.0.3", RequestHash: "h3", UAFamily: "chrome", Domain: "b.example.com"},
	}
	if _, err := repo.CreateBatch(records); err != nil {
		t.Fatalf("Failed to seed records: %v", err)
	}
}

func TestGetRecords(t *testing.T) {
	router, repo := newTestRouter(t)
	seedRecords(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/records?limit=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp struct {
		Records []struct {
			ClientIP string
		} `json:"records"`
		Total int64 `json:"total"`
		Limit int   `json:"limit"`
	}
	decode(t, w, &resp)

	if resp.Total != 3 || resp.Limit != 2 {
		t.Errorf("Expected total 3 and limit 2, got %d and %d", resp.Total, resp.Limit)
	}
	if len(resp.Records) != 2 || resp.Records[0].ClientIP != "10.0.0.3" {
		t.Errorf("Expected the newest record first, got %+v", resp.Records)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/records?bot=true", "")
	decode(t, w, &resp)
	if resp.Total != 1 {
		t.Errorf("Expected 1 bot record, got %d", resp.Total)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/records?bot=maybe", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid bot filter, got %d", w.Code)
	}
}

func TestStatsEndpoints(t *testing.T) {
	router, repo := newTestRouter(t)
	seedRecords(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/stats/families", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	var families []repositories.FamilyStats
	decode(t, w, &families)
	if len(families) != 2 || families[0].Family != "chrome" || families[0].Count != 2 {
		t.Errorf("Expected chrome first with 2 requests, got %+v", families)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/stats/bots", "")
	var bots []repositories.BotStats
	decode(t, w, &bots)
	if len(bots) != 1 || bots[0].BotName != "Googlebot" {
		t.Errorf("Expected Googlebot, got %+v", bots)
	}

	w = doRequest(router, http.MethodGet, "/api/v1/stats/languages", "")
	if w.Body.String() != "[]" {
		t.Errorf("Expected an empty list, got %s", w.Body.String())
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var resp map[string]any
	decode(t, w, &resp)
	if resp["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", resp["status"])
	}
}

func TestSystemStats(t *testing.T) {
	router, repo := newTestRouter(t)
	seedRecords(t, repo)

	w := doRequest(router, http.MethodGet, "/api/v1/system/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var stats handlers.SystemStats
	decode(t, w, &stats)
	if stats.TotalRecords != 3 {
		t.Errorf("Expected 3 records, got %d", stats.TotalRecords)
	}
	if stats.NextCleanupTime != "Disabled" {
		t.Errorf("Expected cleanup disabled, got '%s'", stats.NextCleanupTime)
	}
}

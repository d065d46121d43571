package config

import (
	"errors"
	"testing"
	"time"

	"github.com/pterm/pterm"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Expected default address '0.0.0.0:8080', got '%s'", cfg.Server.Addr())
	}
	if cfg.Database.Path != "weblynx.db" {
		t.Errorf("Expected default DB path 'weblynx.db', got '%s'", cfg.Database.Path)
	}
	if cfg.Ingest.BatchTimeout != 2*time.Second {
		t.Errorf("Expected batch timeout 2s, got %v", cfg.Ingest.BatchTimeout)
	}
	if !cfg.AutoDiscover {
		t.Error("Expected auto discovery to default to true")
	}
	if cfg.UACacheSize != 10000 {
		t.Errorf("Expected UA cache size 10000, got %d", cfg.UACacheSize)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("INGEST_WORKERS", "8")
	t.Setenv("DB_CONN_MAX_LIFE", "30m")
	t.Setenv("LOG_SOURCES", "edge:traefik:/var/log/traefik/access.log,blog:caddy:C:/logs/caddy.json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Ingest.Workers != 8 {
		t.Errorf("Expected 8 workers, got %d", cfg.Ingest.Workers)
	}
	if cfg.Database.ConnMaxLife != 30*time.Minute {
		t.Errorf("Expected 30m, got %v", cfg.Database.ConnMaxLife)
	}

	sources, err := cfg.Sources()
	if err != nil {
		t.Fatalf("Failed to parse sources: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[1] != (SourceDefinition{Name: "blog", ParserType: "caddy", Path: "C:/logs/caddy.json"}) {
		t.Errorf("Unexpected second source: %+v", sources[1])
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	testCases := []struct {
		key      string
		value    string
		expected error
	}{
		{"SERVER_PORT", "70000", ErrInvalidValue},
		{"INGEST_BATCH_SIZE", "0", ErrInvalidValue},
		{"LOG_SOURCES", "missing-path:caddy", ErrInvalidLogSource},
		{"SERVER_PORT", "not-a-number", ErrParsingConfig},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			if !errors.Is(err, tc.expected) {
				t.Errorf("Expected %v, got %v", tc.expected, err)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected pterm.LogLevel
	}{
		{"trace", pterm.LogLevelTrace},
		{"DEBUG", pterm.LogLevelDebug},
		{" warn ", pterm.LogLevelWarn},
		{"error", pterm.LogLevelError},
		{"off", pterm.LogLevelDisabled},
		{"whatever", pterm.LogLevelInfo},
	}

	for _, tc := range testCases {
		if got := ParseLogLevel(tc.input); got != tc.expected {
			t.Errorf("For '%s': expected %v, got %v", tc.input, tc.expected, got)
		}
	}
}

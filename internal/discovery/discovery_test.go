package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"weblynx/internal/database/models"
	"weblynx/internal/database/repositories"
	parsers "weblynx/internal/parser"

	"github.com/glebarez/sqlite"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

const (
	caddyLine   = `{"level":"info","ts":1767690562.5,"logger":"http.log.access","msg":"handled request","request":{"remote_ip":"10.0.0.1","method":"GET","uri":"/"},"status":200}`
	traefikLine = `{"RequestPath":"/","DownstreamStatus":200,"request_Host":"example.com","request_X-Real-Ip":"10.0.0.2","time":"2025-10-18T10:00:00Z"}`
)

func setupTestRepo(t *testing.T) repositories.LogSourceRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.LogSource{}); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	return repositories.NewLogSourceRepository(db)
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

func TestEngine_RegistersConfiguredSources(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	repo := setupTestRepo(t)
	dir := t.TempDir()

	opts := Options{
		CaddyLogPath:   writeLog(t, dir, "site.json", caddyLine+"\n"),
		TraefikLogPath: writeLog(t, dir, "proxy.log", traefikLine+"\n"),
	}

	engine := NewEngine(repo, parsers.NewRegistry(logger), opts, logger)
	registered, err := engine.Run()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if registered != 2 {
		t.Fatalf("Expected 2 registered sources, got %d", registered)
	}

	caddy, err := repo.FindByName("caddy-site")
	if err != nil {
		t.Fatalf("Expected caddy-site to be registered, got %v", err)
	}
	if caddy.ParserType != "caddy" || caddy.Path != opts.CaddyLogPath {
		t.Errorf("Unexpected caddy source %+v", caddy)
	}

	traefik, err := repo.FindByName("traefik-proxy")
	if err != nil {
		t.Fatalf("Expected traefik-proxy to be registered, got %v", err)
	}
	if traefik.ParserType != "traefik" {
		t.Errorf("Expected parser 'traefik', got '%s'", traefik.ParserType)
	}
}

func TestEngine_SkipsWhenSourcesExist(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	repo := setupTestRepo(t)
	dir := t.TempDir()

	if err := repo.Create(&models.LogSource{Name: "existing", Path: "/tmp/x.log", ParserType: "caddy"}); err != nil {
		t.Fatalf("Failed to create source: %v", err)
	}

	opts := Options{CaddyLogPath: writeLog(t, dir, "site.json", caddyLine+"\n")}
	registered, err := NewEngine(repo, parsers.NewRegistry(logger), opts, logger).Run()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if registered != 0 {
		t.Errorf("Expected nothing registered, got %d", registered)
	}
}

func TestCaddyDetector_RejectsWrongFormat(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	dir := t.TempDir()
	parser, _ := parsers.NewRegistry(logger).Get("caddy")

	testCases := []struct {
		name string
		path string
	}{
		{"traefik log", writeLog(t, dir, "traefik.log", traefikLine+"\n")},
		{"empty file", writeLog(t, dir, "empty.log", "")},
		{"missing file", filepath.Join(dir, "missing.log")},
		{"directory", dir},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := NewCaddyDetector(parser, Options{CaddyLogPath: tc.path}, logger)
			sources, err := d.Detect()
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if len(sources) != 0 {
				t.Errorf("Expected no sources, got %+v", sources)
			}
		})
	}
}

func TestTraefikDetector_NoAutoDiscover(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)
	parser, _ := parsers.NewRegistry(logger).Get("traefik")

	sources, err := NewTraefikDetector(parser, Options{}, logger).Detect()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(sources) != 0 {
		t.Errorf("Expected no sources without paths, got %+v", sources)
	}
}

func TestSourceName(t *testing.T) {
	testCases := []struct {
		prefix   string
		path     string
		expected string
	}{
		{"caddy", "/var/log/caddy/access.log", "caddy-access"},
		{"caddy", `C:\logs\site.access.json`, "caddy-site"},
		{"traefik", "traefik/logs/access.log", "traefik-access"},
	}

	for _, tc := range testCases {
		if got := sourceName(tc.prefix, tc.path); got != tc.expected {
			t.Errorf("For '%s': expected '%s', got '%s'", tc.path, tc.expected, got)
		}
	}
}

package enrichment

import (
	"path/filepath"
	"testing"

	"weblynx/internal/database/models"

	"github.com/pterm/pterm"
)

func TestGeoIPEnricher_DisabledWithoutDatabases(t *testing.T) {
	logger := pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace)

	missing := filepath.Join(t.TempDir(), "missing.mmdb")
	enricher, err := NewGeoIPEnricher(missing, "", "", nil, logger, 0)
	if err != nil {
		t.Fatalf("Failed to create enricher: %v", err)
	}
	defer enricher.Close()

	if enricher.IsEnabled() {
		t.Error("Expected enrichment to be disabled")
	}

	record := &models.RequestRecord{ClientIP: "8.8.8.8"}
	if err := enricher.Enrich(record); err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if record.GeoCountry != "" || record.ASN != 0 {
		t.Errorf("Expected record to be untouched, got %+v", record)
	}
	if err := enricher.LoadCache(); err != nil {
		t.Errorf("Expected LoadCache to be a no-op, got %v", err)
	}
}

func TestGeoIPEnricher_LookupInvalidIP(t *testing.T) {
	enricher, err := NewGeoIPEnricher("", "", "", nil, pterm.DefaultLogger.WithLevel(pterm.LogLevelTrace), 10)
	if err != nil {
		t.Fatalf("Failed to create enricher: %v", err)
	}
	defer enricher.Close()

	if _, err := enricher.Lookup("not-an-ip"); err == nil {
		t.Error("Expected an error for an invalid IP")
	}

	location, err := enricher.Lookup("192.0.2.1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if location.IPAddress != "192.0.2.1" || location.Country != "" {
		t.Errorf("Expected an empty location without databases, got %+v", location)
	}
}

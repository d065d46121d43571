// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package enrichment

import (
	"errors"
	"fmt"
	"net"
	"time"

	"weblynx/internal/database/models"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// ErrInvalidIP is returned when a client IP cannot be parsed
var ErrInvalidIP = errors.New("invalid IP address")

// GeoIPEnricher fills the GeoIP columns of request records. Lookups are
// cached in memory and persisted so the cache survives restarts.
type GeoIPEnricher struct {
	cityDB    *geoip2.Reader
	countryDB *geoip2.Reader
	asnDB     *geoip2.Reader
	db        *gorm.DB
	logger    *pterm.Logger
	cache     *ristretto.Cache[string, *models.IPLocation]
	enabled   bool
	cacheSize int
}

// NewGeoIPEnricher creates a new GeoIP enricher.
// Handles City, Country, and ASN databases and works with any combination available.
// db may be nil, in which case lookups are not persisted.
func NewGeoIPEnricher(cityDBPath, countryDBPath, asnDBPath string, db *gorm.DB, logger *pterm.Logger, cacheSize int) (*GeoIPEnricher, error) {
	if cacheSize <= 0 {
		cacheSize = 10000
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, *models.IPLocation]{
		NumCounters: int64(cacheSize) * 10,
		MaxCost:     int64(cacheSize),
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GeoIP cache: %w", err)
	}

	enricher := &GeoIPEnricher{
		db:        db,
		logger:    logger,
		cache:     cache,
		cacheSize: cacheSize,
	}

	// City provides the most detailed location data
	if cityDBPath != "" {
		if cityDB, err := geoip2.Open(cityDBPath); err != nil {
			logger.Warn("GeoIP City database not available", logger.Args("path", cityDBPath, "error", err))
		} else {
			enricher.cityDB = cityDB
			enricher.enabled = true
			logger.Info("Loaded GeoIP City database", logger.Args("path", cityDBPath))
		}
	}

	if countryDBPath != "" {
		if countryDB, err := geoip2.Open(countryDBPath); err != nil {
			logger.Warn("GeoIP Country database not available", logger.Args("path", countryDBPath, "error", err))
		} else {
			enricher.countryDB = countryDB
			enricher.enabled = true
			logger.Info("Loaded GeoIP Country database", logger.Args("path", countryDBPath))
		}
	}

	if asnDBPath != "" {
		if asnDB, err := geoip2.Open(asnDBPath); err != nil {
			logger.Warn("GeoIP ASN database not available", logger.Args("path", asnDBPath, "error", err))
		} else {
			enricher.asnDB = asnDB
			enricher.enabled = true
			logger.Info("Loaded GeoIP ASN database", logger.Args("path", asnDBPath))
		}
	}

	if !enricher.enabled {
		logger.Info("GeoIP enrichment disabled - no databases available")
	}

	return enricher, nil
}

// Enrich fills the GeoIP fields of record from its client IP
func (g *GeoIPEnricher) Enrich(record *models.RequestRecord) error {
	if !g.enabled || record.ClientIP == "" {
		return nil
	}

	location, err := g.Lookup(record.ClientIP)
	if err != nil {
		return err
	}

	record.GeoCountry = location.Country
	record.GeoCity = location.City
	record.ASN = location.ASN
	record.ASNOrg = location.ASNOrg
	return nil
}

// Lookup resolves ip, serving repeated addresses from the cache
func (g *GeoIPEnricher) Lookup(ip string) (*models.IPLocation, error) {
	if cached, ok := g.cache.Get(ip); ok {
		g.logger.Trace("GeoIP cache hit", g.logger.Args("ip", ip, "country", cached.Country))
		return cached, nil
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		g.logger.Debug("Invalid IP address for GeoIP lookup", g.logger.Args("ip", ip))
		return nil, fmt.Errorf("%w: %s", ErrInvalidIP, ip)
	}

	location := &models.IPLocation{
		IPAddress: ip,
		LastSeen:  time.Now(),
	}

	cityLookupSuccess := false
	if g.cityDB != nil {
		if record, err := g.cityDB.City(parsed); err == nil {
			location.Country = record.Country.IsoCode
			location.CountryName = record.Country.Names["en"]
			location.City = record.City.Names["en"]
			cityLookupSuccess = true
		} else {
			g.logger.Debug("GeoIP City lookup failed", g.logger.Args("ip", ip, "error", err))
		}
	}

	// Country database as fallback when City failed or is unavailable
	if !cityLookupSuccess && g.countryDB != nil {
		if record, err := g.countryDB.Country(parsed); err == nil {
			location.Country = record.Country.IsoCode
			location.CountryName = record.Country.Names["en"]
		} else {
			g.logger.Debug("GeoIP Country lookup failed", g.logger.Args("ip", ip, "error", err))
		}
	}

	if g.asnDB != nil {
		if record, err := g.asnDB.ASN(parsed); err == nil {
			location.ASN = int(record.AutonomousSystemNumber)
			location.ASNOrg = record.AutonomousSystemOrganization
		} else {
			g.logger.Debug("GeoIP ASN lookup failed", g.logger.Args("ip", ip, "error", err))
		}
	}

	g.cache.Set(ip, location, 1)
	g.persist(location)

	return location, nil
}

func (g *GeoIPEnricher) persist(location *models.IPLocation) {
	if g.db == nil {
		return
	}

	go func(loc models.IPLocation) {
		// The memory cache is authoritative; the table only warms it on restart.
		_ = g.db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)}).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "ip_address"}},
				DoUpdates: clause.AssignmentColumns([]string{"last_seen", "updated_at"}),
			}).Create(&loc).Error
	}(*location)
}

// LoadCache warms the memory cache with the most recently seen addresses
func (g *GeoIPEnricher) LoadCache() error {
	if !g.enabled || g.db == nil {
		return nil
	}

	var locations []models.IPLocation
	if err := g.db.Order("last_seen DESC").Limit(g.cacheSize).Find(&locations).Error; err != nil {
		g.logger.WithCaller().Error("Failed to load GeoIP cache", g.logger.Args("error", err))
		return err
	}

	for i := range locations {
		g.cache.Set(locations[i].IPAddress, &locations[i], 1)
	}
	g.cache.Wait()

	g.logger.Info("Loaded GeoIP cache", g.logger.Args("entries", len(locations)))
	return nil
}

// Close closes the GeoIP databases
func (g *GeoIPEnricher) Close() error {
	if g.cityDB != nil {
		g.cityDB.Close()
	}
	if g.countryDB != nil {
		g.countryDB.Close()
	}
	if g.asnDB != nil {
		g.asnDB.Close()
	}
	g.cache.Close()
	g.logger.Debug("Closed GeoIP databases")
	return nil
}

// IsEnabled returns whether GeoIP enrichment is available
func (g *GeoIPEnricher) IsEnabled() bool {
	return g.enabled
}

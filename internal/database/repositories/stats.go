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
package repositories

import (
	"time"

	"weblynx/internal/database/models"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// FamilyStats holds request counts per User-Agent family
type FamilyStats struct {
	Family string `json:"family"`
	Count  int64  `json:"count"`
}

// BotStats holds request counts per bot name
type BotStats struct {
	BotName string `json:"bot_name"`
	Count   int64  `json:"count"`
}

// BrowserStats holds browser usage statistics
type BrowserStats struct {
	Browser string `json:"browser"`
	Count   int64  `json:"count"`
}

// OSStats holds operating system statistics
type OSStats struct {
	OS    string `json:"os"`
	Count int64  `json:"count"`
}

// DomainStats holds request counts per requested host
type DomainStats struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// TargetTypeStats holds request counts per target type (page, pdf, php...)
type TargetTypeStats struct {
	TargetType string `json:"target_type"`
	Count      int64  `json:"count"`
}

// LanguageStats holds request counts per URL language prefix
type LanguageStats struct {
	Language string `json:"language"`
	Count    int64  `json:"count"`
}

// StatsSummary holds the headline numbers
type StatsSummary struct {
	TotalRequests int64 `json:"total_requests"`
	BotRequests   int64 `json:"bot_requests"`
	UniqueIPs     int64 `json:"unique_ips"`
	UniqueDomains int64 `json:"unique_domains"`
}

type StatsRepository interface {
	GetSummary(hours int) (*StatsSummary, error)
	GetFamilyDistribution(hours int) ([]*FamilyStats, error)
	GetTopBots(hours int, limit int) ([]*BotStats, error)
	GetTopBrowsers(hours int, limit int) ([]*BrowserStats, error)
	GetTopOperatingSystems(hours int, limit int) ([]*OSStats, error)
	GetTopDomains(hours int, limit int) ([]*DomainStats, error)
	GetTopReferrerDomains(hours int, limit int) ([]*DomainStats, error)
	GetTargetTypeDistribution(hours int) ([]*TargetTypeStats, error)
	GetLanguageDistribution(hours int) ([]*LanguageStats, error)
}

type statsRepo struct {
	db     *gorm.DB
	logger *pterm.Logger
}

func NewStatsRepository(db *gorm.DB, logger *pterm.Logger) StatsRepository {
	return &statsRepo{
		db:     db,
		logger: logger,
	}
}

// since restricts query to the last hours; 0 means all time.
func (r *statsRepo) since(hours int) *gorm.DB {
	query := r.db.Model(&models.RequestRecord{})
	if hours > 0 {
		query = query.Where("timestamp > ?", time.Now().UTC().Add(-time.Duration(hours)*time.Hour))
	}
	return query
}

func (r *statsRepo) GetSummary(hours int) (*StatsSummary, error) {
	summary := &StatsSummary{}

	err := r.since(hours).
		Select(`COUNT(*) as total_requests,
			COALESCE(SUM(CASE WHEN is_bot THEN 1 ELSE 0 END), 0) as bot_requests,
			COUNT(DISTINCT client_ip) as unique_ips,
			COUNT(DISTINCT NULLIF(domain, '')) as unique_domains`).
		Scan(summary).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get summary", r.logger.Args("error", err))
		return nil, err
	}

	return summary, nil
}

// GetFamilyDistribution returns request counts per User-Agent family
func (r *statsRepo) GetFamilyDistribution(hours int) ([]*FamilyStats, error) {
	var families []*FamilyStats

	err := r.since(hours).
		Select("ua_family as family, COUNT(*) as count").
		Group("ua_family").Order("count DESC, family").
		Scan(&families).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get family distribution", r.logger.Args("error", err))
		return nil, err
	}

	return families, nil
}

// GetTopBots returns the most active bots
func (r *statsRepo) GetTopBots(hours int, limit int) ([]*BotStats, error) {
	var bots []*BotStats

	err := r.since(hours).
		Select("bot_name, COUNT(*) as count").
		Where("is_bot AND bot_name != ''").
		Group("bot_name").Order("count DESC, bot_name").Limit(limit).
		Scan(&bots).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get top bots", r.logger.Args("error", err))
		return nil, err
	}

	return bots, nil
}

// GetTopBrowsers returns most common browsers
func (r *statsRepo) GetTopBrowsers(hours int, limit int) ([]*BrowserStats, error) {
	var browsers []*BrowserStats

	err := r.since(hours).
		Select("browser, COUNT(*) as count").
		Where("browser != '' AND browser != 'Unknown'").
		Group("browser").Order("count DESC, browser").Limit(limit).
		Scan(&browsers).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get top browsers", r.logger.Args("error", err))
		return nil, err
	}

	return browsers, nil
}

// GetTopOperatingSystems returns most common operating systems
func (r *statsRepo) GetTopOperatingSystems(hours int, limit int) ([]*OSStats, error) {
	var osList []*OSStats

	err := r.since(hours).
		Select("os, COUNT(*) as count").
		Where("os != '' AND os != 'Unknown'").
		Group("os").Order("count DESC, os").Limit(limit).
		Scan(&osList).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get top operating systems", r.logger.Args("error", err))
		return nil, err
	}

	return osList, nil
}

func (r *statsRepo) GetTopDomains(hours int, limit int) ([]*DomainStats, error) {
	var domains []*DomainStats

	err := r.since(hours).
		Select("domain, COUNT(*) as count").
		Where("domain != ''").
		Group("domain").Order("count DESC, domain").Limit(limit).
		Scan(&domains).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get top domains", r.logger.Args("error", err))
		return nil, err
	}

	return domains, nil
}

func (r *statsRepo) GetTopReferrerDomains(hours int, limit int) ([]*DomainStats, error) {
	var domains []*DomainStats

	err := r.since(hours).
		Select("referer_domain as domain, COUNT(*) as count").
		Where("referer_domain != ''").
		Group("referer_domain").Order("count DESC, domain").Limit(limit).
		Scan(&domains).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get top referrer domains", r.logger.Args("error", err))
		return nil, err
	}

	return domains, nil
}

func (r *statsRepo) GetTargetTypeDistribution(hours int) ([]*TargetTypeStats, error) {
	var types []*TargetTypeStats

	err := r.since(hours).
		Select("target_type, COUNT(*) as count").
		Where("target_type != ''").
		Group("target_type").Order("count DESC, target_type").
		Scan(&types).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get target type distribution", r.logger.Args("error", err))
		return nil, err
	}

	return types, nil
}

func (r *statsRepo) GetLanguageDistribution(hours int) ([]*LanguageStats, error) {
	var languages []*LanguageStats

	err := r.since(hours).
		Select("language, COUNT(*) as count").
		Where("language != ''").
		Group("language").Order("count DESC, language").
		Scan(&languages).Error
	if err != nil {
		r.logger.WithCaller().Error("Failed to get language distribution", r.logger.Args("error", err))
		return nil, err
	}

	return languages, nil
}

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
package handlers

import (
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"weblynx/internal/database"
	"weblynx/internal/database/repositories"
	"weblynx/internal/ingestion"
	"weblynx/internal/version"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// IngestionStatus reports the state of log ingestion
type IngestionStatus interface {
	GetStatus() ingestion.Status
}

// SystemHandler handles health and system statistics requests
type SystemHandler struct {
	recordRepo     repositories.RequestRecordRepository
	cleanupService *database.CleanupService
	ingestion      IngestionStatus
	logger         *pterm.Logger
	startTime      time.Time
	dbPath         string
}

// SystemStats holds process, database and ingestion statistics
type SystemStats struct {
	// Process Info
	AppVersion    string  `json:"app_version"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds int64   `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`
	GoVersion     string  `json:"go_version"`
	NumCPU        int     `json:"num_cpu"`
	NumGoroutines int     `json:"num_goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	MemorySysMB   float64 `json:"memory_sys_mb"`

	// Database Info
	TotalRecords   int64   `json:"total_records"`
	DatabaseSizeMB float64 `json:"database_size_mb"`
	DatabasePath   string  `json:"database_path"`

	// Cleanup Info
	RetentionDays   int    `json:"retention_days"`
	NextCleanupTime string `json:"next_cleanup_time"`
	LastCleanupTime string `json:"last_cleanup_time"`

	Ingestion *ingestion.Status `json:"ingestion,omitempty"`
}

// NewSystemHandler creates a new system handler. cleanupService and status may be nil.
func NewSystemHandler(
	recordRepo repositories.RequestRecordRepository,
	cleanupService *database.CleanupService,
	status IngestionStatus,
	logger *pterm.Logger,
	dbPath string,
) *SystemHandler {
	return &SystemHandler{
		recordRepo:     recordRepo,
		cleanupService: cleanupService,
		ingestion:      status,
		logger:         logger,
		startTime:      time.Now(),
		dbPath:         dbPath,
	}
}

// Health reports whether the service can reach its database
func (h *SystemHandler) Health(c *gin.Context) {
	if _, err := h.recordRepo.HasExistingData(); err != nil {
		h.logger.WithCaller().Warn("Health check failed", h.logger.Args("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

// GetSystemStats returns system statistics
func (h *SystemHandler) GetSystemStats(c *gin.Context) {
	stats, err := h.collectSystemStats()
	if err != nil {
		h.logger.WithCaller().Error("Failed to collect system stats", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect system stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// collectSystemStats gathers all system statistics
func (h *SystemHandler) collectSystemStats() (*SystemStats, error) {
	stats := &SystemStats{
		AppVersion:    version.Version,
		StartTime:     h.startTime.Format(time.RFC3339),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		NumGoroutines: runtime.NumGoroutine(),
		DatabasePath:  h.dbPath,
	}

	uptime := time.Since(h.startTime)
	stats.UptimeSeconds = int64(uptime.Seconds())
	stats.Uptime = formatDuration(uptime)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats.MemoryAllocMB = float64(m.Alloc) / 1024 / 1024
	stats.MemorySysMB = float64(m.Sys) / 1024 / 1024

	totalRecords, err := h.recordRepo.Count(repositories.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	stats.TotalRecords = totalRecords

	if fileInfo, err := os.Stat(h.dbPath); err == nil {
		stats.DatabaseSizeMB = float64(fileInfo.Size()) / 1024 / 1024
	}

	stats.NextCleanupTime = "Disabled"
	stats.LastCleanupTime = "N/A"
	if h.cleanupService != nil {
		cleanupStats := h.cleanupService.GetStats()
		stats.RetentionDays = cleanupStats.RetentionDays
		if cleanupStats.RetentionDays > 0 {
			stats.LastCleanupTime = "Never"
			if !cleanupStats.NextScheduledRun.IsZero() {
				stats.NextCleanupTime = cleanupStats.NextScheduledRun.Format(time.DateTime)
			}
			if !cleanupStats.LastRunTime.IsZero() {
				stats.LastCleanupTime = cleanupStats.LastRunTime.Format(time.DateTime)
			}
		}
	}

	if h.ingestion != nil {
		status := h.ingestion.GetStatus()
		stats.Ingestion = &status
	}

	return stats, nil
}

// formatDuration formats a duration into a human-readable string
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return formatPlural(days, "day", hours, "hour")
	}
	if hours > 0 {
		return formatPlural(hours, "hour", minutes, "minute")
	}
	if minutes > 0 {
		return formatPlural(minutes, "minute", seconds, "second")
	}
	return formatPlural(seconds, "second", 0, "")
}

// formatPlural formats numbers with proper pluralization
func formatPlural(n1 int, unit1 string, n2 int, unit2 string) string {
	result := formatSingle(n1, unit1)
	if n2 > 0 && unit2 != "" {
		result += ", " + formatSingle(n2, unit2)
	}
	return result
}

func formatSingle(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

package handlers

import (
	"net/http"
	"strconv"

	"weblynx/internal/database/repositories"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// DashboardHandler serves stored records and aggregate statistics
type DashboardHandler struct {
	recordRepo repositories.RequestRecordRepository
	statsRepo  repositories.StatsRepository
	logger     *pterm.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(recordRepo repositories.RequestRecordRepository, statsRepo repositories.StatsRepository, logger *pterm.Logger) *DashboardHandler {
	return &DashboardHandler{recordRepo: recordRepo, statsRepo: statsRepo, logger: logger}
}

// GetRecords returns the latest records, newest first
func (h *DashboardHandler) GetRecords(c *gin.Context) {
	limit := queryInt(c, "limit", defaultPageSize, 1, maxPageSize)
	offset := queryInt(c, "offset", 0, 0, -1)

	filter := repositories.RecordFilter{
		SourceName: c.Query("source"),
		Family:     c.Query("family"),
		Domain:     c.Query("domain"),
	}
	if v := c.Query("bot"); v != "" {
		isBot, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid bot filter"})
			return
		}
		filter.IsBot = &isBot
	}

	records, err := h.recordRepo.Latest(limit, offset, filter)
	if err != nil {
		h.logger.WithCaller().Error("Failed to list records", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list records"})
		return
	}

	total, err := h.recordRepo.Count(filter)
	if err != nil {
		h.logger.WithCaller().Error("Failed to count records", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetSummary returns headline counters for the requested window
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	summary, err := h.statsRepo.GetSummary(queryHours(c))
	if err != nil {
		h.logger.WithCaller().Error("Failed to get summary", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetFamilies returns the request count per User-Agent family
func (h *DashboardHandler) GetFamilies(c *gin.Context) {
	stats, err := h.statsRepo.GetFamilyDistribution(queryHours(c))
	respond(c, h.logger, "family distribution", stats, err)
}

// GetBots returns the most active bots
func (h *DashboardHandler) GetBots(c *gin.Context) {
	stats, err := h.statsRepo.GetTopBots(queryHours(c), queryLimit(c))
	respond(c, h.logger, "top bots", stats, err)
}

// GetBrowsers returns the most common browsers
func (h *DashboardHandler) GetBrowsers(c *gin.Context) {
	stats, err := h.statsRepo.GetTopBrowsers(queryHours(c), queryLimit(c))
	respond(c, h.logger, "top browsers", stats, err)
}

// GetOperatingSystems returns the most common operating systems
func (h *DashboardHandler) GetOperatingSystems(c *gin.Context) {
	stats, err := h.statsRepo.GetTopOperatingSystems(queryHours(c), queryLimit(c))
	respond(c, h.logger, "top operating systems", stats, err)
}

// GetDomains returns the most requested domains
func (h *DashboardHandler) GetDomains(c *gin.Context) {
	stats, err := h.statsRepo.GetTopDomains(queryHours(c), queryLimit(c))
	respond(c, h.logger, "top domains", stats, err)
}

// GetReferrers returns the most common referring domains
func (h *DashboardHandler) GetReferrers(c *gin.Context) {
	stats, err := h.statsRepo.GetTopReferrerDomains(queryHours(c), queryLimit(c))
	respond(c, h.logger, "top referrers", stats, err)
}

// GetTargetTypes returns the request count per target type
func (h *DashboardHandler) GetTargetTypes(c *gin.Context) {
	stats, err := h.statsRepo.GetTargetTypeDistribution(queryHours(c))
	respond(c, h.logger, "target types", stats, err)
}

// GetLanguages returns the request count per path language
func (h *DashboardHandler) GetLanguages(c *gin.Context) {
	stats, err := h.statsRepo.GetLanguageDistribution(queryHours(c))
	respond(c, h.logger, "languages", stats, err)
}

func respond[T any](c *gin.Context, logger *pterm.Logger, what string, stats []T, err error) {
	if err != nil {
		logger.WithCaller().Error("Failed to get "+what, logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get " + what})
		return
	}
	if stats == nil {
		stats = []T{}
	}
	c.JSON(http.StatusOK, stats)
}

// queryHours reads the time window; 0 means all time. At most 30 days.
func queryHours(c *gin.Context) int {
	return queryInt(c, "hours", 24, 0, 720)
}

func queryLimit(c *gin.Context) int {
	return queryInt(c, "limit", 10, 1, 100)
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or out of range. A negative hi means no upper bound.
func queryInt(c *gin.Context, name string, def, lo, hi int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < lo || (hi >= 0 && val > hi) {
		return def
	}
	return val
}

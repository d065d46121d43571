package handlers

import (
	"errors"
	"net/http"

	"weblynx/internal/analysis"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// ParseRequest is the body of the on-demand decomposition endpoints
type ParseRequest struct {
	Value string `json:"value"`
	Flat  bool   `json:"flat"`
}

// ParseHandler decomposes User-Agent strings and URLs on request
type ParseHandler struct {
	analyzer *analysis.Analyzer
	logger   *pterm.Logger
}

// NewParseHandler creates a new parse handler
func NewParseHandler(analyzer *analysis.Analyzer, logger *pterm.Logger) *ParseHandler {
	return &ParseHandler{analyzer: analyzer, logger: logger}
}

// ParseUserAgent classifies a User-Agent string
func (h *ParseHandler) ParseUserAgent(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.analyzer.UserAgent(req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Flat {
		c.JSON(http.StatusOK, gin.H{"value": req.Value, "components": result.FlatComponents()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": req.Value, "components": result.Components()})
}

// ParseURL decomposes a URL. Text that does not look like a URL yields an
// empty decomposition.
func (h *ParseHandler) ParseURL(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.analyzer.URL(req.Value)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if req.Flat {
		c.JSON(http.StatusOK, gin.H{"value": req.Value, "recognized": !result.IsEmpty(), "components": result.FlatComponents()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"value": req.Value, "recognized": !result.IsEmpty(), "components": result.Components()})
}

func (h *ParseHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyInput), errors.Is(err, analysis.ErrInputTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, analysis.ErrUnrecognized):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.logger.WithCaller().Error("Decomposition failed", h.logger.Args("error", err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Decomposition failed"})
	}
}

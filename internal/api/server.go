package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"weblynx/internal/api/handlers"

	"github.com/gin-gonic/gin"
	"github.com/pterm/pterm"
)

// Handlers groups the endpoint handlers served by the router
type Handlers struct {
	Parse     *handlers.ParseHandler
	Dashboard *handlers.DashboardHandler
	System    *handlers.SystemHandler
}

// NewRouter builds the gin engine. Dashboard and System may be nil when no
// database is attached; their routes are then not registered.
func NewRouter(h Handlers, logger *pterm.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		parse := v1.Group("/parse")
		parse.POST("/useragent", h.Parse.ParseUserAgent)
		parse.POST("/url", h.Parse.ParseURL)
	}

	if h.Dashboard != nil {
		v1.GET("/records", h.Dashboard.GetRecords)

		stats := v1.Group("/stats")
		stats.GET("/summary", h.Dashboard.GetSummary)
		stats.GET("/families", h.Dashboard.GetFamilies)
		stats.GET("/bots", h.Dashboard.GetBots)
		stats.GET("/browsers", h.Dashboard.GetBrowsers)
		stats.GET("/os", h.Dashboard.GetOperatingSystems)
		stats.GET("/domains", h.Dashboard.GetDomains)
		stats.GET("/referrers", h.Dashboard.GetReferrers)
		stats.GET("/target-types", h.Dashboard.GetTargetTypes)
		stats.GET("/languages", h.Dashboard.GetLanguages)
	}

	if h.System != nil {
		router.GET("/health", h.System.Health)
		v1.GET("/system/stats", h.System.GetSystemStats)
	} else {
		router.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	return router
}

// requestLogger logs every request at trace level and server errors at warn
func requestLogger(logger *pterm.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := logger.Args(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn("Request failed", args)
			return
		}
		logger.Trace("Request handled", args)
	}
}

// Server serves the router until its context is cancelled
type Server struct {
	srv    *http.Server
	logger *pterm.Logger
}

// NewServer creates a server listening on addr
func NewServer(addr string, handler http.Handler, logger *pterm.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", s.logger.Args("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

package discovery

import (
	"weblynx/internal/database/models"
	parsers "weblynx/internal/parser"

	"github.com/pterm/pterm"
)

// CaddyDetector detects Caddy JSON access logs
type CaddyDetector struct {
	parser         parsers.LogParser
	logger         *pterm.Logger
	configuredPath string
	autoDiscover   bool
}

// NewCaddyDetector creates a new Caddy detector
func NewCaddyDetector(parser parsers.LogParser, opts Options, logger *pterm.Logger) ServiceDetector {
	return &CaddyDetector{
		parser:         parser,
		logger:         logger,
		configuredPath: opts.CaddyLogPath,
		autoDiscover:   opts.AutoDiscover,
	}
}

// Name returns the detector name
func (d *CaddyDetector) Name() string {
	return "caddy"
}

// Detect returns the first Caddy access log found. A configured path takes
// priority and disables the well-known locations.
func (d *CaddyDetector) Detect() ([]*models.LogSource, error) {
	var paths []string

	if d.configuredPath != "" {
		d.logger.Info("Using configured CADDY_LOG_PATH", d.logger.Args("path", d.configuredPath))
		paths = append(paths, d.configuredPath)
	} else if d.autoDiscover {
		d.logger.Debug("Auto-discovering Caddy log files...")
		paths = append(paths,
			"caddy/logs/access.log",
			"/var/log/caddy/access.log",
			"/var/log/caddy/access.json",
		)
	}

	path, ok := probe(paths, d.parser, d.logger)
	if !ok {
		d.logger.Info("No Caddy log sources detected")
		return nil, nil
	}

	d.logger.Info("Caddy log source detected", d.logger.Args("path", path))
	return []*models.LogSource{{
		Name:       sourceName("caddy", path),
		Path:       path,
		ParserType: d.parser.Name(),
	}}, nil
}

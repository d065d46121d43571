package discovery

import (
	"weblynx/internal/database/models"
	parsers "weblynx/internal/parser"

	"github.com/pterm/pterm"
)

// TraefikDetector detects Traefik JSON access logs
type TraefikDetector struct {
	parser         parsers.LogParser
	logger         *pterm.Logger
	configuredPath string
	autoDiscover   bool
}

// NewTraefikDetector creates a new Traefik detector
func NewTraefikDetector(parser parsers.LogParser, opts Options, logger *pterm.Logger) ServiceDetector {
	return &TraefikDetector{
		parser:         parser,
		logger:         logger,
		configuredPath: opts.TraefikLogPath,
		autoDiscover:   opts.AutoDiscover,
	}
}

func (d *TraefikDetector) Name() string {
	return "traefik"
}

// Detect returns the first Traefik access log found. The configured path is
// tried before the well-known relative location.
func (d *TraefikDetector) Detect() ([]*models.LogSource, error) {
	d.logger.Trace("Detecting Traefik log sources...")

	var paths []string
	if d.configuredPath != "" {
		d.logger.Debug("Using configured Traefik log path", d.logger.Args("path", d.configuredPath))
		paths = append(paths, d.configuredPath)
	}
	if d.autoDiscover {
		paths = append(paths, "traefik/logs/access.log", "/var/log/traefik/access.log")
	}

	path, ok := probe(paths, d.parser, d.logger)
	if !ok {
		d.logger.Info("No Traefik log sources detected")
		return nil, nil
	}

	d.logger.Info("Traefik log source detected", d.logger.Args("path", path))
	return []*models.LogSource{{
		Name:       sourceName("traefik", path),
		Path:       path,
		ParserType: d.parser.Name(),
	}}, nil
}

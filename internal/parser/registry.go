package parsers

import (
	"fmt"
	"slices"
	"strings"

	"weblynx/internal/parser/caddy"
	"weblynx/internal/parser/traefik"

	"github.com/pterm/pterm"
)

// Registry manages all available log parsers
type Registry struct {
	parsers map[string]LogParser
	logger  *pterm.Logger
}

// traefikParserWrapper wraps traefik.Parser to implement LogParser interface
type traefikParserWrapper struct {
	*traefik.Parser
}

func (w *traefikParserWrapper) Parse(line string) (Event, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}
	event, err := w.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// caddyParserWrapper wraps caddy.Parser to implement LogParser interface
type caddyParserWrapper struct {
	*caddy.Parser
}

func (w *caddyParserWrapper) Parse(line string) (Event, error) {
	if strings.TrimSpace(line) == "" {
		return nil, ErrEmptyLine
	}
	event, err := w.Parser.Parse(line)
	if err != nil {
		return nil, err
	}
	return event, nil
}

// NewRegistry creates a new parser registry with all built-in parsers
func NewRegistry(logger *pterm.Logger) *Registry {
	registry := &Registry{
		parsers: make(map[string]LogParser),
		logger:  logger,
	}

	registry.Register("traefik", &traefikParserWrapper{traefik.NewParser(logger)})
	registry.Register("caddy", &caddyParserWrapper{caddy.NewParser(logger)})
	logger.Debug("Registered parsers", logger.Args("types", registry.Names()))

	return registry
}

// Register adds a parser to the registry
func (r *Registry) Register(name string, parser LogParser) {
	r.parsers[name] = parser
}

// Get retrieves a parser by type
func (r *Registry) Get(parserType string) (LogParser, error) {
	parser, exists := r.parsers[parserType]
	if !exists {
		r.logger.WithCaller().Warn("Parser not found", r.logger.Args("type", parserType))
		return nil, fmt.Errorf("%w: %s", ErrParserNotFound, parserType)
	}
	return parser, nil
}

// Detect returns the first registered parser able to read line.
func (r *Registry) Detect(line string) (LogParser, bool) {
	for _, name := range r.Names() {
		if p := r.parsers[name]; p.CanParse(line) {
			return p, true
		}
	}
	return nil, false
}

// Names returns the registered parser types in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// GetAll returns all registered parsers
func (r *Registry) GetAll() map[string]LogParser {
	return r.parsers
}

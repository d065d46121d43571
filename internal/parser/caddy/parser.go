package caddy

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	ErrMissingTimestamp = errors.New("missing or invalid timestamp")
	ErrMissingRequest   = errors.New("missing request object")
)

// Parser implements the LogParser interface for Caddy access logs
type Parser struct {
	logger *pterm.Logger
}

// NewParser creates a new Caddy parser instance
func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{
		logger: logger,
	}
}

// Name returns the parser name
func (p *Parser) Name() string {
	return "caddy"
}

// CanParse checks if the log line is in Caddy JSON format
func (p *Parser) CanParse(line string) bool {
	if len(line) == 0 || line[0] != '{' {
		return false
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return false
	}

	logger, hasLogger := raw["logger"].(string)
	_, hasRequest := raw["request"]

	// Caddy access logs have logger starting with "http.log.access"
	return hasLogger && strings.HasPrefix(logger, "http.log.access") && hasRequest
}

// Parse parses a Caddy JSON log line into a CaddyRequestEvent
func (p *Parser) Parse(line string) (*CaddyRequestEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	// Unix float seconds
	ts := getFloat64(raw, "ts")
	if ts == 0 {
		return nil, ErrMissingTimestamp
	}
	timestamp := parseUnixTimestamp(ts)

	request, ok := raw["request"].(map[string]any)
	if !ok {
		return nil, ErrMissingRequest
	}
	headers, _ := request["headers"].(map[string]any)

	clientIP := getString(request, "client_ip")
	if clientIP == "" {
		clientIP = getString(request, "remote_ip")
	}
	if clientIP == "" {
		clientIP = extractHeaderArray(headers, "X-Forwarded-For")
	}

	path, queryString := splitURI(getString(request, "uri"))

	requestScheme := "http"
	if _, hasTLS := request["tls"].(map[string]any); hasTLS {
		requestScheme = "https"
	}

	event := &CaddyRequestEvent{
		Timestamp: timestamp,

		ClientIP:   clientIP,
		ClientPort: getInt(request, "remote_port"),
		ClientUser: getString(raw, "user_id"),

		Method:        getString(request, "method"),
		Protocol:      getString(request, "proto"),
		Host:          getString(request, "host"),
		Path:          path,
		QueryString:   queryString,
		RequestScheme: requestScheme,

		StatusCode:     getInt(raw, "status"),
		ResponseSize:   getInt64(raw, "size"),
		ResponseTimeMs: getFloat64(raw, "duration") * 1000,

		UserAgent: extractHeaderArray(headers, "User-Agent"),
		Referer:   extractHeaderArray(headers, "Referer"),

		RouterName: getString(raw, "logger"),
	}

	p.logger.Trace("Parsed Caddy log",
		p.logger.Args("client_ip", event.ClientIP, "host", event.Host, "status", event.StatusCode))

	return event, nil
}

// parseUnixTimestamp converts a Unix timestamp (float) to time.Time
func parseUnixTimestamp(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

// splitURI splits a URI into path and query string
func splitURI(uri string) (path, query string) {
	if idx := strings.Index(uri, "?"); idx != -1 {
		return uri[:idx], uri[idx+1:]
	}
	return uri, ""
}

// extractHeaderArray returns the first value of a header array
func extractHeaderArray(headers map[string]any, name string) string {
	if headers == nil {
		return ""
	}

	headerValue, ok := headers[name].([]any)
	if !ok || len(headerValue) == 0 {
		return ""
	}

	value, _ := headerValue[0].(string)
	return value
}

func getString(m map[string]any, key string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return ""
}

func getInt(m map[string]any, key string) int {
	switch val := m[key].(type) {
	case int:
		return val
	case float64:
		return int(val)
	case string:
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return 0
}

func getInt64(m map[string]any, key string) int64 {
	switch val := m[key].(type) {
	case int64:
		return val
	case int:
		return int64(val)
	case float64:
		return int64(val)
	case string:
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return 0
}

func getFloat64(m map[string]any, key string) float64 {
	switch val := m[key].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return 0
}

package traefik

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

var (
	ErrEmptyLine       = errors.New("empty log line")
	ErrMissingClientIP = errors.New("missing client address")
)

// accessLine holds the Traefik JSON access-log fields used for decomposition.
// Header fields only appear when Traefik is configured to keep them.
type accessLine struct {
	Time           string  `json:"time"`
	ClientHost     string  `json:"ClientHost"`
	RealIP         string  `json:"request_X-Real-Ip"`
	Method         string  `json:"RequestMethod"`
	Path           string  `json:"RequestPath"`
	Protocol       string  `json:"RequestProtocol"`
	RequestHost    string  `json:"RequestHost"`
	HostHeader     string  `json:"request_Host"`
	ForwardedProto string  `json:"request_X-Forwarded-Proto"`
	Status         int     `json:"DownstreamStatus"`
	Size           int64   `json:"DownstreamContentSize"`
	Duration       float64 `json:"Duration"` // nanoseconds
	UserAgent      string  `json:"request_User-Agent"`
	Referer        string  `json:"request_Referer"`
	RouterName     string  `json:"RouterName"`
	RequestID      string  `json:"request_X-Request-Id"`
}

// Parser implements the LogParser interface for Traefik logs
type Parser struct {
	logger *pterm.Logger
}

func NewParser(logger *pterm.Logger) *Parser {
	return &Parser{logger: logger}
}

func (p *Parser) Name() string {
	return "traefik"
}

// CanParse reports whether line is a Traefik JSON access-log entry carrying
// a timestamp and a forwarded client IP.
func (p *Parser) CanParse(line string) bool {
	if line == "" {
		return false
	}

	var entry accessLine
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		return false
	}
	return entry.Time != "" && entry.RealIP != ""
}

// Parse decodes a Traefik JSON log line into an HTTPRequestEvent
func (p *Parser) Parse(line string) (*HTTPRequestEvent, error) {
	if line == "" {
		return nil, ErrEmptyLine
	}

	var entry accessLine
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		p.logger.WithCaller().Warn("Failed to parse JSON log line", p.logger.Args("error", err))
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	ip := strings.TrimSpace(entry.RealIP)
	if ip == "" {
		p.logger.WithCaller().Warn("Missing required field: request_X-Real-Ip")
		return nil, fmt.Errorf("%w: request_X-Real-Ip", ErrMissingClientIP)
	}
	// ClientHost is the proxy hop; only its port is kept
	_, port := parseClientHost(strings.TrimSpace(entry.ClientHost))

	timestamp, err := time.Parse(time.RFC3339Nano, entry.Time)
	if err != nil {
		p.logger.Debug("Invalid or missing timestamp, using current time", p.logger.Args("time", entry.Time))
		timestamp = time.Now()
	}

	path, queryString := splitPath(entry.Path)

	method := strings.ToUpper(strings.TrimSpace(entry.Method))
	if method == "" {
		method = "GET"
	}

	host := strings.TrimSpace(entry.HostHeader)
	if host == "" {
		host = strings.TrimSpace(entry.RequestHost)
	}

	event := &HTTPRequestEvent{
		Timestamp: timestamp,

		ClientIP:   ip,
		ClientPort: port,

		Method:        method,
		Protocol:      entry.Protocol,
		Host:          host,
		Path:          path,
		QueryString:   queryString,
		RequestScheme: strings.ToLower(strings.TrimSpace(entry.ForwardedProto)),

		StatusCode:     entry.Status,
		ResponseSize:   entry.Size,
		ResponseTimeMs: entry.Duration / float64(time.Millisecond),

		UserAgent: strings.TrimSpace(entry.UserAgent),
		Referer:   strings.TrimSpace(entry.Referer),

		RouterName: entry.RouterName,
		RequestID:  entry.RequestID,
	}

	// Auth middlewares bounce to login pages with the origin in ?redirect=
	if event.Referer == "" {
		if target := redirectTarget(queryString); target != "" {
			event.Referer = target
			p.logger.Trace("Filled referer from redirect parameter",
				p.logger.Args("client_ip", event.ClientIP, "redirect", target))
		}
	}

	if event.StatusCode < 100 || event.StatusCode >= 600 {
		p.logger.Debug("Invalid status code, using 0", p.logger.Args("status", event.StatusCode))
		event.StatusCode = 0
	}

	p.logger.Trace("Parsed Traefik log",
		p.logger.Args("client_ip", event.ClientIP, "host", event.Host, "path", event.Path, "status", event.StatusCode))

	return event, nil
}

// splitPath separates the query string; an empty path becomes "/".
func splitPath(raw string) (path, query string) {
	path, query, _ = strings.Cut(raw, "?")
	if path == "" {
		path = "/"
	}
	return path, query
}

func redirectTarget(queryString string) string {
	if queryString == "" {
		return ""
	}
	values, err := url.ParseQuery(queryString)
	if err != nil {
		return ""
	}
	return values.Get("redirect")
}

// parseClientHost splits "ip:port" or "[ipv6]:port". A value without a port
// is returned as the IP.
func parseClientHost(clientHost string) (ip string, port int) {
	if clientHost == "" {
		return "", 0
	}

	host, portStr, err := net.SplitHostPort(clientHost)
	if err != nil {
		return clientHost, 0
	}

	port, _ = strconv.Atoi(portStr)
	return host, port
}

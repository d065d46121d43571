package caddy

import "time"

// CaddyRequestEvent represents a parsed Caddy access log entry.
type CaddyRequestEvent struct {
	Timestamp  time.Time
	SourceName string

	// Client info
	ClientIP   string
	ClientPort int
	ClientUser string

	// Request info
	Method        string
	Protocol      string
	Host          string
	Path          string
	QueryString   string
	RequestScheme string

	// Response info
	StatusCode     int
	ResponseSize   int64
	ResponseTimeMs float64

	// Headers
	UserAgent string
	Referer   string

	// Caddy logger name, e.g. http.log.access.log9
	RouterName string
}

// GetTimestamp implements the parsers.Event interface
func (e *CaddyRequestEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// GetSourceName implements the parsers.Event interface
func (e *CaddyRequestEvent) GetSourceName() string {
	return e.SourceName
}

func (e *CaddyRequestEvent) SetSourceName(name string) {
	e.SourceName = name
}

func (e *CaddyRequestEvent) GetClientIP() string {
	return e.ClientIP
}

func (e *CaddyRequestEvent) GetMethod() string {
	return e.Method
}

func (e *CaddyRequestEvent) GetStatusCode() int {
	return e.StatusCode
}

func (e *CaddyRequestEvent) GetUserAgent() string {
	return e.UserAgent
}

func (e *CaddyRequestEvent) GetReferer() string {
	return e.Referer
}

// GetRequestURL rebuilds scheme://host/path?query. Empty when the entry
// carries no host.
func (e *CaddyRequestEvent) GetRequestURL() string {
	if e.Host == "" {
		return ""
	}

	url := e.RequestScheme + "://" + e.Host + e.Path
	if e.QueryString != "" {
		url += "?" + e.QueryString
	}
	return url
}

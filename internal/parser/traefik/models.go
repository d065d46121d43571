package traefik

import (
	"time"
)

// HTTPRequestEvent represents a Traefik HTTP request log entry
type HTTPRequestEvent struct {
	Timestamp  time.Time
	SourceName string

	// Client info
	ClientIP   string
	ClientPort int

	// Request info
	Method        string
	Protocol      string
	Host          string
	Path          string
	QueryString   string
	RequestScheme string // from request_X-Forwarded-Proto

	// Response info
	StatusCode     int
	ResponseSize   int64
	ResponseTimeMs float64

	// Headers
	UserAgent string
	Referer   string

	RouterName string
	RequestID  string
}

func (e *HTTPRequestEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

func (e *HTTPRequestEvent) GetSourceName() string {
	return e.SourceName
}

func (e *HTTPRequestEvent) SetSourceName(name string) {
	e.SourceName = name
}

func (e *HTTPRequestEvent) GetClientIP() string {
	return e.ClientIP
}

func (e *HTTPRequestEvent) GetMethod() string {
	return e.Method
}

func (e *HTTPRequestEvent) GetStatusCode() int {
	return e.StatusCode
}

func (e *HTTPRequestEvent) GetUserAgent() string {
	return e.UserAgent
}

func (e *HTTPRequestEvent) GetReferer() string {
	return e.Referer
}

// GetRequestURL rebuilds the absolute request URL. Without a host the
// result is empty since a bare path cannot be decomposed.
func (e *HTTPRequestEvent) GetRequestURL() string {
	if e.Host == "" {
		return ""
	}

	scheme := e.RequestScheme
	if scheme == "" {
		scheme = "http"
	}

	url := scheme + "://" + e.Host + e.Path
	if e.QueryString != "" {
		url += "?" + e.QueryString
	}
	return url
}

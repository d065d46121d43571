package parsers

import (
	"time"
)

// Event is a single access-log request, reduced to the fields the analysis
// pipeline decomposes and stores.
type Event interface {
	GetTimestamp() time.Time
	GetSourceName() string
	SetSourceName(name string)
	GetClientIP() string
	GetMethod() string
	GetStatusCode() int
	GetUserAgent() string
	GetReferer() string
	GetRequestURL() string
}

type LogParser interface {
	Name() string
	Parse(line string) (Event, error)
	CanParse(line string) bool
}

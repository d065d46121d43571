package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidLogSource is returned for a LOG_SOURCES entry that is not name:parser:path
	ErrInvalidLogSource = errors.New("invalid log source definition")

	// ErrInvalidValue is returned when a numeric setting is out of range
	ErrInvalidValue = errors.New("invalid configuration value")
)

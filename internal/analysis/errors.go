package analysis

import "errors"

var (
	ErrEmptyInput   = errors.New("empty input")
	ErrInputTooLong = errors.New("input exceeds maximum length")
	// ErrUnrecognized is returned when a User-Agent matches no family and carries no bot clause.
	ErrUnrecognized = errors.New("user agent not recognized")
)

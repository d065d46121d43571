package parsers

import "errors"

var (
	ErrEmptyLine      = errors.New("empty log line")
	ErrParserNotFound = errors.New("parser not found")
)

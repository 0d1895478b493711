package pdx

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the parser. Match them with errors.Is.
var (
	// ErrNotFound is returned when an input file does not exist. Readers treat it
	// as "no data for this entity".
	ErrNotFound = errors.New("file not found")

	// ErrUnmatchedBrace is returned for a block without a closing brace and for
	// a closing brace without a block.
	ErrUnmatchedBrace = errors.New("unmatched brace")

	// ErrDepthExceeded is returned when blocks nest deeper than the parser limit.
	ErrDepthExceeded = errors.New("nesting depth exceeded")
)

// ParseError locates a parse failure in its source.
type ParseError struct {
	Path    string // empty for in-memory input
	Line    int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

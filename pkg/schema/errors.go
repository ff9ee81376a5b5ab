package schema

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every *ParseError
var ErrParse = errors.New("proto parse failure")

// ParseError reports that proto source could not be loaded or parsed.
// It is the only error kind produced by extraction.
type ParseError struct {
	// Source is the file path, or empty for raw content
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("failed to parse proto content: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse proto file %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrParse) true for any ParseError
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// Package apperr defines the error kinds shared across srtbspeeds.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports that a chart holds no entry for the requested key.
	// It is informational: callers report it and carry on.
	ErrNotFound          = errors.New("no speed triggers found")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidPath reports a library path that is absolute or escapes the
	// library root.
	ErrInvalidPath = errors.New("invalid library path")
)

// LineError is a malformed line in a speeds file.
// Line is the 0-based index over all raw lines of the input.
type LineError struct {
	Line   int
	Reason string
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// DocumentError is a chart document (or embedded payload) that failed to parse.
type DocumentError struct {
	Cause error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("failed to parse chart document: %v", e.Cause)
}

func (e *DocumentError) Unwrap() error { return e.Cause }

// IOError is a file that could not be read or written.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

// IsUserError reports whether err was caused by bad input rather than the
// environment.
func IsUserError(err error) bool {
	var le *LineError
	var de *DocumentError
	return errors.As(err, &le) || errors.As(err, &de) || errors.Is(err, ErrInvalidDifficulty) || errors.Is(err, ErrInvalidPath)
}

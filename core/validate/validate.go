package validate

import (
	"errors"
	"strings"
)

// Error lists input problems found before anything was written.
type Error struct {
	Problems []string
	// Err optionally classifies the failure for errors.Is.
	Err error
}

func (e *Error) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error from problems.
func New(cause error, problems ...string) *Error {
	return &Error{Problems: problems, Err: cause}
}

// Is reports whether err is or wraps a validation Error.
func Is(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

package ingest

import (
	"errors"
	"fmt"
)

// ErrNoFilename is returned when the first source file has no name.
var ErrNoFilename = errors.New("no filename found in input")

// ErrNoFiles is returned when a request carries no source files.
var ErrNoFiles = errors.New("no source files in input")

// ValidationError reports a bad request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ExecError reports a script that exited non-zero.
type ExecError struct {
	Stage  string // "extract" or "chunker"
	Code   int
	Stderr string
	Stdout string
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("%s.py failed (code %d).\n%s\n%s", e.Stage, e.Code, e.Stderr, e.Stdout)
}

// IsValidation reports whether err is caused by bad caller input.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrNoFilename) || errors.Is(err, ErrNoFiles)
}

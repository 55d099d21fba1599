package cli

import (
	"encoding/json"
	"errors"

	"github.com/thenoetrevino/groupboard/internal/board"
	"github.com/thenoetrevino/groupboard/internal/engine"
	"github.com/thenoetrevino/groupboard/internal/models"
	"github.com/thenoetrevino/groupboard/internal/persistence"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: network errors, rolled back writes, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing required flags, invalid flag combinations,
	// or when no project was given.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: project, list, card, checklist or item ids that don't exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: a server response that cannot be decoded.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: empty titles, unknown priorities, malformed dates, empty updates.
	ExitValidation = 5

	// ExitAuth indicates the server rejected the configured token.
	ExitAuth = 6
)

// CodedError carries the process exit code for an error. Reported is set once
// the error has already been written for the user.
type CodedError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *CodedError) Error() string { return e.Err.Error() }
func (e *CodedError) Unwrap() error { return e.Err }

// Usage marks err as a usage error.
func Usage(err error) error {
	return &CodedError{Code: ExitUsage, Err: err}
}

// Reported marks err as already shown to the user.
func Reported(err error) error {
	var ee *CodedError
	if errors.As(err, &ee) {
		return &CodedError{Code: ee.Code, Err: ee.Err, Reported: true}
	}
	return &CodedError{Code: ExitCode(err), Err: err, Reported: true}
}

// WasReported reports whether err has already been shown to the user.
func WasReported(err error) bool {
	var ee *CodedError
	return errors.As(err, &ee) && ee.Reported
}

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *CodedError
	if errors.As(err, &ee) {
		return ee.Code
	}

	var herr *engine.HydrationError
	if errors.As(err, &herr) {
		switch herr.Kind {
		case engine.HydrationNotFound:
			return ExitNotFound
		case engine.HydrationUnauthorized:
			return ExitAuth
		}
	}

	switch {
	case errors.Is(err, persistence.ErrNotFound), errors.Is(err, board.ErrNotFound):
		return ExitNotFound
	case persistence.IsAuth(err):
		return ExitAuth
	case isDecodeError(err):
		return ExitDataErr
	case engine.IsValidation(err), errors.Is(err, persistence.ErrInvalid), isModelError(err):
		return ExitValidation
	}
	return ExitError
}

// ErrorCode is the machine readable code printed with --json.
func ErrorCode(err error) string {
	switch ExitCode(err) {
	case ExitUsage:
		return "USAGE_ERROR"
	case ExitNotFound:
		return "NOT_FOUND"
	case ExitDataErr:
		return "DATA_ERROR"
	case ExitValidation:
		return "VALIDATION_ERROR"
	case ExitAuth:
		return "UNAUTHORIZED"
	}
	return "ERROR"
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

func isModelError(err error) bool {
	for _, target := range []error{
		models.ErrEmptyTitle,
		models.ErrEmptyName,
		models.ErrEmptyText,
		models.ErrEmptyContent,
		models.ErrInvalidPriority,
		models.ErrInvalidDate,
		models.ErrEmptyPatch,
		models.ErrTitleTooLong,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. An *Error matches exactly one of these under errors.Is.
var (
	ErrInvalid      = errors.New("invalid request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("persistence unavailable")
)

// Error is a failed persistence call.
type Error struct {
	Op      string // e.g. "update card"
	Status  int    // HTTP status, 0 for transport failures
	Message string // server-provided message, if any
	Err     error  // underlying transport error, if any
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Kind classifies the failure by status code.
func (e *Error) Kind() error {
	switch {
	case e.Status == http.StatusBadRequest || e.Status == http.StatusUnprocessableEntity:
		return ErrInvalid
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUnavailable
	}
}

// IsAuth reports whether err means the caller may not see the resource.
func IsAuth(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// IsTimeout reports whether err came from a deadline or cancellation.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

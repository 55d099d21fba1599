package events

import (
	"errors"
	"net"
	"net/http"
	"syscall"

	"github.com/gorilla/websocket"
)

// ErrorCode represents room connection failure types.
type ErrorCode int

const (
	ErrServerUnreachable ErrorCode = iota
	ErrConnectionRefused
	ErrUnauthorized
	ErrForbidden
	ErrRoomNotFound
	ErrHandshake
)

// DialError is a structured connection error with a hint for the user.
type DialError struct {
	Code    ErrorCode
	Message string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	if e.Hint != "" {
		return e.Message + ". " + e.Hint
	}
	return e.Message
}

func (e *DialError) Unwrap() error { return e.Err }

// ClassifyDialError maps a failed handshake to a DialError. resp is the
// handshake response, if the server sent one.
func ClassifyDialError(err error, resp *http.Response) *DialError {
	if err == nil {
		return nil
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return &DialError{Code: ErrUnauthorized, Message: "Not signed in", Hint: "Mint a token: groupboard token issue", Err: err}
		case http.StatusForbidden:
			return &DialError{Code: ErrForbidden, Message: "Not a collaborator on this project", Err: err}
		case http.StatusNotFound:
			return &DialError{Code: ErrRoomNotFound, Message: "Project not found", Err: err}
		}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) && errno == syscall.ECONNREFUSED {
		return &DialError{
			Code:    ErrConnectionRefused,
			Message: "Connection refused",
			Hint:    "Start the server: boardd",
			Err:     err,
		}
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &DialError{Code: ErrHandshake, Message: "Server did not accept the websocket handshake", Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return &DialError{Code: ErrServerUnreachable, Message: "Server unreachable", Hint: "Check server.url in the config", Err: err}
	}

	return &DialError{Code: ErrServerUnreachable, Message: "Could not join room", Err: err}
}

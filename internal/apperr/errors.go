// Package apperr holds the error values shared across receitas packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDraft    = errors.New("invalid draft")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoActiveDraft   = errors.New("no draft is being edited")
	ErrNothingToSubmit = errors.New("nothing to submit")

	// ErrNetwork means the request never reached the server or no response came back.
	ErrNetwork = errors.New("network failure")
	// ErrServer means the server answered with a non-success status or an unreadable body.
	ErrServer = errors.New("server error")
)

// StatusError is a non-success response from the remote recipe API.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrServer) match status errors.
func (e *StatusError) Unwrap() error { return ErrServer }

// IsRemote reports whether err came from talking to the remote API.
func IsRemote(err error) bool {
	return errors.Is(err, ErrNetwork) || errors.Is(err, ErrServer)
}

// Package location reads the location history (stays and moves) stored in a
// Personium box and manages the public/private visibility of each record's
// exported file. Requests are authenticated from a shared session.State and
// re-authenticated through an injected refresher when the token expires.
package location

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status classification.
// Use errors.Is(err, location.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("location: bad request")
	ErrUnauthorized = errors.New("location: unauthorized")
	ErrForbidden    = errors.New("location: forbidden")
	ErrNotFound     = errors.New("location: not found")
	ErrConflict     = errors.New("location: conflict")
	ErrServerError  = errors.New("location: server error")

	// ErrBusy is returned by Toggle while another toggle of the same file is
	// still running.
	ErrBusy = errors.New("location: visibility change already in progress")
)

// APIError wraps a sentinel error with the HTTP status and the response body.
type APIError struct {
	StatusCode int
	Message    string
	Err        error // sentinel, for errors.Is(); nil for unclassified codes
}

func (e *APIError) Error() string {
	return fmt.Sprintf("location: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}

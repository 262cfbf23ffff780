// Package auth obtains and refreshes access credentials for a Personium cell
// and publishes them into a shared session.State. Two login managers are
// provided: PasswordGrantManager (OAuth2 resource owner password credentials
// against the cell's token endpoint) and DelegatedLoginManager (a login
// brokered by an intermediary endpoint on the hosting web app).
//
// Each manager de-duplicates its own login and refresh calls: while one is in
// flight, further callers join it instead of issuing another request.
package auth

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them; the typed errors below
// unwrap to both the sentinel and the underlying cause.
var (
	ErrNetwork            = errors.New("auth: network error")
	ErrBackend            = errors.New("auth: backend error")
	ErrMissingCredential  = errors.New("auth: no stored credential to refresh")
	ErrEndpointResolution = errors.New("auth: storage endpoint resolution failed")
	ErrLoginFailed        = errors.New("auth: login failed")
	ErrRefreshFailed      = errors.New("auth: refresh failed")
)

// NetworkError is a transport-level failure (DNS, connection refused, reset).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("auth: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNetwork, e.Err}
}

// BackendError is a non-success HTTP status or a response body that could
// not be decoded. Err holds the decode error when there is one.
type BackendError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: HTTP %d: %s: %v", e.StatusCode, e.Message, e.Err)
	}

	return fmt.Sprintf("auth: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *BackendError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBackend}
	}

	return []error{ErrBackend, e.Err}
}

// Flow names used in FlowError.
const (
	FlowLogin   = "login"
	FlowRefresh = "refresh"
)

// FlowError is what Login and Refresh return on failure. It unwraps to
// ErrLoginFailed or ErrRefreshFailed and to the cause.
type FlowError struct {
	Manager string
	Flow    string
	Err     error
}

func (e *FlowError) Error() string {
	return fmt.Sprintf("auth: %s %s: %v", e.Manager, e.Flow, e.Err)
}

func (e *FlowError) Unwrap() []error {
	sentinel := ErrLoginFailed
	if e.Flow == FlowRefresh {
		sentinel = ErrRefreshFailed
	}

	return []error{sentinel, e.Err}
}

// maxErrorBody caps how much of an error response is kept in BackendError.
const maxErrorBody = 4096

// ABOUTME: Error types returned by the API client
// ABOUTME: Separates backend rejections, connectivity failures, and missing sessions

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotAuthenticated is returned without a network call when an
	// operation needs a session and there is no token.
	ErrNotAuthenticated = errors.New("not authenticated: run 'yts login' first")

	// ErrUnauthorized matches any APIError with status 401.
	ErrUnauthorized = errors.New("session expired or invalid")
)

// ErrorResponse represents an API error payload
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// Is reports 401 responses as ErrUnauthorized
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// TransportError means the backend could not be reached or the request was cut short
type TransportError struct {
	BaseURL string
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsConnectivity reports whether err is a transport-level failure
func IsConnectivity(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// BackendMessage returns the backend's error text when err is an APIError
func BackendMessage(err error) (string, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message, true
	}
	return "", false
}

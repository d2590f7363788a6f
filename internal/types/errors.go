package types

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError represents an OpenAI-compatible error response.
type APIError struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Error type constants
const (
	ErrorTypeInvalidRequest = "invalid_request_error"
	ErrorTypeRateLimit      = "rate_limit_error"
	ErrorTypeUpstream       = "upstream_error"
	ErrorTypeServer         = "server_error"
)

// NewAPIError creates a new API error.
func NewAPIError(message, errType string) *APIError {
	return &APIError{
		Error: ErrorDetail{
			Message: message,
			Type:    errType,
		},
	}
}

// WriteError writes an API error to the response writer.
func WriteError(w http.ResponseWriter, statusCode int, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(err)
}

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(message, ErrorTypeInvalidRequest)
}

// ErrRateLimit creates a rate limit error.
func ErrRateLimit(message string) *APIError {
	return NewAPIError(message, ErrorTypeRateLimit)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(message, ErrorTypeServer)
}

// ErrUpstream is the sentinel every upstream failure unwraps to.
var ErrUpstream = errors.New("upstream request failed")

// UpstreamError describes a failed upstream call.
// StatusCode is the upstream HTTP status, or 0 when no response was received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s: %s", e.Provider, msg)
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstream}
	}
	return []error{ErrUpstream, e.Err}
}

// ClassifyError maps a relay error to the downstream status and error body.
func ClassifyError(err error) (int, *APIError) {
	if errors.Is(err, ErrMalformedBody) {
		return http.StatusBadRequest, ErrInvalidRequest(err.Error())
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge,
			ErrInvalidRequest(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}

	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		if upstream.StatusCode == http.StatusTooManyRequests {
			return http.StatusTooManyRequests, ErrRateLimit("upstream rate limit exceeded")
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout, NewAPIError("upstream timed out", ErrorTypeUpstream)
		}
		return http.StatusBadGateway, NewAPIError("upstream request failed", ErrorTypeUpstream)
	}

	return http.StatusInternalServerError, ErrServer("internal error")
}

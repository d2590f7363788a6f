package types

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "malformed body",
			err:        fmt.Errorf("%w: bad", ErrMalformedBody),
			wantStatus: http.StatusBadRequest,
			wantType:   ErrorTypeInvalidRequest,
		},
		{
			name:       "body too large",
			err:        fmt.Errorf("failed to read request body: %w", &http.MaxBytesError{Limit: 1024}),
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   ErrorTypeInvalidRequest,
		},
		{
			name:       "upstream auth failure",
			err:        &UpstreamError{Provider: "openai", StatusCode: http.StatusUnauthorized, Message: "bad key"},
			wantStatus: http.StatusBadGateway,
			wantType:   ErrorTypeUpstream,
		},
		{
			name:       "upstream rate limited",
			err:        &UpstreamError{Provider: "openai", StatusCode: http.StatusTooManyRequests},
			wantStatus: http.StatusTooManyRequests,
			wantType:   ErrorTypeRateLimit,
		},
		{
			name:       "upstream network failure",
			err:        &UpstreamError{Provider: "openai", Err: errors.New("connection refused")},
			wantStatus: http.StatusBadGateway,
			wantType:   ErrorTypeUpstream,
		},
		{
			name:       "upstream timeout",
			err:        &UpstreamError{Provider: "openai", Err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantType:   ErrorTypeUpstream,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   ErrorTypeServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, apiErr := ClassifyError(tt.err)
			if status != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, status)
			}
			if apiErr.Error.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, apiErr.Error.Type)
			}
		})
	}
}

func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("stream: %w", &UpstreamError{Provider: "openai", Err: cause})

	if !errors.Is(err, ErrUpstream) {
		t.Error("expected error to match ErrUpstream")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to match its cause")
	}
	if !strings.Contains(err.Error(), "dial tcp: refused") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, ErrInvalidRequest("bad body"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	want := `{"error":{"message":"bad body","type":"invalid_request_error"}}`
	if got := strings.TrimSpace(rec.Body.String()); got != want {
		t.Errorf("expected body %s, got %s", want, got)
	}
}

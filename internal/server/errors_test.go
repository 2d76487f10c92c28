package server

import (
	"errors"
	"testing"

	"github.com/localrivet/mdpack/internal/errortypes"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "not found",
			err:  errortypes.NotFoundError(errors.New("absent"), "no document"),
			want: StatusCodeNotFound,
		},
		{
			name: "invalid argument",
			err:  errortypes.InvalidArgumentError(errors.New("empty"), "bad input"),
			want: StatusCodeInvalidArgument,
		},
		{
			name: "session not ready",
			err:  errortypes.SessionNotReadyError(errors.New("closed"), "no session"),
			want: StatusCodeSessionNotReady,
		},
		{
			name: "transport",
			err:  errortypes.TransportError(errors.New("broken pipe"), "channel failed"),
			want: StatusCodeTransportError,
		},
		{
			name: "timeout",
			err:  errortypes.TimeoutError(errors.New("deadline"), "call timed out"),
			want: StatusCodeTimeout,
		},
		{
			name: "config",
			err:  errortypes.ConfigError(errors.New("bad value"), "config invalid"),
			want: StatusCodeConfigError,
		},
		{
			name: "internal",
			err:  errortypes.InternalError(errors.New("boom"), "unexpected"),
			want: StatusCodeInternalError,
		},
		{
			name: "plain error",
			err:  errors.New("generic error"),
			want: StatusCodeUnknownError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.want {
				t.Errorf("ErrorCode() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorToResponse(t *testing.T) {
	appErr := errortypes.NotFoundError(errors.New("absent"), "no document").
		WithField("doc_id", "abc")

	resp := ErrorToResponse(appErr)
	if resp.Status != "error" {
		t.Errorf("Expected status 'error', got %q", resp.Status)
	}
	if resp.Code != StatusCodeNotFound {
		t.Errorf("Expected code %s, got %s", StatusCodeNotFound, resp.Code)
	}
	if resp.Message != appErr.Error() {
		t.Errorf("Expected message %q, got %q", appErr.Error(), resp.Message)
	}
	if resp.Details["doc_id"] != "abc" {
		t.Errorf("Expected doc_id detail, got %v", resp.Details)
	}
	if resp.StackTrace == "" {
		t.Error("Expected a stack trace for application errors")
	}

	plain := ErrorToResponse(errors.New("generic"))
	if plain.Code != StatusCodeUnknownError {
		t.Errorf("Expected unknown code for plain errors, got %s", plain.Code)
	}
	if plain.Details != nil {
		t.Errorf("Plain errors carry no details, got %v", plain.Details)
	}
}

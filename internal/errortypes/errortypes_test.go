package errortypes

import (
	"errors"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	base := errors.New("base error")
	appErr := InvalidArgumentError(base, "validation failed")

	if appErr.Type != ErrorTypeInvalidArgument {
		t.Errorf("Expected type %s, got %s", ErrorTypeInvalidArgument, appErr.Type)
	}
	if !strings.Contains(appErr.Error(), "validation failed") ||
		!strings.Contains(appErr.Error(), "base error") {
		t.Errorf("Error message incorrect: %s", appErr.Error())
	}
	if !errors.Is(appErr, base) {
		t.Error("AppError should unwrap to the base error")
	}
}

func TestAppErrorFields(t *testing.T) {
	appErr := NotFoundError(errors.New("absent"), "no document").
		WithField("doc_id", "abc").
		WithFields(map[string]interface{}{"attempt": 2})

	if appErr.Fields["doc_id"] != "abc" {
		t.Errorf("Expected doc_id field, got %v", appErr.Fields)
	}
	if appErr.Fields["attempt"] != 2 {
		t.Errorf("Expected attempt field, got %v", appErr.Fields)
	}
	if appErr.StackInfo == "" {
		t.Error("Expected a captured stack trace")
	}
}

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		err       error
		predicate func(error) bool
		name      string
	}{
		{NotFoundError(errors.New("x"), "m"), IsNotFoundError, "not found"},
		{InvalidArgumentError(errors.New("x"), "m"), IsInvalidArgumentError, "invalid argument"},
		{SessionNotReadyError(errors.New("x"), "m"), IsSessionNotReadyError, "session not ready"},
		{TransportError(errors.New("x"), "m"), IsTransportError, "transport"},
		{TimeoutError(errors.New("x"), "m"), IsTimeoutError, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.predicate(tt.err) {
				t.Errorf("Predicate failed to identify its own type")
			}
			if tt.predicate(errors.New("plain")) {
				t.Errorf("Predicate matched a plain error")
			}
		})
	}

	// Predicates see through wrapping
	wrapped := TransportError(NotFoundError(errors.New("x"), "inner"), "outer")
	if !IsTransportError(wrapped) {
		t.Error("Outer type should win for a wrapped AppError")
	}
}

func TestNilUnderlyingError(t *testing.T) {
	appErr := InternalError(nil, "something broke")
	if appErr.Err == nil {
		t.Error("Nil underlying error should be replaced with a placeholder")
	}
	if appErr.Error() == "" {
		t.Error("Error text should never be empty")
	}
}

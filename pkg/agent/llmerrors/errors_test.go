package llmerrors

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		retryable bool
	}{
		{ErrorTypeRateLimit, true},
		{ErrorTypeTransient, true},
		{ErrorTypeEmptyResponse, true},
		{ErrorTypeUnknown, true},
		{ErrorTypeAuth, false},
		{ErrorTypeBadPrompt, false},
		{ErrorTypeUnavailable, false},
	}
	for _, tt := range tests {
		e := NewError(tt.errorType, "test")
		if e.IsRetryable() != tt.retryable {
			t.Errorf("%s: IsRetryable() = %v, want %v", tt.errorType, e.IsRetryable(), tt.retryable)
		}
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	e := NewErrorWithCause(ErrorTypeTransient, cause, "request failed")

	if !errors.Is(e, cause) {
		t.Error("expected wrapped cause to be found by errors.Is")
	}

	var llmErr *Error
	wrapped := fmt.Errorf("step failed: %w", e)
	if !errors.As(wrapped, &llmErr) {
		t.Fatal("expected errors.As to find *Error through wrapping")
	}
	if llmErr.Type != ErrorTypeTransient {
		t.Errorf("expected transient type, got %s", llmErr.Type)
	}
}

func TestIsAndTypeOf(t *testing.T) {
	e := NewErrorWithStatus(ErrorTypeRateLimit, 429, "quota exceeded")

	if !Is(e, ErrorTypeRateLimit) {
		t.Error("Is should match the classified type")
	}
	if Is(e, ErrorTypeAuth) {
		t.Error("Is matched the wrong type")
	}
	if TypeOf(e) != ErrorTypeRateLimit {
		t.Errorf("TypeOf = %s, want rate_limit", TypeOf(e))
	}
	if TypeOf(errors.New("plain")) != ErrorTypeUnknown {
		t.Error("unclassified errors should map to unknown")
	}
}

func TestIsUnavailable(t *testing.T) {
	e := NewError(ErrorTypeUnavailable, "provider down")
	if !IsUnavailable(fmt.Errorf("wrapped: %w", e)) {
		t.Error("expected IsUnavailable through wrapping")
	}
	if IsUnavailable(NewError(ErrorTypeTransient, "blip")) {
		t.Error("transient error reported as unavailable")
	}
}

func TestGetRetryConfigFallsBackToUnknown(t *testing.T) {
	e := &Error{Type: ErrorType(99)}
	cfg := e.GetRetryConfig()
	if cfg.MaxRetries != DefaultRetryConfigs[ErrorTypeUnknown].MaxRetries {
		t.Errorf("unexpected fallback config: %+v", cfg)
	}
}

func TestErrorMessageFormats(t *testing.T) {
	withMessage := NewError(ErrorTypeAuth, "invalid key")
	if got := withMessage.Error(); got != "LLM error (auth): invalid key" {
		t.Errorf("unexpected message: %q", got)
	}

	withStatus := &Error{Type: ErrorTypeRateLimit, StatusCode: 429}
	if got := withStatus.Error(); got != "LLM error (rate_limit): status 429" {
		t.Errorf("unexpected message: %q", got)
	}
}

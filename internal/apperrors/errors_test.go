package apperrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPublicMessage_UsesSafeMessage(t *testing.T) {
	sentinel := errors.New("SECRET_VALUE")
	err := New(KindAuth, "safe auth error", sentinel)
	if got := PublicMessage(err); got != "safe auth error" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "safe auth error")
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected wrapped cause to be retained for internal matching")
	}
}

func TestKindOfAndRetryable(t *testing.T) {
	err := New(KindRateLimit, "", errors.New("boom"))
	kind, ok := KindOf(err)
	if !ok || kind != KindRateLimit {
		t.Fatalf("KindOf() = (%q, %v), want (%q, true)", kind, ok, KindRateLimit)
	}
	if !IsRetryable(err) {
		t.Fatalf("expected rate_limit error to be retryable")
	}
}

func TestPublicMessage_NonAppError(t *testing.T) {
	err := errors.New("plain")
	if got := PublicMessage(err); got != "plain" {
		t.Fatalf("PublicMessage() = %q, want %q", got, "plain")
	}
}

func TestInvalidInput(t *testing.T) {
	err := InvalidInput("", errors.New("width is 0"))
	if !IsInvalidInput(err) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatalf("invalid input must not be retryable")
	}
	if got := PublicMessage(err); got != "The input could not be processed." {
		t.Fatalf("PublicMessage() = %q", got)
	}
	if IsInvalidInput(errors.New("plain")) {
		t.Fatalf("plain errors are not invalid input")
	}
}

func TestKinds(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{KindTransient, true},
		{KindRateLimit, true},
		{KindValidation, true},
		{KindAuth, false},
		{KindBadRequest, false},
		{KindInvalidInput, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			err := New(tc.kind, "", errors.New("upstream said no"))
			if got := IsRetryable(err); got != tc.retryable {
				t.Fatalf("IsRetryable() = %v, want %v", got, tc.retryable)
			}
			if !Is(err, tc.kind) {
				t.Fatalf("Is(%q) = false", tc.kind)
			}
			msg := PublicMessage(err)
			if msg != DefaultMessage(tc.kind) || msg == fallbackMessage || strings.Contains(msg, "upstream said no") {
				t.Fatalf("PublicMessage() = %q", msg)
			}
		})
	}
}

func TestWrappedError(t *testing.T) {
	inner := New(KindAuth, "", errors.New("401"))
	err := fmt.Errorf("gemini: %w", inner)
	if !Is(err, KindAuth) || Is(err, KindTransient) {
		t.Fatalf("Is() did not see through wrapping: %v", err)
	}
	if got := PublicMessage(err); got != DefaultMessage(KindAuth) {
		t.Fatalf("PublicMessage() = %q", got)
	}
	if DefaultMessage(Kind("mystery")) != fallbackMessage {
		t.Fatal("unknown kinds should use the fallback message")
	}
	var nilErr *Error
	if nilErr.Error() != "" || nilErr.Unwrap() != nil {
		t.Fatal("nil *Error should be inert")
	}
}

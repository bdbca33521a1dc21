package errors

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"ErrNotFound", ErrNotFound, "resource not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrDeviceUnavailable", ErrDeviceUnavailable, "device unavailable"},
		{"ErrInternal", ErrInternal, "internal error"},
		{"ErrConnectionFailed", ErrConnectionFailed, "connection failed"},
		{"ErrLinkLost", ErrLinkLost, "link lost"},
		{"ErrCapabilityUnsupported", ErrCapabilityUnsupported, "capability unsupported"},
		{"ErrInvalidState", ErrInvalidState, "invalid state transition"},
		{"ErrNotConnected", ErrNotConnected, "not connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expected {
				t.Errorf("%s.Error() = %q, want %q", tt.name, tt.err.Error(), tt.expected)
			}
		})
	}
}

func TestLogErrorAndReturn(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	t.Run("returns nil for nil error", func(t *testing.T) {
		result := LogErrorAndReturn(logger, nil, "test message")
		if result != nil {
			t.Errorf("LogErrorAndReturn(nil) = %v, want nil", result)
		}
	})

	t.Run("returns the same error", func(t *testing.T) {
		err := errors.New("test error")
		result := LogErrorAndReturn(logger, err, "test message", "key", "value")
		if result != err {
			t.Errorf("LogErrorAndReturn returned different error")
		}
	})
}

func TestWrapErrorf(t *testing.T) {
	t.Run("returns nil for nil error", func(t *testing.T) {
		result := WrapErrorf(nil, "context %s", "value")
		if result != nil {
			t.Errorf("WrapErrorf(nil) = %v, want nil", result)
		}
	})

	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := WrapErrorf(original, "context %s", "value")

		if !strings.Contains(wrapped.Error(), "context value") {
			t.Errorf("wrapped error should contain context: %v", wrapped)
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should unwrap to original")
		}
	})
}

func TestConstructorsAndPredicates(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		is       func(error) bool
		message  string
	}{
		{"NotFoundf", NotFoundf("input %s", "Cam9"), ErrNotFound, IsNotFound, "input Cam9"},
		{"InvalidInputf", InvalidInputf("field %s is required", "address"), ErrInvalidInput, IsInvalidInput, "field address is required"},
		{"DeviceUnavailablef", DeviceUnavailablef("switcher %s timeout", "atem"), ErrDeviceUnavailable, IsDeviceUnavailable, "switcher atem timeout"},
		{"ConnectionFailedf", ConnectionFailedf("dial %s", "10.0.0.5"), ErrConnectionFailed, IsConnectionFailed, "dial 10.0.0.5"},
		{"LinkLostf", LinkLostf("probe failed"), ErrLinkLost, IsLinkLost, "probe failed"},
		{"CapabilityUnsupportedf", CapabilityUnsupportedf("mix transition"), ErrCapabilityUnsupported, IsCapabilityUnsupported, "mix transition"},
		{"InvalidStatef", InvalidStatef("session is %s", "connecting"), ErrInvalidState, IsInvalidState, "session is connecting"},
		{"NotConnectedf", NotConnectedf("auto transition"), ErrNotConnected, IsNotConnected, "auto transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.err.Error(), tt.message) {
				t.Errorf("%s error message incorrect: %v", tt.name, tt.err)
			}
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("%s should wrap %v", tt.name, tt.sentinel)
			}
			if !tt.is(tt.err) {
				t.Errorf("predicate for %s returned false", tt.name)
			}
			if !tt.is(fmt.Errorf("outer: %w", tt.err)) {
				t.Errorf("predicate for %s should see through extra wrapping", tt.name)
			}
		})
	}
}

func TestPredicatesRejectOtherErrors(t *testing.T) {
	if IsNotFound(ErrInvalidInput) {
		t.Error("IsNotFound(ErrInvalidInput) = true, want false")
	}
	if IsLinkLost(ErrConnectionFailed) {
		t.Error("IsLinkLost(ErrConnectionFailed) = true, want false")
	}
	if IsNotConnected(ErrInvalidState) {
		t.Error("IsNotConnected(ErrInvalidState) = true, want false")
	}
	if IsCapabilityUnsupported(nil) {
		t.Error("IsCapabilityUnsupported(nil) = true, want false")
	}
}

func TestInternalf(t *testing.T) {
	err := Internalf("unexpected state: %s", "nil pointer")

	if !strings.Contains(err.Error(), "unexpected state: nil pointer") {
		t.Errorf("Internalf error message incorrect: %v", err)
	}
	if !errors.Is(err, ErrInternal) {
		t.Error("Internalf should wrap ErrInternal")
	}
}

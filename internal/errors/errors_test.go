package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindUnknown, "unknown error"},
		{KindNotFound, "not found"},
		{KindInvalid, "invalid"},
		{KindPermission, "permission denied"},
		{KindIO, "I/O error"},
		{KindConfig, "configuration error"},
		{KindEnv, "environment error"},
		{KindInstall, "dependency install error"},
		{KindMux, "session manager error"},
		{KindLock, "lock error"},
		{KindTimeout, "timeout"},
		{Kind(999), "unknown error"}, // Unknown kind
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind.String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "with op and context",
			err:      &Error{Op: "test.Op", Context: "some context", Err: errors.New("underlying error")},
			expected: "test.Op: some context: underlying error",
		},
		{
			name:     "with op only",
			err:      &Error{Op: "test.Op", Err: errors.New("underlying error")},
			expected: "test.Op: underlying error",
		},
		{
			name:     "without op",
			err:      &Error{Err: errors.New("underlying error")},
			expected: "underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error.Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := errors.New("underlying error")
	err := &Error{Op: "test.Op", Err: underlying}

	if got := err.Unwrap(); got != underlying {
		t.Errorf("Error.Unwrap() = %v, want %v", got, underlying)
	}
}

func TestE(t *testing.T) {
	underlying := errors.New("boom")

	err := E(Op("launcher.Launch"), KindMux, "could not create session", underlying)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("E() did not return *Error, got %T", err)
	}
	if e.Op != "launcher.Launch" {
		t.Errorf("Op = %q, want %q", e.Op, "launcher.Launch")
	}
	if e.Kind != KindMux {
		t.Errorf("Kind = %v, want %v", e.Kind, KindMux)
	}
	if e.Context != "could not create session" {
		t.Errorf("Context = %q, want %q", e.Context, "could not create session")
	}
	if !errors.Is(err, underlying) {
		t.Error("errors.Is(err, underlying) = false, want true")
	}
}

func TestE_ContextOnly(t *testing.T) {
	err := E(Op("config.Validate"), KindInvalid, "empty session name")
	expected := "config.Validate: empty session name"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	err := LockHeld("guardbot")
	if !Is(err, KindLock) {
		t.Error("Is(LockHeld, KindLock) = false, want true")
	}
	if Is(err, KindMux) {
		t.Error("Is(LockHeld, KindMux) = true, want false")
	}
	if Is(errors.New("plain"), KindLock) {
		t.Error("Is(plain error, KindLock) = true, want false")
	}
}

func TestGetKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"env create", EnvCreateFailed("venv", errors.New("disk full")), KindEnv},
		{"install", DependencyInstallFailed("requirements.txt", errors.New("resolve")), KindInstall},
		{"mux unavailable", MuxUnavailable(errors.New("not found")), KindMux},
		{"session create", SessionCreateFailed("guardbot", errors.New("nope")), KindMux},
		{"lock held", LockHeld("guardbot"), KindLock},
		{"profile", ProfileNotFound("bot"), KindNotFound},
		{"wrapped", fmt.Errorf("outer: %w", ConfigInvalid("bad")), KindInvalid},
		{"plain", errors.New("plain"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetKind(tt.err); got != tt.expected {
				t.Errorf("GetKind() = %v, want %v", got, tt.expected)
			}
		})
	}
}

// Package errors provides structured error types for respawn.
// These errors provide context about what operation failed and where.
package errors

import (
	"errors"
	"fmt"
)

// Op describes an operation, usually as "package.function".
type Op string

// Kind categorizes the type of error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalid
	KindPermission
	KindIO
	KindConfig
	KindEnv
	KindInstall
	KindMux
	KindLock
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindPermission:
		return "permission denied"
	case KindIO:
		return "I/O error"
	case KindConfig:
		return "configuration error"
	case KindEnv:
		return "environment error"
	case KindInstall:
		return "dependency install error"
	case KindMux:
		return "session manager error"
	case KindLock:
		return "lock error"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown error"
	}
}

// Error is the structured error type for respawn.
type Error struct {
	Op      Op     // Operation that failed
	Kind    Kind   // Category of error
	Err     error  // Underlying error
	Context string // Additional context
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", e.Op, e.Context, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// E creates a new Error. Arguments can be:
// - Op: the operation name
// - Kind: the error kind
// - string: context message
// - error: the underlying error
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch a := arg.(type) {
		case Op:
			e.Op = a
		case Kind:
			e.Kind = a
		case string:
			e.Context = a
		case error:
			e.Err = a
		}
	}
	if e.Err == nil {
		e.Err = errors.New(e.Context)
		e.Context = ""
	}
	return e
}

// Is reports whether err is of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// GetKind returns the Kind of an error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Environment errors
func EnvCreateFailed(path string, err error) error {
	return E(Op("venv.Provision"), KindEnv, fmt.Sprintf("failed to create environment at %s", path), err)
}

func DependencyInstallFailed(manifest string, err error) error {
	return E(Op("venv.Provision"), KindInstall, fmt.Sprintf("failed to install dependencies from %s", manifest), err)
}

// Session manager errors
func MuxUnavailable(err error) error {
	return E(Op("tmux.Exists"), KindMux, "tmux is not installed or not reachable", err)
}

func SessionCreateFailed(name string, err error) error {
	return E(Op("tmux.Create"), KindMux, fmt.Sprintf("failed to create session %s", name), err)
}

func SessionKillFailed(name string, err error) error {
	return E(Op("tmux.Kill"), KindMux, fmt.Sprintf("failed to kill session %s", name), err)
}

// Lock errors
func LockHeld(name string) error {
	return E(Op("lock.Acquire"), KindLock, fmt.Sprintf("another respawn invocation holds the lock for session %s", name))
}

// Config errors
func ConfigLoadFailed(path string, err error) error {
	return E(Op("config.Load"), KindConfig, fmt.Sprintf("failed to load config from %s", path), err)
}

func ConfigInvalid(reason string) error {
	return E(Op("config.Validate"), KindInvalid, reason)
}

func ProfileNotFound(name string) error {
	return E(Op("config.Profile"), KindNotFound, fmt.Sprintf("profile %s not found", name))
}

// CLI prerequisite errors
func CLINotFound(name string) error {
	return E(Op("cli.Check"), KindNotFound, fmt.Sprintf("required CLI tool '%s' not found in PATH", name))
}

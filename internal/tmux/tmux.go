// Package tmux wraps the tmux session operations respawn needs: existence
// check, kill, and detached creation with a single named window. The surface
// is deliberately narrow so the launch pipeline can be tested against a fake.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	resperrors "github.com/akimenko/respawn/internal/errors"
	pexec "github.com/akimenko/respawn/internal/exec"
	"github.com/akimenko/respawn/internal/logger"
)

// GenerationVar is the tmux session environment variable holding the
// launcher-assigned generation marker. A fresh UUID per creation proves a
// relaunched session is a new instance, not the one that was killed.
const GenerationVar = "RESPAWN_GENERATION"

// validSessionNameRe validates session names to prevent shell injection.
// Dots and colons are excluded because tmux treats them as target syntax.
var validSessionNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Common errors
var (
	ErrNotInstalled       = errors.New("tmux not found in PATH")
	ErrSessionNotFound    = errors.New("session not found")
	ErrInvalidSessionName = errors.New("invalid session name")
)

// ValidateSessionName checks that a session name contains only safe characters.
func ValidateSessionName(name string) error {
	if name == "" || !validSessionNameRe.MatchString(name) {
		return fmt.Errorf("%w %q: must match %s", ErrInvalidSessionName, name, validSessionNameRe.String())
	}
	return nil
}

// Tmux wraps tmux operations over a command executor.
type Tmux struct {
	executor pexec.CommandExecutor
}

// New returns a Tmux wrapper using the real executor.
func New() *Tmux {
	return &Tmux{executor: pexec.NewRealExecutor()}
}

// NewWithExecutor returns a Tmux wrapper using the given executor.
// This is primarily used for testing.
func NewWithExecutor(e pexec.CommandExecutor) *Tmux {
	return &Tmux{executor: e}
}

// run executes a tmux subcommand and returns stdout.
func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	stdout, stderr, err := t.executor.Run(ctx, "", "tmux", args...)
	if err != nil {
		return "", t.wrapError(err, stderr, args)
	}
	return stdout, nil
}

// wrapError classifies tmux failures by stderr content.
func (t *Tmux) wrapError(err error, stderr string, args []string) error {
	stderr = strings.TrimSpace(stderr)

	if strings.Contains(stderr, "session not found") ||
		strings.Contains(stderr, "can't find session") {
		return ErrSessionNotFound
	}

	if stderr != "" {
		return fmt.Errorf("tmux %s: %s", args[0], stderr)
	}
	return fmt.Errorf("tmux %s: %w", args[0], err)
}

// noServer reports whether stderr indicates the tmux server is not running,
// which for queries simply means no sessions exist yet.
func noServer(stderr string) bool {
	return strings.Contains(stderr, "no server running") ||
		strings.Contains(stderr, "error connecting to")
}

// Installed reports whether the tmux binary is on PATH.
func (t *Tmux) Installed() bool {
	_, err := t.executor.LookPath("tmux")
	return err == nil
}

// Exists reports whether a session with the given name exists.
// Returns a KindMux error if tmux itself is unavailable.
func (t *Tmux) Exists(ctx context.Context, name string) (bool, error) {
	if err := ValidateSessionName(name); err != nil {
		return false, err
	}
	if _, err := t.executor.LookPath("tmux"); err != nil {
		return false, resperrors.MuxUnavailable(ErrNotInstalled)
	}

	_, stderr, err := t.executor.Run(ctx, "", "tmux", "has-session", "-t", exact(name))
	if err == nil {
		return true, nil
	}
	// has-session exits non-zero both when the session is missing and when
	// no server is running at all; neither is a failure of the query.
	stderr = strings.TrimSpace(stderr)
	if noServer(stderr) ||
		strings.Contains(stderr, "can't find session") ||
		strings.Contains(stderr, "session not found") ||
		stderr == "" {
		return false, nil
	}
	return false, resperrors.MuxUnavailable(fmt.Errorf("tmux has-session: %s", stderr))
}

// Kill terminates the named session. The running command receives whatever
// tmux sends on kill-session; there is no graceful shutdown beyond that.
func (t *Tmux) Kill(ctx context.Context, name string) error {
	if err := ValidateSessionName(name); err != nil {
		return err
	}
	log := logger.ComponentLogger("tmux")
	log.Info("killing session", "name", name)
	if _, err := t.run(ctx, "kill-session", "-t", exact(name)); err != nil {
		return resperrors.SessionKillFailed(name, err)
	}
	return nil
}

// Create starts a new detached session containing one window named window,
// running command with dir as the working directory.
func (t *Tmux) Create(ctx context.Context, name, window, dir, command string) error {
	if err := ValidateSessionName(name); err != nil {
		return err
	}
	log := logger.ComponentLogger("tmux")
	log.Info("creating session", "name", name, "window", window, "dir", dir)

	args := []string{"new-session", "-d", "-s", name, "-n", window}
	if dir != "" {
		args = append(args, "-c", dir)
	}
	args = append(args, command)
	if _, err := t.run(ctx, args...); err != nil {
		return resperrors.SessionCreateFailed(name, err)
	}
	return nil
}

// SetGeneration stamps the session with a generation marker.
func (t *Tmux) SetGeneration(ctx context.Context, name, generation string) error {
	if err := ValidateSessionName(name); err != nil {
		return err
	}
	_, err := t.run(ctx, "set-environment", "-t", exact(name), GenerationVar, generation)
	return err
}

// Generation reads the session's generation marker. Returns an empty string
// for sessions that were not created by respawn.
func (t *Tmux) Generation(ctx context.Context, name string) (string, error) {
	if err := ValidateSessionName(name); err != nil {
		return "", err
	}
	out, err := t.run(ctx, "show-environment", "-t", exact(name), GenerationVar)
	if err != nil {
		return "", nil
	}
	// Output format: RESPAWN_GENERATION=<uuid>
	if _, after, ok := strings.Cut(strings.TrimSpace(out), "="); ok {
		return after, nil
	}
	return "", nil
}

// Windows returns the window names of the given session.
func (t *Tmux) Windows(ctx context.Context, name string) ([]string, error) {
	if err := ValidateSessionName(name); err != nil {
		return nil, err
	}
	out, err := t.run(ctx, "list-windows", "-t", exact(name), "-F", "#{window_name}")
	if err != nil {
		return nil, err
	}
	var windows []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			windows = append(windows, line)
		}
	}
	return windows, nil
}

// ListSessions returns the names of all sessions. A missing server means
// there are no sessions.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	stdout, stderr, err := t.executor.Run(ctx, "", "tmux", "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if noServer(stderr) {
			return nil, nil
		}
		return nil, t.wrapError(err, stderr, []string{"list-sessions"})
	}
	var names []string
	for _, line := range strings.Split(stdout, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// exact prefixes a session name with "=" so tmux matches it exactly rather
// than by prefix.
func exact(name string) string {
	return "=" + name
}

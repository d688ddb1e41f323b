// Package launcher implements the session (re)creation sequence: take the
// per-session lock, bootstrap the runtime environment if needed, kill any
// existing session, and create a fresh detached one running the profile's
// command. The sequence is an explicit ordered pipeline of fallible steps
// that short-circuits on first failure; nothing is retried or rolled back.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/akimenko/respawn/internal/config"
	"github.com/akimenko/respawn/internal/lock"
	"github.com/akimenko/respawn/internal/logger"
	"github.com/akimenko/respawn/internal/tmux"
	"github.com/akimenko/respawn/internal/venv"
)

// Multiplexer is the narrow session-manager capability set the pipeline
// needs. *tmux.Tmux implements it.
type Multiplexer interface {
	Exists(ctx context.Context, name string) (bool, error)
	Kill(ctx context.Context, name string) error
	Create(ctx context.Context, name, window, dir, command string) error
	SetGeneration(ctx context.Context, name, generation string) error
}

// Provisioner bootstraps a runtime environment. *venv.Provisioner
// implements it.
type Provisioner interface {
	NeedsProvision(path, manifest string, mode venv.VerifyMode) (bool, string, error)
	Provision(ctx context.Context, path, label, manifest string) error
}

// Releaser releases a held lock.
type Releaser interface {
	Release() error
}

// Result describes a completed launch.
type Result struct {
	Profile     string
	Session     string
	Generation  string // marker stamped on the new session
	Killed      bool   // an existing session was torn down
	Provisioned bool   // the environment was (re)created this run
}

// Launcher runs the launch pipeline. Collaborators are swappable for tests.
type Launcher struct {
	Mux            Multiplexer
	NewProvisioner func(interpreter string) Provisioner
	AcquireLock    func(session string) (Releaser, error)
	NewGeneration  func() string
	Out            io.Writer // operator status lines
}

// New returns a Launcher wired to tmux, venv, and the session lock.
func New() *Launcher {
	return &Launcher{
		Mux:            tmux.New(),
		NewProvisioner: func(interpreter string) Provisioner { return venv.New(interpreter) },
		AcquireLock:    func(session string) (Releaser, error) { return lock.Acquire(session) },
		NewGeneration:  func() string { return uuid.New().String() },
		Out:            os.Stdout,
	}
}

// step is one named fallible stage of the pipeline.
type step struct {
	name string
	run  func(ctx context.Context) error
}

// Launch runs the full sequence for the given profile. On failure the
// session may be left killed but not recreated; that partial state is
// visible, not hidden.
func (l *Launcher) Launch(ctx context.Context, name string, p config.Profile) (*Result, error) {
	log := logger.WithProfile(name)
	log.Info("launch starting", "session", p.Session, "command", p.Command)

	res := &Result{Profile: name, Session: p.Session}

	rel, err := l.AcquireLock(p.Session)
	if err != nil {
		return nil, err
	}
	defer rel.Release()

	steps := []step{
		{"ensure environment", func(ctx context.Context) error { return l.ensureEnv(ctx, name, p, res) }},
		{"kill existing session", func(ctx context.Context) error { return l.killExisting(ctx, p, res) }},
		{"create session", func(ctx context.Context) error { return l.createSession(ctx, p, res) }},
	}

	for _, s := range steps {
		if err := s.run(ctx); err != nil {
			log.Error("launch aborted", "step", s.name, "error", err)
			return nil, err
		}
	}

	log.Info("launch complete", "session", p.Session, "generation", res.Generation)
	return res, nil
}

// ensureEnv bootstraps the profile's environment when it is missing (or, in
// hash verify mode, stale). Profiles without an environment skip this step.
func (l *Launcher) ensureEnv(ctx context.Context, name string, p config.Profile, res *Result) error {
	if !p.Env.Enabled() {
		return nil
	}

	prov := l.NewProvisioner(p.Env.Interpreter)
	need, reason, err := prov.NeedsProvision(p.Env.Path, p.Env.Manifest, p.Env.Verify)
	if err != nil {
		return err
	}
	if !need {
		l.statusf("environment %s found", p.Env.Path)
		return nil
	}

	l.statusf("%s: provisioning %s from %s", reason, p.Env.Path, p.Env.Manifest)
	if err := prov.Provision(ctx, p.Env.Path, p.Session, p.Env.Manifest); err != nil {
		return err
	}
	res.Provisioned = true
	return nil
}

// killExisting tears down a session with the target name. Destructive:
// whatever the old session's command held in memory is gone.
func (l *Launcher) killExisting(ctx context.Context, p config.Profile, res *Result) error {
	exists, err := l.Mux.Exists(ctx, p.Session)
	if err != nil {
		return err
	}
	if !exists {
		l.statusf("session %s not found", p.Session)
		return nil
	}

	l.statusf("session %s found, killing", p.Session)
	if err := l.Mux.Kill(ctx, p.Session); err != nil {
		return err
	}
	res.Killed = true
	return nil
}

func (l *Launcher) createSession(ctx context.Context, p config.Profile, res *Result) error {
	if err := l.Mux.Create(ctx, p.Session, p.Window, p.Workdir, p.Command); err != nil {
		return err
	}

	gen := l.NewGeneration()
	if err := l.Mux.SetGeneration(ctx, p.Session, gen); err != nil {
		// The session is up; a missing marker only degrades status output.
		logger.Warn("failed to stamp generation on %s: %v", p.Session, err)
	} else {
		res.Generation = gen
	}

	l.statusf("session %s created (window %s)", p.Session, p.Window)
	return nil
}

// Down kills the profile's session if it exists. Used by the down command;
// unlike Launch it is a no-op when nothing is running.
func (l *Launcher) Down(ctx context.Context, p config.Profile) (bool, error) {
	rel, err := l.AcquireLock(p.Session)
	if err != nil {
		return false, err
	}
	defer rel.Release()

	exists, err := l.Mux.Exists(ctx, p.Session)
	if err != nil {
		return false, err
	}
	if !exists {
		l.statusf("session %s not found", p.Session)
		return false, nil
	}
	if err := l.Mux.Kill(ctx, p.Session); err != nil {
		return false, err
	}
	l.statusf("session %s killed", p.Session)
	return true, nil
}

func (l *Launcher) statusf(format string, args ...interface{}) {
	if l.Out == nil {
		return
	}
	fmt.Fprintf(l.Out, format+"\n", args...)
}

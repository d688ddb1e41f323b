package launcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/akimenko/respawn/internal/config"
	resperrors "github.com/akimenko/respawn/internal/errors"
	"github.com/akimenko/respawn/internal/venv"
)

// recorder tracks the order of collaborator calls across fakes.
type recorder struct {
	ops []string
}

func (r *recorder) add(op string) { r.ops = append(r.ops, op) }

type fakeMux struct {
	rec        *recorder
	exists     bool
	existsErr  error
	killErr    error
	createErr  error
	generation string
}

func (m *fakeMux) Exists(ctx context.Context, name string) (bool, error) {
	m.rec.add("exists:" + name)
	return m.exists, m.existsErr
}

func (m *fakeMux) Kill(ctx context.Context, name string) error {
	m.rec.add("kill:" + name)
	if m.killErr == nil {
		m.exists = false
	}
	return m.killErr
}

func (m *fakeMux) Create(ctx context.Context, name, window, dir, command string) error {
	m.rec.add(fmt.Sprintf("create:%s:%s:%s", name, window, command))
	if m.createErr == nil {
		m.exists = true
	}
	return m.createErr
}

func (m *fakeMux) SetGeneration(ctx context.Context, name, generation string) error {
	m.rec.add("generation:" + name)
	m.generation = generation
	return nil
}

type fakeProv struct {
	rec          *recorder
	need         bool
	reason       string
	provisionErr error
}

func (p *fakeProv) NeedsProvision(path, manifest string, mode venv.VerifyMode) (bool, string, error) {
	p.rec.add("needs:" + path)
	return p.need, p.reason, nil
}

func (p *fakeProv) Provision(ctx context.Context, path, label, manifest string) error {
	p.rec.add("provision:" + path)
	return p.provisionErr
}

type fakeLock struct {
	rec *recorder
}

func (f *fakeLock) Release() error {
	f.rec.add("unlock")
	return nil
}

func newTestLauncher(rec *recorder, mux *fakeMux, prov *fakeProv) (*Launcher, *bytes.Buffer) {
	out := &bytes.Buffer{}
	l := &Launcher{
		Mux:            mux,
		NewProvisioner: func(interpreter string) Provisioner { return prov },
		AcquireLock: func(session string) (Releaser, error) {
			rec.add("lock:" + session)
			return &fakeLock{rec: rec}, nil
		},
		NewGeneration: func() string { return "gen-1" },
		Out:           out,
	}
	return l, out
}

func envProfile() config.Profile {
	return config.Profile{
		Session: "guardbot",
		Window:  "main",
		Workdir: "/srv/bot",
		Command: "venv/bin/python main.py",
		Env: config.Env{
			Path:        "/srv/bot/venv",
			Manifest:    "/srv/bot/requirements.txt",
			Interpreter: "python3",
			Verify:      venv.VerifyNone,
		},
	}
}

func bareProfile() config.Profile {
	p := envProfile()
	p.Env = config.Env{}
	return p
}

// Scenario A: no session, no environment. The environment is created, the
// dependency installed, and a fresh session started.
func TestLaunch_FreshEverything(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, exists: false}
	prov := &fakeProv{rec: rec, need: true, reason: "environment does not exist"}
	l, out := newTestLauncher(rec, mux, prov)

	res, err := l.Launch(context.Background(), "bot", envProfile())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	want := []string{
		"lock:guardbot",
		"needs:/srv/bot/venv",
		"provision:/srv/bot/venv",
		"exists:guardbot",
		"create:guardbot:main:venv/bin/python main.py",
		"generation:guardbot",
		"unlock",
	}
	if strings.Join(rec.ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v\nwant %v", rec.ops, want)
	}
	if !res.Provisioned {
		t.Error("Provisioned = false, want true")
	}
	if res.Killed {
		t.Error("Killed = true, want false")
	}
	if res.Generation != "gen-1" {
		t.Errorf("Generation = %q", res.Generation)
	}
	if !strings.Contains(out.String(), "session guardbot not found") {
		t.Errorf("status output = %q", out.String())
	}
}

// Scenario B: session and environment both exist. No provisioning happens;
// the existing session is killed and a new one created.
func TestLaunch_RecreateExisting(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, exists: true}
	prov := &fakeProv{rec: rec, need: false, reason: "environment exists"}
	l, out := newTestLauncher(rec, mux, prov)

	res, err := l.Launch(context.Background(), "bot", envProfile())
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}

	for _, op := range rec.ops {
		if strings.HasPrefix(op, "provision:") {
			t.Error("provision must not run when the environment exists")
		}
	}
	if !res.Killed {
		t.Error("Killed = false, want true")
	}
	if res.Provisioned {
		t.Error("Provisioned = true, want false")
	}
	if !strings.Contains(out.String(), "session guardbot found, killing") {
		t.Errorf("status output = %q", out.String())
	}

	// The new session carries a fresh generation marker: it is a new
	// instance, not the killed one.
	if mux.generation != "gen-1" {
		t.Errorf("generation on mux = %q", mux.generation)
	}
}

// Scenario C: dependency install fails. The session existence check and
// kill/create never run.
func TestLaunch_ProvisionFailureShortCircuits(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, exists: true}
	installErr := resperrors.DependencyInstallFailed("requirements.txt", errors.New("resolve failed"))
	prov := &fakeProv{rec: rec, need: true, reason: "environment does not exist", provisionErr: installErr}
	l, _ := newTestLauncher(rec, mux, prov)

	_, err := l.Launch(context.Background(), "bot", envProfile())
	if !resperrors.Is(err, resperrors.KindInstall) {
		t.Fatalf("error kind = %v, want KindInstall", resperrors.GetKind(err))
	}

	for _, op := range rec.ops {
		if strings.HasPrefix(op, "exists:") || strings.HasPrefix(op, "kill:") || strings.HasPrefix(op, "create:") {
			t.Errorf("session op %q ran after a provisioning failure", op)
		}
	}
	// The lock is still released on the failure path.
	if rec.ops[len(rec.ops)-1] != "unlock" {
		t.Errorf("last op = %q, want unlock", rec.ops[len(rec.ops)-1])
	}
}

// Scenario D: the session manager is unreachable at the existence check.
// The launch aborts; the environment step is not undone.
func TestLaunch_MuxUnavailable(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, existsErr: resperrors.MuxUnavailable(errors.New("tmux not found"))}
	prov := &fakeProv{rec: rec, need: true, reason: "environment does not exist"}
	l, _ := newTestLauncher(rec, mux, prov)

	res, err := l.Launch(context.Background(), "bot", envProfile())
	if !resperrors.Is(err, resperrors.KindMux) {
		t.Fatalf("error kind = %v, want KindMux", resperrors.GetKind(err))
	}
	if res != nil {
		t.Error("result should be nil on failure")
	}

	// Environment was provisioned before the failure and stays provisioned.
	provisioned := false
	for _, op := range rec.ops {
		if op == "provision:/srv/bot/venv" {
			provisioned = true
		}
		if strings.HasPrefix(op, "kill:") || strings.HasPrefix(op, "create:") {
			t.Errorf("op %q ran after the existence check failed", op)
		}
	}
	if !provisioned {
		t.Error("environment step should have run before the failure")
	}
}

func TestLaunch_NoEnvProfileSkipsProvisioning(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec}
	prov := &fakeProv{rec: rec}
	l, _ := newTestLauncher(rec, mux, prov)

	if _, err := l.Launch(context.Background(), "bot", bareProfile()); err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	for _, op := range rec.ops {
		if strings.HasPrefix(op, "needs:") || strings.HasPrefix(op, "provision:") {
			t.Errorf("environment op %q ran for a profile without env", op)
		}
	}
}

func TestLaunch_LockHeld(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec}
	prov := &fakeProv{rec: rec}
	l, _ := newTestLauncher(rec, mux, prov)
	l.AcquireLock = func(session string) (Releaser, error) {
		return nil, resperrors.LockHeld(session)
	}

	_, err := l.Launch(context.Background(), "bot", bareProfile())
	if !resperrors.Is(err, resperrors.KindLock) {
		t.Fatalf("error kind = %v, want KindLock", resperrors.GetKind(err))
	}
	if len(rec.ops) != 0 {
		t.Errorf("ops = %v, want none while the lock is held", rec.ops)
	}
}

// A kill that succeeds followed by a create that fails leaves the partial
// state visible: the launch errors out and nothing is rolled back.
func TestLaunch_CreateFailureAfterKill(t *testing.T) {
	rec := &recorder{}
	createErr := resperrors.SessionCreateFailed("guardbot", errors.New("command not found"))
	mux := &fakeMux{rec: rec, exists: true, createErr: createErr}
	prov := &fakeProv{rec: rec}
	l, _ := newTestLauncher(rec, mux, prov)

	_, err := l.Launch(context.Background(), "bot", bareProfile())
	if !resperrors.Is(err, resperrors.KindMux) {
		t.Fatalf("error kind = %v, want KindMux", resperrors.GetKind(err))
	}

	killed := false
	for _, op := range rec.ops {
		if op == "kill:guardbot" {
			killed = true
		}
	}
	if !killed {
		t.Error("kill should have run before the failed create")
	}
}

func TestDown(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, exists: true}
	prov := &fakeProv{rec: rec}
	l, out := newTestLauncher(rec, mux, prov)

	killed, err := l.Down(context.Background(), bareProfile())
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if !killed {
		t.Error("Down() = false, want true")
	}
	if !strings.Contains(out.String(), "session guardbot killed") {
		t.Errorf("status output = %q", out.String())
	}
}

func TestDown_NoSession(t *testing.T) {
	rec := &recorder{}
	mux := &fakeMux{rec: rec, exists: false}
	prov := &fakeProv{rec: rec}
	l, _ := newTestLauncher(rec, mux, prov)

	killed, err := l.Down(context.Background(), bareProfile())
	if err != nil {
		t.Fatalf("Down() error = %v", err)
	}
	if killed {
		t.Error("Down() = true, want false for a missing session")
	}
	for _, op := range rec.ops {
		if strings.HasPrefix(op, "kill:") {
			t.Error("kill must not run for a missing session")
		}
	}
}

// Package venv provisions Python virtual environments from a dependency
// manifest. Provisioning happens at most once per environment directory;
// an existing directory is trusted unless manifest verification is enabled.
package venv

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	resperrors "github.com/akimenko/respawn/internal/errors"
	pexec "github.com/akimenko/respawn/internal/exec"
	"github.com/akimenko/respawn/internal/logger"
)

// VerifyMode controls how an existing environment is judged.
type VerifyMode string

const (
	// VerifyNone trusts any existing environment directory, matching the
	// historical behavior: mere existence implies fully provisioned.
	VerifyNone VerifyMode = "none"
	// VerifyHash re-installs dependencies when the manifest no longer
	// matches the hash recorded at the last successful install.
	VerifyHash VerifyMode = "hash"
)

// stampName is the file inside the environment recording the manifest hash
// of the last successful install.
const stampName = ".respawn-manifest"

// DefaultInterpreter is used when the config does not name one.
const DefaultInterpreter = "python3"

// Provisioner creates virtual environments and installs manifests into them.
type Provisioner struct {
	executor    pexec.CommandExecutor
	interpreter string
}

// New returns a Provisioner using the real executor and the given
// interpreter (empty means DefaultInterpreter).
func New(interpreter string) *Provisioner {
	return NewWithExecutor(pexec.NewRealExecutor(), interpreter)
}

// NewWithExecutor returns a Provisioner over the given executor.
func NewWithExecutor(e pexec.CommandExecutor, interpreter string) *Provisioner {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	return &Provisioner{executor: e, interpreter: interpreter}
}

// Interpreter returns the configured interpreter name.
func (p *Provisioner) Interpreter() string {
	return p.interpreter
}

// Exists reports whether a directory exists at path.
func (p *Provisioner) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// ManifestHash returns the hex SHA-256 of the manifest file.
func ManifestHash(manifest string) (string, error) {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// NeedsProvision reports whether Provision should run for the environment,
// along with a human-readable reason for the decision.
func (p *Provisioner) NeedsProvision(path, manifest string, mode VerifyMode) (bool, string, error) {
	if !p.Exists(path) {
		return true, "environment does not exist", nil
	}
	if mode != VerifyHash {
		return false, "environment exists", nil
	}

	want, err := ManifestHash(manifest)
	if err != nil {
		return false, "", fmt.Errorf("failed to hash manifest %s: %w", manifest, err)
	}
	stamp, err := os.ReadFile(filepath.Join(path, stampName))
	if err != nil {
		if os.IsNotExist(err) {
			return true, "environment has no manifest stamp", nil
		}
		return false, "", err
	}
	if strings.TrimSpace(string(stamp)) != want {
		return true, "manifest changed since last install", nil
	}
	return false, "environment matches manifest", nil
}

// Provision creates the environment at path labeled with label, then
// installs the manifest with the environment's own pip. Failures are fatal
// and leave any partially created directory in place; callers decide whether
// that matters (see NeedsProvision with VerifyHash).
func (p *Provisioner) Provision(ctx context.Context, path, label, manifest string) error {
	log := logger.ComponentLogger("venv")
	log.Info("provisioning environment", "path", path, "label", label, "manifest", manifest)

	output, err := p.executor.CombinedOutput(ctx, "", p.interpreter, "-m", "venv", "--prompt", label, path)
	if err != nil {
		log.Error("environment creation failed", "path", path, "output", string(output))
		return resperrors.EnvCreateFailed(path, fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err))
	}

	// Calling the environment's own pip binary is equivalent to
	// activate + pip install + deactivate, without mutating this process.
	output, err = p.executor.CombinedOutput(ctx, "", PipPath(path), "install", "-r", manifest)
	if err != nil {
		log.Error("dependency install failed", "manifest", manifest, "output", string(output))
		return resperrors.DependencyInstallFailed(manifest, fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err))
	}

	if err := p.writeStamp(path, manifest); err != nil {
		// The install itself succeeded; a missing stamp only means a later
		// VerifyHash run will re-install.
		log.Warn("failed to write manifest stamp", "path", path, "error", err)
	}

	log.Info("environment provisioned", "path", path)
	return nil
}

func (p *Provisioner) writeStamp(path, manifest string) error {
	hash, err := ManifestHash(manifest)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(path, stampName), []byte(hash+"\n"), 0644)
}

// PipPath returns the pip binary inside the environment at path.
func PipPath(path string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(path, "Scripts", "pip.exe")
	}
	return filepath.Join(path, "bin", "pip")
}

// PythonPath returns the python binary inside the environment at path.
func PythonPath(path string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(path, "Scripts", "python.exe")
	}
	return filepath.Join(path, "bin", "python")
}

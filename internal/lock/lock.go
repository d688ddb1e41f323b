// Package lock provides per-session mutual exclusion between concurrent
// respawn invocations. Two launchers racing on the same session name would
// otherwise both observe "session exists", both kill it, and double-create.
package lock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	resperrors "github.com/akimenko/respawn/internal/errors"
	"github.com/akimenko/respawn/internal/logger"
)

// Lock is a held file lock keyed by session name.
type Lock struct {
	fl   *flock.Flock
	name string
}

// PathFor returns the lock file path for a session name.
func PathFor(name string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("respawn-%s.lock", name))
}

// Acquire takes the lock for the given session name without blocking.
// Returns a KindLock error if another invocation holds it.
func Acquire(name string) (*Lock, error) {
	path := PathFor(name)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, resperrors.E(resperrors.Op("lock.Acquire"), resperrors.KindIO, fmt.Sprintf("failed to lock %s", path), err)
	}
	if !ok {
		return nil, resperrors.LockHeld(name)
	}

	logger.Debug("lock acquired: %s", path)
	return &Lock{fl: fl, name: name}, nil
}

// Release drops the lock. The lock file itself is left behind; flock
// semantics make a leftover file harmless.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	logger.Debug("lock released: %s", l.fl.Path())
	return l.fl.Unlock()
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.fl.Path()
}

// StaleFiles returns respawn lock files in the temp directory that are not
// currently held by any process. Used by the clean command.
func StaleFiles() ([]string, error) {
	pattern := filepath.Join(os.TempDir(), "respawn-*.lock")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}

	var stale []string
	for _, path := range matches {
		fl := flock.New(path)
		ok, err := fl.TryLock()
		if err != nil {
			continue
		}
		if ok {
			fl.Unlock()
			stale = append(stale, path)
		}
	}
	return stale, nil
}

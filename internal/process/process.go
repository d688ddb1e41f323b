// Package process checks the external tools respawn depends on.
package process

import (
	"context"
	"time"

	pexec "github.com/akimenko/respawn/internal/exec"
	"github.com/akimenko/respawn/internal/logger"
)

// checkTimeout is the maximum time to wait for a tool probe. The launch
// itself applies no timeouts; doctor probes are bounded so a wedged server
// cannot hang the report.
const checkTimeout = 5 * time.Second

// Prerequisites holds the results of all prerequisite checks.
type Prerequisites struct {
	MuxInstalled         bool // tmux binary on PATH
	MuxResponsive        bool // tmux server queries work (a fresh server counts)
	InterpreterInstalled bool // configured Python interpreter on PATH
}

// Met reports whether every prerequisite passed.
func (p Prerequisites) Met() bool {
	return p.MuxInstalled && p.MuxResponsive && p.InterpreterInstalled
}

// Check runs all prerequisite checks with short-circuiting: later checks
// are skipped when earlier ones fail, since they depend on the previous step.
// interpreter is the configured Python interpreter; empty skips that check
// (profiles without an environment bootstrap don't need one).
func Check(executor pexec.CommandExecutor, interpreter string) Prerequisites {
	log := logger.ComponentLogger("process")
	result := Prerequisites{InterpreterInstalled: true}

	if _, err := executor.LookPath("tmux"); err != nil {
		log.Debug("tmux not found in PATH")
		return result
	}
	result.MuxInstalled = true

	result.MuxResponsive = muxResponsive(executor)
	if !result.MuxResponsive {
		log.Debug("tmux server probe failed")
		return result
	}

	if interpreter != "" {
		if _, err := executor.LookPath(interpreter); err != nil {
			log.Debug("interpreter not found in PATH", "interpreter", interpreter)
			result.InterpreterInstalled = false
		}
	}
	return result
}

// muxResponsive probes the tmux server. list-sessions against a server that
// was never started exits non-zero but proves the binary works, so only a
// hard execution failure (context timeout, exec error with no tmux
// diagnostics) counts as unresponsive.
func muxResponsive(executor pexec.CommandExecutor) bool {
	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	_, stderr, err := executor.Run(ctx, "", "tmux", "list-sessions")
	if err == nil {
		return true
	}
	return stderr != ""
}

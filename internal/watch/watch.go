// Package watch re-triggers a launch when the files a profile depends on
// change. Watches are placed on parent directories because editors and pip
// replace files rather than writing them in place.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/akimenko/respawn/internal/logger"
)

// DefaultDebounce batches the burst of events a single save produces.
const DefaultDebounce = 500 * time.Millisecond

// Run watches the given files and invokes fn after changes settle for the
// debounce interval. Blocks until ctx is canceled.
func Run(ctx context.Context, paths []string, debounce time.Duration, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	targets := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		targets[filepath.Clean(abs)] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
		logger.Debug("watching directory: %s", dir)
	}

	match := func(name string) bool {
		return targets[filepath.Clean(name)]
	}
	return loop(ctx, w.Events, w.Errors, match, debounce, fn)
}

// loop is the debounce core, split out so it can be driven by scripted
// channels in tests.
func loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, match func(string) bool, debounce time.Duration, fn func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !relevant(ev) || !match(ev.Name) {
				continue
			}
			logger.Debug("change detected: %s (%s)", ev.Name, ev.Op)
			if timer == nil {
				timer = time.NewTimer(debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					<-fire
				}
				timer.Reset(debounce)
			}

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)

		case <-fire:
			timer = nil
			fire = nil
			fn()
		}
	}
}

// relevant filters to operations that change file content or identity.
func relevant(ev fsnotify.Event) bool {
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

// Package notification provides cross-platform desktop notifications.
// It uses the beeep library to send notifications on macOS, Linux, and Windows.
package notification

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/akimenko/respawn/internal/logger"
)

// notifyFunc matches beeep.Notify and can be swapped for testing.
var notifyFunc func(title, message string, icon any) error = beeep.Notify

// Send sends a desktop notification with the given title and message.
func Send(title, message string) error {
	logger.Debug("Notification: sending - title=%q, message=%q", title, message)
	// Empty icon: beeep handles platform defaults.
	err := notifyFunc(title, message, "")
	if err != nil {
		logger.Warn("Notification: failed to send: %v", err)
	}
	return err
}

// LaunchCompleted notifies that a session was (re)created.
func LaunchCompleted(profile, session string) error {
	return Send("respawn", fmt.Sprintf("%s is up (session %s)", profile, session))
}

// LaunchFailed notifies that a launch aborted.
func LaunchFailed(profile string, err error) error {
	return Send("respawn", fmt.Sprintf("%s failed to launch: %v", profile, err))
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/config"
	"github.com/akimenko/respawn/internal/launcher"
	"github.com/akimenko/respawn/internal/notification"
)

var upCmd = &cobra.Command{
	Use:   "up [profile]",
	Short: "Kill and recreate the profile's session, provisioning its environment if missing",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)
}

func runUp(cmd *cobra.Command, args []string) error {
	cfg, name, p, err := loadProfile(args)
	if err != nil {
		return err
	}
	return launchProfile(cmd, cfg, name, p)
}

// launchProfile runs the launch pipeline for a resolved profile and reports
// the outcome. Shared by up and watch.
func launchProfile(cmd *cobra.Command, cfg *config.Config, name string, p config.Profile) error {
	l := launcher.New()
	l.Out = cmd.OutOrStdout()

	res, err := l.Launch(cmd.Context(), name, p)
	if err != nil {
		if cfg.Notifications {
			notification.LaunchFailed(name, err)
		}
		return err
	}

	if cfg.Notifications {
		notification.LaunchCompleted(name, res.Session)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is up %s\n",
		okMark(), labelStyle.Render(res.Session),
		mutedStyle.Render("(generation "+shortGen(res.Generation)+")"))
	return nil
}

// shortGen abbreviates a generation UUID for display.
func shortGen(gen string) string {
	if len(gen) > 8 {
		return gen[:8]
	}
	if gen == "" {
		return "unknown"
	}
	return gen
}

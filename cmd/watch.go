package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/config"
	"github.com/akimenko/respawn/internal/watch"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [profile]",
	Short: "Launch the profile and relaunch it whenever its watched files change",
	Long: `Watch launches the profile, then monitors the config file, the
environment manifest, and any paths listed under the profile's watch key.
When one of them changes, the session is killed and recreated with the
current configuration. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "How long changes must settle before relaunching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, name, p, err := loadProfile(args)
	if err != nil {
		return err
	}

	if err := launchProfile(cmd, cfg, name, p); err != nil {
		return err
	}

	paths := watchPaths(p)
	fmt.Fprintf(cmd.OutOrStdout(), "%s watching %d path(s), press Ctrl-C to stop\n",
		okMark(), len(paths))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch.Run(ctx, paths, watchDebounce, func() {
		// Reload so edits to respawn.yaml take effect on relaunch.
		cfg, name, p, err := loadProfile(args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failMark(), err)
			return
		}
		if err := launchProfile(cmd, cfg, name, p); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", failMark(), err)
		}
	})
}

// watchPaths collects the files whose changes should trigger a relaunch.
func watchPaths(p config.Profile) []string {
	path := configFile
	if path == "" {
		path = config.DefaultFileName
	}
	paths := []string{path}
	if p.Env.Enabled() {
		paths = append(paths, p.Env.Manifest)
	}
	return append(paths, p.Watch...)
}

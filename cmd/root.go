package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/config"
	"github.com/akimenko/respawn/internal/logger"
)

var (
	debugMode             bool
	quietMode             bool
	configFile            string
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "respawn",
	Short: "Idempotently (re)create tmux sessions running long-lived programs",
	Long: `Respawn deploys a program into a named, detached tmux session. If the
session already exists it is killed and recreated; if the profile declares a
Python environment, the environment is provisioned on first run. The end
state is always the same: one session, one window, one running command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to the respawn log file")
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Reduce logging to info level only")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to respawn.yaml (default: ./respawn.yaml)")
}

func initConfig() {
	if quietMode {
		logger.SetDebug(false)
	} else if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	defer logger.Close()
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("respawn %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("respawn %s\n", version)
}

// loadProfile loads the config file and resolves the profile named by the
// optional positional argument.
func loadProfile(args []string) (*config.Config, string, config.Profile, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, "", config.Profile{}, err
	}

	requested := ""
	if len(args) > 0 {
		requested = args[0]
	}
	name, p, err := cfg.Profile(requested)
	if err != nil {
		return nil, "", config.Profile{}, err
	}
	return cfg, name, p, nil
}

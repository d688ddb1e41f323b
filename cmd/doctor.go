package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/config"
	pexec "github.com/akimenko/respawn/internal/exec"
	"github.com/akimenko/respawn/internal/process"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that tmux and the configured interpreters are available",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	// The config may not exist yet; doctor still reports on tmux.
	interpreter := ""
	if cfg, err := config.Load(configFile); err == nil {
		interpreter = firstInterpreter(cfg)
	} else {
		fmt.Fprintf(out, "%s config: %s\n", warnMark(), err)
	}

	prereqs := process.Check(pexec.NewRealExecutor(), interpreter)

	report(out, "tmux installed", prereqs.MuxInstalled)
	report(out, "tmux responsive", prereqs.MuxResponsive)
	if interpreter != "" {
		report(out, fmt.Sprintf("%s installed", interpreter), prereqs.InterpreterInstalled)
	}

	if !prereqs.Met() {
		return fmt.Errorf("prerequisites not met")
	}
	fmt.Fprintf(out, "%s all prerequisites met\n", okMark())
	return nil
}

// firstInterpreter returns the interpreter of the first environment-enabled
// profile, preferring the default profile.
func firstInterpreter(cfg *config.Config) string {
	if _, p, err := cfg.Profile(""); err == nil && p.Env.Enabled() {
		return p.Env.Interpreter
	}
	for name := range cfg.Profiles {
		if _, p, err := cfg.Profile(name); err == nil && p.Env.Enabled() {
			return p.Env.Interpreter
		}
	}
	return ""
}

func report(out io.Writer, label string, ok bool) {
	if ok {
		fmt.Fprintf(out, "%s %s\n", okMark(), label)
	} else {
		fmt.Fprintf(out, "%s %s\n", failMark(), label)
	}
}

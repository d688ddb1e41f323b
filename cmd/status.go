package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/tmux"
	"github.com/akimenko/respawn/internal/venv"
)

var statusCmd = &cobra.Command{
	Use:   "status [profile]",
	Short: "Show the session and environment state for a profile",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, name, p, err := loadProfile(args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", labelStyle.Render(name))

	t := tmux.New()
	exists, err := t.Exists(cmd.Context(), p.Session)
	if err != nil {
		return err
	}

	if !exists {
		fmt.Fprintf(out, "  session %s: %s\n", p.Session, mutedStyle.Render("not running"))
	} else {
		fmt.Fprintf(out, "  session %s: %s\n", p.Session, successStyle.Render("running"))
		if windows, err := t.Windows(cmd.Context(), p.Session); err == nil {
			fmt.Fprintf(out, "  windows: %s\n", strings.Join(windows, ", "))
		}
		if gen, err := t.Generation(cmd.Context(), p.Session); err == nil && gen != "" {
			fmt.Fprintf(out, "  generation: %s\n", mutedStyle.Render(gen))
		}
	}

	if p.Env.Enabled() {
		prov := venv.New(p.Env.Interpreter)
		if !prov.Exists(p.Env.Path) {
			fmt.Fprintf(out, "  environment %s: %s\n", p.Env.Path, warnStyle.Render("missing"))
		} else if need, reason, err := prov.NeedsProvision(p.Env.Path, p.Env.Manifest, p.Env.Verify); err == nil && need {
			fmt.Fprintf(out, "  environment %s: %s\n", p.Env.Path, warnStyle.Render(reason))
		} else {
			fmt.Fprintf(out, "  environment %s: %s\n", p.Env.Path, successStyle.Render("provisioned"))
		}
	}

	return nil
}

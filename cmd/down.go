package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/launcher"
)

var downCmd = &cobra.Command{
	Use:   "down [profile]",
	Short: "Kill the profile's session if it is running",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDown,
}

func init() {
	rootCmd.AddCommand(downCmd)
}

func runDown(cmd *cobra.Command, args []string) error {
	_, _, p, err := loadProfile(args)
	if err != nil {
		return err
	}

	l := launcher.New()
	l.Out = cmd.OutOrStdout()

	killed, err := l.Down(cmd.Context(), p)
	if err != nil {
		return err
	}
	if killed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is down\n", okMark(), labelStyle.Render(p.Session))
	}
	return nil
}

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akimenko/respawn/internal/lock"
	"github.com/akimenko/respawn/internal/logger"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove respawn log files and stale lock files",
	Long: `Removes the respawn debug log and any lock files left behind by
launches that were killed before releasing them. Lock files held by a
running launch are left alone.

It will prompt for confirmation before proceeding unless the --yes flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	return runCleanWithReader(os.Stdin)
}

// runCleanWithReader allows injecting a reader for testing
func runCleanWithReader(input io.Reader) error {
	stale, err := lock.StaleFiles()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error finding stale lock files: %v\n", err)
	}

	fmt.Println("This will clean:")
	if len(stale) > 0 {
		fmt.Printf("  - %d stale lock file(s)\n", len(stale))
		for _, p := range stale {
			fmt.Printf("      %s\n", p)
		}
	}
	fmt.Printf("  - respawn log files in %s\n", "/tmp")

	if !skipConfirm {
		if !confirm(input, "Continue?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	locksCleared := 0
	for _, p := range stale {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error removing %s: %v\n", p, err)
			continue
		}
		locksCleared++
	}

	fmt.Println()
	fmt.Println("Cleaned:")
	if logsCleared > 0 {
		fmt.Printf("  - %d log file(s) removed\n", logsCleared)
	}
	if locksCleared > 0 {
		fmt.Printf("  - %d stale lock file(s) removed\n", locksCleared)
	}
	if logsCleared == 0 && locksCleared == 0 {
		fmt.Println("  - nothing to remove")
	}

	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

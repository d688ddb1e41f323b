package cmd

import "charm.land/lipgloss/v2"

// Output styles for operator-facing status lines.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")) // Green
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")) // Red
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")) // Amber
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")) // Gray
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

func okMark() string {
	return successStyle.Render("✓")
}

func failMark() string {
	return errorStyle.Render("✗")
}

func warnMark() string {
	return warnStyle.Render("!")
}

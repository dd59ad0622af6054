package cmd

import (
	"charm.land/lipgloss/v2"
)

// Output styles for human-readable command output. JSON output bypasses
// these entirely.
var (
	styleSuccess = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#22C55E"))

	styleError = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F43F5E"))

	styleDim = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94A3B8"))

	styleHeading = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#14B8A6"))
)

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/prior-it/hermes/views"
)

var (
	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#139DFF")).
			Align(lipgloss.Center)
	StyleError    = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC2626"))
	StyleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	StyleDefault  = lipgloss.NewStyle().Foreground(lipgloss.NoColor{})
	StyleEvent    = lipgloss.NewStyle().Foreground(lipgloss.Color("#525252"))
	StyleViewport = lipgloss.NewStyle().Border(lipgloss.RoundedBorder(), true)
)

// entryLine formats a single inspected directory entry.
func entryLine(entry views.Entry) string {
	switch entry.Status {
	case views.StatusLoaded:
		return StyleOK.Render("✓ ") + entry.Name
	case views.StatusInvalid:
		return StyleError.Render(fmt.Sprintf("✗ %s: %v", entry.Name, entry.Err))
	case views.StatusDirectory:
		return StyleEvent.Render(fmt.Sprintf("- %s/ (directory, skipped)", entry.Name))
	default:
		return StyleEvent.Render(fmt.Sprintf("- %s (%s, skipped)", entry.Name, entry.Status))
	}
}

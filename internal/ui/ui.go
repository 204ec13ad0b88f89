// Package ui holds the console output helpers used by the CLI surface.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

func ShowHeader(title string) {
	rule := strings.Repeat("─", len(title)+2)
	fmt.Printf(" %s\n %s\n %s\n", mutedStyle.Render(rule), headerStyle.Render(title), mutedStyle.Render(rule))
}

func ShowSuccess(format string, args ...interface{}) {
	fmt.Printf(" %s %s\n", successStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func ShowError(msg string, err error) {
	if err != nil {
		fmt.Printf(" %s %s: %v\n", errorStyle.Render("✗"), msg, err)
	} else {
		fmt.Printf(" %s %s\n", errorStyle.Render("✗"), msg)
	}
}

func ShowWarning(format string, args ...interface{}) {
	fmt.Printf(" %s %s\n", warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func ShowInfo(format string, args ...interface{}) {
	fmt.Printf(" %s\n", fmt.Sprintf(format, args...))
}

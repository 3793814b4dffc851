package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("39")
	colorAccent  = lipgloss.Color("170")
	colorMuted   = lipgloss.Color("241")
	colorDanger  = lipgloss.Color("196")
	colorSuccess = lipgloss.Color("42")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Padding(0, 1)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().Foreground(colorMuted)
	statusKeyStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	selectedStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorPrimary)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorDanger).Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(colorSuccess)
)

func formatShortcut(key, desc string) string {
	return statusKeyStyle.Render(key) + " " + desc
}

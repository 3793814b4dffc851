package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the active scene inside the title/status chrome.
func (m Model) View() string {
	var content string
	switch m.scene {
	case SceneClasses:
		content = m.renderClasses()
	case SceneTiers:
		content = m.renderTiers()
	case SceneAppeals:
		content = m.renderAppeals()
	case SceneResults:
		content = m.renderResults()
	default:
		content = "Unknown scene"
	}

	if m.forecasting {
		content = fmt.Sprintf("%s %s\n\n%s",
			m.spin.View(),
			labelStyle.Render("Calculating forecast..."),
			content)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		content,
		m.renderMessageLine(),
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := titleStyle.Render("ratecast - property tax revenue explorer")
	crumb := m.scene.String()
	if m.scene == SceneTiers && m.tiers.className != "" {
		crumb = fmt.Sprintf("%s / %s", crumb, m.tiers.className)
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitleStyle.Render(crumb))
}

// renderMessageLine shows the primary error when one is set, otherwise the
// transient status note.
func (m Model) renderMessageLine() string {
	if m.errMsg != "" {
		return errorStyle.Render("  " + m.errMsg)
	}
	if m.statusMsg != "" {
		return successStyle.Render("  " + m.statusMsg)
	}
	return ""
}

func (m Model) renderStatusBar() string {
	shortcuts := []string{
		formatShortcut("p", "classes"),
		formatShortcut("a", "appeals"),
		formatShortcut("v", "results"),
		formatShortcut("f", "forecast"),
		formatShortcut("x", "averaging"),
		formatShortcut("D", "restore defaults"),
		formatShortcut("q", "quit"),
	}
	return statusBarStyle.Width(max(m.width, 0)).Render(strings.Join(shortcuts, " • "))
}

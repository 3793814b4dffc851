package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ratecast/internal/domain"
	"ratecast/internal/output"
	"ratecast/internal/tiers"
)

// appealsModel edits per-class appeal values. Appeals are session state:
// they ride along on forecast requests but are never persisted.
type appealsModel struct {
	names   []string
	cursor  int
	input   textinput.Model
	editing bool

	appeals    domain.Appeals
	exemptions domain.Exemptions
}

func newAppealsModel() appealsModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 20
	ti.Width = 16
	return appealsModel{input: ti}
}

// sync rebuilds the row set. Classes come from the policy so every class
// is editable even before it has an appeal value.
func (a *appealsModel) sync(policy domain.Policy, appeals domain.Appeals, exemptions domain.Exemptions) {
	if policy != nil {
		a.names = policy.ClassNames()
	}
	a.appeals = appeals
	a.exemptions = exemptions
	if a.cursor >= len(a.names) {
		a.cursor = len(a.names) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (m Model) updateAppeals(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.appeals.editing {
		switch msg.String() {
		case "esc":
			m.appeals.editing = false
			m.appeals.input.Blur()
			return m, nil

		case "enter":
			raw := m.appeals.input.Value()
			m.appeals.editing = false
			m.appeals.input.Blur()
			if m.appeals.cursor < len(m.appeals.names) {
				name := m.appeals.names[m.appeals.cursor]
				m.store.UpdateAppeal(name, tiers.ParseRate(raw))
				m.appeals.appeals = m.store.Appeals()
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.appeals.input, cmd = m.appeals.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "up", "k":
		if m.appeals.cursor > 0 {
			m.appeals.cursor--
		}
		return m, nil

	case "down", "j":
		if m.appeals.cursor < len(m.appeals.names)-1 {
			m.appeals.cursor++
		}
		return m, nil

	case "enter":
		if m.appeals.cursor >= len(m.appeals.names) {
			return m, nil
		}
		name := m.appeals.names[m.appeals.cursor]
		m.appeals.input.SetValue(fmt.Sprintf("%.0f", m.appeals.appeals[name]))
		m.appeals.input.CursorEnd()
		m.appeals.editing = true
		return m, m.appeals.input.Focus()
	}

	return m, nil
}

func (m Model) renderAppeals() string {
	if len(m.appeals.names) == 0 {
		return mutedStyle.Render("  Waiting for the policy and defaults...")
	}

	var sb strings.Builder
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %-28s %18s %22s", "Tax Class", "Appeal Value", "Exempt (data/handout)")))
	sb.WriteString("\n")

	for i, name := range m.appeals.names {
		valueCell := fmt.Sprintf("%18s", output.FormatCurrency(m.appeals.appeals[name]))
		if m.appeals.editing && i == m.appeals.cursor {
			valueCell = m.appeals.input.View()
		} else if i == m.appeals.cursor {
			valueCell = selectedStyle.Render(valueCell)
		}

		exemptCell := ""
		if ex, ok := m.appeals.exemptions[name]; ok {
			exemptCell = fmt.Sprintf("%10d / %d", ex.DataParcelCount, ex.FY2026ParcelCount)
		}

		sb.WriteString(fmt.Sprintf("  %-28s %s %22s\n", name, valueCell, exemptCell))
	}

	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  enter edit value • esc back"))
	return sb.String()
}

package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ratecast/internal/domain"
	"ratecast/internal/tiers"
)

// classesModel is the policy overview scene: one row per tax class with a
// summary of its rate rule.
type classesModel struct {
	names  []string
	cursor int
}

func newClassesModel() classesModel {
	return classesModel{}
}

func (c *classesModel) sync(policy domain.Policy) {
	c.names = policy.ClassNames()
	if c.cursor >= len(c.names) {
		c.cursor = len(c.names) - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
}

func (c classesModel) selected() (string, bool) {
	if c.cursor < 0 || c.cursor >= len(c.names) {
		return "", false
	}
	return c.names[c.cursor], true
}

func (m Model) updateClasses(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.classes.cursor > 0 {
			m.classes.cursor--
		}
		return m, nil

	case "down", "j":
		if m.classes.cursor < len(m.classes.names)-1 {
			m.classes.cursor++
		}
		return m, nil

	case "enter", "t":
		name, ok := m.classes.selected()
		if !ok {
			return m, nil
		}
		m.tiers.open(name)
		return m, navigateCmd(SceneTiers)
	}

	return m, nil
}

func (m Model) renderClasses() string {
	policy := m.store.Policy()
	if policy == nil {
		return mutedStyle.Render("  Waiting for the default policy...")
	}

	var sb strings.Builder
	for i, name := range m.classes.names {
		cp := policy[name]
		row := fmt.Sprintf("  %2d  %-28s %s", cp.Code, name, summarizeClassPolicy(cp))
		if i == m.classes.cursor {
			sb.WriteString(selectedStyle.Render("> " + row[2:]))
		} else {
			sb.WriteString(row)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  exemption averaging: %v", m.applyExemptionAverage)))
	return sb.String()
}

// summarizeClassPolicy gives the one-line rate summary shown in the class
// list, with exhaustive handling of both policy kinds.
func summarizeClassPolicy(cp domain.ClassPolicy) string {
	switch cp.Kind() {
	case domain.KindFlat:
		return fmt.Sprintf("flat %.2f per $1,000", cp.FlatRate())
	case domain.KindTiered:
		labels := tiers.Labels(cp.Tiers)
		return fmt.Sprintf("%d tiers (%s)", len(cp.Tiers), strings.Join(labels, ", "))
	default:
		return "unset"
	}
}

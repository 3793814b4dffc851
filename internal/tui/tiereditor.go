package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"ratecast/internal/domain"
	"ratecast/internal/tiers"
)

// Tier editor columns.
const (
	colRate = iota
	colUpTo
)

// tierEditorModel edits one class's rate rule. It never mutates tiers in
// place: every commit goes through internal/tiers and lands in the store as
// a whole new ClassPolicy.
type tierEditorModel struct {
	className string
	row       int
	col       int
	input     textinput.Model
	editing   bool
}

func newTierEditorModel() tierEditorModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 20
	ti.Width = 16
	return tierEditorModel{input: ti}
}

func (t *tierEditorModel) open(className string) {
	t.className = className
	t.row = 0
	t.col = colRate
	t.editing = false
}

func (t *tierEditorModel) syncCursor(policy domain.Policy) {
	cp, ok := policy[t.className]
	if !ok {
		t.row = 0
		return
	}
	if t.row >= len(cp.Tiers) {
		t.row = len(cp.Tiers) - 1
	}
	if t.row < 0 {
		t.row = 0
	}
}

func (m Model) updateTiers(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	policy := m.store.Policy()
	if policy == nil {
		return m, nil
	}
	cp, ok := policy[m.tiers.className]
	if !ok {
		return m, navigateCmd(SceneClasses)
	}

	if m.tiers.editing {
		return m.updateTierInput(msg, cp)
	}

	switch msg.String() {
	case "up", "k":
		if m.tiers.row > 0 {
			m.tiers.row--
		}
		return m, nil

	case "down", "j":
		if m.tiers.row < len(cp.Tiers)-1 {
			m.tiers.row++
		}
		return m, nil

	case "left", "h", "right", "l", "tab":
		if m.tiers.col == colRate {
			m.tiers.col = colUpTo
		} else {
			m.tiers.col = colRate
		}
		return m, nil

	case "enter":
		return m.beginTierEdit(cp)

	case "+", "n":
		next := tiers.AddTier(cp, m.cfg.BoundStep)
		m.store.UpdatePolicy(m.tiers.className, next)
		m.classes.sync(m.store.Policy())
		m.tiers.row = len(next.Tiers) - 1
		m.tiers.col = colRate
		return m, m.tierCountsCmd()

	case "-", "d":
		if cp.Kind() != domain.KindTiered {
			return m, nil
		}
		next, collapsed := tiers.RemoveTier(cp, m.tiers.row)
		m.store.UpdatePolicy(m.tiers.className, next)
		m.classes.sync(m.store.Policy())
		if collapsed {
			// The class is flat again; the tier editor closes.
			m.statusMsg = fmt.Sprintf("%s converted to a flat rate", m.tiers.className)
			return m, navigateCmd(SceneClasses)
		}
		m.tiers.syncCursor(m.store.Policy())
		return m, m.tierCountsCmd()
	}

	return m, nil
}

func (m Model) beginTierEdit(cp domain.ClassPolicy) (tea.Model, tea.Cmd) {
	switch cp.Kind() {
	case domain.KindFlat:
		m.tiers.input.SetValue(fmt.Sprintf("%.2f", cp.FlatRate()))

	case domain.KindTiered:
		ts := tiers.Sorted(cp.Tiers)
		if m.tiers.row >= len(ts) {
			return m, nil
		}
		tier := ts[m.tiers.row]
		if m.tiers.col == colUpTo {
			if tier.Unbounded() {
				m.statusMsg = "the top tier has no upper bound"
				return m, nil
			}
			m.tiers.input.SetValue(fmt.Sprintf("%d", *tier.UpTo))
		} else {
			m.tiers.input.SetValue(fmt.Sprintf("%.2f", tier.Rate))
		}
	}

	m.tiers.editing = true
	m.tiers.input.CursorEnd()
	return m, m.tiers.input.Focus()
}

func (m Model) updateTierInput(msg tea.KeyMsg, cp domain.ClassPolicy) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.tiers.editing = false
		m.tiers.input.Blur()
		return m, nil

	case "enter":
		raw := m.tiers.input.Value()
		m.tiers.editing = false
		m.tiers.input.Blur()
		return m.commitTierEdit(cp, raw)
	}

	var cmd tea.Cmd
	m.tiers.input, cmd = m.tiers.input.Update(msg)
	return m, cmd
}

func (m Model) commitTierEdit(cp domain.ClassPolicy, raw string) (tea.Model, tea.Cmd) {
	switch cp.Kind() {
	case domain.KindFlat:
		rate := tiers.ParseRate(raw)
		m.store.UpdatePolicy(m.tiers.className, domain.ClassPolicy{
			Code: cp.Code,
			Rate: domain.RatePtr(rate),
		})

	case domain.KindTiered:
		field := tiers.FieldRate
		if m.tiers.col == colUpTo {
			field = tiers.FieldUpTo
		}
		next := tiers.ChangeField(cp.Tiers, m.tiers.row, field, raw)
		m.store.UpdatePolicy(m.tiers.className, domain.ClassPolicy{
			Code:  cp.Code,
			Tiers: next,
		})
	}

	m.classes.sync(m.store.Policy())
	m.tiers.syncCursor(m.store.Policy())
	return m, m.tierCountsCmd()
}

func (m Model) renderTiers() string {
	policy := m.store.Policy()
	if policy == nil {
		return mutedStyle.Render("  No policy loaded.")
	}
	cp, ok := policy[m.tiers.className]
	if !ok {
		return mutedStyle.Render("  Unknown class.")
	}

	var sb strings.Builder
	sb.WriteString(labelStyle.Render("  " + m.tiers.className))
	sb.WriteString("\n\n")

	if cp.Kind() == domain.KindFlat {
		if m.tiers.editing {
			sb.WriteString(fmt.Sprintf("  Flat rate: %s per $1,000\n", m.tiers.input.View()))
		} else {
			sb.WriteString(selectedStyle.Render(fmt.Sprintf("  Flat rate: %.2f per $1,000", cp.FlatRate())))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(mutedStyle.Render("  enter edit rate • + convert to tiers • esc back"))
		return sb.String()
	}

	ts := tiers.Sorted(cp.Tiers)
	labels := tiers.Labels(ts)
	counts := m.tierCountRows(len(ts))

	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %-18s %12s %16s %s\n",
		"Bracket", "Rate", "Up to", countsHeader(counts))))

	for i, tier := range ts {
		rateCell := fmt.Sprintf("%12.2f", tier.Rate)
		boundCell := fmt.Sprintf("%16s", "no limit")
		if tier.UpTo != nil {
			boundCell = fmt.Sprintf("%16s", formatBound(*tier.UpTo))
		}

		if m.tiers.editing && i == m.tiers.row {
			if m.tiers.col == colRate {
				rateCell = m.tiers.input.View()
			} else {
				boundCell = m.tiers.input.View()
			}
		} else if i == m.tiers.row {
			if m.tiers.col == colRate {
				rateCell = selectedStyle.Render(rateCell)
			} else {
				boundCell = selectedStyle.Render(boundCell)
			}
		}

		row := fmt.Sprintf("  %-18s %s %s", labels[i], rateCell, boundCell)
		if i < len(counts) && counts[i] != "" {
			row += "  " + mutedStyle.Render(counts[i])
		}
		sb.WriteString(row)
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  enter edit • tab switch field • + add tier • - remove tier • esc back"))
	return sb.String()
}

// tierCountRows builds the optional per-tier comparison column from the
// last tier-parcel-counts response. Rows only render when the response
// lines up with the tier list; otherwise the column is absent.
func (m Model) tierCountRows(n int) []string {
	tc := m.store.TierCounts()
	if tc == nil {
		return nil
	}
	rows, ok := tc.CountsByClass[m.tiers.className]
	if !ok || len(rows) != n {
		return nil
	}
	out := make([]string, n)
	for i, r := range rows {
		out[i] = fmt.Sprintf("ref %d / cur %d", r.ReferenceCount, r.CurrentCount)
	}
	return out
}

func countsHeader(counts []string) string {
	if len(counts) == 0 {
		return ""
	}
	return "Parcels (reference / current)"
}

func formatBound(v int64) string {
	s := fmt.Sprintf("%d", v)
	var sb strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

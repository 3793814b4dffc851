package tui

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"ratecast/internal/output"
)

// resultsModel displays the last forecast. The heavy lifting is delegated
// to the same table formatter the CLI uses.
type resultsModel struct {
	compareFY string
}

func newResultsModel() resultsModel {
	return resultsModel{}
}

func (m Model) updateResults(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y":
		m.results.compareFY = m.nextComparisonYear()
		return m, nil
	}
	return m, nil
}

// nextComparisonYear cycles through the fiscal years present in the
// response, ending on "" (comparison off).
func (m Model) nextComparisonYear() string {
	resp := m.store.Results()
	if resp == nil || len(resp.ComparisonData) == 0 {
		return ""
	}

	years := make([]string, 0, len(resp.ComparisonData))
	for fy := range resp.ComparisonData {
		years = append(years, fy)
	}
	sort.Strings(years)

	current := m.results.compareFY
	if current == "" {
		return years[0]
	}
	for i, fy := range years {
		if fy == current {
			if i+1 < len(years) {
				return years[i+1]
			}
			return ""
		}
	}
	return ""
}

func (m Model) renderResults() string {
	resp := m.store.Results()
	if resp == nil {
		return mutedStyle.Render("  No forecast yet. Press f to submit one.")
	}

	f := &output.TableFormatter{}
	table, err := f.Format(resp, output.Options{CompareFY: m.results.compareFY})
	if err != nil {
		return errorStyle.Render("  " + err.Error())
	}

	var sb strings.Builder
	sb.WriteString(string(table))
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render("  y cycle comparison year • esc back"))
	return sb.String()
}

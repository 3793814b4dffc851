package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update routes messages to the root handlers and the active scene.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.forecasting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case NavigateMsg:
		m.prev = m.scene
		m.scene = msg.Scene
		m.statusMsg = ""
		if msg.Scene == SceneTiers {
			// Refresh the auxiliary comparison counts for the policy the
			// editor is about to show. Best effort.
			return m, m.tierCountsCmd()
		}
		return m, nil

	case PolicyLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.classes.sync(m.store.Policy())
		return m, nil

	case DefaultsLoadedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.appeals.sync(m.store.Policy(), m.store.Appeals(), m.store.Exemptions())
		return m, nil

	case ForecastCompleteMsg:
		m.forecasting = false
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
			return m, nil
		}
		m.errMsg = ""
		return m, navigateCmd(SceneResults)

	case TierCountsMsg:
		// Success or failure, the tier editor just re-reads the store on
		// the next render. Never surfaces into the error line.
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func navigateCmd(scene Scene) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Scene: scene} }
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// A focused text input owns the keyboard.
	if m.editing() {
		return m.updateScene(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "esc":
		if m.scene != SceneClasses {
			return m, navigateCmd(SceneClasses)
		}
		return m, nil

	case "p":
		if m.scene != SceneClasses {
			return m, navigateCmd(SceneClasses)
		}
		return m, nil

	case "a":
		if m.scene != SceneAppeals {
			m.appeals.sync(m.store.Policy(), m.store.Appeals(), m.store.Exemptions())
			return m, navigateCmd(SceneAppeals)
		}
		return m, nil

	case "v":
		if m.scene != SceneResults {
			return m, navigateCmd(SceneResults)
		}
		return m, nil

	case "f":
		if m.forecasting || !m.store.HasPolicy() {
			return m, nil
		}
		m.forecasting = true
		m.errMsg = ""
		// The forecast and the tier-count refresh run concurrently; only
		// the forecast reports into the primary error line.
		return m, tea.Batch(m.spin.Tick, m.forecastCmd(), m.tierCountsCmd())

	case "x":
		m.applyExemptionAverage = !m.applyExemptionAverage
		if m.applyExemptionAverage {
			m.statusMsg = "exemption averaging on"
		} else {
			m.statusMsg = "exemption averaging off"
		}
		return m, nil

	case "D":
		m.store.RestoreDefaultPolicy()
		if m.store.HasPolicy() {
			m.classes.sync(m.store.Policy())
			m.tiers.syncCursor(m.store.Policy())
			m.statusMsg = "restored default policy"
		}
		return m, nil
	}

	return m.updateScene(msg)
}

// editing reports whether the active scene has a focused text input.
func (m Model) editing() bool {
	switch m.scene {
	case SceneTiers:
		return m.tiers.editing
	case SceneAppeals:
		return m.appeals.editing
	default:
		return false
	}
}

func (m Model) updateScene(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.scene {
	case SceneClasses:
		return m.updateClasses(msg)
	case SceneTiers:
		return m.updateTiers(msg)
	case SceneAppeals:
		return m.updateAppeals(msg)
	case SceneResults:
		return m.updateResults(msg)
	}
	return m, nil
}

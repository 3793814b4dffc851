// Package tui is the interactive editor: browse tax classes, edit tiers
// and appeals, submit forecasts, and inspect results without leaving the
// terminal. All state lives in the injected store; the scenes only hold
// cursors and text inputs.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"ratecast/internal/config"
	"ratecast/internal/store"
)

// Model is the root bubbletea model.
type Model struct {
	store *store.Store
	cfg   config.Config

	scene Scene
	prev  Scene

	width  int
	height int

	classes classesModel
	tiers   tierEditorModel
	appeals appealsModel
	results resultsModel

	spin        spinner.Model
	forecasting bool

	applyExemptionAverage bool

	statusMsg string
	errMsg    string
}

// NewModel builds the root model around an existing store.
func NewModel(st *store.Store, cfg config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = selectedStyle

	return Model{
		store:                 st,
		cfg:                   cfg,
		scene:                 SceneClasses,
		classes:               newClassesModel(),
		tiers:                 newTierEditorModel(),
		appeals:               newAppealsModel(),
		results:               newResultsModel(),
		spin:                  sp,
		applyExemptionAverage: cfg.ApplyExemptionAverage,
	}
}

// Init kicks off the bootstrap fetches. Both requests run concurrently;
// each resolves into its own message.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchDefaultPolicyCmd(), m.fetchDefaultsCmd())
}

// Run starts the editor in the alternate screen.
func Run(st *store.Store, cfg config.Config) error {
	p := tea.NewProgram(NewModel(st, cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) fetchDefaultPolicyCmd() tea.Cmd {
	st, cfg := m.store, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		return PolicyLoadedMsg{Err: st.FetchDefaultPolicy(ctx)}
	}
}

func (m Model) fetchDefaultsCmd() tea.Cmd {
	st, cfg := m.store, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		return DefaultsLoadedMsg{Err: st.FetchDefaults(ctx)}
	}
}

func (m Model) forecastCmd() tea.Cmd {
	st, cfg := m.store, m.cfg
	apply := m.applyExemptionAverage
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		return ForecastCompleteMsg{Err: st.CalculateForecast(ctx, st.Policy(), st.Appeals(), apply)}
	}
}

func (m Model) tierCountsCmd() tea.Cmd {
	st, cfg := m.store, m.cfg
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout())
		defer cancel()
		return TierCountsMsg{Err: st.FetchTierParcelCounts(ctx, st.Policy())}
	}
}

package tui

// Scene identifies the screens of the editor.
type Scene int

const (
	SceneClasses Scene = iota
	SceneTiers
	SceneAppeals
	SceneResults
)

func (s Scene) String() string {
	switch s {
	case SceneClasses:
		return "Classes"
	case SceneTiers:
		return "Tiers"
	case SceneAppeals:
		return "Appeals"
	case SceneResults:
		return "Results"
	default:
		return "Unknown"
	}
}

// NavigateMsg switches to a different scene.
type NavigateMsg struct {
	Scene Scene
}

// PolicyLoadedMsg signals the default-policy fetch has finished. The store
// already holds the outcome; Err is surfaced for the error line.
type PolicyLoadedMsg struct {
	Err error
}

// DefaultsLoadedMsg signals the appeals/exemptions fetch has finished.
type DefaultsLoadedMsg struct {
	Err error
}

// ForecastCompleteMsg signals a forecast submission has finished.
type ForecastCompleteMsg struct {
	Err error
}

// TierCountsMsg signals the auxiliary tier-parcel-counts fetch has
// finished. Failures are deliberately silent: the comparison column simply
// stays empty.
type TierCountsMsg struct {
	Err error
}

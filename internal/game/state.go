// Package game drives encounters: a gauntlet of opponents, the interactive
// terminal loop and headless batch simulation.
package game

// Phase is where a session is in its gauntlet.
type Phase int

const (
	// PhaseIdle is before the first bout begins.
	PhaseIdle Phase = iota
	// PhaseFighting means an encounter is in progress.
	PhaseFighting
	// PhaseBoutWon is the pause after a won bout with more to come.
	PhaseBoutWon
	// PhaseCleared means every bout was won.
	PhaseCleared
	// PhaseFallen means a bout was lost or fled.
	PhaseFallen
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFighting:
		return "fighting"
	case PhaseBoutWon:
		return "bout_won"
	case PhaseCleared:
		return "cleared"
	case PhaseFallen:
		return "fallen"
	default:
		return "unknown"
	}
}

// Over reports whether the gauntlet has ended either way.
func (p Phase) Over() bool {
	return p == PhaseCleared || p == PhaseFallen
}

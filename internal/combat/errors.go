package combat

import "errors"

var (
	// ErrMissingCombatant is returned when a player or enemy is nil.
	ErrMissingCombatant = errors.New("combat: missing combatant")
	// ErrNoHealth is returned by Start when a combatant has no max HP.
	ErrNoHealth = errors.New("combat: combatant has no health")
	// ErrAlreadyStarted is returned by Start outside the not-started state.
	ErrAlreadyStarted = errors.New("combat: encounter already started")
	// ErrNotAwaiting is returned when a skill is submitted while the engine
	// is not waiting for the player.
	ErrNotAwaiting = errors.New("combat: not awaiting a player choice")
	// ErrInvalidSelection is returned for a skill that is not equipped, on
	// cooldown, locked or too expensive. The choice is offered again.
	ErrInvalidSelection = errors.New("combat: invalid skill selection")
	// ErrBusy is returned when a call overlaps a Tick or another submission.
	ErrBusy = errors.New("combat: engine busy")
)

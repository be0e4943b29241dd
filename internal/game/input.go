package game

import "github.com/gdamore/tcell/v2"

// ActionKind is what a key press asks the session to do.
type ActionKind int

const (
	ActionNone     ActionKind = iota
	ActionSkill               // Use the skill in Action.Slot
	ActionFlee                // Abandon the encounter
	ActionQuit                // Leave the game
	ActionContinue            // Acknowledge a result
)

// Action is a decoded key press.
type Action struct {
	Kind ActionKind
	Slot int // 0-based, for ActionSkill
}

// KeyAction maps a key event to an action. Digits 1-5 pick a skill slot,
// q flees and Esc or Ctrl-C quits. Enter and space continue.
func KeyAction(ev *tcell.EventKey) Action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return Action{Kind: ActionQuit}
	case tcell.KeyEnter:
		return Action{Kind: ActionContinue}
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r >= '1' && r <= '5':
			return Action{Kind: ActionSkill, Slot: int(r - '1')}
		case r == 'q' || r == 'Q':
			return Action{Kind: ActionFlee}
		case r == ' ':
			return Action{Kind: ActionContinue}
		}
	}
	return Action{Kind: ActionNone}
}

package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/samdwyer/repbattle/internal/gamedata"
)

// EventKind identifies an engine notification.
type EventKind int

// Within one turn, events are delivered grouped in this order:
// ActionBarUpdated, SkillUsed, DamageApplied, StatusApplied, Log.
const (
	EventCombatStarted EventKind = iota
	EventActionBarUpdated
	EventSkillUsed
	EventDamageApplied
	EventStatusApplied
	EventLog
	EventChoiceRequested
	EventCombatEnded
)

// String returns a human-readable event name.
func (k EventKind) String() string {
	switch k {
	case EventCombatStarted:
		return "combat_started"
	case EventActionBarUpdated:
		return "action_bar_updated"
	case EventSkillUsed:
		return "skill_used"
	case EventDamageApplied:
		return "damage_applied"
	case EventStatusApplied:
		return "status_applied"
	case EventLog:
		return "log"
	case EventChoiceRequested:
		return "choice_requested"
	case EventCombatEnded:
		return "combat_ended"
	default:
		return "unknown"
	}
}

// DamageResult describes one resolved hit.
type DamageResult struct {
	Source    *Character // Nil for DoT ticks
	Target    *Character
	SkillID   string // Skill, DoT source or passive that caused the damage
	Raw       int
	Amount    int // HP actually lost
	Absorbed  int // Soaked by the shield
	Dodged    bool
	Crit      bool
	Reflected bool // Counter stance or thorns damage
	Periodic  bool // DoT tick
	Killed    bool
}

// Event is a single engine notification. Which fields are set depends on
// Kind:
//
//	CombatStarted     Actor=player, Target=enemy
//	ActionBarUpdated  Actor
//	SkillUsed         Actor, Target, Skill
//	DamageApplied     Damage
//	StatusApplied     Target, Status
//	Log               Message
//	ChoiceRequested   Actor, Eligible
//	CombatEnded       Result, Actor=winner, Target=loser, Abandoned
type Event struct {
	Kind      EventKind
	Encounter uuid.UUID
	Elapsed   time.Duration
	Actor     *Character
	Target    *Character
	Skill     *gamedata.SkillDef
	Damage    DamageResult
	Status    StatusEffect
	Message   string
	Eligible  []*gamedata.SkillDef
	Result    Result
	Abandoned bool
}

// Listener receives engine events synchronously, on the goroutine driving
// the engine. Listeners must not call Tick or SubmitChosenSkill from inside
// HandleEvent; such calls are rejected as re-entrant.
type Listener interface {
	HandleEvent(ev Event)
}

// Multi fans events out to several listeners in order.
type Multi []Listener

// HandleEvent forwards ev to every non-nil listener.
func (m Multi) HandleEvent(ev Event) {
	for _, l := range m {
		if l != nil {
			l.HandleEvent(ev)
		}
	}
}

// Hooks is a Listener built from optional callbacks. Nil hooks are skipped,
// so observers only fill in what they care about.
type Hooks struct {
	OnCombatStarted    func(player, enemy *Character)
	OnActionBarUpdated func(c *Character)
	OnSkillUsed        func(user, target *Character, skill *gamedata.SkillDef)
	OnDamageApplied    func(d DamageResult)
	OnStatusApplied    func(target *Character, effect StatusEffect)
	OnLog              func(line string)
	OnChoiceRequested  func(player *Character, eligible []*gamedata.SkillDef)
	OnCombatEnded      func(result Result, winner, loser *Character, abandoned bool)
}

// HandleEvent dispatches ev to the matching hook.
func (h Hooks) HandleEvent(ev Event) {
	switch ev.Kind {
	case EventCombatStarted:
		if h.OnCombatStarted != nil {
			h.OnCombatStarted(ev.Actor, ev.Target)
		}
	case EventActionBarUpdated:
		if h.OnActionBarUpdated != nil {
			h.OnActionBarUpdated(ev.Actor)
		}
	case EventSkillUsed:
		if h.OnSkillUsed != nil {
			h.OnSkillUsed(ev.Actor, ev.Target, ev.Skill)
		}
	case EventDamageApplied:
		if h.OnDamageApplied != nil {
			h.OnDamageApplied(ev.Damage)
		}
	case EventStatusApplied:
		if h.OnStatusApplied != nil {
			h.OnStatusApplied(ev.Target, ev.Status)
		}
	case EventLog:
		if h.OnLog != nil {
			h.OnLog(ev.Message)
		}
	case EventChoiceRequested:
		if h.OnChoiceRequested != nil {
			h.OnChoiceRequested(ev.Actor, ev.Eligible)
		}
	case EventCombatEnded:
		if h.OnCombatEnded != nil {
			h.OnCombatEnded(ev.Result, ev.Actor, ev.Target, ev.Abandoned)
		}
	}
}

// Recorder keeps every event it receives. Useful for tests and replays.
type Recorder struct {
	Events []Event
}

// HandleEvent appends ev.
func (r *Recorder) HandleEvent(ev Event) {
	r.Events = append(r.Events, ev)
}

// Kinds returns the recorded event kinds in order.
func (r *Recorder) Kinds() []EventKind {
	kinds := make([]EventKind, len(r.Events))
	for i, ev := range r.Events {
		kinds[i] = ev.Kind
	}
	return kinds
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// Logs returns the recorded log lines.
func (r *Recorder) Logs() []string {
	var lines []string
	for _, ev := range r.Events {
		if ev.Kind == EventLog {
			lines = append(lines, ev.Message)
		}
	}
	return lines
}

// Last returns the most recent event of kind and whether one was found.
func (r *Recorder) Last(kind EventKind) (Event, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Kind == kind {
			return r.Events[i], true
		}
	}
	return Event{}, false
}

// Reset drops all recorded events.
func (r *Recorder) Reset() {
	r.Events = nil
}

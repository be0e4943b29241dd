package gamedata

// Trigger is the combat event that fires a passive.
type Trigger string

const (
	// TriggerAlways passives only contribute static bonuses.
	TriggerAlways      Trigger = "always"
	TriggerTurnStart   Trigger = "on_turn_start"
	TriggerDamageTaken Trigger = "on_damage_taken"
	TriggerKill        Trigger = "on_kill"
	TriggerDeath       Trigger = "on_death"
)

// PassiveKind selects the behavior a triggered passive runs.
type PassiveKind string

const (
	PassiveStatic               PassiveKind = ""
	PassiveRegenerate           PassiveKind = "regenerate"
	PassiveBurningFury          PassiveKind = "burning_fury"
	PassiveBloodlust            PassiveKind = "bloodlust"
	PassiveSecondWind           PassiveKind = "second_wind"
	PassiveOverwhelmingPressure PassiveKind = "overwhelming_pressure"
	PassiveThorns               PassiveKind = "thorns"
)

// PassiveDef defines a passive loaded from JSON.
//
// The bonus fields apply for as long as the passive is equipped regardless of
// the trigger; Fraction, Threshold, Stat, Magnitude and Duration parameterize
// the triggered behavior selected by Kind.
type PassiveDef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Trigger     Trigger     `json:"trigger"`
	Kind        PassiveKind `json:"kind,omitempty"`
	Class       string      `json:"class,omitempty"`

	CritBonus      float64 `json:"critBonus,omitempty"`
	StrDamageBonus float64 `json:"strDamageBonus,omitempty"`
	DefScaling     float64 `json:"defScaling,omitempty"`

	Fraction  float64 `json:"fraction,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Stat      Stat    `json:"stat,omitempty"`
	Magnitude float64 `json:"magnitude,omitempty"`
	Duration  int     `json:"duration,omitempty"`
}

// AllowedFor returns true if a combatant of the given class may equip the passive.
func (p *PassiveDef) AllowedFor(classID string) bool {
	return p.Class == "" || p.Class == classID
}

// PassivesFile represents the structure of passives.json.
type PassivesFile struct {
	Passives []PassiveDef `json:"passives"`
}

package gamedata

// =============================================================================
// SKILL SYSTEM DESIGN
// =============================================================================
//
// Skills are data-driven active abilities selected by the player or the enemy
// AI when their action meter fills. They are defined in skills.json and loaded
// once at startup into a Catalog; the combat engine never mutates them.
// Per-combatant state (cooldowns) lives on the combatant.
//
// 1. SkillType - what the skill does when it resolves:
//    - damage:  scaled hit against the opponent
//    - dot:     scaled hit that also leaves a damage-over-time effect
//    - buff:    attaches positive stat modifiers to the user
//    - debuff:  attaches negative stat modifiers to the opponent
//    - heal:    restores the user's HP (and may cleanse)
//    - shield:  grants an absorb pool that soaks damage before HP
//    - counter: enters a stance reflecting part of incoming damage
//
// 2. Scaling - five coefficients multiplied with the user's base stats:
//    raw = power + str*Str + end*End + agi*Agi + flx*Flx + sta*Sta
//
// 3. EffectSpec - every declared side effect has a concrete runtime
//    application; there are no log-only effects.
//
// JSON Schema:
// ------------
// {
//   "id": "power_punch",
//   "name": "Power Punch",
//   "type": "damage",
//   "class": "",
//   "cost": 100,
//   "cooldown": 2,
//   "power": 0,
//   "scaling": {"str": 1.0},
//   "unlockLevel": 1,
//   "ultimate": false,
//   "ignoreDefense": 0,
//   "effects": [
//     {"type": "debuff", "target": "opponent", "stat": "speed",
//      "magnitude": 0.3, "fraction": true, "duration": 2, "icon": "slow"}
//   ]
// }

// SkillType represents what a skill does.
type SkillType string

const (
	SkillDamage  SkillType = "damage"
	SkillBuff    SkillType = "buff"
	SkillDebuff  SkillType = "debuff"
	SkillHeal    SkillType = "heal"
	SkillShield  SkillType = "shield"
	SkillDOT     SkillType = "dot"
	SkillCounter SkillType = "counter"
)

// EffectType represents a side effect a skill applies.
type EffectType string

const (
	EffectBuff    EffectType = "buff"
	EffectDebuff  EffectType = "debuff"
	EffectDOT     EffectType = "dot"
	EffectHeal    EffectType = "heal"
	EffectShield  EffectType = "shield"
	EffectCleanse EffectType = "cleanse"
	EffectCounter EffectType = "counter"
)

// EffectTarget says who receives an effect.
type EffectTarget string

const (
	TargetSelf     EffectTarget = "self"
	TargetOpponent EffectTarget = "opponent"
)

// MaxSkillCost is the size of a full action meter.
const MaxSkillCost = 100

// Scaling holds per-stat damage or heal coefficients.
type Scaling struct {
	Str float64 `json:"str,omitempty"`
	End float64 `json:"end,omitempty"`
	Agi float64 `json:"agi,omitempty"`
	Flx float64 `json:"flx,omitempty"`
	Sta float64 `json:"sta,omitempty"`
}

// Apply returns the scaled contribution of s.
func (c Scaling) Apply(s Stats) float64 {
	return c.Str*float64(s.Strength) +
		c.End*float64(s.Endurance) +
		c.Agi*float64(s.Agility) +
		c.Flx*float64(s.Flexibility) +
		c.Sta*float64(s.Stamina)
}

// EffectSpec declares a side effect attached to a skill.
type EffectSpec struct {
	Type      EffectType   `json:"type"`
	Target    EffectTarget `json:"target"`
	Stat      Stat         `json:"stat,omitempty"`
	Magnitude float64      `json:"magnitude"`
	Fraction  bool         `json:"fraction,omitempty"` // Magnitude is a fraction of the base value (or of max HP)
	Duration  int          `json:"duration,omitempty"` // Turns
	Icon      string       `json:"icon,omitempty"`
}

// SkillDef defines a skill loaded from JSON.
type SkillDef struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Type          SkillType    `json:"type"`
	Class         string       `json:"class,omitempty"` // Empty means any class
	Cost          int          `json:"cost"`
	Cooldown      int          `json:"cooldown"`
	Power         int          `json:"power"`
	Scaling       Scaling      `json:"scaling"`
	UnlockLevel   int          `json:"unlockLevel"`
	Ultimate      bool         `json:"ultimate,omitempty"`
	IgnoreDefense float64      `json:"ignoreDefense,omitempty"` // Fraction of defense ignored
	Effects       []EffectSpec `json:"effects,omitempty"`
	Icon          string       `json:"icon,omitempty"`
}

// IsUniversal returns true if any class may equip the skill.
func (s *SkillDef) IsUniversal() bool {
	return s.Class == ""
}

// AllowedFor returns true if a combatant of the given class may equip the skill.
func (s *SkillDef) AllowedFor(classID string) bool {
	return s.IsUniversal() || s.Class == classID
}

// DealsDamage returns true for skill types that hit the opponent directly.
func (s *SkillDef) DealsDamage() bool {
	return s.Type == SkillDamage || s.Type == SkillDOT
}

// HasEffect returns true if the skill declares an effect of type t.
func (s *SkillDef) HasEffect(t EffectType) bool {
	for _, e := range s.Effects {
		if e.Type == t {
			return true
		}
	}
	return false
}

// RawAmount returns power plus stat scaling for the given stats, before any
// mitigation or random rolls.
func (s *SkillDef) RawAmount(stats Stats) int {
	return s.Power + int(s.Scaling.Apply(stats))
}

// normalize clamps out-of-range values read from JSON.
func (s *SkillDef) normalize() {
	s.Cost = min(max(s.Cost, 0), MaxSkillCost)
	s.Cooldown = max(s.Cooldown, 0)
	s.UnlockLevel = max(s.UnlockLevel, 1)
	s.IgnoreDefense = min(max(s.IgnoreDefense, 0), 1)
	for i := range s.Effects {
		if s.Effects[i].Target == "" {
			s.Effects[i].Target = defaultTarget(s.Effects[i].Type)
		}
		s.Effects[i].Duration = max(s.Effects[i].Duration, 0)
	}
}

func defaultTarget(t EffectType) EffectTarget {
	switch t {
	case EffectDebuff, EffectDOT:
		return TargetOpponent
	default:
		return TargetSelf
	}
}

// SkillsFile represents the structure of skills.json.
type SkillsFile struct {
	Skills []SkillDef `json:"skills"`
}

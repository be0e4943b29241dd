package combat

import (
	"github.com/google/uuid"

	"github.com/samdwyer/repbattle/internal/gamedata"
)

// EffectKind tags the StatusEffect variant.
type EffectKind int

const (
	KindBuff EffectKind = iota
	KindDebuff
	KindDamageOverTime
)

// String returns a human-readable kind name.
func (k EffectKind) String() string {
	switch k {
	case KindBuff:
		return "buff"
	case KindDebuff:
		return "debuff"
	case KindDamageOverTime:
		return "dot"
	default:
		return "unknown"
	}
}

// StatusEffect is a timed modifier attached to a combatant.
//
// Buff and Debuff modify a single stat; DamageOverTime ignores Stat and deals
// periodic damage to its owner instead. Fraction magnitudes are relative to
// the unmodified stat value (or to max HP for DamageOverTime).
type StatusEffect struct {
	ID        string
	Kind      EffectKind
	Stat      gamedata.Stat
	Magnitude float64
	Fraction  bool
	Remaining int    // Owner turn starts left
	Source    string // Skill or passive ID that created the effect
	Icon      string
}

func newEffect(kind EffectKind, stat gamedata.Stat, magnitude float64, fraction bool, duration int, source string) StatusEffect {
	return StatusEffect{
		ID:        uuid.NewString(),
		Kind:      kind,
		Stat:      stat,
		Magnitude: magnitude,
		Fraction:  fraction,
		Remaining: duration,
		Source:    source,
	}
}

// NewBuff creates a stat-raising effect.
func NewBuff(stat gamedata.Stat, magnitude float64, fraction bool, duration int, source string) StatusEffect {
	return newEffect(KindBuff, stat, magnitude, fraction, duration, source)
}

// NewDebuff creates a stat-lowering effect. Magnitude is given as a positive
// number.
func NewDebuff(stat gamedata.Stat, magnitude float64, fraction bool, duration int, source string) StatusEffect {
	return newEffect(KindDebuff, stat, magnitude, fraction, duration, source)
}

// NewDamageOverTime creates a periodic damage effect.
func NewDamageOverTime(magnitude float64, fraction bool, duration int, source string) StatusEffect {
	return newEffect(KindDamageOverTime, "", magnitude, fraction, duration, source)
}

// Contribution returns the additive change this effect makes to stat, given
// the stat's unmodified value. Contributions of several effects are summed,
// so the order effects were applied in does not matter.
func (e StatusEffect) Contribution(stat gamedata.Stat, base float64) float64 {
	if e.Kind == KindDamageOverTime || e.Stat != stat {
		return 0
	}
	amount := e.Magnitude
	if e.Fraction {
		amount = base * e.Magnitude
	}
	if e.Kind == KindDebuff {
		return -amount
	}
	return amount
}

// ModifyStat returns value with this effect applied on its own.
func (e StatusEffect) ModifyStat(stat gamedata.Stat, value float64) float64 {
	return value + e.Contribution(stat, value)
}

// TickDamage returns the damage a DamageOverTime effect deals to an owner
// with the given max HP. Other kinds deal none.
func (e StatusEffect) TickDamage(maxHP int) int {
	if e.Kind != KindDamageOverTime {
		return 0
	}
	amount := int(e.Magnitude)
	if e.Fraction {
		amount = int(e.Magnitude*float64(maxHP) + 1e-9)
	}
	return max(amount, 1)
}

// IsNegative reports whether a cleanse removes the effect.
func (e StatusEffect) IsNegative() bool {
	return e.Kind == KindDebuff || e.Kind == KindDamageOverTime
}

// Expired reports whether the effect has no turns left.
func (e StatusEffect) Expired() bool {
	return e.Remaining <= 0
}

// StatusTick reports what happened to one effect at its owner's turn start.
type StatusTick struct {
	Effect StatusEffect
	Damage int  // HP lost to a DamageOverTime tick
	Ended  bool // True if the effect expired and was removed
}

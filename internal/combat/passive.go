package combat

import (
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// firePassives runs owner's passives registered for trigger. amount is the
// damage just taken for TriggerDamageTaken; attacker is whoever caused it
// (nil for DoT ticks).
func (e *Engine) firePassives(owner, opponent *Character, trigger gamedata.Trigger, amount int, attacker *Character) {
	for _, p := range owner.passives {
		if p.Trigger != trigger || e.Finished() {
			continue
		}
		e.runPassive(p, owner, opponent, amount, attacker)
	}
}

func (e *Engine) runPassive(p *gamedata.PassiveDef, owner, opponent *Character, amount int, attacker *Character) {
	switch p.Kind {
	case gamedata.PassiveRegenerate:
		if owner.IsAlive() {
			if healed := owner.Heal(fractionOf(p.Fraction, owner.maxHP)); healed > 0 {
				e.logf("%s regenerates %d HP.", owner.Name(), healed)
			}
		}

	case gamedata.PassiveBurningFury:
		// Only checked on on_damage_taken; thorns, counter and pressure damage
		// goes through dealDirect and cannot ignite it.
		if owner.spent[p.ID] || !owner.IsAlive() || owner.HPFraction() >= p.Threshold {
			return
		}
		owner.spent[p.ID] = true
		e.attach(owner, NewBuff(p.Stat, p.Magnitude, true, max(1, p.Duration), p.ID))
		e.logf("%s's %s ignites!", owner.Name(), p.Name)

	case gamedata.PassiveBloodlust:
		if healed := owner.Heal(fractionOf(p.Fraction, owner.maxHP)); healed > 0 {
			e.logf("%s's %s restores %d HP.", owner.Name(), p.Name, healed)
		}

	case gamedata.PassiveSecondWind:
		if owner.spent[p.ID] || owner.IsAlive() {
			return
		}
		owner.spent[p.ID] = true
		owner.revive(fractionOf(p.Fraction, owner.maxHP))
		e.logf("%s refuses to fall! (%s)", owner.Name(), p.Name)

	case gamedata.PassiveOverwhelmingPressure:
		if owner.IsAlive() && opponent != nil {
			e.dealDirect(owner, opponent, fractionOf(p.Fraction, owner.Attack()), p.ID)
		}

	case gamedata.PassiveThorns:
		if attacker != nil && attacker != owner && amount > 0 {
			e.dealDirect(owner, attacker, fractionOf(p.Fraction, amount), p.ID)
		}
	}
}

// RegenPerTurn returns the HP the character's turn-start regeneration
// passives restore, or 0 if it has none.
func (c *Character) RegenPerTurn() int {
	total := 0
	for _, p := range c.passives {
		if p.Trigger == gamedata.TriggerTurnStart && p.Kind == gamedata.PassiveRegenerate {
			total += fractionOf(p.Fraction, c.maxHP)
		}
	}
	return total
}

// fractionOf returns frac*n rounded down with a floor of 1.
func fractionOf(frac float64, n int) int {
	return max(1, int(frac*float64(n)+1e-9))
}

package combat

import (
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// ApplyDamage resolves a hit of raw damage from source to target.
//
// Order: dodge roll, crit roll, defense (reduced by the skill's ignore-defense
// fraction), floor of 1, shield, HP. A dodged hit deals nothing but still
// counts as being hit for on-damage-taken passives. Source may be nil for
// environmental damage, which can neither crit nor be reflected. Once the
// encounter has ended no damage is dealt.
func (e *Engine) ApplyDamage(source, target *Character, raw int, skill *gamedata.SkillDef) DamageResult {
	res := DamageResult{Source: source, Target: target, Raw: raw}
	if skill != nil {
		res.SkillID = skill.ID
	}
	if target == nil || e.Finished() || !target.IsAlive() {
		return res
	}

	ts := target.DeriveStats()
	if e.roll() < ts.Dodge {
		res.Dodged = true
		e.emit(Event{Kind: EventDamageApplied, Actor: source, Target: target, Damage: res})
		e.logf("%s dodges!", target.Name())
		e.firePassives(target, e.opponent(target), gamedata.TriggerDamageTaken, 0, source)
		return res
	}

	amount := float64(max(0, raw))
	if source != nil && e.roll() < source.Crit() {
		res.Crit = true
		amount *= e.rules.CritMultiplier
	}

	defense := float64(ts.Defense)
	if skill != nil {
		defense *= 1 - skill.IgnoreDefense
	}
	final := max(1, int(amount-defense))

	res.Absorbed = target.absorb(final)
	res.Amount, res.Killed = target.TakeDamage(final - res.Absorbed)

	e.emit(Event{Kind: EventDamageApplied, Actor: source, Target: target, Damage: res})
	e.logHit(res)

	if res.Killed {
		e.firePassives(target, e.opponent(target), gamedata.TriggerDeath, 0, source)
		return res
	}

	e.firePassives(target, e.opponent(target), gamedata.TriggerDamageTaken, res.Amount, source)
	if source != nil && ts.Counter > 0 && res.Amount > 0 {
		reflected := max(1, int(ts.Counter*float64(res.Amount)))
		e.dealDirect(target, source, reflected, "counter")
	}
	return res
}

// applyTickDamage reports a DoT tick. DoT damage bypasses dodge, defense and
// shields.
func (e *Engine) applyTickDamage(owner *Character, effect StatusEffect, amount int) int {
	if e.Finished() {
		return 0
	}
	res := DamageResult{Target: owner, SkillID: effect.Source, Raw: amount, Periodic: true}
	res.Amount, res.Killed = owner.TakeDamage(amount)

	e.emit(Event{Kind: EventDamageApplied, Target: owner, Damage: res})
	e.logf("%s suffers %d damage from %s.", owner.Name(), res.Amount, effect.Source)

	if res.Killed {
		e.firePassives(owner, e.opponent(owner), gamedata.TriggerDeath, 0, nil)
	} else {
		e.firePassives(owner, e.opponent(owner), gamedata.TriggerDamageTaken, res.Amount, nil)
	}
	return res.Amount
}

// dealDirect applies reflected or passive damage straight to HP. It does not
// trigger on-damage-taken passives, so reflections never chain.
func (e *Engine) dealDirect(source, target *Character, amount int, cause string) DamageResult {
	res := DamageResult{Source: source, Target: target, SkillID: cause, Raw: amount, Reflected: true}
	if target == nil || e.Finished() || !target.IsAlive() {
		return res
	}
	res.Amount, res.Killed = target.TakeDamage(amount)

	e.emit(Event{Kind: EventDamageApplied, Actor: source, Target: target, Damage: res})
	e.logf("%s takes %d damage from %s.", target.Name(), res.Amount, cause)

	if res.Killed {
		e.firePassives(target, e.opponent(target), gamedata.TriggerDeath, 0, source)
	}
	return res
}

// Heal restores HP to target and logs it. Healing does nothing once the
// encounter has ended.
func (e *Engine) Heal(target *Character, amount int) int {
	if target == nil || e.Finished() {
		return 0
	}
	healed := target.Heal(amount)
	if healed > 0 {
		e.logf("%s recovers %d HP.", target.Name(), healed)
	}
	return healed
}

func (e *Engine) logHit(res DamageResult) {
	switch {
	case res.Amount == 0 && res.Absorbed > 0:
		e.logf("%s's shield absorbs %d damage.", res.Target.Name(), res.Absorbed)
	case res.Crit:
		e.logf("Critical hit! %s takes %d damage.", res.Target.Name(), res.Amount)
	default:
		e.logf("%s takes %d damage.", res.Target.Name(), res.Amount)
	}
	if res.Killed {
		e.logf("%s is knocked out!", res.Target.Name())
	}
}

// EstimateDamage returns the damage skill would deal from attacker to
// defender without random rolls or shields.
func EstimateDamage(attacker, defender *Character, skill *gamedata.SkillDef) int {
	if skill == nil || !skill.DealsDamage() {
		return 0
	}
	raw := attacker.RawDamage(skill)
	defense := float64(defender.Defense()) * (1 - skill.IgnoreDefense)
	return max(1, int(float64(raw)-defense))
}

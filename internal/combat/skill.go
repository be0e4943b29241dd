package combat

import (
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// execute applies a skill that has already been paid for.
func (e *Engine) execute(user, opponent *Character, skill *gamedata.SkillDef) {
	switch skill.Type {
	case gamedata.SkillDamage, gamedata.SkillDOT:
		res := e.ApplyDamage(user, opponent, user.RawDamage(skill), skill)
		if res.Dodged {
			return
		}
	case gamedata.SkillHeal:
		e.Heal(user, user.RawHeal(skill))
	case gamedata.SkillShield:
		amount := max(1, user.RawHeal(skill))
		user.AddShield(amount)
		e.logf("%s raises a %d point shield.", user.Name(), amount)
	case gamedata.SkillBuff, gamedata.SkillDebuff, gamedata.SkillCounter:
		// Carried entirely by the declared effects.
	default:
		e.logger.Warn("unknown skill type", "encounter", e.id, "skill", skill.ID, "type", skill.Type)
	}
	e.applyEffects(user, opponent, skill)
}

// applyEffects attaches every declared side effect of skill. Effects aimed at
// a knocked-out combatant are skipped.
func (e *Engine) applyEffects(user, opponent *Character, skill *gamedata.SkillDef) {
	for _, spec := range skill.Effects {
		target := user
		if spec.Target == gamedata.TargetOpponent {
			target = opponent
		}
		if !target.IsAlive() {
			continue
		}

		duration := max(1, spec.Duration)
		switch spec.Type {
		case gamedata.EffectBuff:
			e.attach(target, withIcon(NewBuff(spec.Stat, spec.Magnitude, spec.Fraction, duration, skill.ID), spec.Icon))
		case gamedata.EffectDebuff:
			e.attach(target, withIcon(NewDebuff(spec.Stat, spec.Magnitude, spec.Fraction, duration, skill.ID), spec.Icon))
		case gamedata.EffectDOT:
			e.attach(target, withIcon(NewDamageOverTime(spec.Magnitude, spec.Fraction, duration, skill.ID), spec.Icon))
		case gamedata.EffectCounter:
			e.attach(target, withIcon(NewBuff(gamedata.StatCounter, spec.Magnitude, false, duration, skill.ID), spec.Icon))
		case gamedata.EffectHeal:
			e.Heal(target, effectAmount(spec, target))
		case gamedata.EffectShield:
			amount := effectAmount(spec, target)
			target.AddShield(amount)
			e.logf("%s gains a %d point shield.", target.Name(), amount)
		case gamedata.EffectCleanse:
			if n := target.Cleanse(); n > 0 {
				e.logf("%s shakes off %d effect(s).", target.Name(), n)
			}
		default:
			e.logger.Warn("unknown skill effect", "encounter", e.id, "skill", skill.ID, "effect", spec.Type)
		}
	}
}

// attach adds a status effect and reports it.
func (e *Engine) attach(target *Character, effect StatusEffect) {
	if e.Finished() {
		return
	}
	target.ApplyStatusEffect(effect)
	e.emit(Event{Kind: EventStatusApplied, Target: target, Status: effect})

	switch effect.Kind {
	case KindDamageOverTime:
		e.logf("%s is afflicted by %s.", target.Name(), effect.Source)
	case KindDebuff:
		e.logf("%s's %s falls.", target.Name(), effect.Stat)
	default:
		e.logf("%s's %s rises.", target.Name(), effect.Stat)
	}
}

func withIcon(effect StatusEffect, icon string) StatusEffect {
	effect.Icon = icon
	return effect
}

// effectAmount resolves a heal or shield magnitude, which is either flat or a
// fraction of the target's max HP.
func effectAmount(spec gamedata.EffectSpec, target *Character) int {
	if spec.Fraction {
		return max(1, int(spec.Magnitude*float64(target.MaxHP())+1e-9))
	}
	return max(1, int(spec.Magnitude))
}

package gamedata

import (
	"errors"
	"fmt"
)

var (
	skillTypes = map[SkillType]bool{
		SkillDamage: true, SkillBuff: true, SkillDebuff: true, SkillHeal: true,
		SkillShield: true, SkillDOT: true, SkillCounter: true,
	}
	effectTypes = map[EffectType]bool{
		EffectBuff: true, EffectDebuff: true, EffectDOT: true, EffectHeal: true,
		EffectShield: true, EffectCleanse: true, EffectCounter: true,
	}
	effectTargets = map[EffectTarget]bool{TargetSelf: true, TargetOpponent: true}
	triggers      = map[Trigger]bool{
		TriggerAlways: true, TriggerTurnStart: true, TriggerDamageTaken: true,
		TriggerKill: true, TriggerDeath: true,
	}
	passiveKinds = map[PassiveKind]bool{
		PassiveStatic: true, PassiveRegenerate: true, PassiveBurningFury: true,
		PassiveBloodlust: true, PassiveSecondWind: true,
		PassiveOverwhelmingPressure: true, PassiveThorns: true,
	}
	stats = map[Stat]bool{
		StatStrength: true, StatEndurance: true, StatAgility: true, StatFlexibility: true,
		StatStamina: true, StatAttack: true, StatDefense: true, StatSpeed: true,
		StatDodge: true, StatCrit: true, StatCounter: true,
	}
)

// checkDefinitions rejects enum fields the engine has no behavior for, so a
// typo fails the load instead of producing a skill or passive that does
// nothing.
func checkDefinitions(skills []SkillDef, passives []PassiveDef) error {
	var errs []error
	for _, s := range skills {
		if !skillTypes[s.Type] {
			errs = append(errs, fmt.Errorf("skill %q: unknown type %q", s.ID, s.Type))
		}
		for i, eff := range s.Effects {
			switch {
			case !effectTypes[eff.Type]:
				errs = append(errs, fmt.Errorf("skill %q effect %d: unknown type %q", s.ID, i, eff.Type))
			case eff.Target != "" && !effectTargets[eff.Target]:
				errs = append(errs, fmt.Errorf("skill %q effect %d: unknown target %q", s.ID, i, eff.Target))
			case (eff.Type == EffectBuff || eff.Type == EffectDebuff) && !stats[eff.Stat]:
				errs = append(errs, fmt.Errorf("skill %q effect %d: unknown stat %q", s.ID, i, eff.Stat))
			}
		}
	}
	for _, p := range passives {
		if !triggers[p.Trigger] {
			errs = append(errs, fmt.Errorf("passive %q: unknown trigger %q", p.ID, p.Trigger))
		}
		if !passiveKinds[p.Kind] {
			errs = append(errs, fmt.Errorf("passive %q: unknown kind %q", p.ID, p.Kind))
		}
		if p.Kind == PassiveBurningFury && !stats[p.Stat] {
			errs = append(errs, fmt.Errorf("passive %q: unknown stat %q", p.ID, p.Stat))
		}
	}
	return errors.Join(errs...)
}

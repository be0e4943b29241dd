// Package ai picks skills for computer-controlled combatants.
package ai

import (
	"log/slog"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// Selection constants.
const (
	lowHPThreshold   = 0.3 // Below this fraction of max HP the policy plays defensively
	ultimateWindow   = 3   // Own turns an ultimate must have rested before it is preferred again
	longFightTurns   = 3   // Expected turns-to-kill above which setup skills are worth it
	highOpponentHP   = 0.5
	lethalWeight     = 10.0
	defensiveWeight  = 5.0
	unknownFightTurn = 99
)

// Policy is the enemy skill selection policy. It is stateless and
// deterministic: the same combat state and eligible list always yield the
// same skill.
//
// Selection order:
//  1. Drop skills whose effect would be wasted.
//  2. Below 30% HP prefer heal, shield, buff and counter skills.
//  3. Prefer an ultimate not used in the last three own turns.
//  4. Otherwise score by skill type in context; ties go to the higher
//     estimated damage, then to slot order.
type Policy struct {
	logger *slog.Logger
}

var _ combat.Chooser = (*Policy)(nil)

// NewPolicy creates a policy. A nil logger uses slog.Default.
func NewPolicy(logger *slog.Logger) *Policy {
	if logger == nil {
		logger = slog.Default()
	}
	return &Policy{logger: logger}
}

// ChooseSkill implements combat.Chooser.
func (p *Policy) ChooseSkill(self, opponent *combat.Character, eligible []*gamedata.SkillDef) *gamedata.SkillDef {
	if len(eligible) == 0 {
		return nil
	}

	candidates := Useful(self, opponent, eligible)
	if len(candidates) == 0 {
		// Everything would be wasted; use the first slot rather than lose the
		// meter to a pass.
		candidates = eligible
	}

	if self.HPFraction() < lowHPThreshold {
		var defensive []*gamedata.SkillDef
		for _, s := range candidates {
			if isDefensive(s) {
				defensive = append(defensive, s)
			}
		}
		if pick := p.best(self, opponent, defensive); pick != nil {
			p.logger.Debug("ai chose defensive skill", "actor", self.Name(), "skill", pick.ID, "hp", self.HP())
			return pick
		}
	}

	for _, s := range candidates {
		if !s.Ultimate {
			continue
		}
		if since := self.TurnsSinceUsed(s.ID); since < 0 || since >= ultimateWindow {
			p.logger.Debug("ai chose ultimate", "actor", self.Name(), "skill", s.ID)
			return s
		}
	}

	pick := p.best(self, opponent, candidates)
	p.logger.Debug("ai chose skill", "actor", self.Name(), "skill", pick.ID,
		"candidates", len(candidates), "eligible", len(eligible))
	return pick
}

// best returns the highest scoring skill, or nil for an empty list.
func (p *Policy) best(self, opponent *combat.Character, skills []*gamedata.SkillDef) *gamedata.SkillDef {
	var (
		pick      *gamedata.SkillDef
		bestScore float64
		bestDmg   int
	)
	turns := expectedTurns(self, opponent)
	for _, s := range skills {
		score := Score(self, opponent, s, turns)
		dmg := combat.EstimateDamage(self, opponent, s)
		if pick == nil || score > bestScore || (score == bestScore && dmg > bestDmg) {
			pick, bestScore, bestDmg = s, score, dmg
		}
	}
	return pick
}

// Useful returns the eligible skills whose effects would not be wasted, in
// slot order.
func Useful(self, opponent *combat.Character, eligible []*gamedata.SkillDef) []*gamedata.SkillDef {
	var out []*gamedata.SkillDef
	for _, s := range eligible {
		if !Wasted(self, opponent, s) {
			out = append(out, s)
		}
	}
	return out
}

// Wasted reports whether using skill now would achieve nothing useful.
func Wasted(self, opponent *combat.Character, skill *gamedata.SkillDef) bool {
	cleanses := skill.HasEffect(gamedata.EffectCleanse) && self.HasNegativeEffect()

	switch skill.Type {
	case gamedata.SkillDamage:
		return false
	case gamedata.SkillDOT:
		// The hit still lands, but a second copy of the same DoT adds
		// little; only reapply once the first has run out.
		return opponent.HasEffectFrom(skill.ID)
	case gamedata.SkillHeal:
		missing := self.MaxHP() - self.HP()
		return missing <= self.RegenPerTurn() && !cleanses
	case gamedata.SkillShield:
		return self.Shield() > 0 && !cleanses
	case gamedata.SkillBuff, gamedata.SkillCounter:
		return self.HasEffectFrom(skill.ID) && !cleanses
	case gamedata.SkillDebuff:
		return opponent.HasEffectFrom(skill.ID)
	}

	if len(skill.Effects) > 0 && onlyCleanse(skill) {
		return !cleanses
	}
	return false
}

func onlyCleanse(skill *gamedata.SkillDef) bool {
	for _, e := range skill.Effects {
		if e.Type != gamedata.EffectCleanse {
			return false
		}
	}
	return true
}

func isDefensive(s *gamedata.SkillDef) bool {
	switch s.Type {
	case gamedata.SkillHeal, gamedata.SkillShield, gamedata.SkillBuff, gamedata.SkillCounter:
		return true
	}
	return false
}

// Score weighs a skill by type given the fight's state. turns is the expected
// number of own turns needed to knock the opponent out.
func Score(self, opponent *combat.Character, skill *gamedata.SkillDef, turns int) float64 {
	oppHP := opponent.HPFraction()
	ownHP := self.HPFraction()
	long := turns > longFightTurns

	switch skill.Type {
	case gamedata.SkillDamage:
		if combat.EstimateDamage(self, opponent, skill) >= opponent.HP() {
			return lethalWeight
		}
		w := 1.0
		if oppHP > highOpponentHP {
			w += 0.5
		}
		return w
	case gamedata.SkillDOT:
		if oppHP > highOpponentHP && long {
			return 1.8
		}
		return 0.8
	case gamedata.SkillDebuff:
		if oppHP > highOpponentHP && long {
			return 1.6
		}
		return 0.5
	case gamedata.SkillBuff, gamedata.SkillCounter:
		w := 0.6
		if long {
			w = 1.2
		}
		if ownHP < lowHPThreshold {
			w += defensiveWeight / 2
		}
		return w
	case gamedata.SkillHeal, gamedata.SkillShield:
		w := 0.2 + (1-ownHP)*1.5
		if ownHP < lowHPThreshold {
			w += defensiveWeight
		}
		return w
	}
	return 0
}

// expectedTurns estimates own turns needed to knock the opponent out with the
// strongest equipped damaging skill.
func expectedTurns(self, opponent *combat.Character) int {
	best := 0
	for _, s := range self.Skills() {
		best = max(best, combat.EstimateDamage(self, opponent, s))
	}
	if best <= 0 {
		return unknownFightTurn
	}
	return (opponent.HP() + best - 1) / best
}

package combat

import (
	"slices"

	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// skillSlot is one equipped skill. Def is nil when the catalog had no entry
// for ID; such a slot is never offered and resolves as a no-op.
type skillSlot struct {
	ID  string
	Def *gamedata.SkillDef
}

// Stats is a snapshot of a combatant's derived stats.
type Stats struct {
	Base    gamedata.Stats // Base stats after modifiers
	MaxHP   int
	Attack  int
	Defense int
	Speed   float64
	Dodge   float64
	Crit    float64
	Counter float64 // Fraction of incoming damage reflected
}

// Character is a live battle instance built from a profile snapshot. It is
// owned by one Engine for the length of an encounter.
type Character struct {
	profile  entity.Profile
	base     gamedata.Stats
	maxHP    int
	skills   []skillSlot
	passives []*gamedata.PassiveDef
	missing  []string

	hp        int
	meter     float64
	shield    int
	effects   []StatusEffect
	cooldowns map[string]int
	lastUsed  map[string]int // Own turn number a skill was last used on
	turns     int            // Own turns started this encounter
	spent     map[string]bool
	frozen    bool
}

// NewCharacter builds a combatant from a profile, resolving its loadout
// against the catalog. Unknown skill and passive IDs are remembered (see
// Missing) rather than rejected. Loadouts are clipped to entity.MaxSkills and
// entity.MaxPassives.
func NewCharacter(p entity.Profile, catalog *gamedata.Catalog) *Character {
	c := &Character{
		profile: p,
		base:    p.Stats.Clamped(),
	}

	skillIDs := p.SkillIDs
	if len(skillIDs) > entity.MaxSkills {
		skillIDs = skillIDs[:entity.MaxSkills]
	}
	for _, id := range skillIDs {
		var def *gamedata.SkillDef
		if catalog != nil {
			def = catalog.Skills.GetByID(id)
		}
		if def == nil {
			c.missing = append(c.missing, "skill:"+id)
		}
		c.skills = append(c.skills, skillSlot{ID: id, Def: def})
	}

	passiveIDs := p.PassiveIDs
	if len(passiveIDs) > entity.MaxPassives {
		passiveIDs = passiveIDs[:entity.MaxPassives]
	}
	for _, id := range passiveIDs {
		var def *gamedata.PassiveDef
		if catalog != nil {
			def = catalog.Passives.GetByID(id)
		}
		if def == nil {
			c.missing = append(c.missing, "passive:"+id)
			continue
		}
		c.passives = append(c.passives, def)
	}

	c.maxHP = 100 + 10*c.base.Stamina + 5*c.base.Endurance
	c.resetForBattle()
	return c
}

// resetForBattle clears all transient encounter state.
func (c *Character) resetForBattle() {
	c.hp = c.maxHP
	c.meter = 0
	c.shield = 0
	c.effects = nil
	c.cooldowns = make(map[string]int)
	c.lastUsed = make(map[string]int)
	c.spent = make(map[string]bool)
	c.turns = 0
	c.frozen = false
}

// =============================================================================
// Identity and runtime state
// =============================================================================

// Name returns the display name.
func (c *Character) Name() string { return c.profile.Name }

// Profile returns the snapshot the character was built from.
func (c *Character) Profile() entity.Profile { return c.profile }

// Side returns who drives the character by default.
func (c *Character) Side() entity.Side { return c.profile.Side }

// Level returns the character level.
func (c *Character) Level() int { return c.profile.Level }

// HP returns current HP.
func (c *Character) HP() int { return c.hp }

// MaxHP returns maximum HP. It depends on unmodified stamina and endurance
// only, so effects never push current HP out of range.
func (c *Character) MaxHP() int { return c.maxHP }

// HPFraction returns current HP over max HP.
func (c *Character) HPFraction() float64 {
	if c.maxHP <= 0 {
		return 0
	}
	return float64(c.hp) / float64(c.maxHP)
}

// IsAlive returns true if the character has HP remaining.
func (c *Character) IsAlive() bool { return c.hp > 0 }

// Meter returns the action meter. Values above MeterFull are carried over.
func (c *Character) Meter() float64 { return c.meter }

// Shield returns the remaining absorb pool.
func (c *Character) Shield() int { return c.shield }

// Turns returns the number of own turns started this encounter.
func (c *Character) Turns() int { return c.turns }

// Frozen reports whether the encounter has ended for this character.
func (c *Character) Frozen() bool { return c.frozen }

// Missing returns the loadout entries the catalog could not resolve.
func (c *Character) Missing() []string { return c.missing }

// Passives returns the equipped passive definitions.
func (c *Character) Passives() []*gamedata.PassiveDef { return c.passives }

// Skills returns the equipped skills the catalog resolved, in slot order.
func (c *Character) Skills() []*gamedata.SkillDef {
	out := make([]*gamedata.SkillDef, 0, len(c.skills))
	for _, s := range c.skills {
		if s.Def != nil {
			out = append(out, s.Def)
		}
	}
	return out
}

// Effects returns a copy of the active status effects.
func (c *Character) Effects() []StatusEffect {
	return slices.Clone(c.effects)
}

// HasNegativeEffect reports whether any debuff or DoT is active.
func (c *Character) HasNegativeEffect() bool {
	return slices.ContainsFunc(c.effects, StatusEffect.IsNegative)
}

// HasEffectFrom reports whether an effect created by source is active.
func (c *Character) HasEffectFrom(source string) bool {
	return slices.ContainsFunc(c.effects, func(e StatusEffect) bool { return e.Source == source })
}

// Cooldown returns the turns left before a skill can be used again.
func (c *Character) Cooldown(skillID string) int { return c.cooldowns[skillID] }

// TurnsSinceUsed returns own turns elapsed since the skill was last used, or
// -1 if it has not been used this encounter.
func (c *Character) TurnsSinceUsed(skillID string) int {
	turn, ok := c.lastUsed[skillID]
	if !ok {
		return -1
	}
	return c.turns - turn
}

// =============================================================================
// Derived stats
// =============================================================================

// DeriveStats recomputes derived stats from base stats, active Buff/Debuff
// contributions and static passive bonuses. Effects are summed against the
// unmodified value of each stat.
func (c *Character) DeriveStats() Stats {
	sum := func(stat gamedata.Stat, base float64) float64 {
		v := base
		for _, e := range c.effects {
			v += e.Contribution(stat, base)
		}
		return v
	}

	eff := gamedata.Stats{
		Strength:    int(max(0, sum(gamedata.StatStrength, float64(c.base.Strength)))),
		Endurance:   int(max(0, sum(gamedata.StatEndurance, float64(c.base.Endurance)))),
		Agility:     int(max(0, sum(gamedata.StatAgility, float64(c.base.Agility)))),
		Flexibility: int(max(0, sum(gamedata.StatFlexibility, float64(c.base.Flexibility)))),
		Stamina:     int(max(0, sum(gamedata.StatStamina, float64(c.base.Stamina)))),
	}

	var critBonus, defScaling float64
	for _, p := range c.passives {
		critBonus += p.CritBonus
		defScaling += p.DefScaling
	}

	attackBase := float64(eff.Strength + eff.Agility/4)
	defenseBase := float64(eff.Endurance/2) * (1 + defScaling)
	speedBase := float64(50 + 5*eff.Agility)
	dodgeBase := 0.01 * float64(eff.Flexibility)
	critBase := 0.005*float64(eff.Agility) + critBonus

	return Stats{
		Base:    eff,
		MaxHP:   c.maxHP,
		Attack:  int(max(0, sum(gamedata.StatAttack, attackBase))),
		Defense: int(max(0, sum(gamedata.StatDefense, defenseBase))),
		Speed:   max(0, sum(gamedata.StatSpeed, speedBase)),
		Dodge:   clamp(sum(gamedata.StatDodge, dodgeBase), 0, MaxDodge),
		Crit:    clamp(sum(gamedata.StatCrit, critBase), 0, MaxCrit),
		Counter: clamp(sum(gamedata.StatCounter, 0), 0, 1),
	}
}

// Attack returns the current attack stat.
func (c *Character) Attack() int { return c.DeriveStats().Attack }

// Defense returns the current defense stat.
func (c *Character) Defense() int { return c.DeriveStats().Defense }

// Speed returns the current speed stat.
func (c *Character) Speed() float64 { return c.DeriveStats().Speed }

// Dodge returns the current dodge chance.
func (c *Character) Dodge() float64 { return c.DeriveStats().Dodge }

// Crit returns the current crit chance.
func (c *Character) Crit() float64 { return c.DeriveStats().Crit }

// attackMultiplier is current attack over unmodified attack; attack buffs and
// debuffs scale skill damage through it.
func (c *Character) attackMultiplier(s Stats) float64 {
	unmodified := s.Base.Strength + s.Base.Agility/4
	if unmodified <= 0 {
		return 1
	}
	return float64(s.Attack) / float64(unmodified)
}

// RawDamage returns the pre-roll, pre-mitigation damage of a skill.
func (c *Character) RawDamage(skill *gamedata.SkillDef) int {
	if skill == nil {
		return 0
	}
	s := c.DeriveStats()
	raw := float64(skill.Power) + skill.Scaling.Apply(s.Base)

	var strBonus float64
	for _, p := range c.passives {
		strBonus += p.StrDamageBonus
	}
	raw += skill.Scaling.Str * float64(s.Base.Strength) * strBonus

	return max(0, int(raw*c.attackMultiplier(s)+1e-9))
}

// RawHeal returns the heal or shield amount of a skill.
func (c *Character) RawHeal(skill *gamedata.SkillDef) int {
	if skill == nil {
		return 0
	}
	return max(0, skill.RawAmount(c.DeriveStats().Base))
}

// =============================================================================
// Meter, cooldowns and eligibility
// =============================================================================

// AdvanceMeter fills the action meter in proportion to speed and returns true
// once it is full. Overflow above MeterFull is kept.
func (c *Character) AdvanceMeter(seconds, speedFactor float64) bool {
	if c.frozen || seconds <= 0 {
		return c.meter >= MeterFull
	}
	c.meter += c.Speed() * speedFactor * seconds
	return c.meter >= MeterFull
}

// SpendMeter deducts cost from the meter, keeping any carry-over and never
// going below zero.
func (c *Character) SpendMeter(cost float64) {
	c.meter = max(0, c.meter-max(0, cost))
}

func (c *Character) tickCooldowns() {
	for id, cd := range c.cooldowns {
		if cd <= 1 {
			delete(c.cooldowns, id)
			continue
		}
		c.cooldowns[id] = cd - 1
	}
}

func (c *Character) startCooldown(skill *gamedata.SkillDef) {
	if skill.Cooldown > 0 {
		c.cooldowns[skill.ID] = skill.Cooldown
	}
	c.lastUsed[skill.ID] = c.turns
}

// CanUse reports whether a skill is unlocked, off cooldown and affordable.
func (c *Character) CanUse(skill *gamedata.SkillDef) bool {
	return skill != nil &&
		skill.UnlockLevel <= c.profile.Level &&
		c.cooldowns[skill.ID] == 0 &&
		float64(skill.Cost) <= c.meter
}

// Eligible returns the equipped skills that can be used right now, in slot
// order.
func (c *Character) Eligible() []*gamedata.SkillDef {
	var out []*gamedata.SkillDef
	for _, s := range c.skills {
		if c.CanUse(s.Def) {
			out = append(out, s.Def)
		}
	}
	return out
}

// slot returns the equipped slot with the given ID.
func (c *Character) slot(id string) (skillSlot, bool) {
	for _, s := range c.skills {
		if s.ID == id {
			return s, true
		}
	}
	return skillSlot{}, false
}

// =============================================================================
// HP, shield and status effects
// =============================================================================

// TakeDamage reduces HP, clamped at zero, and reports the HP actually lost
// and whether the character is now dead. Negative amounts do nothing.
func (c *Character) TakeDamage(amount int) (int, bool) {
	if c.frozen || amount <= 0 || c.hp == 0 {
		return 0, c.hp == 0
	}
	actual := min(amount, c.hp)
	c.hp -= actual
	return actual, c.hp == 0
}

// Heal restores HP up to max and returns the amount healed. Dead characters
// cannot be healed; see revive.
func (c *Character) Heal(amount int) int {
	if c.frozen || amount <= 0 || c.hp == 0 {
		return 0
	}
	actual := min(amount, c.maxHP-c.hp)
	c.hp += actual
	return actual
}

func (c *Character) revive(hp int) {
	if c.frozen || c.hp > 0 {
		return
	}
	c.hp = clampInt(hp, 1, c.maxHP)
}

// AddShield grows the absorb pool.
func (c *Character) AddShield(amount int) {
	if c.frozen || amount <= 0 {
		return
	}
	c.shield += amount
}

// absorb soaks damage with the shield and returns the amount absorbed.
func (c *Character) absorb(amount int) int {
	if c.shield <= 0 || amount <= 0 {
		return 0
	}
	taken := min(c.shield, amount)
	c.shield -= taken
	return taken
}

// ApplyStatusEffect attaches an effect. Derived stats pick it up on the next
// read.
func (c *Character) ApplyStatusEffect(effect StatusEffect) {
	if c.frozen || effect.Remaining <= 0 {
		return
	}
	c.effects = append(c.effects, effect)
}

// Cleanse removes every debuff and DoT and returns how many were removed.
func (c *Character) Cleanse() int {
	if c.frozen {
		return 0
	}
	before := len(c.effects)
	c.effects = slices.DeleteFunc(c.effects, StatusEffect.IsNegative)
	return before - len(c.effects)
}

// damageSink receives DoT damage so the engine can report it. A nil sink
// applies the damage directly.
type damageSink interface {
	applyTickDamage(owner *Character, effect StatusEffect, amount int) int
}

// TickStatusEffects runs once at the start of the owner's turn: DoTs deal
// damage, every effect loses one turn, and expired effects are removed.
func (c *Character) TickStatusEffects(e *Engine) []StatusTick {
	var sink damageSink
	if e != nil {
		sink = e
	}
	return c.tickStatusEffects(sink)
}

func (c *Character) tickStatusEffects(sink damageSink) []StatusTick {
	if c.frozen || len(c.effects) == 0 {
		return nil
	}

	ticks := make([]StatusTick, 0, len(c.effects))
	current := c.effects
	c.effects = nil
	remaining := make([]StatusEffect, 0, len(current))

	for _, effect := range current {
		tick := StatusTick{Effect: effect}
		if effect.Kind == KindDamageOverTime && c.hp > 0 {
			amount := effect.TickDamage(c.maxHP)
			if sink != nil {
				tick.Damage = sink.applyTickDamage(c, effect, amount)
			} else {
				tick.Damage, _ = c.TakeDamage(amount)
			}
		}

		effect.Remaining--
		tick.Effect = effect
		if effect.Expired() {
			tick.Ended = true
		} else {
			remaining = append(remaining, effect)
		}
		ticks = append(ticks, tick)
	}

	// Effects attached while ticking (a passive reacting to DoT damage) are
	// kept and were not ticked this turn.
	c.effects = append(remaining, c.effects...)
	return ticks
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

package combat

import (
	"io"
	"log/slog"
	"testing"

	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// testCatalog returns a small catalog with one skill per behavior.
func testCatalog() *gamedata.Catalog {
	skills := []gamedata.SkillDef{
		{ID: "punch", Name: "Power Punch", Type: gamedata.SkillDamage, Cost: 100, Cooldown: 2, Scaling: gamedata.Scaling{Str: 1}},
		{ID: "jab", Name: "Jab", Type: gamedata.SkillDamage, Cost: 40, Power: 4, Scaling: gamedata.Scaling{Str: 0.5}},
		{ID: "pierce", Name: "Pierce", Type: gamedata.SkillDamage, Cost: 100, Scaling: gamedata.Scaling{Str: 1}, IgnoreDefense: 1},
		{ID: "nuke", Name: "Nuke", Type: gamedata.SkillDamage, Cost: 100, Power: 1000, Ultimate: true},
		{ID: "poison", Name: "Poison", Type: gamedata.SkillDOT, Cost: 50, Cooldown: 3, Power: 1, Effects: []gamedata.EffectSpec{
			{Type: gamedata.EffectDOT, Magnitude: 0.1, Fraction: true, Duration: 3},
		}},
		{ID: "guard", Name: "Guard", Type: gamedata.SkillShield, Cost: 50, Power: 20},
		{ID: "mend", Name: "Mend", Type: gamedata.SkillHeal, Cost: 50, Power: 30, Effects: []gamedata.EffectSpec{
			{Type: gamedata.EffectCleanse},
		}},
		{ID: "rage", Name: "Rage", Type: gamedata.SkillBuff, Cost: 50, Cooldown: 3, Effects: []gamedata.EffectSpec{
			{Type: gamedata.EffectBuff, Stat: gamedata.StatAttack, Magnitude: 0.5, Fraction: true, Duration: 3},
		}},
		{ID: "slow", Name: "Slow", Type: gamedata.SkillDebuff, Cost: 50, Effects: []gamedata.EffectSpec{
			{Type: gamedata.EffectDebuff, Stat: gamedata.StatSpeed, Magnitude: 0.5, Fraction: true, Duration: 2},
		}},
		{ID: "mirror", Name: "Mirror", Type: gamedata.SkillCounter, Cost: 50, Effects: []gamedata.EffectSpec{
			{Type: gamedata.EffectCounter, Magnitude: 0.5, Duration: 2},
		}},
		{ID: "locked", Name: "Locked", Type: gamedata.SkillDamage, Cost: 10, UnlockLevel: 99},
	}
	passives := []gamedata.PassiveDef{
		{ID: "regen", Name: "Regeneration", Trigger: gamedata.TriggerTurnStart, Kind: gamedata.PassiveRegenerate, Fraction: 0.05},
		{ID: "fury", Name: "Burning Fury", Trigger: gamedata.TriggerDamageTaken, Kind: gamedata.PassiveBurningFury, Threshold: 0.5, Stat: gamedata.StatAttack, Magnitude: 0.3, Duration: 3},
		{ID: "bloodlust", Name: "Bloodlust", Trigger: gamedata.TriggerKill, Kind: gamedata.PassiveBloodlust, Fraction: 0.2},
		{ID: "second_wind", Name: "Second Wind", Trigger: gamedata.TriggerDeath, Kind: gamedata.PassiveSecondWind, Fraction: 0.25},
		{ID: "pressure", Name: "Overwhelming Pressure", Trigger: gamedata.TriggerTurnStart, Kind: gamedata.PassiveOverwhelmingPressure, Fraction: 0.2},
		{ID: "thorns", Name: "Thorns", Trigger: gamedata.TriggerDamageTaken, Kind: gamedata.PassiveThorns, Fraction: 0.2},
		{ID: "eagle_eye", Name: "Eagle Eye", Trigger: gamedata.TriggerAlways, CritBonus: 1},
		{ID: "iron_skin", Name: "Iron Skin", Trigger: gamedata.TriggerAlways, DefScaling: 1},
		{ID: "brute", Name: "Brute Force", Trigger: gamedata.TriggerAlways, StrDamageBonus: 0.5},
	}
	enemies := []gamedata.EnemyDef{{ID: "dummy", Name: "Dummy", SpawnWeight: 1}}
	return gamedata.NewCatalog(skills, passives, enemies, nil)
}

// fighter builds a level 10 character.
func fighter(catalog *gamedata.Catalog, name string, side entity.Side, stats gamedata.Stats, skills, passives []string) *Character {
	return NewCharacter(entity.Profile{
		Name:       name,
		Side:       side,
		Level:      10,
		Stats:      stats,
		SkillIDs:   skills,
		PassiveIDs: passives,
	}, catalog)
}

// fixedRoller always rolls the same value. 0.99 never dodges or crits
// below the clamps; 0 always does when the chance is positive.
type fixedRoller float64

func (r fixedRoller) Float64() float64 { return float64(r) }

// seqRoller yields its values in order, repeating the last one.
type seqRoller struct {
	values []float64
	i      int
}

func (r *seqRoller) Float64() float64 {
	v := r.values[min(r.i, len(r.values)-1)]
	r.i++
	return v
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestEngine starts an engine over the pair with no random procs.
func newTestEngine(t *testing.T, player, enemy *Character, opts ...Option) (*Engine, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	base := []Option{WithListener(rec), WithRoller(fixedRoller(0.99)), WithLogger(quietLogger())}
	e, err := NewEngine(player, enemy, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return e, rec
}

// tickUntil ticks in 100ms steps until cond holds or limit ticks pass.
func tickUntil(e *Engine, limit int, cond func() bool) int {
	for i := 1; i <= limit; i++ {
		e.Tick(tick)
		if cond() {
			return i
		}
	}
	return -1
}

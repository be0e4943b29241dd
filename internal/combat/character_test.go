package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

func TestDeriveStats(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		stats    gamedata.Stats
		passives []string
		want     Stats
	}{
		{
			name:  "baseline",
			stats: gamedata.Stats{Strength: 20, Endurance: 10, Agility: 10, Flexibility: 5, Stamina: 3},
			want: Stats{
				Base:    gamedata.Stats{Strength: 20, Endurance: 10, Agility: 10, Flexibility: 5, Stamina: 3},
				MaxHP:   180,
				Attack:  22,
				Defense: 5,
				Speed:   100,
				Dodge:   0.05,
				Crit:    0.05,
			},
		},
		{
			name:  "dodge clamped",
			stats: gamedata.Stats{Flexibility: 80},
			want: Stats{
				Base:  gamedata.Stats{Flexibility: 80},
				MaxHP: 100,
				Speed: 50,
				Dodge: MaxDodge,
			},
		},
		{
			name:     "passive bonuses",
			stats:    gamedata.Stats{Endurance: 10, Agility: 20},
			passives: []string{"iron_skin", "eagle_eye"},
			want: Stats{
				Base:    gamedata.Stats{Endurance: 10, Agility: 20},
				MaxHP:   150,
				Attack:  5,
				Defense: 10,
				Speed:   150,
				Crit:    MaxCrit,
			},
		},
		{
			name:  "negative stats clamp to zero",
			stats: gamedata.Stats{Strength: -5, Stamina: -10},
			want:  Stats{MaxHP: 100, Speed: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fighter(catalog, "c", entity.SidePlayer, tt.stats, nil, tt.passives)
			got := c.DeriveStats()
			assert.Equal(t, tt.want.Base, got.Base)
			assert.Equal(t, tt.want.MaxHP, got.MaxHP)
			assert.Equal(t, tt.want.Attack, got.Attack)
			assert.Equal(t, tt.want.Defense, got.Defense)
			assert.InDelta(t, tt.want.Speed, got.Speed, 1e-9)
			assert.InDelta(t, tt.want.Dodge, got.Dodge, 1e-9)
			assert.InDelta(t, tt.want.Crit, got.Crit, 1e-9)
		})
	}
}

func TestModifiersAreOrderIndependent(t *testing.T) {
	catalog := testCatalog()
	stats := gamedata.Stats{Strength: 20, Agility: 12}

	buff := NewBuff(gamedata.StatAttack, 0.5, true, 3, "rage")
	flat := NewDebuff(gamedata.StatAttack, 4, false, 3, "intimidate")
	speed := NewDebuff(gamedata.StatSpeed, 0.5, true, 2, "slow")

	a := fighter(catalog, "a", entity.SidePlayer, stats, nil, nil)
	a.ApplyStatusEffect(buff)
	a.ApplyStatusEffect(flat)
	a.ApplyStatusEffect(speed)

	b := fighter(catalog, "b", entity.SidePlayer, stats, nil, nil)
	b.ApplyStatusEffect(speed)
	b.ApplyStatusEffect(flat)
	b.ApplyStatusEffect(buff)

	assert.Equal(t, a.DeriveStats(), b.DeriveStats())
	// attack 23: +11.5 from the fraction buff, -4 flat
	assert.Equal(t, 30, a.Attack())
	assert.InDelta(t, 55.0, a.Speed(), 1e-9)
}

func TestHPBounds(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	require.Equal(t, 100, c.MaxHP())

	dealt, died := c.TakeDamage(-5)
	assert.Equal(t, 0, dealt)
	assert.False(t, died)
	assert.Equal(t, 100, c.HP())

	assert.Equal(t, 0, c.Heal(50), "heal at full HP")

	dealt, died = c.TakeDamage(30)
	assert.Equal(t, 30, dealt)
	assert.False(t, died)

	assert.Equal(t, 30, c.Heal(500))
	assert.Equal(t, 100, c.HP())

	dealt, died = c.TakeDamage(1000)
	assert.Equal(t, 100, dealt)
	assert.True(t, died)
	assert.Equal(t, 0, c.HP())
	assert.False(t, c.IsAlive())

	assert.Equal(t, 0, c.Heal(10), "dead characters are not healed")
	assert.Equal(t, 0, c.HP())
}

func TestMeterCarryOver(t *testing.T) {
	// agility 10 -> speed 100
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{Agility: 10}, nil, nil)

	full := c.AdvanceMeter(1.4, 1.0)
	assert.True(t, full)
	assert.InDelta(t, 140.0, c.Meter(), 1e-9)

	c.SpendMeter(MeterFull)
	assert.InDelta(t, 40.0, c.Meter(), 1e-9)

	c.SpendMeter(70)
	assert.Equal(t, 0.0, c.Meter(), "meter never goes negative")

	assert.False(t, c.AdvanceMeter(0.5, 1.0))
	assert.InDelta(t, 50.0, c.Meter(), 1e-9)
	assert.False(t, c.AdvanceMeter(-1, 1.0))
	assert.InDelta(t, 50.0, c.Meter(), 1e-9)
}

func TestCooldownsAndEligibility(t *testing.T) {
	catalog := testCatalog()
	c := fighter(catalog, "c", entity.SidePlayer, gamedata.Stats{Agility: 10},
		[]string{"punch", "jab", "locked", "ghost"}, nil)

	assert.Equal(t, []string{"skill:ghost"}, c.Missing())
	assert.Len(t, c.Skills(), 3)
	assert.Empty(t, c.Eligible(), "empty meter")

	c.AdvanceMeter(0.5, 1) // meter 50
	assert.Equal(t, []string{"jab"}, skillIDs(c.Eligible()))

	c.AdvanceMeter(0.5, 1) // meter 100
	assert.Equal(t, []string{"punch", "jab"}, skillIDs(c.Eligible()))

	punch := catalog.Skills.GetByID("punch")
	c.startCooldown(punch)
	assert.Equal(t, 2, c.Cooldown("punch"))
	assert.False(t, c.CanUse(punch))

	var seen []int
	for i := 0; i < 4; i++ {
		c.tickCooldowns()
		seen = append(seen, c.Cooldown("punch"))
	}
	assert.Equal(t, []int{1, 0, 0, 0}, seen, "drops by one per own turn and stops at zero")
	assert.True(t, c.CanUse(punch))
}

func TestTurnsSinceUsed(t *testing.T) {
	catalog := testCatalog()
	c := fighter(catalog, "c", entity.SidePlayer, gamedata.Stats{}, []string{"jab"}, nil)

	assert.Equal(t, -1, c.TurnsSinceUsed("jab"))
	c.turns = 2
	c.startCooldown(catalog.Skills.GetByID("jab"))
	c.turns = 5
	assert.Equal(t, 3, c.TurnsSinceUsed("jab"))
}

func TestDamageOverTimeTicks(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	c.ApplyStatusEffect(NewDamageOverTime(0.10, true, 3, "poison"))

	for i, wantHP := range []int{90, 80, 70} {
		ticks := c.tickStatusEffects(nil)
		require.Len(t, ticks, 1)
		assert.Equal(t, 10, ticks[0].Damage)
		assert.Equal(t, wantHP, c.HP(), "tick %d", i+1)
		assert.Equal(t, i == 2, ticks[0].Ended)
	}
	assert.Empty(t, c.Effects(), "expired effect removed")

	assert.Nil(t, c.tickStatusEffects(nil))
	assert.Equal(t, 70, c.HP())
}

func TestBuffExpires(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{Strength: 10}, nil, nil)
	c.ApplyStatusEffect(NewBuff(gamedata.StatStrength, 5, false, 2, "bulk"))
	assert.Equal(t, 15, c.DeriveStats().Base.Strength)

	c.tickStatusEffects(nil)
	assert.Equal(t, 15, c.DeriveStats().Base.Strength)
	c.tickStatusEffects(nil)
	assert.Equal(t, 10, c.DeriveStats().Base.Strength)
}

func TestCleanse(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	c.ApplyStatusEffect(NewBuff(gamedata.StatAttack, 2, false, 3, "a"))
	c.ApplyStatusEffect(NewDebuff(gamedata.StatSpeed, 2, false, 3, "b"))
	c.ApplyStatusEffect(NewDamageOverTime(5, false, 3, "c"))
	require.True(t, c.HasNegativeEffect())

	assert.Equal(t, 2, c.Cleanse())
	assert.False(t, c.HasNegativeEffect())
	assert.True(t, c.HasEffectFrom("a"))
	assert.Len(t, c.Effects(), 1)
}

func TestShieldAbsorb(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	c.AddShield(10)
	c.AddShield(-3)
	assert.Equal(t, 10, c.Shield())

	assert.Equal(t, 6, c.absorb(6))
	assert.Equal(t, 4, c.absorb(20))
	assert.Equal(t, 0, c.Shield())
	assert.Equal(t, 0, c.absorb(5))
}

func TestRawDamage(t *testing.T) {
	catalog := testCatalog()
	punch := catalog.Skills.GetByID("punch")
	stats := gamedata.Stats{Strength: 20, Agility: 10}

	plain := fighter(catalog, "plain", entity.SidePlayer, stats, nil, nil)
	assert.Equal(t, 20, plain.RawDamage(punch))

	brute := fighter(catalog, "brute", entity.SidePlayer, stats, nil, []string{"brute"})
	assert.Equal(t, 30, brute.RawDamage(punch))

	raged := fighter(catalog, "raged", entity.SidePlayer, stats, nil, nil)
	raged.ApplyStatusEffect(NewBuff(gamedata.StatAttack, 0.5, true, 3, "rage"))
	assert.Equal(t, 30, raged.RawDamage(punch), "attack 33 over unmodified 22")

	assert.Equal(t, 0, plain.RawDamage(nil))
}

func TestFrozenCharacterIgnoresChanges(t *testing.T) {
	c := fighter(testCatalog(), "c", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	c.TakeDamage(50)
	c.frozen = true

	dealt, _ := c.TakeDamage(10)
	assert.Equal(t, 0, dealt)
	assert.Equal(t, 0, c.Heal(10))
	c.ApplyStatusEffect(NewBuff(gamedata.StatAttack, 1, false, 2, "x"))
	assert.Empty(t, c.Effects())
	assert.Equal(t, 50, c.HP())

	c.resetForBattle()
	assert.False(t, c.Frozen())
	assert.Equal(t, 100, c.HP())
}

func skillIDs(skills []*gamedata.SkillDef) []string {
	ids := make([]string, len(skills))
	for i, s := range skills {
		ids[i] = s.ID
	}
	return ids
}

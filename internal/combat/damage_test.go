package combat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

func TestApplyDamage(t *testing.T) {
	catalog := testCatalog()
	punch := catalog.Skills.GetByID("punch")
	pierce := catalog.Skills.GetByID("pierce")

	tests := []struct {
		name     string
		attacker gamedata.Stats
		passives []string
		defender gamedata.Stats
		shield   int
		raw      int
		skill    *gamedata.SkillDef
		roll     float64
		want     DamageResult
	}{
		{
			name:     "defense subtracted",
			defender: gamedata.Stats{Endurance: 10},
			raw:      20, skill: punch, roll: 0.99,
			want: DamageResult{Raw: 20, Amount: 15},
		},
		{
			name:     "floor of one",
			defender: gamedata.Stats{Endurance: 100},
			raw:      1, skill: punch, roll: 0.99,
			want: DamageResult{Raw: 1, Amount: 1},
		},
		{
			name:     "ignore defense",
			defender: gamedata.Stats{Endurance: 20},
			raw:      20, skill: pierce, roll: 0.99,
			want: DamageResult{Raw: 20, Amount: 20},
		},
		{
			name:     "crit before mitigation",
			passives: []string{"eagle_eye"},
			defender: gamedata.Stats{Endurance: 10},
			raw:      20, skill: punch, roll: 0.99,
			want: DamageResult{Raw: 20, Amount: 25, Crit: true},
		},
		{
			name:     "dodge",
			defender: gamedata.Stats{Flexibility: 30},
			raw:      20, skill: punch, roll: 0,
			want: DamageResult{Raw: 20, Dodged: true},
		},
		{
			name:   "shield absorbs first",
			shield: 10,
			raw:    15, skill: punch, roll: 0.99,
			want: DamageResult{Raw: 15, Amount: 5, Absorbed: 10},
		},
		{
			name: "lethal",
			raw:  500, skill: punch, roll: 0.99,
			want: DamageResult{Raw: 500, Amount: 100, Killed: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attacker := fighter(catalog, "A", entity.SidePlayer, tt.attacker, nil, tt.passives)
			defender := fighter(catalog, "D", entity.SideEnemy, tt.defender, nil, nil)
			defender.AddShield(tt.shield)
			e, rec := newTestEngine(t, attacker, defender, WithRoller(fixedRoller(tt.roll)))
			hpBefore := defender.HP()

			got := e.ApplyDamage(attacker, defender, tt.raw, tt.skill)

			assert.Equal(t, tt.want.Raw, got.Raw)
			assert.Equal(t, tt.want.Amount, got.Amount)
			assert.Equal(t, tt.want.Absorbed, got.Absorbed)
			assert.Equal(t, tt.want.Dodged, got.Dodged)
			assert.Equal(t, tt.want.Crit, got.Crit)
			assert.Equal(t, tt.want.Killed, got.Killed)
			assert.Equal(t, hpBefore-tt.want.Amount, defender.HP())

			ev, ok := rec.Last(EventDamageApplied)
			require.True(t, ok)
			assert.Equal(t, got, ev.Damage)
		})
	}
}

func TestDodgedSkillAttachesNoEffects(t *testing.T) {
	catalog := testCatalog()
	attacker := fighter(catalog, "A", entity.SidePlayer, gamedata.Stats{Strength: 10}, nil, nil)
	defender := fighter(catalog, "D", entity.SideEnemy, gamedata.Stats{Flexibility: 30}, nil, nil)
	e, rec := newTestEngine(t, attacker, defender, WithRoller(fixedRoller(0)))

	e.execute(attacker, defender, catalog.Skills.GetByID("poison"))

	assert.Equal(t, defender.MaxHP(), defender.HP())
	assert.Empty(t, defender.Effects())
	assert.Equal(t, 0, rec.Count(EventStatusApplied))
	assert.Contains(t, rec.Logs(), "D dodges!")
}

func TestCounterStanceReflects(t *testing.T) {
	catalog := testCatalog()
	attacker := fighter(catalog, "A", entity.SidePlayer, gamedata.Stats{}, nil, nil)
	defender := fighter(catalog, "D", entity.SideEnemy, gamedata.Stats{}, []string{"mirror"}, nil)
	e, rec := newTestEngine(t, attacker, defender)

	e.execute(defender, attacker, catalog.Skills.GetByID("mirror"))
	require.Equal(t, 0.5, defender.DeriveStats().Counter)

	e.ApplyDamage(attacker, defender, 20, nil)
	assert.Equal(t, 80, defender.HP())
	assert.Equal(t, 90, attacker.HP())

	ev, ok := rec.Last(EventDamageApplied)
	require.True(t, ok)
	assert.True(t, ev.Damage.Reflected)
	assert.Same(t, attacker, ev.Damage.Target)
}

func TestSkillExecution(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name  string
		skill string
		check func(t *testing.T, user, opponent *Character)
	}{
		{"heal and cleanse", "mend", func(t *testing.T, user, _ *Character) {
			assert.Equal(t, 90, user.HP(), "60 + 30")
			assert.False(t, user.HasNegativeEffect())
		}},
		{"shield", "guard", func(t *testing.T, user, _ *Character) {
			assert.Equal(t, 20, user.Shield())
		}},
		{"buff self", "rage", func(t *testing.T, user, _ *Character) {
			assert.True(t, user.HasEffectFrom("rage"))
			assert.Equal(t, 15, user.Attack())
		}},
		{"debuff opponent", "slow", func(t *testing.T, user, opponent *Character) {
			assert.True(t, opponent.HasEffectFrom("slow"))
			assert.False(t, user.HasEffectFrom("slow"))
			assert.InDelta(t, 25.0, opponent.Speed(), 1e-9)
		}},
		{"counter stance", "mirror", func(t *testing.T, user, _ *Character) {
			assert.InDelta(t, 0.5, user.DeriveStats().Counter, 1e-9)
		}},
		{"damage over time", "poison", func(t *testing.T, _, opponent *Character) {
			require.Len(t, opponent.Effects(), 1)
			assert.Equal(t, KindDamageOverTime, opponent.Effects()[0].Kind)
			assert.Equal(t, 99, opponent.HP(), "power 1 initial hit")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := fighter(catalog, "U", entity.SidePlayer, gamedata.Stats{Strength: 10}, nil, nil)
			opponent := fighter(catalog, "O", entity.SideEnemy, gamedata.Stats{}, nil, nil)
			user.TakeDamage(40)
			user.ApplyStatusEffect(NewDebuff(gamedata.StatAgility, 2, false, 3, "hex"))
			e, _ := newTestEngine(t, user, opponent)

			e.execute(user, opponent, catalog.Skills.GetByID(tt.skill))
			tt.check(t, user, opponent)
		})
	}
}

func TestEstimateDamage(t *testing.T) {
	catalog := testCatalog()
	attacker := fighter(catalog, "A", entity.SidePlayer, gamedata.Stats{Strength: 20}, nil, nil)
	defender := fighter(catalog, "D", entity.SideEnemy, gamedata.Stats{Endurance: 10}, nil, nil)

	assert.Equal(t, 15, EstimateDamage(attacker, defender, catalog.Skills.GetByID("punch")))
	assert.Equal(t, 20, EstimateDamage(attacker, defender, catalog.Skills.GetByID("pierce")))
	assert.Equal(t, 0, EstimateDamage(attacker, defender, catalog.Skills.GetByID("mend")))
}

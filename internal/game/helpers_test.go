package game

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/samdwyer/repbattle/internal/gamedata"
)

const tick = 100 * time.Millisecond

// testCatalog has one class whose first skill one-shots every enemy, a
// regular enemy and a boss.
func testCatalog() *gamedata.Catalog {
	skills := []gamedata.SkillDef{
		{ID: "smash", Name: "Smash", Type: gamedata.SkillDamage, Cost: 100, Power: 1000},
		{ID: "poke", Name: "Poke", Type: gamedata.SkillDamage, Cost: 100, Power: 5},
		{ID: "stretch", Name: "Stretch", Type: gamedata.SkillBuff, Cost: 100},
	}
	enemies := []gamedata.EnemyDef{
		{ID: "slime", Name: "Slime", Glyph: "s", Level: 1, Stats: gamedata.Stats{Strength: 2},
			Skills: []string{"poke"}, SpawnWeight: 3},
		{ID: "rat", Name: "Rat", Glyph: "r", Level: 1, Stats: gamedata.Stats{Strength: 2},
			Skills: []string{"poke"}, SpawnWeight: 1},
		{ID: "king", Name: "King Slime", Glyph: "K", Level: 2, Stats: gamedata.Stats{Strength: 4, Stamina: 5},
			Skills: []string{"poke"}, Boss: true},
	}
	classes := []gamedata.ClassDef{
		{ID: "tester", Name: "Tester", Symbol: "T", Stats: gamedata.Stats{Agility: 10},
			Skills: []string{"smash", "stretch"}},
		{ID: "idler", Name: "Idler", Symbol: "I", Stats: gamedata.Stats{Agility: 10},
			Skills: []string{"stretch"}},
	}
	return gamedata.NewCatalog(skills, nil, enemies, classes)
}

func testConfig() Config {
	return Config{
		Seed:         1,
		TickInterval: tick,
		PlayerName:   "Hero",
		ClassID:      "tester",
		PlayerLevel:  1,
		Bouts:        2,
		LevelStep:    1,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// advanceUntilAwaiting ticks until the player is asked for a skill.
func advanceUntilAwaiting(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 100; i++ {
		if s.Engine().Awaiting() {
			return
		}
		s.Advance(tick)
	}
	t.Fatalf("player never became ready (phase %s)", s.Phase())
}

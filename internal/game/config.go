package game

import (
	"time"

	"github.com/samdwyer/repbattle/internal/combat"
	"github.com/samdwyer/repbattle/internal/config"
)

// Config holds the options a session is built from.
type Config struct {
	// Seed for enemy selection and combat rolls. Runs with the same seed and
	// the same inputs play out identically.
	Seed uint64

	// TickInterval is both the wall-clock cadence of the interactive loop and
	// the simulated time added per tick.
	TickInterval time.Duration

	Rules combat.Rules

	PlayerName  string
	ClassID     string
	PlayerLevel int

	// Loadout overrides. Empty keeps the class default.
	SkillIDs   []string
	PassiveIDs []string

	Bouts     int // Gauntlet length
	LevelStep int // Enemy levels gained per bout
}

// FromSettings derives session options from loaded settings.
func FromSettings(s config.Config) Config {
	return Config{
		Seed:         s.Seed,
		TickInterval: s.TickInterval,
		Rules: combat.Rules{
			SpeedFactor:    s.SpeedFactor,
			CritMultiplier: s.CritMultiplier,
		},
		PlayerName:  s.Player.Name,
		ClassID:     s.Player.Class,
		PlayerLevel: s.Player.Level,
		SkillIDs:    s.Player.Skills,
		PassiveIDs:  s.Player.Passives,
		Bouts:       s.Gauntlet.Length,
		LevelStep:   s.Gauntlet.LevelStep,
	}
}

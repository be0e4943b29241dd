// Package entity provides profile snapshots that combatants are built from.
package entity

import (
	"errors"
	"fmt"

	"github.com/samdwyer/repbattle/internal/gamedata"
)

// Side says who drives a profile's decisions in combat.
type Side int

const (
	// SidePlayer profiles wait for an external skill choice.
	SidePlayer Side = iota
	// SideEnemy profiles are driven by the AI.
	SideEnemy
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Loadout limits.
const (
	MaxSkills   = 5
	MaxPassives = 2
)

// Profile is a read-only snapshot of everything combat needs about a fighter.
// The owning profile store keeps its own copy; combat never writes back.
type Profile struct {
	Name       string
	Side       Side
	ClassID    string // Class or "monster" for enemies
	SourceID   string // Enemy definition ID or avatar reference (cosmetic only)
	Level      int
	Stats      gamedata.Stats
	SkillIDs   []string
	PassiveIDs []string
	Glyph      rune
	Color      string
}

// NewPlayerProfile builds a player profile from a class at the given level,
// using the class default loadout.
func NewPlayerProfile(name string, class *gamedata.ClassDef, level int) (Profile, error) {
	if class == nil {
		return Profile{}, errors.New("nil class definition")
	}
	if level < 1 {
		level = 1
	}
	return Profile{
		Name:       name,
		Side:       SidePlayer,
		ClassID:    class.ID,
		SourceID:   "class:" + class.ID,
		Level:      level,
		Stats:      class.StatsAt(level).Clamped(),
		SkillIDs:   clip(class.Skills, MaxSkills),
		PassiveIDs: clip(class.Passives, MaxPassives),
		Glyph:      class.SymbolRune(),
		Color:      "#FFFF00",
	}, nil
}

// NewEnemyProfile builds an enemy profile at the given level. A level below
// the definition's own level uses the definition level.
func NewEnemyProfile(def *gamedata.EnemyDef, level int) (Profile, error) {
	if def == nil {
		return Profile{}, errors.New("nil enemy definition")
	}
	if level < def.Level {
		level = def.Level
	}
	return Profile{
		Name:       def.Name,
		Side:       SideEnemy,
		ClassID:    "monster",
		SourceID:   def.ID,
		Level:      level,
		Stats:      def.StatsAt(level).Clamped(),
		SkillIDs:   clip(def.Skills, MaxSkills),
		PassiveIDs: clip(def.Passives, MaxPassives),
		Glyph:      def.GlyphRune(),
		Color:      def.Color,
	}, nil
}

// WithLoadout returns a copy of p equipped with the given skills and passives.
// Entries the catalog does not know, or that the class may not use, are
// rejected.
func (p Profile) WithLoadout(catalog *gamedata.Catalog, skillIDs, passiveIDs []string) (Profile, error) {
	if len(skillIDs) > MaxSkills {
		return p, fmt.Errorf("loadout has %d skills, max %d", len(skillIDs), MaxSkills)
	}
	if len(passiveIDs) > MaxPassives {
		return p, fmt.Errorf("loadout has %d passives, max %d", len(passiveIDs), MaxPassives)
	}

	ultimates := 0
	for _, id := range skillIDs {
		s := catalog.Skills.GetByID(id)
		if s == nil {
			return p, fmt.Errorf("unknown skill %q", id)
		}
		if p.Side == SidePlayer && !s.AllowedFor(p.ClassID) {
			return p, fmt.Errorf("skill %q is not available to class %s", id, p.ClassID)
		}
		if s.Ultimate {
			ultimates++
		}
	}
	if ultimates > 1 {
		return p, fmt.Errorf("loadout has %d ultimates, max 1", ultimates)
	}
	for _, id := range passiveIDs {
		ps := catalog.Passives.GetByID(id)
		if ps == nil {
			return p, fmt.Errorf("unknown passive %q", id)
		}
		if p.Side == SidePlayer && !ps.AllowedFor(p.ClassID) {
			return p, fmt.Errorf("passive %q is not available to class %s", id, p.ClassID)
		}
	}

	p.SkillIDs = append([]string(nil), skillIDs...)
	p.PassiveIDs = append([]string(nil), passiveIDs...)
	return p, nil
}

func clip(ids []string, n int) []string {
	if len(ids) > n {
		ids = ids[:n]
	}
	return append([]string(nil), ids...)
}

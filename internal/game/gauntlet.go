package game

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/samdwyer/repbattle/internal/entity"
	"github.com/samdwyer/repbattle/internal/gamedata"
)

// ErrGauntletCleared is returned by Next once every bout has been handed out.
var ErrGauntletCleared = errors.New("gauntlet cleared")

// Gauntlet hands out a fixed number of opponents. Regular bouts draw from the
// spawn table; the last bout is a boss when the catalog has one. Enemy level
// rises by levelStep each bout.
type Gauntlet struct {
	enemies   *gamedata.EnemyRegistry
	rng       *rand.Rand
	length    int
	baseLevel int
	levelStep int
	bout      int // Bouts handed out so far
}

// NewGauntlet creates a gauntlet seeded for reproducible opponent order.
func NewGauntlet(enemies *gamedata.EnemyRegistry, seed uint64, length, baseLevel, levelStep int) *Gauntlet {
	return &Gauntlet{
		enemies:   enemies,
		rng:       rand.New(rand.NewPCG(seed, seed+1)),
		length:    max(length, 1),
		baseLevel: max(baseLevel, 1),
		levelStep: max(levelStep, 0),
	}
}

// Next returns the profile of the next opponent.
func (g *Gauntlet) Next() (entity.Profile, error) {
	if g.Done() {
		return entity.Profile{}, ErrGauntletCleared
	}

	var def *gamedata.EnemyDef
	if g.bout == g.length-1 {
		if bosses := g.enemies.Bosses(); len(bosses) > 0 {
			def = bosses[g.rng.IntN(len(bosses))]
		}
	}
	if def == nil {
		def = g.enemies.SpawnRandom(g.rng)
	}
	if def == nil {
		return entity.Profile{}, errors.New("no spawnable enemies")
	}

	level := g.baseLevel + g.bout*g.levelStep
	profile, err := entity.NewEnemyProfile(def, level)
	if err != nil {
		return entity.Profile{}, fmt.Errorf("bout %d: %w", g.bout+1, err)
	}
	g.bout++
	return profile, nil
}

// Bout returns the 1-based number of the bout last handed out.
func (g *Gauntlet) Bout() int { return g.bout }

// Length returns the total number of bouts.
func (g *Gauntlet) Length() int { return g.length }

// Done reports whether every bout has been handed out.
func (g *Gauntlet) Done() bool { return g.bout >= g.length }

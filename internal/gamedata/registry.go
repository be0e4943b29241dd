package gamedata

import (
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
)

// EnemyRegistry holds loaded enemy definitions and provides spawning utilities.
type EnemyRegistry struct {
	enemies     []EnemyDef
	byID        map[string]*EnemyDef
	totalWeight int
}

// NewEnemyRegistry creates a registry from loaded enemy definitions.
func NewEnemyRegistry(enemies []EnemyDef) *EnemyRegistry {
	registry := &EnemyRegistry{
		enemies: enemies,
		byID:    make(map[string]*EnemyDef, len(enemies)),
	}
	for i := range enemies {
		registry.byID[enemies[i].ID] = &enemies[i]
		registry.totalWeight += enemies[i].SpawnWeight
	}
	return registry
}

// SpawnRandom selects a random enemy definition using weighted probability.
// Enemies with higher spawnWeight are more likely to be selected.
func (r *EnemyRegistry) SpawnRandom(rng *rand.Rand) *EnemyDef {
	if r.totalWeight <= 0 || len(r.enemies) == 0 {
		return nil
	}

	roll := rng.IntN(r.totalWeight)

	cumulative := 0
	for i := range r.enemies {
		cumulative += r.enemies[i].SpawnWeight
		if roll < cumulative {
			return &r.enemies[i]
		}
	}

	// Fallback (shouldn't happen)
	return &r.enemies[0]
}

// GetByID returns the enemy definition with the given ID, or nil if not found.
func (r *EnemyRegistry) GetByID(id string) *EnemyDef {
	return r.byID[id]
}

// Bosses returns all enemies flagged as bosses, in file order.
func (r *EnemyRegistry) Bosses() []*EnemyDef {
	var bosses []*EnemyDef
	for i := range r.enemies {
		if r.enemies[i].Boss {
			bosses = append(bosses, &r.enemies[i])
		}
	}
	return bosses
}

// All returns all enemy definitions.
func (r *EnemyRegistry) All() []EnemyDef {
	return r.enemies
}

// Count returns the number of enemy types in the registry.
func (r *EnemyRegistry) Count() int {
	return len(r.enemies)
}

// =============================================================================
// SkillRegistry
// =============================================================================

// SkillRegistry holds loaded skill definitions and provides lookup utilities.
type SkillRegistry struct {
	skills map[string]*SkillDef
	all    []SkillDef
}

// NewSkillRegistry creates a registry from loaded skill definitions.
func NewSkillRegistry(skills []SkillDef) *SkillRegistry {
	registry := &SkillRegistry{
		skills: make(map[string]*SkillDef, len(skills)),
		all:    skills,
	}
	for i := range skills {
		skills[i].normalize()
		registry.skills[skills[i].ID] = &skills[i]
	}
	return registry
}

// GetByID returns the skill definition with the given ID, or nil if not found.
func (r *SkillRegistry) GetByID(id string) *SkillDef {
	return r.skills[id]
}

// GetMultiple returns skill definitions for a list of IDs.
// Missing IDs are silently skipped.
func (r *SkillRegistry) GetMultiple(ids []string) []*SkillDef {
	result := make([]*SkillDef, 0, len(ids))
	for _, id := range ids {
		if skill := r.skills[id]; skill != nil {
			result = append(result, skill)
		}
	}
	return result
}

// Count returns the number of skills in the registry.
func (r *SkillRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// PassiveRegistry
// =============================================================================

// PassiveRegistry holds loaded passive definitions.
type PassiveRegistry struct {
	passives map[string]*PassiveDef
	all      []PassiveDef
}

// NewPassiveRegistry creates a registry from loaded passive definitions.
func NewPassiveRegistry(passives []PassiveDef) *PassiveRegistry {
	registry := &PassiveRegistry{
		passives: make(map[string]*PassiveDef, len(passives)),
		all:      passives,
	}
	for i := range passives {
		if passives[i].Trigger == "" {
			passives[i].Trigger = TriggerAlways
		}
		registry.passives[passives[i].ID] = &passives[i]
	}
	return registry
}

// GetByID returns the passive definition with the given ID, or nil if not found.
func (r *PassiveRegistry) GetByID(id string) *PassiveDef {
	return r.passives[id]
}

// Count returns the number of passives in the registry.
func (r *PassiveRegistry) Count() int {
	return len(r.all)
}

// =============================================================================
// Catalog
// =============================================================================

// Catalog bundles every registry. It is handed to the engine, the AI and the
// profile builders and is never mutated; a reload builds a new one.
type Catalog struct {
	Skills   *SkillRegistry
	Passives *PassiveRegistry
	Enemies  *EnemyRegistry
	classes  map[string]*ClassDef
	classIDs []string
}

// NewCatalog assembles a catalog from already-loaded definitions.
func NewCatalog(skills []SkillDef, passives []PassiveDef, enemies []EnemyDef, classes []ClassDef) *Catalog {
	c := &Catalog{
		Skills:   NewSkillRegistry(skills),
		Passives: NewPassiveRegistry(passives),
		Enemies:  NewEnemyRegistry(enemies),
		classes:  make(map[string]*ClassDef, len(classes)),
	}
	for i := range classes {
		c.classes[classes[i].ID] = &classes[i]
		c.classIDs = append(c.classIDs, classes[i].ID)
	}
	return c
}

// LoadCatalog loads the embedded catalog.
func LoadCatalog() (*Catalog, error) {
	return LoadCatalogFS(dataFS)
}

// LoadCatalogFS loads a catalog from the four JSON files in fsys.
func LoadCatalogFS(fsys fs.FS) (*Catalog, error) {
	skills, err := LoadFS[SkillsFile](fsys, "skills.json")
	if err != nil {
		return nil, err
	}
	passives, err := LoadFS[PassivesFile](fsys, "passives.json")
	if err != nil {
		return nil, err
	}
	enemies, err := LoadFS[EnemiesFile](fsys, "enemies.json")
	if err != nil {
		return nil, err
	}
	classes, err := LoadFS[ClassesFile](fsys, "classes.json")
	if err != nil {
		return nil, err
	}

	if len(skills.Skills) == 0 {
		return nil, errors.New("no skills loaded from skills.json")
	}
	if len(enemies.Enemies) == 0 {
		return nil, errors.New("no enemies loaded from enemies.json")
	}
	if err := errors.Join(
		checkUniqueIDs(skills.Skills, passives.Passives, enemies.Enemies, classes.Classes),
		checkDefinitions(skills.Skills, passives.Passives),
	); err != nil {
		return nil, err
	}

	return NewCatalog(skills.Skills, passives.Passives, enemies.Enemies, classes.Classes), nil
}

// MustLoadCatalog loads the embedded catalog, panicking on error.
func MustLoadCatalog() *Catalog {
	catalog, err := LoadCatalog()
	if err != nil {
		panic(err)
	}
	return catalog
}

// Class returns the class definition with the given ID, or nil if not found.
func (c *Catalog) Class(id string) *ClassDef {
	return c.classes[id]
}

// ClassIDs returns class identifiers in file order.
func (c *Catalog) ClassIDs() []string {
	return c.classIDs
}

// Dangling reports loadout references that do not resolve. These are not
// fatal: the engine treats unknown entries as no-ops.
func (c *Catalog) Dangling() []string {
	var missing []string
	check := func(owner string, skills, passives []string) {
		for _, id := range skills {
			if c.Skills.GetByID(id) == nil {
				missing = append(missing, fmt.Sprintf("%s: skill %q", owner, id))
			}
		}
		for _, id := range passives {
			if c.Passives.GetByID(id) == nil {
				missing = append(missing, fmt.Sprintf("%s: passive %q", owner, id))
			}
		}
	}
	for _, e := range c.Enemies.All() {
		check("enemy "+e.ID, e.Skills, e.Passives)
	}
	for _, id := range c.classIDs {
		cl := c.classes[id]
		check("class "+cl.ID, cl.Skills, cl.Passives)
	}
	return missing
}

func checkUniqueIDs(skills []SkillDef, passives []PassiveDef, enemies []EnemyDef, classes []ClassDef) error {
	var errs []error
	seen := map[string]bool{}
	dup := func(kind, id string) {
		key := kind + "/" + id
		if id == "" {
			errs = append(errs, fmt.Errorf("%s with empty id", kind))
			return
		}
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate %s id %q", kind, id))
		}
		seen[key] = true
	}
	for _, s := range skills {
		dup("skill", s.ID)
	}
	for _, p := range passives {
		dup("passive", p.ID)
	}
	for _, e := range enemies {
		dup("enemy", e.ID)
	}
	for _, cl := range classes {
		dup("class", cl.ID)
	}
	return errors.Join(errs...)
}

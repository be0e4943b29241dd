package gamedata

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID       string   `json:"id"`       // Unique identifier (e.g., "lifter")
	Name     string   `json:"name"`     // Display name (e.g., "Lifter")
	Symbol   string   `json:"symbol"`   // Single character for rendering (e.g., "L")
	Stats    Stats    `json:"stats"`    // Base stats at level 1
	Growth   Stats    `json:"growth"`   // Stats gained per level
	Skills   []string `json:"skills"`   // Default loadout, in slot order
	Passives []string `json:"passives"` // Default passives
}

// SymbolRune returns the symbol as a rune for rendering.
func (c *ClassDef) SymbolRune() rune {
	if len(c.Symbol) == 0 {
		return '?'
	}
	return rune(c.Symbol[0])
}

// StatsAt returns the class stats for a character of the given level.
func (c *ClassDef) StatsAt(level int) Stats {
	if level <= 1 {
		return c.Stats
	}
	return c.Stats.Add(c.Growth.Scale(level - 1))
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`
}

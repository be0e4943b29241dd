package gamedata

// EnemyDef defines an enemy type loaded from JSON.
type EnemyDef struct {
	ID          string   `json:"id"`          // Unique identifier (e.g., "slime")
	Name        string   `json:"name"`        // Display name (e.g., "Slime")
	Glyph       string   `json:"glyph"`       // Single character for rendering (e.g., "s")
	Color       string   `json:"color"`       // Hex color code (e.g., "#00FF00")
	Level       int      `json:"level"`       // Level used for skill unlocks
	Stats       Stats    `json:"stats"`       // Base stats at Level
	Growth      Stats    `json:"growth"`      // Stats gained per level above Level
	Skills      []string `json:"skills"`      // Equipped skill IDs, in slot order
	Passives    []string `json:"passives"`    // Equipped passive IDs
	SpawnWeight int      `json:"spawnWeight"` // Relative spawn frequency (higher = more common)
	Boss        bool     `json:"boss,omitempty"`
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// StatsAt returns the enemy's base stats scaled to the given level.
func (e *EnemyDef) StatsAt(level int) Stats {
	if level <= e.Level {
		return e.Stats
	}
	return e.Stats.Add(e.Growth.Scale(level - e.Level))
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

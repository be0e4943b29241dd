package gamedata

// Stat names a value that status effects can modify. The first five are base
// stats taken from a profile; the rest are derived during combat.
type Stat string

const (
	StatStrength    Stat = "strength"
	StatEndurance   Stat = "endurance"
	StatAgility     Stat = "agility"
	StatFlexibility Stat = "flexibility"
	StatStamina     Stat = "stamina"

	StatAttack  Stat = "attack"
	StatDefense Stat = "defense"
	StatSpeed   Stat = "speed"
	StatDodge   Stat = "dodge"
	StatCrit    Stat = "crit"
	// StatCounter is the fraction of incoming damage reflected while a
	// counter stance is active.
	StatCounter Stat = "counter"
)

// Stats holds the five base stats of a profile or combatant.
type Stats struct {
	Strength    int `json:"strength"`
	Endurance   int `json:"endurance"`
	Agility     int `json:"agility"`
	Flexibility int `json:"flexibility"`
	Stamina     int `json:"stamina"`
}

// Get returns the named base stat, or 0 for derived stats.
func (s Stats) Get(stat Stat) int {
	switch stat {
	case StatStrength:
		return s.Strength
	case StatEndurance:
		return s.Endurance
	case StatAgility:
		return s.Agility
	case StatFlexibility:
		return s.Flexibility
	case StatStamina:
		return s.Stamina
	default:
		return 0
	}
}

// Add returns the field-wise sum of s and o.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Strength:    s.Strength + o.Strength,
		Endurance:   s.Endurance + o.Endurance,
		Agility:     s.Agility + o.Agility,
		Flexibility: s.Flexibility + o.Flexibility,
		Stamina:     s.Stamina + o.Stamina,
	}
}

// Scale returns s with every field multiplied by n.
func (s Stats) Scale(n int) Stats {
	return Stats{
		Strength:    s.Strength * n,
		Endurance:   s.Endurance * n,
		Agility:     s.Agility * n,
		Flexibility: s.Flexibility * n,
		Stamina:     s.Stamina * n,
	}
}

// Clamped returns s with negative fields raised to zero.
func (s Stats) Clamped() Stats {
	return Stats{
		Strength:    max(0, s.Strength),
		Endurance:   max(0, s.Endurance),
		Agility:     max(0, s.Agility),
		Flexibility: max(0, s.Flexibility),
		Stamina:     max(0, s.Stamina),
	}
}

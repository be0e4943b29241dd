package combat

// MeterFull is the action meter value that grants a turn.
const MeterFull = 100.0

// Derived stat clamps.
const (
	MaxDodge = 0.30
	MaxCrit  = 1.0
)

// Rules holds the tunable constants of the simulation.
type Rules struct {
	// SpeedFactor scales meter gain: meter += speed * SpeedFactor * seconds.
	SpeedFactor float64
	// CritMultiplier is applied to raw damage on a critical hit, before
	// defense is subtracted.
	CritMultiplier float64
}

// DefaultRules returns the standard tuning.
func DefaultRules() Rules {
	return Rules{
		SpeedFactor:    1.0,
		CritMultiplier: 1.5,
	}
}

func (r Rules) normalized() Rules {
	d := DefaultRules()
	if r.SpeedFactor <= 0 {
		r.SpeedFactor = d.SpeedFactor
	}
	if r.CritMultiplier < 1 {
		r.CritMultiplier = d.CritMultiplier
	}
	return r
}

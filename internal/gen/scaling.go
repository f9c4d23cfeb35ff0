package gen

import "math"

// Densities are per-cell placement fractions for one level.
type Densities struct {
	Crates    float64
	Melee     float64
	Ranged    float64
	Boss      float64
	Health    float64
	Arrows    float64
	Fireballs float64
	Water     float64
	Trees     float64
}

// ForLevel returns the densities for a level index. Enemies and water ramp
// up with depth while healing thins out. Bosses appear from level 2.
func ForLevel(level int) Densities {
	if level < 0 {
		level = 0
	}
	l := float64(level)

	d := Densities{
		Crates:    0.02,
		Melee:     math.Min(0.004+0.001*l, 0.012),
		Ranged:    math.Min(0.002+0.001*l, 0.010),
		Health:    math.Max(0.004-0.0004*l, 0.001),
		Arrows:    0.004,
		Fireballs: 0.002,
		Water:     math.Min(0.04+0.01*l, 0.12),
		Trees:     0.3,
	}
	if level >= 2 {
		d.Boss = math.Min(0.0003+0.0001*l, 0.0015)
	}
	return d
}

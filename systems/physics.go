// Package systems contains the snowfall simulation: the flake pool, the
// spawn/recycle policy and the physics integrator.
package systems

import (
	"math"

	"github.com/pthm-cable/snowfall/config"
)

// Integration limits.
const (
	MaxDT = 0.033 // Largest step after a stall, in seconds
	MaxVX = 80.0  // Symmetric horizontal speed limit
	MinVY = 5.0   // Flakes never stop falling
	MaxVY = 120.0 // Terminal velocity
)

// Gust harmonic shape: a weaker second sine at a higher frequency.
const (
	gustHarmonicFreq  = 2.3
	gustHarmonicPhase = 1.2
	gustHarmonicGain  = 0.4
)

// PhysicsSystem advances flakes under gravity, gust, turbulence and flutter.
type PhysicsSystem struct {
	layers  []config.LayerConfig
	drag    float64
	gust    config.GustConfig
	spawner *Spawner
}

// NewPhysicsSystem creates a physics system for a resolved config.
func NewPhysicsSystem(cfg config.Config, spawner *Spawner) *PhysicsSystem {
	return &PhysicsSystem{
		layers:  cfg.Layers,
		drag:    cfg.Drag,
		gust:    cfg.Gust,
		spawner: spawner,
	}
}

// ClampDT bounds a frame step to [0, MaxDT].
func ClampDT(dt float64) float64 {
	return clamp(dt, 0, MaxDT)
}

// Gust returns the shared horizontal wind at time t (seconds).
func (s *PhysicsSystem) Gust(t float64) float64 {
	w := 2 * math.Pi * s.gust.FrequencyHz
	primary := math.Sin(t*w) * s.gust.Amplitude
	secondary := math.Sin(t*w*gustHarmonicFreq+gustHarmonicPhase) * s.gust.Amplitude * gustHarmonicGain
	return primary + secondary
}

// Step integrates one flake by dt seconds at time t under the frame's gust.
func (s *PhysicsSystem) Step(f *Flake, dt, t, gust float64) {
	layer := &s.layers[f.LayerIndex]

	// Position-coupled turbulence: smooth drift instead of per-frame noise
	turbX := math.Sin(f.Y*0.008+f.Phase) + math.Cos(f.X*0.006-f.Phase*0.7)
	turbY := math.Sin(f.X*0.007+f.Phase*1.3) * 0.3

	// Flutter: gentle lateral oscillation, faster in nearer layers
	flutter := math.Sin(f.Phase+t*(1.5+float64(f.LayerIndex)*0.4)) * (1.2 + f.Radius*0.25)

	f.AX = (gust + flutter + turbX*layer.WindTurbulence) * 0.8
	f.AY = layer.Gravity + turbY*layer.WindTurbulence*0.3

	f.VX += f.AX * dt
	f.VY += f.AY * dt
	f.VX *= s.drag
	f.VY *= s.drag

	f.VX = clamp(f.VX, -MaxVX, MaxVX)
	f.VY = clamp(f.VY, MinVY, MaxVY)

	f.X += f.VX * dt
	f.Y += f.VY * dt
}

// SweepStats counts spawns during one sweep.
type SweepStats struct {
	Spawned  int // Inactive flakes activated
	Recycled int // Flakes respawned after leaving the region
}

// Sweep advances every flake in layer order for a w×h viewport. Inactive
// flakes are spawned first; flakes that leave the region are respawned in
// the same sweep. visit, if non-nil, is called for each flake afterwards.
func (s *PhysicsSystem) Sweep(p *FlakePool, w, h, dt, t float64, visit func(*Flake)) SweepStats {
	var stats SweepStats
	gust := s.Gust(t)

	for i := range p.Flakes {
		f := &p.Flakes[i]
		if !f.Active {
			s.spawner.Spawn(f, f.LayerIndex, w, h)
			stats.Spawned++
		}

		s.Step(f, dt, t, gust)

		if OutOfBounds(f, w, h) {
			s.spawner.Spawn(f, f.LayerIndex, w, h)
			stats.Recycled++
		}

		if visit != nil {
			visit(f)
		}
	}

	return stats
}

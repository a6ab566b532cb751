package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/snowfall/config"
)

// Spawn and recycle geometry, in surface units.
const (
	SpawnPadX      = 100.0 // Horizontal slack on both sides at spawn
	SpawnTopMin    = -10.0 // Lowest spawn y (just above the top edge)
	SpawnTopFrac   = 0.2   // Highest spawn y is -SpawnTopFrac*height
	RecycleBelow   = 20.0  // Recycle once y > height+RecycleBelow
	RecycleSidePad = 150.0 // Recycle once x leaves [-pad, width+pad]

	sizeSkew = 2.2 // Radius distribution exponent, biased toward the minimum
)

// Spawner (re)initializes flakes in place.
type Spawner struct {
	layers []config.LayerConfig
	rng    *rand.Rand
}

// NewSpawner creates a spawner for the given layers.
func NewSpawner(layers []config.LayerConfig, rng *rand.Rand) *Spawner {
	return &Spawner{layers: layers, rng: rng}
}

// Spawn activates f with fresh size, opacity, velocity and phase, placed
// just above the visible top edge of a w×h viewport.
func (s *Spawner) Spawn(f *Flake, layerIndex int, w, h float64) {
	layer := &s.layers[layerIndex]
	f.Active = true
	f.LayerIndex = layerIndex

	f.Radius = randPow(s.rng, layer.SizePx.Min(), layer.SizePx.Max(), sizeSkew)
	f.Opacity = randRange(s.rng, layer.Opacity.Min(), layer.Opacity.Max())

	// Larger flakes start faster, with ±20% jitter
	sizeRatio := 0.0
	if layer.SizePx.Max() > 0 {
		sizeRatio = f.Radius / layer.SizePx.Max()
	}
	f.VY = layer.Gravity * (0.3 + sizeRatio*0.4) * randRange(s.rng, 0.8, 1.2)
	f.VX = layer.Wind * randRange(s.rng, -0.3, 0.5)

	f.AX = 0
	f.AY = 0

	f.Phase = randRange(s.rng, 0, 2*math.Pi)

	f.X = randRange(s.rng, -SpawnPadX, w+SpawnPadX)
	f.Y = randRange(s.rng, -h*SpawnTopFrac, SpawnTopMin)
}

// SpawnAll force-spawns every flake and spreads them over the full height so
// the first frame does not show snow raining in from the top.
func (s *Spawner) SpawnAll(p *FlakePool, w, h float64) {
	for i := range p.Flakes {
		f := &p.Flakes[i]
		s.Spawn(f, f.LayerIndex, w, h)
		f.Y = randRange(s.rng, -h*SpawnTopFrac, h)
	}
}

// OutOfBounds reports whether f has left the permitted region.
func OutOfBounds(f *Flake, w, h float64) bool {
	return f.Y > h+RecycleBelow || f.X < -RecycleSidePad || f.X > w+RecycleSidePad
}

package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/snowfall/config"
)

// Flake is one pooled snow particle. Flakes are reset in place on respawn
// and never allocated after the pool is built.
type Flake struct {
	Active     bool
	LayerIndex int

	X, Y   float64
	VX, VY float64
	AX, AY float64

	Radius  float64 // Fixed between spawns
	Opacity float64 // Fixed between spawns
	Phase   float64 // Radians, decorrelates oscillatory forcing
}

// FlakePool is a fixed arena of flakes partitioned by layer.
// Slot i belongs to the same layer for the lifetime of the pool.
type FlakePool struct {
	Flakes     []Flake
	layerStart []int
}

// NewFlakePool allocates exactly the sum of layer counts. Slots are assigned
// to layers in order; every flake starts inactive with a random phase.
func NewFlakePool(layers []config.LayerConfig, rng *rand.Rand) *FlakePool {
	total := 0
	for _, l := range layers {
		total += l.Count
	}

	p := &FlakePool{
		Flakes:     make([]Flake, total),
		layerStart: make([]int, len(layers)+1),
	}

	idx := 0
	for li, l := range layers {
		p.layerStart[li] = idx
		for j := 0; j < l.Count; j++ {
			p.Flakes[idx] = Flake{
				LayerIndex: li,
				Phase:      rng.Float64() * 2 * math.Pi,
			}
			idx++
		}
	}
	p.layerStart[len(layers)] = idx

	return p
}

// Len returns the pool size.
func (p *FlakePool) Len() int {
	return len(p.Flakes)
}

// At returns the flake in slot i.
func (p *FlakePool) At(i int) *Flake {
	return &p.Flakes[i]
}

// Layers returns the number of layers the pool was built for.
func (p *FlakePool) Layers() int {
	return len(p.layerStart) - 1
}

// LayerRange returns the half-open slot range [start, end) of a layer.
func (p *FlakePool) LayerRange(layer int) (start, end int) {
	return p.layerStart[layer], p.layerStart[layer+1]
}

// ActiveCount returns the number of active flakes.
func (p *FlakePool) ActiveCount() int {
	n := 0
	for i := range p.Flakes {
		if p.Flakes[i].Active {
			n++
		}
	}
	return n
}

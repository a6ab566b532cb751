// Package renderer draws the simulation onto a surface.Context.
package renderer

import (
	"github.com/pthm-cable/snowfall/surface"
	"github.com/pthm-cable/snowfall/systems"
)

// Glow tuning.
const (
	GlowMinRadius = 2.0 // Flakes at or below this radius are always flat discs
	GlowSpread    = 1.5 // Gradient radius as a multiple of the flake radius
)

// glowStops fade from an opaque white center to transparent white.
var glowStops = []surface.GradientStop{
	{Offset: 0, Alpha: 1},
	{Offset: 0.4, Alpha: 0.6},
	{Offset: 1, Alpha: 0},
}

// GlowStops returns a copy of the gradient used for glowing flakes.
func GlowStops() []surface.GradientStop {
	return append([]surface.GradientStop(nil), glowStops...)
}

// FlakeRenderer renders snow flakes.
type FlakeRenderer struct {
	glow bool
}

// NewFlakeRenderer creates a new flake renderer.
func NewFlakeRenderer(glow bool) *FlakeRenderer {
	return &FlakeRenderer{glow: glow}
}

// BeginFrame clears the whole w×h surface and enables additive blending
// when glow is on.
func (r *FlakeRenderer) BeginFrame(ctx surface.Context, w, h float64) {
	ctx.SetAlpha(1)
	ctx.Clear(w, h)
	if r.glow {
		ctx.SetComposite(surface.CompositeLighter)
	}
}

// DrawFlake paints one active flake.
func (r *FlakeRenderer) DrawFlake(ctx surface.Context, f *systems.Flake) {
	if !f.Active {
		return
	}
	ctx.SetAlpha(f.Opacity)
	if r.glow && f.Radius > GlowMinRadius {
		ctx.FillRadialGradient(f.X, f.Y, f.Radius*GlowSpread, glowStops)
		return
	}
	ctx.FillCircle(f.X, f.Y, f.Radius)
}

// EndFrame restores normal compositing so additive blending never leaks into
// unrelated drawing on the same surface.
func (r *FlakeRenderer) EndFrame(ctx surface.Context) {
	ctx.SetComposite(surface.CompositeSourceOver)
}

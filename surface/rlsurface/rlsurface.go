// Package rlsurface implements surface.Canvas and surface.Host on top of a
// raylib window. Flakes are drawn into an off-screen render texture sized
// at the backing resolution, which is then presented over the window.
package rlsurface

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/surface"
)

const glowSpriteSize = 128

// Window is a raylib-backed canvas and host. The raylib window must be
// initialized before New is called.
type Window struct {
	surface.Scheduler

	ReducedMotion bool

	target             rl.RenderTexture2D
	backingW, backingH int
	screenW, screenH   int32

	ctx context
}

// New creates a window surface for the current raylib window.
func New(reducedMotion bool) *Window {
	w := &Window{
		ReducedMotion: reducedMotion,
		screenW:       int32(rl.GetScreenWidth()),
		screenH:       int32(rl.GetScreenHeight()),
	}
	w.ctx.scale = 1
	w.ctx.alpha = 1
	return w
}

// Context2D returns the raylib drawing context.
func (w *Window) Context2D() surface.Context {
	return &w.ctx
}

// ClientSize returns the window size in screen units.
func (w *Window) ClientSize() (float64, float64) {
	return float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
}

// SetBackingSize reallocates the render texture when the size changes.
func (w *Window) SetBackingSize(bw, bh int) {
	if bw == w.backingW && bh == w.backingH && w.target.ID != 0 {
		return
	}
	if w.target.ID != 0 {
		rl.UnloadRenderTexture(w.target)
		w.target = rl.RenderTexture2D{}
	}
	w.backingW, w.backingH = bw, bh
	if bw <= 0 || bh <= 0 {
		return
	}
	w.target = rl.LoadRenderTexture(int32(bw), int32(bh))
	rl.SetTextureFilter(w.target.Texture, rl.FilterBilinear)

	// A fresh texture holds garbage until the first frame clears it
	rl.BeginTextureMode(w.target)
	rl.ClearBackground(rl.Blank)
	rl.EndTextureMode()
}

// BackingSize returns the render texture size.
func (w *Window) BackingSize() (int, int) {
	return w.backingW, w.backingH
}

// PixelRatio returns the monitor scale reported by raylib.
func (w *Window) PixelRatio() float64 {
	return float64(rl.GetWindowScaleDPI().X)
}

// PrefersReducedMotion returns the configured preference.
func (w *Window) PrefersReducedMotion() bool {
	return w.ReducedMotion
}

// Now returns the raylib clock.
func (w *Window) Now() time.Duration {
	return time.Duration(rl.GetTime() * float64(time.Second))
}

// Frame dispatches resize notifications and runs pending frame callbacks
// with drawing redirected into the render texture. Call once per loop
// iteration, outside BeginDrawing.
func (w *Window) Frame() {
	w.handleResize()

	if w.target.ID == 0 {
		return
	}
	rl.BeginTextureMode(w.target)
	w.Pump(w.Now())
	w.ctx.endBlend()
	rl.EndTextureMode()
}

// Present draws the render texture over the whole window.
func (w *Window) Present() {
	if w.target.ID == 0 {
		return
	}
	tex := w.target.Texture
	// Render textures are stored bottom-up
	src := rl.NewRectangle(0, 0, float32(tex.Width), -float32(tex.Height))
	dst := rl.NewRectangle(0, 0, float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
	rl.DrawTexturePro(tex, src, dst, rl.Vector2{}, 0, rl.White)
}

// Close releases GPU resources.
func (w *Window) Close() {
	if w.target.ID != 0 {
		rl.UnloadRenderTexture(w.target)
		w.target = rl.RenderTexture2D{}
	}
	w.ctx.unloadSprite()
}

// handleResize checks for window resize and notifies listeners.
func (w *Window) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	sw := int32(rl.GetScreenWidth())
	sh := int32(rl.GetScreenHeight())
	if sw == w.screenW && sh == w.screenH {
		return
	}
	w.screenW, w.screenH = sw, sh
	w.NotifyResize()
}

// context draws into whatever render target is active.
type context struct {
	scale    float64
	alpha    float64
	additive bool

	sprite      rl.Texture2D
	spriteStops []surface.GradientStop
}

func (c *context) SetTransform(scale float64) { c.scale = scale }

func (c *context) Clear(w, h float64) {
	rl.ClearBackground(rl.Blank)
}

func (c *context) SetAlpha(alpha float64) { c.alpha = alpha }

func (c *context) SetComposite(op surface.Composite) {
	switch op {
	case surface.CompositeLighter:
		if !c.additive {
			rl.BeginBlendMode(rl.BlendAdditive)
			c.additive = true
		}
	default:
		c.endBlend()
	}
}

func (c *context) endBlend() {
	if c.additive {
		rl.EndBlendMode()
		c.additive = false
	}
}

func (c *context) FillCircle(x, y, r float64) {
	s := c.scale
	rl.DrawCircleV(
		rl.NewVector2(float32(x*s), float32(y*s)),
		float32(r*s),
		rl.Fade(rl.White, float32(c.alpha)),
	)
}

// FillRadialGradient stretches a cached gradient sprite over the circle.
// The sprite is rebuilt only when the stop list changes.
func (c *context) FillRadialGradient(x, y, r float64, stops []surface.GradientStop) {
	c.ensureSprite(stops)
	s := c.scale
	size := float32(2 * r * s)
	src := rl.NewRectangle(0, 0, float32(c.sprite.Width), float32(c.sprite.Height))
	dst := rl.NewRectangle(float32((x-r)*s), float32((y-r)*s), size, size)
	rl.DrawTexturePro(c.sprite, src, dst, rl.Vector2{}, 0, rl.Fade(rl.White, float32(c.alpha)))
}

func (c *context) ensureSprite(stops []surface.GradientStop) {
	if c.sprite.ID != 0 && surface.StopsEqual(c.spriteStops, stops) {
		return
	}
	c.unloadSprite()
	img := rl.NewImageFromImage(surface.GradientImage(glowSpriteSize, stops))
	c.sprite = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(c.sprite, rl.FilterBilinear)
	c.spriteStops = append(c.spriteStops[:0], stops...)
}

func (c *context) unloadSprite() {
	if c.sprite.ID != 0 {
		rl.UnloadTexture(c.sprite)
		c.sprite = rl.Texture2D{}
	}
}

// Package ebitensurface implements surface.Canvas and surface.Host as an
// ebiten.Game. Frame callbacks run from Draw, once per refresh, and paint an
// offscreen image at the backing resolution that is then copied to the
// screen.
package ebitensurface

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/pthm-cable/snowfall/surface"
)

const (
	discSpriteSize = 64
	glowSpriteSize = 128
)

// Game adapts the snowfall surface contracts to ebiten's game loop.
type Game struct {
	surface.Scheduler

	ReducedMotion bool

	// OnUpdate, if set, runs at the start of every tick. Returning a non-nil
	// error (for example ebiten.Termination) ends the game loop.
	OnUpdate func() error

	start time.Time

	outsideW, outsideH float64
	resized            bool

	offscreen          *ebiten.Image
	backingW, backingH int

	ctx context
}

// New creates an ebiten surface. The window size is the initial client size
// until ebiten reports the real one through Layout.
func New(width, height int, reducedMotion bool) *Game {
	g := &Game{
		ReducedMotion: reducedMotion,
		start:         time.Now(),
		outsideW:      float64(width),
		outsideH:      float64(height),
	}
	g.ctx.scale = 1
	g.ctx.alpha = 1
	g.ctx.blend = ebiten.BlendSourceOver
	return g
}

// Context2D returns the ebiten drawing context.
func (g *Game) Context2D() surface.Context {
	return &g.ctx
}

// ClientSize returns the outside size last reported by ebiten.
func (g *Game) ClientSize() (float64, float64) {
	return g.outsideW, g.outsideH
}

// SetBackingSize reallocates the offscreen image when the size changes.
func (g *Game) SetBackingSize(w, h int) {
	if w == g.backingW && h == g.backingH && g.offscreen != nil {
		return
	}
	if g.offscreen != nil {
		g.offscreen.Deallocate()
		g.offscreen = nil
	}
	g.backingW, g.backingH = w, h
	if w > 0 && h > 0 {
		g.offscreen = ebiten.NewImage(w, h)
	}
	g.ctx.dst = g.offscreen
}

// BackingSize returns the offscreen image size.
func (g *Game) BackingSize() (int, int) {
	return g.backingW, g.backingH
}

// PixelRatio returns the device scale factor of the current monitor.
func (g *Game) PixelRatio() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// PrefersReducedMotion returns the configured preference.
func (g *Game) PrefersReducedMotion() bool {
	return g.ReducedMotion
}

// Now returns the time elapsed since the surface was created.
func (g *Game) Now() time.Duration {
	return time.Since(g.start)
}

// Update delivers pending resize notifications and runs the OnUpdate hook.
func (g *Game) Update() error {
	if g.resized {
		g.resized = false
		g.NotifyResize()
	}
	if g.OnUpdate != nil {
		return g.OnUpdate()
	}
	return nil
}

// Draw runs the pending frame callbacks and copies the result to screen.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.offscreen == nil {
		return
	}
	g.Pump(g.Now())
	g.ctx.blend = ebiten.BlendSourceOver

	op := &ebiten.DrawImageOptions{}
	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	if sw != g.backingW || sh != g.backingH {
		op.GeoM.Scale(float64(sw)/float64(g.backingW), float64(sh)/float64(g.backingH))
		op.Filter = ebiten.FilterLinear
	}
	screen.DrawImage(g.offscreen, op)
}

// Layout records the outside size and renders the screen at the backing
// resolution once it is known.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	ow, oh := float64(outsideWidth), float64(outsideHeight)
	if ow != g.outsideW || oh != g.outsideH {
		g.outsideW, g.outsideH = ow, oh
		g.resized = true
	}
	if g.backingW > 0 && g.backingH > 0 {
		return g.backingW, g.backingH
	}
	return outsideWidth, outsideHeight
}

// context draws sprites onto the offscreen image.
type context struct {
	dst   *ebiten.Image
	scale float64
	alpha float64
	blend ebiten.Blend

	disc      *ebiten.Image
	glow      *ebiten.Image
	glowStops []surface.GradientStop

	op ebiten.DrawImageOptions
}

func (c *context) SetTransform(scale float64) { c.scale = scale }

func (c *context) Clear(w, h float64) {
	if c.dst != nil {
		c.dst.Clear()
	}
}

func (c *context) SetAlpha(alpha float64) { c.alpha = alpha }

func (c *context) SetComposite(op surface.Composite) {
	if op == surface.CompositeLighter {
		c.blend = ebiten.BlendLighter
		return
	}
	c.blend = ebiten.BlendSourceOver
}

func (c *context) FillCircle(x, y, r float64) {
	if c.disc == nil {
		c.disc = ebiten.NewImageFromImage(surface.DiscImage(discSpriteSize))
	}
	c.drawSprite(c.disc, x, y, r)
}

func (c *context) FillRadialGradient(x, y, r float64, stops []surface.GradientStop) {
	if c.glow == nil || !surface.StopsEqual(c.glowStops, stops) {
		if c.glow != nil {
			c.glow.Deallocate()
		}
		c.glow = ebiten.NewImageFromImage(surface.GradientImage(glowSpriteSize, stops))
		c.glowStops = append(c.glowStops[:0], stops...)
	}
	c.drawSprite(c.glow, x, y, r)
}

// drawSprite stretches sprite over the circle (x, y, r) in viewport units.
func (c *context) drawSprite(sprite *ebiten.Image, x, y, r float64) {
	if c.dst == nil {
		return
	}
	size := float64(sprite.Bounds().Dx())
	k := 2 * r * c.scale / size

	c.op.GeoM.Reset()
	c.op.GeoM.Scale(k, k)
	c.op.GeoM.Translate((x-r)*c.scale, (y-r)*c.scale)
	c.op.ColorScale.Reset()
	c.op.ColorScale.ScaleAlpha(float32(c.alpha))
	c.op.Blend = c.blend
	c.op.Filter = ebiten.FilterLinear
	c.dst.DrawImage(sprite, &c.op)
}

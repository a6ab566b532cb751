package surface

import "time"

// OpKind identifies a recorded drawing operation.
type OpKind uint8

const (
	OpClear OpKind = iota
	OpCircle
	OpGradient
	OpComposite
)

// Op is one recorded drawing call.
type Op struct {
	Kind      OpKind
	X, Y, R   float64
	Alpha     float64   // Global alpha at the time of the call
	Composite Composite // Composite op at the time of the call (or the new op for OpComposite)
	Stops     []GradientStop
}

// HeadlessCanvas is an off-screen canvas that records drawing calls instead
// of rasterizing them. It backs the -headless CLI mode and tests.
type HeadlessCanvas struct {
	Width, Height float64 // Client size in viewport units
	NoContext     bool    // Simulate a canvas without 2D support
	Record        bool    // Keep every Op of the current frame in Ops

	backingW, backingH int
	ctx                headlessContext
}

// NewHeadlessCanvas creates a headless canvas with the given client size.
func NewHeadlessCanvas(w, h float64) *HeadlessCanvas {
	return &HeadlessCanvas{Width: w, Height: h}
}

// Context2D returns the recording context, or nil when NoContext is set.
func (c *HeadlessCanvas) Context2D() Context {
	if c.NoContext {
		return nil
	}
	c.ctx.canvas = c
	return &c.ctx
}

// ClientSize returns the configured client size.
func (c *HeadlessCanvas) ClientSize() (float64, float64) {
	return c.Width, c.Height
}

// SetBackingSize records the backing store size.
func (c *HeadlessCanvas) SetBackingSize(w, h int) {
	c.backingW, c.backingH = w, h
}

// BackingSize returns the backing store size.
func (c *HeadlessCanvas) BackingSize() (int, int) {
	return c.backingW, c.backingH
}

// Ops returns the operations recorded since the last clear.
func (c *HeadlessCanvas) Ops() []Op {
	return c.ctx.ops
}

// Stats returns draw counters since the last clear.
func (c *HeadlessCanvas) Stats() DrawStats {
	return c.ctx.stats
}

// Scale returns the last transform scale.
func (c *HeadlessCanvas) Scale() float64 {
	return c.ctx.scale
}

// Composite returns the current composite operation.
func (c *HeadlessCanvas) Composite() Composite {
	return c.ctx.composite
}

// DrawStats counts drawing calls of one frame.
type DrawStats struct {
	Clears    int
	Circles   int
	Gradients int
}

type headlessContext struct {
	canvas    *HeadlessCanvas
	scale     float64
	alpha     float64
	composite Composite
	ops       []Op
	stats     DrawStats
}

func (h *headlessContext) record(op Op) {
	if h.canvas.Record {
		h.ops = append(h.ops, op)
	}
}

func (h *headlessContext) SetTransform(scale float64) { h.scale = scale }

func (h *headlessContext) Clear(w, hgt float64) {
	h.ops = h.ops[:0]
	h.stats = DrawStats{Clears: 1}
	h.record(Op{Kind: OpClear, X: w, Y: hgt, Alpha: h.alpha, Composite: h.composite})
}

func (h *headlessContext) SetAlpha(alpha float64) { h.alpha = alpha }

func (h *headlessContext) SetComposite(op Composite) {
	h.composite = op
	h.record(Op{Kind: OpComposite, Composite: op})
}

func (h *headlessContext) FillCircle(x, y, r float64) {
	h.stats.Circles++
	h.record(Op{Kind: OpCircle, X: x, Y: y, R: r, Alpha: h.alpha, Composite: h.composite})
}

func (h *headlessContext) FillRadialGradient(x, y, r float64, stops []GradientStop) {
	h.stats.Gradients++
	h.record(Op{Kind: OpGradient, X: x, Y: y, R: r, Alpha: h.alpha, Composite: h.composite, Stops: stops})
}

// HeadlessHost is a Host whose clock only moves when Advance is called.
type HeadlessHost struct {
	Scheduler

	Ratio         float64
	ReducedMotion bool

	now time.Duration
}

// NewHeadlessHost creates a host with pixel ratio 1 at time zero.
func NewHeadlessHost() *HeadlessHost {
	return &HeadlessHost{Ratio: 1}
}

// PixelRatio returns the configured ratio.
func (h *HeadlessHost) PixelRatio() float64 { return h.Ratio }

// PrefersReducedMotion returns the configured preference.
func (h *HeadlessHost) PrefersReducedMotion() bool { return h.ReducedMotion }

// Now returns the simulated clock.
func (h *HeadlessHost) Now() time.Duration { return h.now }

// Advance moves the clock forward by d and runs pending frames.
// It returns the number of frame callbacks executed.
func (h *HeadlessHost) Advance(d time.Duration) int {
	h.now += d
	return h.Pump(h.now)
}

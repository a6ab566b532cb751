// Package surface defines the drawing and host abstractions the simulation
// renders through, so backends (raylib, ebiten, terminal, headless) are
// interchangeable and the core stays testable without a display.
package surface

import "time"

// Composite selects how new paint combines with existing pixels.
type Composite uint8

const (
	CompositeSourceOver Composite = iota // Normal alpha blending
	CompositeLighter                     // Additive blending
)

// String returns the canvas-style name of the operation.
func (c Composite) String() string {
	switch c {
	case CompositeLighter:
		return "lighter"
	default:
		return "source-over"
	}
}

// GradientStop is one white color stop of a radial gradient.
// Offset is in [0,1] along the radius; Alpha is the stop's own alpha.
type GradientStop struct {
	Offset float64
	Alpha  float64
}

// Context is a 2D drawing context. All coordinates are in surface-local
// (viewport) units; the backend applies the pixel-ratio transform.
type Context interface {
	// SetTransform scales subsequent drawing by the given pixel ratio.
	SetTransform(scale float64)
	// Clear erases the rectangle (0,0)-(w,h) to transparent.
	Clear(w, h float64)
	// SetAlpha sets the global alpha applied to every fill.
	SetAlpha(alpha float64)
	// SetComposite sets the compositing operation for subsequent fills.
	SetComposite(op Composite)
	// FillCircle fills a white disc.
	FillCircle(x, y, r float64)
	// FillRadialGradient fills a disc of radius r with a white radial gradient.
	FillRadialGradient(x, y, r float64, stops []GradientStop)
}

// Canvas is a drawable surface with a backing store.
type Canvas interface {
	// Context2D returns the 2D context, or nil if the canvas cannot provide one.
	Context2D() Context
	// ClientSize is the on-screen size of the canvas in viewport units.
	ClientSize() (w, h float64)
	// SetBackingSize resizes the backing store in device pixels.
	SetBackingSize(w, h int)
	// BackingSize returns the current backing store size in device pixels.
	BackingSize() (w, h int)
}

// FrameID identifies a pending frame request.
type FrameID uint64

// Host provides environment inputs and frame scheduling.
type Host interface {
	// PixelRatio is the host's device pixel ratio (uncapped).
	PixelRatio() float64
	// PrefersReducedMotion reports the host's reduced-motion preference.
	PrefersReducedMotion() bool
	// Now returns the host's monotonic frame clock.
	Now() time.Duration
	// RequestFrame schedules fn to run once at the next display refresh.
	RequestFrame(fn func(t time.Duration)) FrameID
	// CancelFrame cancels a pending request. Unknown IDs are ignored.
	CancelFrame(id FrameID)
	// OnResize registers fn to run when the viewport geometry changes and
	// returns a function that removes the registration.
	OnResize(fn func()) (remove func())
}

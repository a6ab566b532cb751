// Package game drives the snowfall simulation: it owns the flake pool, the
// frame schedule and the start/stop/destroy lifecycle on top of an injected
// surface and host.
package game

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/renderer"
	"github.com/pthm-cable/snowfall/surface"
	"github.com/pthm-cable/snowfall/systems"
	"github.com/pthm-cable/snowfall/telemetry"
)

// ErrUnsupportedSurface is returned when a canvas cannot provide a 2D context.
var ErrUnsupportedSurface = errors.New("2D drawing context not supported")

// State is the frame driver state.
type State uint8

const (
	StateStopped State = iota
	StateRunning
)

// String returns the state name.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "stopped"
}

// Options configures optional simulation behavior.
type Options struct {
	Seed          int64                    // RNG seed (0 = time-based)
	Perf          *telemetry.PerfCollector // Frame timing (nil = disabled)
	Output        *telemetry.OutputManager // CSV output (nil = disabled)
	StatsEvery    uint64                   // Frames between telemetry flushes (0 = never)
	LogStats      bool                     // Log perf and layer stats via slog on flush
	StatsCallback func(frame uint64, perf telemetry.PerfStats, layers []telemetry.LayerStats)
}

// Simulation is one snowfall instance bound to a canvas.
type Simulation struct {
	cfg    config.Config
	canvas surface.Canvas
	ctx    surface.Context
	host   surface.Host
	rng    *rand.Rand
	seed   int64

	pool     *systems.FlakePool
	spawner  *systems.Spawner
	physics  *systems.PhysicsSystem
	renderer *renderer.FlakeRenderer
	drawFn   func(*systems.Flake)

	state     State
	destroyed bool
	frameID   surface.FrameID
	lastT     time.Duration
	frames    uint64

	// Viewport in surface units and the capped pixel ratio
	width, height float64
	dpr           float64

	removeResize func()

	// Telemetry
	perf          *telemetry.PerfCollector
	output        *telemetry.OutputManager
	statsEvery    uint64
	logStats      bool
	statsCallback func(uint64, telemetry.PerfStats, []telemetry.LayerStats)
}

// New creates a simulation with default options.
func New(canvas surface.Canvas, host surface.Host, o *config.Override) (*Simulation, error) {
	return NewWithOptions(canvas, host, o, Options{})
}

// NewWithOptions creates a simulation drawing on canvas. The override is
// resolved against the embedded defaults. Construction fails with
// ErrUnsupportedSurface if the canvas has no 2D context; no partial
// simulation is returned.
func NewWithOptions(canvas surface.Canvas, host surface.Host, o *config.Override, opts Options) (*Simulation, error) {
	ctx := canvas.Context2D()
	if ctx == nil {
		return nil, fmt.Errorf("creating simulation: %w", ErrUnsupportedSurface)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	cfg := config.Resolve(config.Defaults(), o)

	s := &Simulation{
		cfg:           cfg,
		canvas:        canvas,
		ctx:           ctx,
		host:          host,
		rng:           rng,
		seed:          seed,
		pool:          systems.NewFlakePool(cfg.Layers, rng),
		renderer:      renderer.NewFlakeRenderer(cfg.Glow),
		dpr:           1,
		perf:          opts.Perf,
		output:        opts.Output,
		statsEvery:    opts.StatsEvery,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	s.spawner = systems.NewSpawner(cfg.Layers, rng)
	s.physics = systems.NewPhysicsSystem(cfg, s.spawner)
	s.drawFn = func(f *systems.Flake) { s.renderer.DrawFlake(s.ctx, f) }

	s.removeResize = host.OnResize(s.Resize)

	return s, nil
}

// Config returns a copy of the resolved configuration.
func (s *Simulation) Config() config.Config {
	return s.cfg.Clone()
}

// State returns the frame driver state.
func (s *Simulation) State() State {
	return s.state
}

// Running reports whether frames are being scheduled.
func (s *Simulation) Running() bool {
	return s.state == StateRunning
}

// Frames returns the number of frames rendered so far.
func (s *Simulation) Frames() uint64 {
	return s.frames
}

// Pool exposes the flake pool for inspection. Nil after Destroy.
func (s *Simulation) Pool() *systems.FlakePool {
	return s.pool
}

// Viewport returns the viewport size in surface units.
func (s *Simulation) Viewport() (w, h float64) {
	return s.width, s.height
}

// PixelRatio returns the capped pixel ratio applied at the last resize.
func (s *Simulation) PixelRatio() float64 {
	return s.dpr
}

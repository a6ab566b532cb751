package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/snowfall/config"
)

func newTestPhysics(cfg config.Config, seed int64) (*PhysicsSystem, *FlakePool) {
	rng := rand.New(rand.NewSource(seed))
	pool := NewFlakePool(cfg.Layers, rng)
	sp := NewSpawner(cfg.Layers, rng)
	return NewPhysicsSystem(cfg, sp), pool
}

func singleFlakeConfig() config.Config {
	return config.Resolve(config.Defaults(), &config.Override{
		Drag: config.Float(0.98),
		Gust: &config.GustOverride{Amplitude: config.Float(0)},
		Layers: []config.LayerConfig{
			{Count: 1, Gravity: 20, Opacity: config.Range{1, 1}, SizePx: config.Range{2, 2}},
		},
	})
}

func TestClampDT(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.016, 0.016},
		{0.033, 0.033},
		{5, 0.033},
	}
	for _, tt := range tests {
		if got := ClampDT(tt.in); got != tt.want {
			t.Errorf("ClampDT(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGust(t *testing.T) {
	cfg := config.Defaults()
	phys, _ := newTestPhysics(cfg, 1)

	// At t=0 only the phase-shifted harmonic contributes
	want := math.Sin(1.2) * cfg.Gust.Amplitude * 0.4
	if got := phys.Gust(0); math.Abs(got-want) > 1e-12 {
		t.Errorf("Gust(0) = %v, want %v", got, want)
	}

	// Quarter period of the primary term
	tq := 1 / (4 * cfg.Gust.FrequencyHz)
	want = cfg.Gust.Amplitude + math.Sin(2*math.Pi*tq*cfg.Gust.FrequencyHz*2.3+1.2)*cfg.Gust.Amplitude*0.4
	if got := phys.Gust(tq); math.Abs(got-want) > 1e-9 {
		t.Errorf("Gust(%v) = %v, want %v", tq, got, want)
	}

	// Bounded by 1.4x amplitude
	for i := 0; i < 1000; i++ {
		g := phys.Gust(float64(i) * 0.37)
		if math.Abs(g) > cfg.Gust.Amplitude*1.4+1e-9 {
			t.Fatalf("gust %v exceeds 1.4x amplitude", g)
		}
	}

	calm, _ := newTestPhysics(singleFlakeConfig(), 1)
	if g := calm.Gust(12.3); g != 0 {
		t.Errorf("zero amplitude gust = %v, want 0", g)
	}
}

func TestStepSingleFlake(t *testing.T) {
	phys, pool := newTestPhysics(singleFlakeConfig(), 1)
	f := pool.At(0)
	f.Active = true
	f.X, f.Y = 400, 100
	f.Radius = 2
	f.VY = 0.3 * 20 // spawn speed with midpoint jitter
	f.VX = 0

	const dt = 0.016
	y0 := f.Y
	phys.Step(f, dt, 1.0, phys.Gust(1.0))

	if f.AY != 20 {
		t.Errorf("AY = %v, want 20 with no turbulence", f.AY)
	}
	wantVY := (6 + 20*dt) * 0.98
	if math.Abs(f.VY-wantVY) > 1e-9 {
		t.Errorf("VY = %v, want %v", f.VY, wantVY)
	}
	if math.Abs(f.VY-6.18) > 0.02 {
		t.Errorf("VY = %v, want ~6.18", f.VY)
	}
	if math.Abs((f.Y-y0)-f.VY*dt) > 1e-9 {
		t.Errorf("y advanced by %v, want vy*dt = %v", f.Y-y0, f.VY*dt)
	}

	// Without wind or turbulence only flutter pushes sideways
	flutter := math.Sin(f.Phase+1.0*1.5) * (1.2 + 2*0.25)
	if math.Abs(f.AX-flutter*0.8) > 1e-9 {
		t.Errorf("AX = %v, want flutter*0.8 = %v", f.AX, flutter*0.8)
	}
}

func TestStepClampsVelocity(t *testing.T) {
	phys, pool := newTestPhysics(config.Defaults(), 3)

	tests := []struct {
		name           string
		vx, vy         float64
		wantVX, wantVY float64
	}{
		{"fast right and down", 500, 500, MaxVX, MaxVY},
		{"fast left and up", -500, -500, -MaxVX, MinVY},
		{"stalled", 0, 0, math.NaN(), MinVY},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := pool.At(0)
			f.X, f.Y = 100, 100
			f.VX, f.VY = tt.vx, tt.vy
			phys.Step(f, 0.016, 0, 0)
			if !math.IsNaN(tt.wantVX) && f.VX != tt.wantVX {
				t.Errorf("VX = %v, want %v", f.VX, tt.wantVX)
			}
			if f.VY != tt.wantVY {
				t.Errorf("VY = %v, want %v", f.VY, tt.wantVY)
			}
		})
	}
}

func TestStepZeroDTOnlyDamps(t *testing.T) {
	phys, pool := newTestPhysics(config.Defaults(), 4)
	f := pool.At(0)
	f.X, f.Y, f.VX, f.VY = 10, 20, 30, 40

	phys.Step(f, 0, 0, 0)

	if f.X != 10 || f.Y != 20 {
		t.Errorf("position moved with dt=0: (%v, %v)", f.X, f.Y)
	}
	if math.Abs(f.VX-30*0.98) > 1e-9 || math.Abs(f.VY-40*0.98) > 1e-9 {
		t.Errorf("velocity = (%v, %v), want drag only", f.VX, f.VY)
	}
}

func TestSweepSpawnsInactive(t *testing.T) {
	phys, pool := newTestPhysics(config.Defaults(), 5)

	stats := phys.Sweep(pool, 800, 600, 0.016, 0, nil)

	if stats.Spawned != pool.Len() {
		t.Errorf("Spawned = %d, want %d", stats.Spawned, pool.Len())
	}
	if pool.ActiveCount() != pool.Len() {
		t.Errorf("ActiveCount = %d, want %d", pool.ActiveCount(), pool.Len())
	}

	stats = phys.Sweep(pool, 800, 600, 0.016, 0.016, nil)
	if stats.Spawned != 0 {
		t.Errorf("second sweep spawned %d, want 0", stats.Spawned)
	}
}

func TestSweepRecyclesWithinFrame(t *testing.T) {
	const w, h = 800.0, 600.0
	phys, pool := newTestPhysics(config.Defaults(), 6)
	phys.Sweep(pool, w, h, 0.016, 0, nil)

	f := pool.At(0)
	f.X, f.Y = 400, h+21

	var seen *Flake
	stats := phys.Sweep(pool, w, h, 0.016, 0.016, func(v *Flake) {
		if v == f {
			seen = v
			if OutOfBounds(v, w, h) {
				t.Errorf("flake visited out of bounds at (%v, %v)", v.X, v.Y)
			}
		}
	})

	if seen == nil {
		t.Fatal("recycled flake was not visited")
	}
	if stats.Recycled < 1 {
		t.Errorf("Recycled = %d, want >= 1", stats.Recycled)
	}
	if f.Y < -0.2*h || f.Y > -10 {
		t.Errorf("recycled y = %v, want spawn band [-0.2h, -10]", f.Y)
	}
	if f.LayerIndex != 0 {
		t.Errorf("recycled flake changed layer to %d", f.LayerIndex)
	}
}

func TestSweepInvariants(t *testing.T) {
	cfg := config.Defaults()
	phys, pool := newTestPhysics(cfg, 8)
	const w, h = 1280.0, 720.0

	type snapshot struct{ r, o float64 }
	prev := make([]snapshot, pool.Len())

	tsec := 0.0
	for frame := 0; frame < 600; frame++ {
		tsec += 1.0 / 60
		stats := phys.Sweep(pool, w, h, ClampDT(1.0/60), tsec, func(f *Flake) {
			layer := cfg.Layers[f.LayerIndex]
			if f.VX < -MaxVX || f.VX > MaxVX {
				t.Fatalf("frame %d: vx %v out of range", frame, f.VX)
			}
			if f.Y > -10 && (f.VY < MinVY || f.VY > MaxVY) {
				t.Fatalf("frame %d: vy %v out of range", frame, f.VY)
			}
			if !layer.SizePx.Contains(f.Radius) || !layer.Opacity.Contains(f.Opacity) {
				t.Fatalf("frame %d: radius %v / opacity %v outside layer ranges", frame, f.Radius, f.Opacity)
			}
			if OutOfBounds(f, w, h) {
				t.Fatalf("frame %d: flake left active out of bounds", frame)
			}
		})
		if frame > 0 && stats.Spawned != 0 {
			t.Fatalf("frame %d: %d inactive flakes found after first frame", frame, stats.Spawned)
		}

		// Radius and opacity only change on respawn, which also moves the
		// flake back above the top edge.
		for i := range pool.Flakes {
			f := &pool.Flakes[i]
			if frame > 0 && (f.Radius != prev[i].r || f.Opacity != prev[i].o) && f.Y > -10 {
				t.Fatalf("frame %d slot %d: drawing params changed without respawn", frame, i)
			}
			prev[i] = snapshot{f.Radius, f.Opacity}
		}
	}
}

func TestSweepVisitsInLayerOrder(t *testing.T) {
	phys, pool := newTestPhysics(config.Defaults(), 10)

	last := -1
	phys.Sweep(pool, 800, 600, 0.016, 0, func(f *Flake) {
		if f.LayerIndex < last {
			t.Fatalf("layer %d visited after layer %d", f.LayerIndex, last)
		}
		last = f.LayerIndex
	})
	if last != 2 {
		t.Errorf("last visited layer = %d, want 2", last)
	}
}

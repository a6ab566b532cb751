package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/surface"
	"github.com/pthm-cable/snowfall/systems"
	"github.com/pthm-cable/snowfall/telemetry"
)

const frameDT = 16 * time.Millisecond

func newTestSim(t *testing.T, o *config.Override) (*Simulation, *surface.HeadlessCanvas, *surface.HeadlessHost) {
	t.Helper()
	canvas := surface.NewHeadlessCanvas(800, 600)
	host := surface.NewHeadlessHost()
	sim, err := NewWithOptions(canvas, host, o, Options{Seed: 42})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	return sim, canvas, host
}

func snapshotPool(p *systems.FlakePool) []systems.Flake {
	return append([]systems.Flake(nil), p.Flakes...)
}

func TestNewUnsupportedSurface(t *testing.T) {
	canvas := surface.NewHeadlessCanvas(800, 600)
	canvas.NoContext = true
	host := surface.NewHeadlessHost()

	sim, err := New(canvas, host, nil)
	if !errors.Is(err, ErrUnsupportedSurface) {
		t.Fatalf("expected ErrUnsupportedSurface, got %v", err)
	}
	if sim != nil {
		t.Error("expected no simulation on failure")
	}
	if host.Listeners() != 0 {
		t.Error("failed construction must not register a resize listener")
	}
}

func TestNewBuildsPool(t *testing.T) {
	sim, _, host := newTestSim(t, nil)

	if sim.Pool().Len() != 410 {
		t.Errorf("pool size = %d, want 410", sim.Pool().Len())
	}
	if sim.Pool().ActiveCount() != 0 {
		t.Error("flakes should start inactive")
	}
	if sim.State() != StateStopped {
		t.Errorf("State = %v, want stopped", sim.State())
	}
	if host.Listeners() != 1 {
		t.Errorf("Listeners = %d, want 1", host.Listeners())
	}
	if host.Pending() != 0 {
		t.Error("construction must not schedule frames")
	}
}

func TestConfigIsReadOnlyCopy(t *testing.T) {
	sim, _, _ := newTestSim(t, &config.Override{Drag: config.Float(0.9)})

	cfg := sim.Config()
	if cfg.Drag != 0.9 {
		t.Errorf("Drag = %v, want 0.9", cfg.Drag)
	}
	cfg.Layers[0].Count = 1
	if sim.Config().Layers[0].Count != 200 {
		t.Error("mutating returned config leaked into simulation")
	}
}

func TestResize(t *testing.T) {
	tests := []struct {
		name           string
		w, h           float64
		ratio          float64
		wantDPR        float64
		wantBW, wantBH int
	}{
		{"unit ratio", 800, 600, 1, 1, 800, 600},
		{"retina", 800, 600, 2, 2, 1600, 1200},
		{"capped", 800, 600, 3, 2, 1600, 1200},
		{"below one", 800, 600, 0.5, 1, 800, 600},
		{"unknown ratio", 800, 600, 0, 1, 800, 600},
		{"fractional size", 100.7, 50.2, 1.5, 1.5, 150, 75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := surface.NewHeadlessCanvas(tt.w, tt.h)
			host := surface.NewHeadlessHost()
			host.Ratio = tt.ratio
			sim, err := New(canvas, host, nil)
			if err != nil {
				t.Fatal(err)
			}

			sim.Resize()
			bw, bh := canvas.BackingSize()
			if bw != tt.wantBW || bh != tt.wantBH {
				t.Errorf("backing = %dx%d, want %dx%d", bw, bh, tt.wantBW, tt.wantBH)
			}
			if sim.PixelRatio() != tt.wantDPR || canvas.Scale() != tt.wantDPR {
				t.Errorf("dpr = %v (transform %v), want %v", sim.PixelRatio(), canvas.Scale(), tt.wantDPR)
			}
			w, h := sim.Viewport()
			if w != math.Floor(tt.w) || h != math.Floor(tt.h) {
				t.Errorf("viewport = %vx%v", w, h)
			}

			// Idempotent with unchanged geometry
			sim.Resize()
			bw2, bh2 := canvas.BackingSize()
			if bw2 != bw || bh2 != bh {
				t.Errorf("second resize changed backing to %dx%d", bw2, bh2)
			}
		})
	}
}

func TestResizeListenerKeepsFlakes(t *testing.T) {
	sim, canvas, host := newTestSim(t, nil)
	sim.Start()
	host.Advance(frameDT)

	before := snapshotPool(sim.Pool())
	canvas.Width, canvas.Height = 1024, 768
	host.NotifyResize()

	w, h := sim.Viewport()
	if w != 1024 || h != 768 {
		t.Errorf("viewport = %vx%v, want 1024x768", w, h)
	}
	for i, f := range sim.Pool().Flakes {
		if f != before[i] {
			t.Fatalf("resize changed flake %d", i)
		}
	}
}

func TestStartSchedulesFrames(t *testing.T) {
	sim, canvas, host := newTestSim(t, nil)
	sim.Start()

	if !sim.Running() {
		t.Fatal("expected running after start")
	}
	if host.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", host.Pending())
	}
	if bw, bh := canvas.BackingSize(); bw != 800 || bh != 600 {
		t.Errorf("backing = %dx%d, want 800x600", bw, bh)
	}

	pool := sim.Pool()
	if pool.ActiveCount() != pool.Len() {
		t.Fatalf("ActiveCount = %d, want %d", pool.ActiveCount(), pool.Len())
	}
	for i := range pool.Flakes {
		if y := pool.Flakes[i].Y; y < -0.2*600 || y > 600 {
			t.Fatalf("flake %d y = %v, want first fill over [-0.2h, h]", i, y)
		}
	}

	for i := 0; i < 10; i++ {
		if ran := host.Advance(frameDT); ran != 1 {
			t.Fatalf("frame %d: ran %d callbacks, want 1", i, ran)
		}
		if host.Pending() != 1 {
			t.Fatalf("frame %d: Pending = %d, want 1", i, host.Pending())
		}
	}
	if sim.Frames() != 10 {
		t.Errorf("Frames = %d, want 10", sim.Frames())
	}
}

func TestFrameDrawsEveryFlake(t *testing.T) {
	sim, canvas, host := newTestSim(t, nil)
	canvas.Record = true
	sim.Start()
	host.Advance(frameDT)

	stats := canvas.Stats()
	if stats.Clears != 1 {
		t.Errorf("Clears = %d, want 1", stats.Clears)
	}
	if stats.Circles+stats.Gradients != sim.Pool().Len() {
		t.Errorf("drew %d flakes, want %d", stats.Circles+stats.Gradients, sim.Pool().Len())
	}
	if stats.Gradients == 0 {
		t.Error("expected glow gradients for large flakes with default config")
	}
	if canvas.Composite() != surface.CompositeSourceOver {
		t.Error("additive blending leaked past frame end")
	}

	// Layers are painted far to near: the first 200 draws are far flakes
	var draws []surface.Op
	for _, op := range canvas.Ops() {
		if op.Kind == surface.OpCircle || op.Kind == surface.OpGradient {
			draws = append(draws, op)
		}
	}
	if len(draws) != sim.Pool().Len() {
		t.Fatalf("recorded %d draws, want %d", len(draws), sim.Pool().Len())
	}
	for i, op := range draws[:200] {
		if op.R > 2.2*1.5 {
			t.Fatalf("draw %d radius %v too large for the far layer", i, op.R)
		}
	}
	for i, op := range draws[340:] {
		if op.Kind != surface.OpGradient {
			t.Fatalf("near draw %d is not a glow gradient", i)
		}
	}
}

func TestReducedMotion(t *testing.T) {
	sim, canvas, host := newTestSim(t, nil)
	host.ReducedMotion = true
	host.Ratio = 2

	sim.Start()

	if bw, bh := canvas.BackingSize(); bw != 1600 || bh != 1200 {
		t.Errorf("backing = %dx%d, want surface sized to 1600x1200", bw, bh)
	}
	if sim.Running() {
		t.Error("reduced motion must leave the simulation stopped")
	}
	if host.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", host.Pending())
	}

	before := snapshotPool(sim.Pool())
	host.Advance(time.Second)
	for i, f := range sim.Pool().Flakes {
		if f != before[i] {
			t.Fatalf("flake %d changed under reduced motion", i)
		}
	}
	if sim.Frames() != 0 {
		t.Errorf("Frames = %d, want 0", sim.Frames())
	}
}

func TestStopFreezesAndIsIdempotent(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()
	host.Advance(frameDT)
	host.Advance(frameDT)

	sim.Stop()
	sim.Stop()

	if sim.Running() {
		t.Error("expected stopped")
	}
	if host.Pending() != 0 {
		t.Errorf("Pending = %d after stop, want 0", host.Pending())
	}

	before := snapshotPool(sim.Pool())
	host.Advance(frameDT)
	for i, f := range sim.Pool().Flakes {
		if f != before[i] {
			t.Fatalf("flake %d moved after stop", i)
		}
	}

	// Restart resumes scheduling
	sim.Start()
	if host.Advance(frameDT) != 1 {
		t.Error("expected a frame after restart")
	}
}

func TestStartWhileRunningKeepsSingleSchedule(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()
	sim.Start()

	if host.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", host.Pending())
	}
	if ran := host.Advance(frameDT); ran != 1 {
		t.Errorf("ran %d frames, want 1", ran)
	}
}

func TestDestroy(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()
	host.Advance(frameDT)

	sim.Destroy()
	sim.Destroy()

	if host.Listeners() != 0 {
		t.Errorf("Listeners = %d, want 0", host.Listeners())
	}
	if host.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", host.Pending())
	}
	if sim.Pool() != nil {
		t.Error("expected pool released")
	}

	sim.Start()
	if host.Pending() != 0 {
		t.Error("start after destroy must not schedule frames")
	}
}

func TestStallClampsStep(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()
	host.Advance(frameDT)

	before := snapshotPool(sim.Pool())
	host.Advance(10 * time.Second)

	maxStep := systems.MaxVY*systems.MaxDT + 1e-9
	for i, f := range sim.Pool().Flakes {
		if f.Radius != before[i].Radius {
			continue // recycled
		}
		if dy := f.Y - before[i].Y; dy > maxStep {
			t.Fatalf("flake %d moved %v after stall, want <= %v", i, dy, maxStep)
		}
	}
}

func TestEndToEndSingleFlake(t *testing.T) {
	sim, _, host := newTestSim(t, &config.Override{
		Drag: config.Float(0.98),
		Gust: &config.GustOverride{Amplitude: config.Float(0)},
		Layers: []config.LayerConfig{
			{Count: 1, Gravity: 20, Wind: 0, WindTurbulence: 0, Opacity: config.Range{1, 1}, SizePx: config.Range{2, 2}},
		},
	})
	sim.Start()

	f := sim.Pool().At(0)
	if f.Radius != 2 || f.Opacity != 1 {
		t.Fatalf("spawned radius/opacity = %v/%v, want 2/1", f.Radius, f.Opacity)
	}
	// Spawn speed is gravity * (0.3 + 1*0.4) * U(0.8, 1.2)
	if f.VY < 20*0.7*0.8 || f.VY > 20*0.7*1.2 {
		t.Errorf("spawn vy = %v outside jitter band", f.VY)
	}

	// Pin the flake to a known state and integrate one 16ms frame
	f.X, f.Y = 400, 100
	f.VX, f.VY = 0, 6
	host.Advance(frameDT)

	wantVY := (6 + 20*0.016) * 0.98
	if math.Abs(f.VY-wantVY) > 1e-9 {
		t.Errorf("vy = %v, want %v", f.VY, wantVY)
	}
	if math.Abs(f.Y-(100+f.VY*0.016)) > 1e-9 {
		t.Errorf("y = %v, want %v", f.Y, 100+f.VY*0.016)
	}
}

func TestBottomBoundaryRecycledSameFrame(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()

	f := sim.Pool().At(5)
	f.X, f.Y = 400, 600+21
	host.Advance(frameDT)

	if f.Y > -10 || f.Y < -0.2*600 {
		t.Errorf("y = %v, want respawned above the top edge", f.Y)
	}
	if !f.Active {
		t.Error("recycled flake must stay active")
	}
}

func TestTelemetryFlush(t *testing.T) {
	dir := t.TempDir()
	out, err := telemetry.NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	var flushed []uint64
	canvas := surface.NewHeadlessCanvas(640, 480)
	host := surface.NewHeadlessHost()
	sim, err := NewWithOptions(canvas, host, nil, Options{
		Seed:       1,
		Perf:       telemetry.NewPerfCollector(30),
		Output:     out,
		StatsEvery: 2,
		StatsCallback: func(frame uint64, _ telemetry.PerfStats, layers []telemetry.LayerStats) {
			flushed = append(flushed, frame)
			if len(layers) != 3 {
				t.Errorf("got %d layer records, want 3", len(layers))
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	sim.Start()
	for i := 0; i < 5; i++ {
		host.Advance(frameDT)
	}
	sim.Destroy()
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}

	if len(flushed) != 2 || flushed[0] != 2 || flushed[1] != 4 {
		t.Errorf("flushed at frames %v, want [2 4]", flushed)
	}

	data, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(string(data)), "\n"); len(lines) != 3 {
		t.Errorf("perf.csv has %d lines, want header + 2", len(lines))
	}
}

func TestSnapshotRestore(t *testing.T) {
	sim, _, host := newTestSim(t, nil)
	sim.Start()
	for i := 0; i < 5; i++ {
		host.Advance(frameDT)
	}
	snap := sim.Snapshot()
	if snap.Frame != 5 || snap.RNGSeed != 42 || len(snap.Flakes) != 410 {
		t.Fatalf("snapshot header = frame %d seed %d flakes %d", snap.Frame, snap.RNGSeed, len(snap.Flakes))
	}

	other, _, _ := newTestSim(t, nil)
	if err := other.Restore(snap); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if other.Frames() != 5 {
		t.Errorf("Frames = %d, want 5", other.Frames())
	}
	for i := range sim.Pool().Flakes {
		a, b := sim.Pool().Flakes[i], other.Pool().Flakes[i]
		if a.X != b.X || a.Y != b.Y || a.Radius != b.Radius {
			t.Fatalf("flake %d not restored", i)
		}
	}

	mismatched, _, _ := newTestSim(t, &config.Override{
		Layers: []config.LayerConfig{{Count: 3, Gravity: 20, Opacity: config.Range{0.5, 1}, SizePx: config.Range{1, 2}}},
	})
	if err := mismatched.Restore(snap); err == nil {
		t.Error("expected error restoring into a different pool")
	}
}

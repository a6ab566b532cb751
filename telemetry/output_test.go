package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/snowfall/config"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}

	// Nil receiver is a no-op
	if err := om.WritePerf(PerfStats{}, 1); err != nil {
		t.Error(err)
	}
	if err := om.WriteLayers([]LayerStats{{}}); err != nil {
		t.Error(err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Error(err)
	}
	if om.Dir() != "" {
		t.Error("expected empty dir")
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	stats := PerfStats{AvgFrameDuration: time.Millisecond, PhasePct: map[string]float64{}}
	for frame := uint64(60); frame <= 180; frame += 60 {
		if err := om.WritePerf(stats, frame); err != nil {
			t.Fatalf("WritePerf: %v", err)
		}
	}
	layers := []LayerStats{{Frame: 60, Layer: 0, Flakes: 10}, {Frame: 60, Layer: 1, Flakes: 5}}
	if err := om.WriteLayers(layers); err != nil {
		t.Fatalf("WriteLayers: %v", err)
	}
	if err := om.WriteLayers(layers); err != nil {
		t.Fatalf("WriteLayers: %v", err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	perf := readLines(t, filepath.Join(dir, "perf.csv"))
	if len(perf) != 4 {
		t.Fatalf("perf.csv has %d lines, want header + 3", len(perf))
	}
	if !strings.HasPrefix(perf[0], "frame,avg_frame_us") {
		t.Errorf("unexpected perf header %q", perf[0])
	}
	if !strings.HasPrefix(perf[1], "60,1000") {
		t.Errorf("unexpected perf row %q", perf[1])
	}

	rows := readLines(t, filepath.Join(dir, "layers.csv"))
	if len(rows) != 5 {
		t.Fatalf("layers.csv has %d lines, want header + 4", len(rows))
	}
	if !strings.HasPrefix(rows[0], "frame,layer,flakes,active") {
		t.Errorf("unexpected layers header %q", rows[0])
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("reloading config snapshot: %v", err)
	}
	if cfg.Derived.TotalFlakes != 410 {
		t.Errorf("config snapshot flakes = %d, want 410", cfg.Derived.TotalFlakes)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

package game

import (
	"fmt"

	"github.com/pthm-cable/snowfall/telemetry"
)

// Snapshot captures the current flake pool.
func (s *Simulation) Snapshot() *telemetry.Snapshot {
	return &telemetry.Snapshot{
		Version: telemetry.SnapshotVersion,
		RNGSeed: s.seed,
		Width:   s.width,
		Height:  s.height,
		Frame:   s.frames,
		Flakes:  telemetry.CaptureFlakes(s.pool),
	}
}

// Restore loads flake state from a snapshot taken with the same layer
// configuration. The schedule is not touched: a stopped simulation stays
// frozen on the restored state, a running one continues from it.
func (s *Simulation) Restore(snap *telemetry.Snapshot) error {
	if s.destroyed {
		return fmt.Errorf("restoring snapshot: simulation destroyed")
	}
	if err := telemetry.RestoreFlakes(s.pool, snap.Flakes); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	s.frames = snap.Frame
	return nil
}

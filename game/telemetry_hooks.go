package game

import (
	"log/slog"

	"github.com/pthm-cable/snowfall/telemetry"
)

// flushTelemetry emits perf and layer statistics every statsEvery frames.
func (s *Simulation) flushTelemetry() {
	if s.statsEvery == 0 || s.frames%s.statsEvery != 0 {
		return
	}

	var perfStats telemetry.PerfStats
	if s.perf != nil {
		perfStats = s.perf.Stats()
	}
	layers := telemetry.ComputeLayerStats(s.pool, s.frames)

	if s.statsCallback != nil {
		s.statsCallback(s.frames, perfStats, layers)
	}

	if s.logStats {
		if s.perf != nil {
			perfStats.LogStats()
		}
		telemetry.LogLayerStats(layers)
	}

	if s.output != nil {
		if s.perf != nil {
			if err := s.output.WritePerf(perfStats, s.frames); err != nil {
				slog.Error("failed to write perf", "error", err)
			}
		}
		if err := s.output.WriteLayers(layers); err != nil {
			slog.Error("failed to write layers", "error", err)
		}
	}
}

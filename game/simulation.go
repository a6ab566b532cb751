package game

import (
	"time"

	"github.com/pthm-cable/snowfall/systems"
	"github.com/pthm-cable/snowfall/telemetry"
)

// frame renders one frame at host time t and schedules the next one.
// A panic here ends the schedule: no next frame is requested.
func (s *Simulation) frame(t time.Duration) {
	if s.state != StateRunning {
		return
	}

	dt := systems.ClampDT((t - s.lastT).Seconds())
	s.lastT = t

	if s.perf != nil {
		s.perf.StartFrame()
		s.perf.StartPhase(telemetry.PhaseClear)
	}
	s.renderer.BeginFrame(s.ctx, s.width, s.height)

	if s.perf != nil {
		s.perf.StartPhase(telemetry.PhaseSweep)
	}
	s.physics.Sweep(s.pool, s.width, s.height, dt, t.Seconds(), s.drawFn)

	if s.perf != nil {
		s.perf.StartPhase(telemetry.PhaseEnd)
	}
	s.renderer.EndFrame(s.ctx)
	if s.perf != nil {
		s.perf.EndFrame()
	}

	s.frames++
	s.flushTelemetry()

	s.frameID = s.host.RequestFrame(s.frame)
}

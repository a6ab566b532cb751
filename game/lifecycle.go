package game

import (
	"log/slog"
	"math"
)

// Resize recomputes the viewport and backing store from the canvas geometry
// and the host pixel ratio (capped). Flake state is left untouched.
func (s *Simulation) Resize() {
	ratio := s.host.PixelRatio()
	if math.IsNaN(ratio) || ratio <= 0 {
		ratio = 1
	}
	s.dpr = math.Max(1, math.Min(s.cfg.DPRCap, ratio))

	cw, ch := s.canvas.ClientSize()
	s.width = math.Floor(cw)
	s.height = math.Floor(ch)

	s.canvas.SetBackingSize(int(math.Floor(s.width*s.dpr)), int(math.Floor(s.height*s.dpr)))
	s.ctx.SetTransform(s.dpr)
}

// Start sizes the surface and begins the frame schedule. When the host
// prefers reduced motion the surface is sized but nothing is scheduled.
// Otherwise every flake is respawned and spread over the full height.
//
// Start while running restarts the schedule; callers should guard it.
func (s *Simulation) Start() {
	if s.destroyed {
		slog.Warn("start called on destroyed simulation")
		return
	}

	s.Resize()

	if s.host.PrefersReducedMotion() {
		slog.Info("reduced motion preferred, animation disabled",
			"width", s.width,
			"height", s.height,
		)
		return
	}

	s.spawner.SpawnAll(s.pool, s.width, s.height)

	if s.state == StateRunning {
		s.host.CancelFrame(s.frameID)
	}
	s.lastT = s.host.Now()
	s.state = StateRunning
	s.frameID = s.host.RequestFrame(s.frame)

	slog.Debug("simulation started",
		"flakes", s.pool.Len(),
		"layers", s.pool.Layers(),
		"width", s.width,
		"height", s.height,
		"dpr", s.dpr,
	)
}

// Stop cancels the pending frame. Flakes are frozen where they are.
func (s *Simulation) Stop() {
	if s.state != StateRunning {
		return
	}
	s.host.CancelFrame(s.frameID)
	s.state = StateStopped
}

// Destroy stops the simulation and releases the resize hook and the pool.
func (s *Simulation) Destroy() {
	s.Stop()
	if s.removeResize != nil {
		s.removeResize()
		s.removeResize = nil
	}
	s.pool = nil
	s.destroyed = true
}

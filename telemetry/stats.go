// Package telemetry collects frame timing and flake statistics and writes
// them as structured logs and CSV.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/snowfall/systems"
)

// LayerStats summarizes the flakes of one layer at a point in time.
type LayerStats struct {
	Frame  uint64 `csv:"frame"`
	Layer  int    `csv:"layer"`
	Flakes int    `csv:"flakes"`
	Active int    `csv:"active"`

	// Speed distribution (|v| in units/s)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Drawing parameter distribution
	RadiusMean  float64 `csv:"radius_mean"`
	RadiusStd   float64 `csv:"radius_std"`
	OpacityMean float64 `csv:"opacity_mean"`

	// Mean horizontal drift (positive = rightward)
	DriftMean float64 `csv:"drift_mean"`
}

// Quantile returns the p-quantile of an ascending slice using the empirical
// CDF. Returns 0 if the slice is empty.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// ComputeLayerStats computes per-layer statistics for the active flakes of a pool.
func ComputeLayerStats(pool *systems.FlakePool, frame uint64) []LayerStats {
	out := make([]LayerStats, pool.Layers())

	// Scratch buffers sized for the largest layer
	maxLen := 0
	for l := range out {
		start, end := pool.LayerRange(l)
		if end-start > maxLen {
			maxLen = end - start
		}
	}
	speeds := make([]float64, 0, maxLen)
	radii := make([]float64, 0, maxLen)
	opacities := make([]float64, 0, maxLen)
	drifts := make([]float64, 0, maxLen)

	for l := range out {
		start, end := pool.LayerRange(l)
		speeds, radii, opacities, drifts = speeds[:0], radii[:0], opacities[:0], drifts[:0]

		for i := start; i < end; i++ {
			f := pool.At(i)
			if !f.Active {
				continue
			}
			speeds = append(speeds, math.Hypot(f.VX, f.VY))
			radii = append(radii, f.Radius)
			opacities = append(opacities, f.Opacity)
			drifts = append(drifts, f.VX)
		}

		s := LayerStats{Frame: frame, Layer: l, Flakes: end - start, Active: len(speeds)}
		if len(speeds) > 0 {
			sort.Float64s(speeds)
			s.SpeedMean = stat.Mean(speeds, nil)
			s.SpeedP50 = Quantile(speeds, 0.5)
			s.SpeedP90 = Quantile(speeds, 0.9)
			s.SpeedMax = floats.Max(speeds)
			s.RadiusMean, s.RadiusStd = stat.MeanStdDev(radii, nil)
			if math.IsNaN(s.RadiusStd) {
				s.RadiusStd = 0
			}
			s.OpacityMean = stat.Mean(opacities, nil)
			s.DriftMean = stat.Mean(drifts, nil)
		}
		out[l] = s
	}

	return out
}

// LogValue implements slog.LogValuer for structured logging.
func (s LayerStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("layer", s.Layer),
		slog.Int("active", s.Active),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("radius_mean", s.RadiusMean),
		slog.Float64("drift_mean", s.DriftMean),
	)
}

// LogLayerStats logs one record per layer.
func LogLayerStats(stats []LayerStats) {
	for _, s := range stats {
		slog.Info("layer", "frame", s.Frame, "stats", s)
	}
}

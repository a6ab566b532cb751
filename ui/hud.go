package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Flakes       int
	Active       int
	Layers       int
	Frames       uint64
	FPS          int32
	PixelRatio   float64
	Running      bool
	ScreenWidth  int32
	ScreenHeight int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Flakes: %d/%d | Layers: %d", data.Active, data.Flakes, data.Layers),
		10, 35, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Frame: %d | FPS: %d | DPR: %.2g", data.Frames, data.FPS, data.PixelRatio),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(StatusText(data.Running), 10, 75, 16, rl.Yellow)
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatusText returns the HUD state label.
func StatusText(running bool) string {
	if running {
		return "Running"
	}
	return "STOPPED"
}

// PerfPanel renders the frame phase breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Frame Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s", stats.AvgFrameDuration.Round(time.Microsecond),
		stats.MaxFrameDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range SortedPhases(stats.PhaseAvg) {
		pct := stats.PhasePct[name]

		color := rl.LightGray
		if pct > 60 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-8s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// SortedPhases returns phase names ordered by descending average duration.
func SortedPhases(avg map[string]time.Duration) []string {
	names := make([]string, 0, len(avg))
	for name := range avg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if avg[names[i]] != avg[names[j]] {
			return avg[names[i]] > avg[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// LayerPanel renders per-layer motion statistics.
type LayerPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewLayerPanel creates a new layer stats panel.
func NewLayerPanel(x, y, width int32) *LayerPanel {
	return &LayerPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the panel position.
func (l *LayerPanel) SetPosition(x, y int32) {
	l.x = x
	l.y = y
}

// Draw renders one block per layer. Speed bars share the fastest layer's
// p90 as their scale.
func (l *LayerPanel) Draw(layers []telemetry.LayerStats) {
	if len(layers) == 0 {
		return
	}
	r := l.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	maxSpeed := 0.0
	for _, s := range layers {
		if s.SpeedP90 > maxSpeed {
			maxSpeed = s.SpeedP90
		}
	}

	height := int32(len(layers))*(lineHeight*3+6) + padding*2 + lineHeight
	r.DrawPanel(l.x, l.y, l.width, height)

	x := l.x + padding
	y := r.DrawSectionHeader(x, l.y+padding, "Layers")
	inner := l.width - padding*2

	for _, s := range layers {
		y = r.DrawLabelValue(x, y, fmt.Sprintf("#%d", s.Layer),
			fmt.Sprintf("%d/%d  r=%.1f±%.1f", s.Active, s.Flakes, s.RadiusMean, s.RadiusStd))
		y = r.DrawBar(x, y, "speed", s.SpeedMean, maxSpeed, inner)
		y = r.DrawLabelValue(x, y, "drift", fmt.Sprintf("%+.1f", s.DriftMean))
		y += 6
	}
}

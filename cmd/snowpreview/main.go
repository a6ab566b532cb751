// Snowfall preview tool - tune the simulation live with sliders.
//
// Usage: go run ./cmd/snowpreview [-preset blizzard]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/surface/rlsurface"
	"github.com/pthm-cable/snowfall/ui"
)

const (
	windowWidth  = 1200
	windowHeight = 760
	panelWidth   = 320
)

// PreviewParams holds the tunable values exposed as sliders.
type PreviewParams struct {
	Drag          float32
	GustAmplitude float32
	GustFrequency float32
	Density       float32 // Multiplier on every layer count
	GravityScale  float32
	WindScale     float32
	Glow          bool
}

func defaultParams() PreviewParams {
	def := config.Defaults()
	return PreviewParams{
		Drag:          float32(def.Drag),
		GustAmplitude: float32(def.Gust.Amplitude),
		GustFrequency: float32(def.Gust.FrequencyHz),
		Density:       1,
		GravityScale:  1,
		WindScale:     1,
		Glow:          def.Glow,
	}
}

// override turns the slider values into a config override on top of base.
func (p PreviewParams) override(base config.Config) *config.Override {
	layers := make([]config.LayerConfig, len(base.Layers))
	for i, l := range base.Layers {
		l.Count = int(math.Round(float64(l.Count) * float64(p.Density)))
		l.Gravity *= float64(p.GravityScale)
		l.Wind *= float64(p.WindScale)
		l.WindTurbulence *= float64(p.WindScale)
		layers[i] = l
	}
	return &config.Override{
		Drag: config.Float(float64(p.Drag)),
		Glow: config.Bool(p.Glow),
		Gust: &config.GustOverride{
			Amplitude:   config.Float(float64(p.GustAmplitude)),
			FrequencyHz: config.Float(float64(p.GustFrequency)),
		},
		Layers: layers,
	}
}

func main() {
	presetName := flag.String("preset", "default", "Starting preset ("+strings.Join(config.PresetNames(), ", ")+")")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	preset, ok := config.Preset(*presetName)
	if !ok {
		slog.Error("unknown preset", "preset", *presetName)
		os.Exit(1)
	}
	base := config.Resolve(config.Defaults(), preset)

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(windowWidth, windowHeight, "Snowfall Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	win := rlsurface.New(false)
	defer win.Close()

	params := defaultParams()
	params.Drag = float32(base.Drag)
	params.Glow = base.Glow
	params.GustAmplitude = float32(base.Gust.Amplitude)
	params.GustFrequency = float32(base.Gust.FrequencyHz)

	background := ui.DefaultBackground()
	sim := rebuild(nil, win, params.override(base))
	needsRebuild := false

	for !rl.WindowShouldClose() {
		// Rebuild once the slider is released so dragging stays smooth
		if needsRebuild && !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			sim = rebuild(sim, win, params.override(base))
			needsRebuild = false
		}

		if rl.IsKeyPressed(rl.KeySpace) && sim != nil {
			if sim.Running() {
				sim.Stop()
			} else {
				sim.Start()
			}
		}

		win.Frame()

		rl.BeginDrawing()
		background.Draw(int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight()))
		win.Present()

		panelX := float32(rl.GetScreenWidth() - panelWidth)
		rl.DrawRectangle(int32(panelX), 0, panelWidth, int32(rl.GetScreenHeight()), rl.Color{R: 20, G: 25, B: 40, A: 220})
		panelX += 15
		panelY := float32(15)

		rl.DrawText("Snowfall Parameters", int32(panelX), int32(panelY), 20, rl.RayWhite)
		panelY += 35

		changed := false
		slider := func(label string, value *float32, lo, hi float32, format string) {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.LightGray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: panelWidth - 100, Height: 20},
				"", "",
				*value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, *value), int32(panelX+panelWidth-90), int32(panelY+2), 16, rl.RayWhite)
			if v != *value {
				*value = v
				changed = true
			}
			panelY += 35
		}

		slider("Drag (per-frame damping)", &params.Drag, 0.90, 0.999, "%.3f")
		slider("Gust amplitude", &params.GustAmplitude, 0, 40, "%.1f")
		slider("Gust frequency (Hz)", &params.GustFrequency, 0, 0.5, "%.3f")
		slider("Density", &params.Density, 0, 3, "%.2fx")
		slider("Gravity", &params.GravityScale, 0.2, 3, "%.2fx")
		slider("Wind", &params.WindScale, 0, 3, "%.2fx")

		glow := gui.CheckBox(rl.Rectangle{X: panelX, Y: panelY, Width: 20, Height: 20}, "Glow", params.Glow)
		if glow != params.Glow {
			params.Glow = glow
			changed = true
		}
		panelY += 35

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 130, Height: 30}, toggleText(sim != nil && sim.Running(), "Stop", "Start")) && sim != nil {
			if sim.Running() {
				sim.Stop()
			} else {
				sim.Start()
			}
		}
		if gui.Button(rl.Rectangle{X: panelX + 140, Y: panelY, Width: 130, Height: 30}, "Reset All") {
			params = defaultParams()
			changed = true
		}
		panelY += 50

		if changed {
			needsRebuild = true
		}

		// Override YAML
		out, err := yaml.Marshal(params.override(base))
		if err != nil {
			slog.Error("failed to marshal override", "error", err)
		}
		rl.DrawText("Override YAML (C to copy):", int32(panelX), int32(panelY), 14, rl.LightGray)
		panelY += 20
		for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
			if panelY > float32(rl.GetScreenHeight()-20) {
				break
			}
			rl.DrawText(line, int32(panelX), int32(panelY), 10, rl.Gray)
			panelY += 12
		}
		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(string(out))
		}

		if sim != nil {
			pool := sim.Pool()
			rl.DrawText(fmt.Sprintf("Flakes: %d | FPS: %d", pool.Len(), rl.GetFPS()), 10, 10, 16, rl.LightGray)
		}

		rl.EndDrawing()
	}

	if sim != nil {
		sim.Destroy()
	}
}

// rebuild destroys the current simulation and starts a new one.
func rebuild(old *game.Simulation, win *rlsurface.Window, o *config.Override) *game.Simulation {
	if old != nil {
		old.Destroy()
	}
	sim, err := game.New(win, win, o)
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		return nil
	}
	sim.Start()
	return sim
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

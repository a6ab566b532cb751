package main

import (
	"context"
	"log/slog"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/surface"
	"github.com/pthm-cable/snowfall/surface/rlsurface"
	"github.com/pthm-cable/snowfall/surface/termsurface"
	"github.com/pthm-cable/snowfall/telemetry"
	"github.com/pthm-cable/snowfall/ui"
)

const headlessFrameInterval = time.Second / 60

// toggle pauses a running simulation or restarts a stopped one.
func toggle(sim *game.Simulation) {
	if sim.Running() {
		sim.Stop()
		return
	}
	sim.Start()
}

// runHeadless steps the simulation on a simulated clock with no graphics.
func runHeadless(ctx context.Context, opts runOptions) error {
	canvas := surface.NewHeadlessCanvas(float64(opts.width), float64(opts.height))
	host := surface.NewHeadlessHost()
	host.ReducedMotion = opts.reducedMotion

	sim, err := game.NewWithOptions(canvas, host, opts.override, opts.game)
	if err != nil {
		return err
	}
	defer sim.Destroy()
	writeConfig(opts.game.Output, sim)

	sim.Start()
	if !sim.Running() {
		slog.Info("simulation not running, exiting")
		return nil
	}

	for ctx.Err() == nil {
		host.Advance(headlessFrameInterval)

		if opts.maxFrames > 0 && sim.Frames() >= opts.maxFrames {
			slog.Info("max frames reached", "frame", sim.Frames())
			break
		}
	}
	if ctx.Err() != nil {
		slog.Info("interrupted", "frame", sim.Frames())
	}
	saveSnapshot(sim, opts.snapshotDir)
	return nil
}

// runRaylib opens a resizable window with the HUD overlay.
func runRaylib(opts runOptions) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(opts.width), int32(opts.height), "Snowfall")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	win := rlsurface.New(opts.reducedMotion)
	defer win.Close()

	var (
		lastPerf   telemetry.PerfStats
		lastLayers []telemetry.LayerStats
	)
	gameOpts := opts.game
	gameOpts.StatsCallback = func(_ uint64, perf telemetry.PerfStats, layers []telemetry.LayerStats) {
		lastPerf = perf
		lastLayers = layers
	}

	sim, err := game.NewWithOptions(win, win, opts.override, gameOpts)
	if err != nil {
		return err
	}
	defer sim.Destroy()
	writeConfig(opts.game.Output, sim)

	sim.Start()

	background := ui.DefaultBackground()
	hud := ui.NewHUD()
	perfPanel := ui.NewPerfPanel(10, 100)
	layerPanel := ui.NewLayerPanel(0, 10, 260)
	showHUD := true
	showPanels := false

	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeySpace) {
			toggle(sim)
		}
		if rl.IsKeyPressed(rl.KeyH) {
			showHUD = !showHUD
		}
		if rl.IsKeyPressed(rl.KeyP) {
			showPanels = !showPanels
		}
		if rl.IsKeyPressed(rl.KeyS) {
			saveSnapshot(sim, opts.snapshotDir)
		}

		win.Frame()

		screenW := int32(rl.GetScreenWidth())
		screenH := int32(rl.GetScreenHeight())

		rl.BeginDrawing()
		background.Draw(screenW, screenH)
		win.Present()

		if showHUD {
			pool := sim.Pool()
			hud.Draw(ui.HUDData{
				Title:        "Snowfall",
				Flakes:       pool.Len(),
				Active:       pool.ActiveCount(),
				Layers:       pool.Layers(),
				Frames:       sim.Frames(),
				FPS:          rl.GetFPS(),
				PixelRatio:   sim.PixelRatio(),
				Running:      sim.Running(),
				ScreenWidth:  screenW,
				ScreenHeight: screenH,
			})
			hud.DrawControls(screenH, "[SPACE] start/stop  [H] HUD  [P] panels  [S] snapshot  [ESC] quit")
		}
		if showPanels {
			perfPanel.Draw(lastPerf)
			layerPanel.SetPosition(screenW-270, 10)
			layerPanel.Draw(lastLayers)
		}

		rl.EndDrawing()

		if opts.maxFrames > 0 && sim.Frames() >= opts.maxFrames {
			slog.Info("max frames reached", "frame", sim.Frames())
			break
		}
	}
	return nil
}

// runTerm renders into the current terminal until a quit key or interrupt.
func runTerm(ctx context.Context, opts runOptions) error {
	term, err := termsurface.Open(opts.reducedMotion)
	if err != nil {
		return err
	}
	defer term.Close()

	sim, err := game.NewWithOptions(term, term, opts.override, opts.game)
	if err != nil {
		return err
	}
	defer sim.Destroy()
	writeConfig(opts.game.Output, sim)

	term.OnKey = func(r rune) {
		if r == ' ' {
			toggle(sim)
		}
	}

	sim.Start()
	if err := term.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

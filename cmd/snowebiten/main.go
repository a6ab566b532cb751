// Snowfall on ebiten - the same simulation driven by ebiten's game loop.
// Kept as its own binary so ebiten and raylib never link into one program.
//
// Usage: go run ./cmd/snowebiten [-preset blizzard]
package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/surface/ebitensurface"
	"github.com/pthm-cable/snowfall/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML override (empty = use defaults)")
	presetName := flag.String("preset", "default", "Named preset ("+strings.Join(config.PresetNames(), ", ")+")")
	reducedMotion := flag.Bool("reduced-motion", false, "Behave as if the host prefers reduced motion")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsEvery := flag.Uint64("stats-every", 60, "Frames between stats flushes (0 = never)")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	override, err := config.LoadPreset(*presetName, *configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer output.Close()

	g := ebitensurface.New(*width, *height, *reducedMotion)

	sim, err := game.NewWithOptions(g, g, override, game.Options{
		Seed:       rngSeed,
		Perf:       telemetry.NewPerfCollector(60),
		Output:     output,
		StatsEvery: *statsEvery,
		LogStats:   *logStats,
	})
	if err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer sim.Destroy()

	if err := output.WriteConfig(sim.Config()); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.OnUpdate = func() error {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			return ebiten.Termination
		}
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			if sim.Running() {
				sim.Stop()
			} else {
				sim.Start()
			}
		}
		if *maxFrames > 0 && sim.Frames() >= *maxFrames {
			slog.Info("max frames reached", "frame", sim.Frames())
			return ebiten.Termination
		}
		return nil
	}

	slog.Info("starting snowfall",
		"backend", "ebiten",
		"preset", *presetName,
		"seed", rngSeed,
	)
	sim.Start()

	ebiten.SetWindowSize(*width, *height)
	ebiten.SetWindowTitle("Snowfall")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil {
		slog.Error("game loop failed", "error", err)
		os.Exit(1)
	}
}

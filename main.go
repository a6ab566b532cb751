package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/snowfall/config"
	"github.com/pthm-cable/snowfall/game"
	"github.com/pthm-cable/snowfall/telemetry"
)

// runOptions carries the parsed CLI state into the backend runners.
type runOptions struct {
	override      *config.Override
	game          game.Options
	width, height int
	maxFrames     uint64
	reducedMotion bool
	snapshotDir   string
}

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to a YAML override (empty = use defaults)")
	presetName := flag.String("preset", "default", "Named preset ("+strings.Join(config.PresetNames(), ", ")+")")
	backend := flag.String("backend", "raylib", "Rendering backend: raylib, term or headless")
	reducedMotion := flag.Bool("reduced-motion", false, "Behave as if the host prefers reduced motion")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxFrames := flag.Uint64("max-frames", 0, "Stop after N frames (0 = unlimited; headless and raylib)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for flake pool snapshots (S key, or end of a headless run)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsEvery := flag.Uint64("stats-every", 60, "Frames between stats flushes (0 = never)")
	width := flag.Int("width", 1280, "Window or headless canvas width")
	height := flag.Int("height", 720, "Window or headless canvas height")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging). The terminal
	// backend owns stdout, so its logs go to the output directory or nowhere.
	var logOut io.Writer = os.Stdout
	if *backend == "term" {
		logOut = io.Discard
		if *outputDir != "" {
			if err := os.MkdirAll(*outputDir, 0755); err == nil {
				if f, err := os.Create(filepath.Join(*outputDir, "snowfall.log")); err == nil {
					defer f.Close()
					logOut = f
				}
			}
		}
	}
	logger := slog.New(slog.NewJSONHandler(logOut, nil))
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

	opts := runOptions{
		override: override,
		game: game.Options{
			Seed:       rngSeed,
			Perf:       telemetry.NewPerfCollector(60),
			Output:     output,
			StatsEvery: *statsEvery,
			LogStats:   *logStats,
		},
		width:         *width,
		height:        *height,
		maxFrames:     *maxFrames,
		reducedMotion: *reducedMotion,
		snapshotDir:   *snapshotDir,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	slog.Info("starting snowfall",
		"backend", *backend,
		"preset", *presetName,
		"seed", rngSeed,
		"max_frames", *maxFrames,
	)

	switch *backend {
	case "headless":
		err = runHeadless(ctx, opts)
	case "raylib":
		err = runRaylib(opts)
	case "term":
		err = runTerm(ctx, opts)
	default:
		err = fmt.Errorf("unknown backend %q", *backend)
	}
	stop()

	if cerr := output.Close(); cerr != nil {
		slog.Error("failed to close output", "error", cerr)
	}
	if err != nil {
		slog.Error("snowfall exited", "error", err)
		os.Exit(1)
	}
}

// saveSnapshot writes the current flake pool to dir, if set.
func saveSnapshot(sim *game.Simulation, dir string) {
	if dir == "" {
		return
	}
	path, err := telemetry.SaveSnapshot(sim.Snapshot(), dir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "frame", sim.Frames())
}

// writeConfig snapshots the resolved configuration next to the CSV output.
func writeConfig(output *telemetry.OutputManager, sim *game.Simulation) {
	if err := output.WriteConfig(sim.Config()); err != nil {
		slog.Error("failed to write config", "error", err)
	}
}

package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pwng/client"
	"github.com/pthm-cable/pwng/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Render on the CPU without a window")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited, headless default 1200)")
	stars := flag.Int("stars", 0, "Synthetic star count (0 = use config)")
	seed := flag.Uint64("seed", 0, "Synthetic galaxy seed (0 = use config)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *stars > 0 {
		cfg.Synth.Stars = *stars
	}
	if *seed != 0 {
		cfg.Synth.Seed = *seed
	}

	opts := client.Options{
		OutputDir: *outputDir,
		Headless:  *headless,
		Logger:    logger,
	}

	if *headless {
		// Headless mode - CPU device, no raylib window
		frames := *maxFrames
		if frames == 0 {
			frames = 1200
		}

		c, err := client.New(cfg, opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer c.Unload()

		slog.Info("starting headless render",
			"stars", cfg.Synth.Stars,
			"seed", cfg.Synth.Seed,
			"max_frames", frames,
		)
		for int(c.Frame()) < frames {
			c.UpdateHeadless()
		}
		slog.Info("max frames reached", "frame", c.Frame())
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	c, err := client.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer c.Unload()

	for !rl.WindowShouldClose() {
		c.Update()
		c.Draw()

		if *maxFrames > 0 && int(c.Frame()) >= *maxFrames {
			break
		}
	}
}

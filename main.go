package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dyeflow/app"
	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
	"github.com/pthm-cable/dyeflow/device/opengl"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output perf and field stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed for splat shapes (0 = time-based)")
	maxFrames := flag.Int("max-frames", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagWindowHighdpi | rl.FlagVsyncHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	dev, err := opengl.New()
	if errors.Is(err, device.ErrUnsupported) {
		// No fallback renderer: keep the window with a plain background.
		slog.Warn("fluid backdrop unavailable", "error", err)
		runPlain(cfg, *maxFrames)
		return
	}
	if err != nil {
		slog.Error("failed to initialize gpu device", "error", err)
		os.Exit(1)
	}
	defer dev.Close()

	a, err := app.New(cfg, dev, app.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Unload()

	for !rl.WindowShouldClose() {
		a.Update()
		a.Draw()

		if *maxFrames > 0 && a.Frame() >= int64(*maxFrames) {
			slog.Info("max frames reached", "frame", a.Frame())
			break
		}
	}
}

// runPlain draws only the background color until the window closes.
func runPlain(cfg *config.Config, maxFrames int) {
	bg := rl.Color{R: cfg.Screen.Background[0], G: cfg.Screen.Background[1], B: cfg.Screen.Background[2], A: 255}
	for frame := 0; !rl.WindowShouldClose(); frame++ {
		rl.BeginDrawing()
		rl.ClearBackground(bg)
		rl.EndDrawing()

		if maxFrames > 0 && frame+1 >= maxFrames {
			return
		}
	}
}

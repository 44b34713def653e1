// Fluid debug tool - runs a scripted pointer stroke through the solver and
// writes one field to a PNG file for inspection.
//
// Usage: go run ./cmd/fluiddebug -backend gpu -field dye -frames 90 -out dye.png
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
	"github.com/pthm-cable/dyeflow/device/opengl"
	"github.com/pthm-cable/dyeflow/device/soft"
	"github.com/pthm-cable/dyeflow/fluid"
	"github.com/pthm-cable/dyeflow/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	backend := flag.String("backend", "gpu", "Device backend: gpu or soft")
	field := flag.String("field", "dye", "Field to export: dye, velocity, pressure, divergence, curl")
	outPath := flag.String("out", "debug.png", "Output PNG path")
	width := flag.Int("width", 512, "Surface width")
	height := flag.Int("height", 512, "Surface height")
	frames := flag.Int("frames", 60, "Frames to simulate")
	seed := flag.Int64("seed", 1, "RNG seed")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fail("failed to load config", err)
	}

	var dev device.Device
	switch *backend {
	case "gpu":
		// Hidden window for the GL context
		rl.SetConfigFlags(rl.FlagWindowHidden)
		rl.InitWindow(int32(*width), int32(*height), "Fluid Debug")
		defer rl.CloseWindow()

		gpu, err := opengl.New()
		if err != nil {
			fail("failed to initialize gpu device", err)
		}
		dev = gpu
	case "soft":
		dev = soft.New()
	default:
		fail("unknown backend", fmt.Errorf("%q", *backend))
	}
	defer dev.Close()

	sim, err := fluid.New(dev, cfg.Sim, *width, *height,
		fluid.WithRand(rand.New(rand.NewSource(*seed))),
		fluid.WithPointer(fluid.PointerOptionsFrom(cfg)),
	)
	if err != nil {
		fail("failed to create simulation", err)
	}
	defer sim.Close()

	dt := cfg.Frame.MaxDT
	stroke := newStroke(float64(*width), float64(*height), *frames)
	for i := 0; i < *frames; i++ {
		t := float64(i) * dt
		x, y := stroke.at(i)
		sim.UpdatePointer(x, y, t)
		sim.ApplyInputs(t)
		sim.Step(dt)
	}

	target, err := pickField(sim.Fields(), *field)
	if err != nil {
		fail("bad field", err)
	}
	pix, err := dev.Read(target)
	if err != nil {
		fail("failed to read field", err)
	}

	stats, err := fieldStats(dev, sim.Fields())
	if err != nil {
		fail("failed to read fields", err)
	}
	stats.Frame = int64(*frames)
	stats.Splats = sim.SplatCount()
	stats.LogStats()

	rgba := colorize(*field, pix)
	img := rl.NewImage(rgba, int32(target.Width()), int32(target.Height()), 1, rl.UncompressedR8g8b8a8)
	// Fields are stored bottom row first.
	rl.ImageFlipVertical(img)

	if !rl.ExportImage(*img, *outPath) {
		fail("failed to export image", fmt.Errorf("%s", *outPath))
	}
	fmt.Printf("%s field rendered to: %s (%dx%d)\n", *field, *outPath, target.Width(), target.Height())
}

func pickField(fs *fluid.FieldSet, name string) (device.Target, error) {
	switch name {
	case "dye":
		return fs.Dye.Read(), nil
	case "velocity":
		return fs.Velocity.Read(), nil
	case "pressure":
		return fs.Pressure.Read(), nil
	case "divergence":
		return fs.Divergence, nil
	case "curl":
		return fs.Curl, nil
	}
	return nil, fmt.Errorf("unknown field %q", name)
}

// fieldStats reads dye and velocity back and summarizes them.
func fieldStats(dev device.Device, fs *fluid.FieldSet) (telemetry.FieldStats, error) {
	dye, err := dev.Read(fs.Dye.Read())
	if err != nil {
		return telemetry.FieldStats{}, fmt.Errorf("reading dye: %w", err)
	}
	vel, err := dev.Read(fs.Velocity.Read())
	if err != nil {
		return telemetry.FieldStats{}, fmt.Errorf("reading velocity: %w", err)
	}
	return telemetry.ComputeFieldStats(
		telemetry.Field{Pix: dye, Width: fs.Dye.Width(), Height: fs.Dye.Height()},
		telemetry.Field{Pix: vel, Width: fs.Velocity.Width(), Height: fs.Velocity.Height()},
	), nil
}

// stroke is a scripted pointer path: a sine sweep from left to right.
type stroke struct {
	width, height float64
	frames        int
}

func newStroke(width, height float64, frames int) stroke {
	return stroke{width: width, height: height, frames: max(frames, 1)}
}

func (s stroke) at(i int) (x, y float64) {
	f := float64(i) / float64(s.frames)
	x = s.width * (0.15 + 0.7*f)
	y = s.height * (0.5 + 0.25*math.Sin(f*2*math.Pi))
	return x, y
}

func fail(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

// Solver preview tool - live fluid with sliders for the solver parameters.
// The simulation is rebuilt whenever a slider is released.
//
// Usage: go run ./cmd/simpreview [-config path]
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
	"github.com/pthm-cable/dyeflow/device/opengl"
	"github.com/pthm-cable/dyeflow/fluid"
)

const (
	windowWidth  = 1200
	windowHeight = 720
	panelWidth   = 330
)

// slider edits one float view of a SimConfig field.
type slider struct {
	label    string
	min, max float32
	format   string
	get      func(*config.SimConfig) float64
	set      func(*config.SimConfig, float64)
}

var sliders = []slider{
	{"Density dissipation", 0.8, 1, "%.3f",
		func(s *config.SimConfig) float64 { return s.DensityDissipation },
		func(s *config.SimConfig, v float64) { s.DensityDissipation = v }},
	{"Velocity dissipation", 0.8, 1, "%.3f",
		func(s *config.SimConfig) float64 { return s.VelocityDissipation },
		func(s *config.SimConfig, v float64) { s.VelocityDissipation = v }},
	{"Pressure dissipation", 0, 1, "%.2f",
		func(s *config.SimConfig) float64 { return s.PressureDissipation },
		func(s *config.SimConfig, v float64) { s.PressureDissipation = v }},
	{"Pressure iterations", 1, 60, "%.0f",
		func(s *config.SimConfig) float64 { return float64(s.PressureIterations) },
		func(s *config.SimConfig, v float64) { s.PressureIterations = int(math.Round(v)) }},
	{"Curl", 0, 60, "%.1f",
		func(s *config.SimConfig) float64 { return s.Curl },
		func(s *config.SimConfig, v float64) { s.Curl = v }},
	{"Splat radius", 0.02, 1, "%.3f",
		func(s *config.SimConfig) float64 { return s.SplatRadius },
		func(s *config.SimConfig, v float64) { s.SplatRadius = v }},
	{"Splat force", 500, 12000, "%.0f",
		func(s *config.SimConfig) float64 { return s.SplatForce },
		func(s *config.SimConfig, v float64) { s.SplatForce = v }},
}

// preview owns the live simulation and the parameters it was built with.
type preview struct {
	dev     device.Device
	cfg     *config.Config
	params  config.SimConfig // edited by the sliders
	applied config.SimConfig // what sim was built with
	sim     *fluid.Simulation
	rng     *rand.Rand
	surface [2]int
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagVsyncHint)
	rl.InitWindow(windowWidth, windowHeight, "Solver Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	dev, err := opengl.New()
	if err != nil {
		if errors.Is(err, device.ErrUnsupported) {
			slog.Error("render targets unsupported on this context", "error", err)
		} else {
			slog.Error("failed to initialize gpu device", "error", err)
		}
		os.Exit(1)
	}
	defer dev.Close()

	p := &preview{
		dev:    dev,
		cfg:    cfg,
		params: cfg.Sim,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := p.rebuild(); err != nil {
		slog.Error("failed to create simulation", "error", err)
		os.Exit(1)
	}
	defer p.close()

	var clock float64
	animating := true
	dirty := false
	lastMouse := rl.GetMousePosition()

	for !rl.WindowShouldClose() {
		dt := math.Min(float64(rl.GetFrameTime()), cfg.Frame.MaxDT)
		clock += dt

		w, h := int(rl.GetRenderWidth()), int(rl.GetRenderHeight())
		if w != p.surface[0] || h != p.surface[1] {
			p.surface = [2]int{w, h}
			p.sim.Resize(w, h)
		}

		panelX := float32(w - panelWidth)
		mouse := rl.GetMousePosition()
		switch {
		case animating:
			x, y := orbit(clock, float64(panelX), float64(h))
			p.sim.UpdatePointer(x, y, clock)
		case mouse != lastMouse && mouse.X < panelX:
			p.sim.UpdatePointer(float64(mouse.X), float64(mouse.Y), clock)
		}
		lastMouse = mouse
		p.sim.ApplyInputs(clock)
		p.sim.Step(dt)

		rl.BeginDrawing()
		rl.ClearBackground(rl.Color{R: cfg.Screen.Background[0], G: cfg.Screen.Background[1], B: cfg.Screen.Background[2], A: 255})
		rl.DrawRenderBatchActive()
		p.sim.Render()

		rl.DrawRectangle(int32(panelX), 0, panelWidth, int32(h), rl.Fade(rl.RayWhite, 0.9))
		y := float32(10)
		x := panelX + 10
		rl.DrawText("Solver Parameters", int32(x), int32(y), 20, rl.DarkGray)
		y += 35

		for _, s := range sliders {
			rl.DrawText(s.label, int32(x), int32(y), 14, rl.Gray)
			y += 18
			cur := float32(s.get(&p.params))
			next := gui.SliderBar(
				rl.Rectangle{X: x, Y: y, Width: panelWidth - 90, Height: 20},
				"", "",
				cur, s.min, s.max,
			)
			rl.DrawText(fmt.Sprintf(s.format, s.get(&p.params)), int32(x+panelWidth-80), int32(y+2), 16, rl.DarkGray)
			if next != cur {
				s.set(&p.params, float64(next))
				dirty = true
			}
			y += 32
		}

		// Rebuild only once the drag ends.
		if dirty && !rl.IsMouseButtonDown(rl.MouseButtonLeft) {
			if err := p.rebuild(); err != nil {
				slog.Warn("rejected parameters", "error", err)
				p.params = p.applied
			}
			dirty = false
		}

		y += 10
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: 140, Height: 30}, toggleText(animating, "Use Mouse", "Auto Stroke")) {
			animating = !animating
		}
		if gui.Button(rl.Rectangle{X: x + 150, Y: y, Width: 140, Height: 30}, "Reset All") {
			p.params = cfg.Sim
			dirty = true
		}
		y += 45

		text, err := simYAML(p.params)
		if err != nil {
			text = err.Error()
		}
		rl.DrawText("YAML Config:", int32(x), int32(y), 16, rl.DarkGray)
		y += 25
		for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
			rl.DrawText(line, int32(x), int32(y), 14, rl.Gray)
			y += 16
		}

		rl.DrawText(fmt.Sprintf("sim %v  dye %v  splats %d", p.sim.SimSize(), p.sim.DyeSize(), p.sim.SplatCount()),
			int32(x), int32(h-50), 12, rl.DarkGray)
		rl.DrawText("Press C to copy YAML to clipboard", int32(x), int32(h-30), 12, rl.Gray)

		if rl.IsKeyPressed(rl.KeyC) && err == nil {
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

// rebuild replaces the simulation with one built from p.params. On error
// the previous simulation keeps running.
func (p *preview) rebuild() error {
	w, h := int(rl.GetRenderWidth()), int(rl.GetRenderHeight())
	sim, err := fluid.New(p.dev, p.params, w, h,
		fluid.WithRand(p.rng),
		fluid.WithPointer(fluid.PointerOptionsFrom(p.cfg)),
	)
	if err != nil {
		return err
	}
	p.close()
	p.sim = sim
	p.surface = [2]int{w, h}
	p.applied = p.params
	return nil
}

func (p *preview) close() {
	if p.sim != nil {
		p.sim.Close()
	}
}

// simYAML renders params as a sim: block ready to paste into config.yaml.
func simYAML(params config.SimConfig) (string, error) {
	out, err := yaml.Marshal(struct {
		Sim config.SimConfig `yaml:"sim"`
	}{params})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// orbit returns the auto stroke position: a lissajous path over the area
// left of the panel.
func orbit(t, width, height float64) (x, y float64) {
	x = width * (0.5 + 0.35*math.Sin(t*0.9))
	y = height * (0.5 + 0.35*math.Sin(t*1.3+1))
	return x, y
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}

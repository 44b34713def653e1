// Package app hosts a fluid simulation in a raylib window: it owns the
// frame loop, keyboard and pointer input, the HUD and run telemetry.
package app

import (
	"fmt"
	"log/slog"
	"math/rand"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
	"github.com/pthm-cable/dyeflow/fluid"
	"github.com/pthm-cable/dyeflow/telemetry"
	"github.com/pthm-cable/dyeflow/ui"
)

// Options configures an App.
type Options struct {
	Seed      int64  // seed for splat randomness
	LogStats  bool   // log perf and field stats via slog
	OutputDir string // CSV output directory (empty = disabled)
}

// App holds the complete host state.
type App struct {
	cfg *config.Config
	dev device.Device
	sim *fluid.Simulation

	frame   int64
	clock   float64 // accumulated clamped frame time, seconds
	simTime float64 // time the solver has advanced
	paused  bool
	showHUD bool

	surfaceWidth  int
	surfaceHeight int
	lastMouse     rl.Vector2
	mouseSeen     bool
	background    rl.Color

	hud        *ui.HUD
	perfPanel  *ui.PerfPanel
	controls   *ui.ControlBar
	showPerf   bool
	lastFields *telemetry.FieldStats

	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	outputManager *telemetry.OutputManager
	logStats      bool
}

// New creates the simulation for the current window. The window and its
// GL context must already exist.
func New(cfg *config.Config, dev device.Device, opts Options) (*App, error) {
	w, h := int(rl.GetRenderWidth()), int(rl.GetRenderHeight())

	a := &App{
		cfg:           cfg,
		dev:           dev,
		showHUD:       cfg.HUD.Enabled,
		surfaceWidth:  w,
		surfaceHeight: h,
		background: rl.Color{
			R: cfg.Screen.Background[0],
			G: cfg.Screen.Background[1],
			B: cfg.Screen.Background[2],
			A: 255,
		},
		hud:       ui.NewHUD(),
		perfPanel: ui.NewPerfPanel(5, 130, 260),
		controls:  ui.NewControlBar(false),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		collector: telemetry.NewCollector(dev, cfg.Telemetry.StatsInterval),
		logStats:  opts.LogStats,
	}

	sim, err := fluid.New(dev, cfg.Sim, w, h,
		fluid.WithRand(rand.New(rand.NewSource(opts.Seed))),
		fluid.WithPointer(fluid.PointerOptionsFrom(cfg)),
		fluid.WithPhaseHook(func(p fluid.Phase) { a.perf.StartPhase(string(p)) }),
	)
	if err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	a.sim = sim

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		sim.Close()
		return nil, err
	}
	a.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("simulation started",
		"surface_width", w,
		"surface_height", h,
		"sim", fmt.Sprintf("%dx%d", sim.SimSize().Width, sim.SimSize().Height),
		"dye", fmt.Sprintf("%dx%d", sim.DyeSize().Width, sim.DyeSize().Height),
		"seed", opts.Seed,
		"output_dir", om.Dir(),
	)
	return a, nil
}

// Update runs the non-drawing half of a frame: resize, input, solve.
func (a *App) Update() {
	dt := clampDT(float64(rl.GetFrameTime()), a.cfg.Frame.MaxDT)
	a.clock += dt

	a.perf.StartFrame()

	a.perf.StartPhase(telemetry.PhaseResize)
	a.handleResize()

	a.perf.StartPhase(telemetry.PhaseInput)
	a.handleInput()
	a.sim.ApplyInputs(a.clock)

	if !a.paused {
		a.sim.Step(dt)
		a.simTime += dt
	}
}

// Draw presents the dye field and the HUD, then closes the frame.
func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(a.background)

	a.perf.StartPhase(telemetry.PhaseRender)
	// Flush raylib's batch before issuing raw GL draws.
	rl.DrawRenderBatchActive()
	a.sim.Render()

	if a.showHUD {
		a.drawHUD()
	}
	rl.EndDrawing()

	a.perf.EndFrame()
	a.perf.RecordPresent()
	a.frame++
	a.flushTelemetry()
}

func (a *App) drawHUD() {
	a.hud.Draw(ui.HUDData{
		Title:         a.cfg.Screen.Title,
		FPS:           rl.GetFPS(),
		SimSize:       a.sim.SimSize(),
		DyeSize:       a.sim.DyeSize(),
		SurfaceWidth:  a.surfaceWidth,
		SurfaceHeight: a.surfaceHeight,
		Splats:        a.sim.SplatCount(),
		SimTime:       a.simTime,
		Paused:        a.paused,
		Fields:        a.lastFields,
	})

	actions := a.controls.Draw(int32(rl.GetScreenWidth()), a.paused)
	if actions.TogglePause {
		a.togglePause()
	}
	if actions.Clear {
		a.clear()
	}
	a.showPerf = actions.ShowPerf
	if a.showPerf {
		a.perfPanel.Draw(a.perf.Stats())
	}

	a.hud.DrawControls(int32(rl.GetScreenHeight()))
}

// Frame returns the number of completed frames.
func (a *App) Frame() int64 {
	return a.frame
}

// Unload releases the simulation and closes output files.
func (a *App) Unload() {
	a.sim.Close()
	if err := a.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

func (a *App) togglePause() {
	a.paused = !a.paused
	slog.Info("solver paused", "paused", a.paused, "frame", a.frame)
}

func (a *App) clear() {
	if err := a.sim.Reset(); err != nil {
		slog.Error("failed to clear fields", "error", err)
		return
	}
	a.collector.RecordResize()
}

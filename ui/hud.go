package ui

import (
	"fmt"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/dyeflow/fluid"
	"github.com/pthm-cable/dyeflow/telemetry"
)

// HUDData holds everything the main HUD shows.
type HUDData struct {
	Title         string
	FPS           int32
	SimSize       fluid.Size
	DyeSize       fluid.Size
	SurfaceWidth  int
	SurfaceHeight int
	Splats        int
	SimTime       float64
	Paused        bool
	Fields        *telemetry.FieldStats // last sampled window, nil before the first
}

// Lines returns the HUD text lines below the title.
func (d HUDData) Lines() []string {
	lines := []string{
		fmt.Sprintf("FPS: %d | Surface: %dx%d", d.FPS, d.SurfaceWidth, d.SurfaceHeight),
		fmt.Sprintf("Sim: %dx%d | Dye: %dx%d", d.SimSize.Width, d.SimSize.Height, d.DyeSize.Width, d.DyeSize.Height),
		fmt.Sprintf("Splats: %d | Time: %.1fs", d.Splats, d.SimTime),
	}
	if d.Fields != nil {
		lines = append(lines, fmt.Sprintf("Dye max: %.2f | Speed max: %.1f | Div: %.3f",
			d.Fields.DyeMax, d.Fields.SpeedMax, d.Fields.DivergenceL2))
	}
	return lines
}

// Status returns the solver state label.
func (d HUDData) Status() string {
	if d.Paused {
		return "PAUSED"
	}
	return "Running"
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD in the top-left corner.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	lines := data.Lines()
	height := int32(len(lines)+2)*r.Theme.LineHeight + r.Theme.Padding*2
	r.DrawPanel(5, 5, 330, height)

	x, y := int32(5)+r.Theme.Padding, int32(5)+r.Theme.Padding
	y = r.DrawSectionHeader(x, y, data.Title)
	for _, line := range lines {
		rl.DrawText(line, x, y, r.Theme.FontSize, r.Theme.LabelColor)
		y += r.Theme.LineHeight
	}

	color := r.Theme.ValueColor
	if data.Paused {
		color = rl.Yellow
	}
	rl.DrawText(data.Status(), x, y, r.Theme.FontSize, color)
}

// DrawControls renders the key legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32) {
	rl.DrawText("[H] HUD  [Space] pause  [C] clear  [F11] fullscreen", 10, screenHeight-22, 14, rl.Gray)
}

// PhaseRow is one line of the perf panel.
type PhaseRow struct {
	Name string
	Avg  time.Duration
	Pct  float64
}

// PhaseRows returns the frame phases in execution order, skipping phases
// with no samples.
func PhaseRows(stats telemetry.PerfStats) []PhaseRow {
	rows := make([]PhaseRow, 0, len(telemetry.Phases))
	for _, name := range telemetry.Phases {
		avg, ok := stats.PhaseAvg[name]
		if !ok {
			continue
		}
		rows = append(rows, PhaseRow{Name: name, Avg: avg, Pct: stats.PhasePct[name]})
	}
	return rows
}

// PerfPanel renders the per-phase frame breakdown.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewPerfPanel creates a perf panel at the given position.
func NewPerfPanel(x, y, width int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	r := p.renderer
	rows := PhaseRows(stats)
	height := int32(len(rows)+2)*r.Theme.LineHeight + r.Theme.Padding*2
	r.DrawPanel(p.x, p.y, p.width, height)

	x := p.x + r.Theme.Padding
	y := r.DrawSectionHeader(x, p.y+r.Theme.Padding, "Frame")
	y = r.DrawLabelValue(x, y, "avg", stats.AvgFrame.Round(time.Microsecond).String())

	inner := p.width - r.Theme.Padding*2
	for _, row := range rows {
		y = r.DrawPercentBar(x, y, row.Name, row.Pct, inner)
	}
}

// ControlActions reports which controls were activated this frame.
type ControlActions struct {
	TogglePause bool
	Clear       bool
	ShowPerf    bool
}

// ControlBar holds the clickable controls in the top-right corner.
type ControlBar struct {
	showPerf bool
}

// NewControlBar creates the control bar.
func NewControlBar(showPerf bool) *ControlBar {
	return &ControlBar{showPerf: showPerf}
}

// Draw renders the controls and returns what the user clicked.
func (c *ControlBar) Draw(screenWidth int32, paused bool) ControlActions {
	x := float32(screenWidth) - 250
	var a ControlActions

	label := "Pause"
	if paused {
		label = "Resume"
	}
	a.TogglePause = gui.Button(rl.Rectangle{X: x, Y: 10, Width: 70, Height: 24}, label)
	a.Clear = gui.Button(rl.Rectangle{X: x + 80, Y: 10, Width: 70, Height: 24}, "Clear")
	c.showPerf = gui.CheckBox(rl.Rectangle{X: x + 160, Y: 14, Width: 16, Height: 16}, "Perf", c.showPerf)
	a.ShowPerf = c.showPerf
	return a
}

package app

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard shortcuts and forwards pointer motion.
func (a *App) handleInput() {
	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.showHUD = !a.showHUD
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		a.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.clear()
	}

	a.handlePointer()
}

// handlePointer samples the mouse only when it moved, so a stationary
// cursor does not produce zero-speed samples.
func (a *App) handlePointer() {
	pos := rl.GetMousePosition()
	if a.mouseSeen && pos == a.lastMouse {
		return
	}
	a.lastMouse = pos
	a.mouseSeen = true

	scale := rl.GetWindowScaleDPI()
	x, y := toSurface(pos.X, pos.Y, scale.X, scale.Y)
	a.sim.UpdatePointer(x, y, a.clock)
}

// handleResize reprovisions the fields when the drawable size changes.
// It runs before input and the solver so no pass sees stale targets.
func (a *App) handleResize() {
	w, h := int(rl.GetRenderWidth()), int(rl.GetRenderHeight())
	if w == a.surfaceWidth && h == a.surfaceHeight {
		return
	}
	a.surfaceWidth, a.surfaceHeight = w, h

	if a.sim.Resize(w, h) {
		a.collector.RecordResize()
		slog.Info("surface resized", "width", w, "height", h, "frame", a.frame)
	}
}

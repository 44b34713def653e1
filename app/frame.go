package app

// clampDT bounds a frame's elapsed time to a single solver step. A stall
// produces one clamped step rather than catch-up sub-steps.
func clampDT(dt, maxDT float64) float64 {
	if dt < 0 {
		return 0
	}
	if dt > maxDT {
		return maxDT
	}
	return dt
}

// toSurface converts a window-space mouse position to drawable pixels.
// On high-DPI displays the drawable is larger than the window by the
// scale factor.
func toSurface(x, y, scaleX, scaleY float32) (float64, float64) {
	if scaleX <= 0 {
		scaleX = 1
	}
	if scaleY <= 0 {
		scaleY = 1
	}
	return float64(x * scaleX), float64(y * scaleY)
}

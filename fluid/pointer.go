package fluid

import "math"

// Pointer tracks the single pointer in normalized surface coordinates,
// origin bottom-left.
type Pointer struct {
	X, Y         float64
	PrevX, PrevY float64
	DX, DY       float64 // displacement scaled by splat force
	Speed        float64
	Angle        float64 // direction of motion, radians
	Moved        bool
	Color        [3]float32
	LastInput    float64

	seeded bool
}

// update records a new pointer sample given in pixels, origin top-left,
// on a surface of width x height. The first sample only seeds the
// position.
func (p *Pointer) update(x, y, t float64, width, height int, force, threshold float64) {
	if width <= 0 || height <= 0 {
		return
	}
	nx := x / float64(width)
	ny := 1 - y/float64(height)
	p.LastInput = t

	if !p.seeded {
		p.X, p.Y = nx, ny
		p.PrevX, p.PrevY = nx, ny
		p.seeded = true
		return
	}

	p.PrevX, p.PrevY = p.X, p.Y
	p.X, p.Y = nx, ny
	p.DX = (p.X - p.PrevX) * force
	p.DY = (p.Y - p.PrevY) * force
	p.Speed = math.Hypot(p.DX, p.DY)
	p.Angle = math.Atan2(p.DY, p.DX)
	p.Moved = p.Speed > threshold
}

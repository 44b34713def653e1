package fluid

import (
	"math"

	"github.com/pthm-cable/dyeflow/device"
)

// RandSource supplies uniform values in [0,1). *rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// Splat describes one injection of momentum and dye. Position is in
// normalized surface coordinates, origin bottom-left.
type Splat struct {
	X, Y   float64
	DX, DY float64
	Color  [3]float32
	Speed  float64 // normalized speed, drives shape irregularity
	Angle  float64
	Time   float64
}

// injector writes splats into the velocity and dye fields.
type injector struct {
	dev        device.Device
	rand       RandSource
	baseRadius float64
	count      int
}

// splat adds one noise-shaped blob to velocity and dye. Both share a
// randomized radius; the dye blob is 20% larger and its color boosted
// with speed.
func (in *injector) splat(fs *FieldSet, aspect float32, s Splat) {
	irregularity := math.Min(s.Speed*0.15, 0.8)
	radius := in.baseRadius * (0.5 + in.rand.Float64()*0.5)

	pass := device.Splat{
		Base:         fs.Velocity.Read(),
		AspectRatio:  aspect,
		Color:        [3]float32{float32(s.DX), float32(s.DY), 0},
		Point:        [2]float32{float32(s.X), float32(s.Y)},
		Radius:       float32(radius),
		Angle:        float32(s.Angle),
		Irregularity: float32(irregularity),
		Time:         float32(s.Time),
	}
	in.dev.Draw(fs.Velocity.Write(), pass)
	fs.Velocity.Swap()

	boost := float32(1.5 + s.Speed*0.3)
	pass.Base = fs.Dye.Read()
	pass.Color = [3]float32{s.Color[0] * boost, s.Color[1] * boost, s.Color[2] * boost}
	pass.Radius = float32(radius * 1.2)
	in.dev.Draw(fs.Dye.Write(), pass)
	fs.Dye.Swap()

	in.count++
}

// multiSplat applies the primary splat followed by floor(2+2*speed)
// smaller secondaries scattered around the motion direction.
func (in *injector) multiSplat(fs *FieldSet, aspect float32, s Splat) {
	in.splat(fs, aspect, s)

	n := int(math.Floor(2 + s.Speed*2))
	for i := 0; i < n; i++ {
		offsetAngle := s.Angle + (in.rand.Float64()-0.5)*math.Pi*0.5
		offsetDist := 0.01 + in.rand.Float64()*0.02
		scale := 0.3 + in.rand.Float64()*0.4

		var color [3]float32
		for ch := range color {
			color[ch] = s.Color[ch] * float32(0.7+in.rand.Float64()*0.3)
		}

		in.splat(fs, aspect, Splat{
			X:     s.X + math.Cos(offsetAngle)*offsetDist,
			Y:     s.Y + math.Sin(offsetAngle)*offsetDist,
			DX:    s.DX * scale,
			DY:    s.DY * scale,
			Color: color,
			Speed: s.Speed * scale,
			Angle: offsetAngle,
			Time:  s.Time + float64(i),
		})
	}
}

package soft

import (
	"math"

	"github.com/pthm-cable/dyeflow/device"
)

// splat adds an organic, noise-deformed blob to the base field.
// Three simplex samples at different frequencies and phases perturb the
// distance to the splat center; the blob is rotated into the motion
// direction, stretched along it and squeezed across it.
func (d *Device) splat(p device.Splat) shader {
	base := d.mustTarget(p.Base)
	sinA, cosA := math.Sincos(float64(p.Angle))
	irr := float64(p.Irregularity)
	radius := float64(p.Radius)
	t := float64(p.Time)
	stretch := 1 + irr*0.8
	squeeze := 1 + irr*0.3

	return func(u, v float32) vec4 {
		px := float64(u-p.Point[0]) * float64(p.AspectRatio)
		py := float64(v - p.Point[1])
		px, py = px*cosA-py*sinA, px*sinA+py*cosA

		var n1, n2, n3 float64
		if irr > 0 {
			n1 = d.noise.Eval2(px*15+t, py*15+t) * irr
			n2 = d.noise.Eval2(px*8-t*0.5, py*8-t*0.5) * irr * 0.5
			n3 = d.noise.Eval2(px*25+t*2, py*25+t*2) * irr * 0.3
		}

		px *= stretch
		py /= squeeze

		dist := math.Hypot(px, py) + n1 + n2 + n3
		s := math.Exp(-dist*dist/radius) * (1 + n1*0.5)
		if s < 0 {
			s = 0
		}
		amount := float32(s)

		b := base.sample(u, v)
		return vec4{
			b[0] + amount*p.Color[0],
			b[1] + amount*p.Color[1],
			b[2] + amount*p.Color[2],
			1,
		}
	}
}

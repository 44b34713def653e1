package soft

import (
	"fmt"
	"math"

	"github.com/pthm-cable/dyeflow/device"
)

// shaderFor binds a pass's inputs into a per-texel function.
func (d *Device) shaderFor(p device.Pass) shader {
	switch p := p.(type) {
	case device.Clear:
		return d.clear(p)
	case device.Display:
		return d.display(p)
	case device.Splat:
		return d.splat(p)
	case device.Advection:
		return d.advection(p)
	case device.Divergence:
		return d.divergence(p)
	case device.Curl:
		return d.curl(p)
	case device.Vorticity:
		return d.vorticity(p)
	case device.Pressure:
		return d.pressure(p)
	case device.GradientSubtract:
		return d.gradientSubtract(p)
	default:
		panic(fmt.Sprintf("soft: unsupported pass %T", p))
	}
}

func (d *Device) clear(p device.Clear) shader {
	src := d.mustTarget(p.Source)
	return func(u, v float32) vec4 {
		c := src.sample(u, v)
		return vec4{p.Value * c[0], p.Value * c[1], p.Value * c[2], p.Value * c[3]}
	}
}

func (d *Device) display(p device.Display) shader {
	src := d.mustTarget(p.Source)
	return func(u, v float32) vec4 {
		c := src.sample(u, v)
		var out vec4
		for i := 0; i < 3; i++ {
			out[i] = pow32(max32(c[i]*1.5, 0), 0.9)
		}
		a := max32(out[0], max32(out[1], out[2]))
		out[3] = pow32(a, 0.7) * 1.3
		return out
	}
}

func (d *Device) advection(p device.Advection) shader {
	vel := d.mustTarget(p.Velocity)
	src := d.mustTarget(p.Source)
	return func(u, v float32) vec4 {
		w := vel.sample(u, v)
		cu := u - p.DT*w[0]*p.TexelSize[0]
		cv := v - p.DT*w[1]*p.TexelSize[1]
		c := src.sample(cu, cv)
		return vec4{p.Dissipation * c[0], p.Dissipation * c[1], p.Dissipation * c[2], 1}
	}
}

func (d *Device) divergence(p device.Divergence) shader {
	vel := d.mustTarget(p.Velocity)
	return func(u, v float32) vec4 {
		n := offsets(u, v, p.TexelSize)
		l := vel.sample(n.lu, v)[0]
		r := vel.sample(n.ru, v)[0]
		t := vel.sample(u, n.tv)[1]
		b := vel.sample(u, n.bv)[1]
		return vec4{0.5 * (r - l + t - b), 0, 0, 1}
	}
}

func (d *Device) curl(p device.Curl) shader {
	vel := d.mustTarget(p.Velocity)
	return func(u, v float32) vec4 {
		n := offsets(u, v, p.TexelSize)
		l := vel.sample(n.lu, v)[1]
		r := vel.sample(n.ru, v)[1]
		t := vel.sample(u, n.tv)[0]
		b := vel.sample(u, n.bv)[0]
		return vec4{(r - l) - (t - b), 0, 0, 1}
	}
}

func (d *Device) vorticity(p device.Vorticity) shader {
	vel := d.mustTarget(p.Velocity)
	curl := d.mustTarget(p.Curl)
	return func(u, v float32) vec4 {
		n := offsets(u, v, p.TexelSize)
		l := curl.sample(n.lu, v)[0]
		r := curl.sample(n.ru, v)[0]
		t := curl.sample(u, n.tv)[0]
		b := curl.sample(u, n.bv)[0]
		c := curl.sample(u, v)[0]

		fx := 0.5 * (abs32(t) - abs32(b))
		fy := 0.5 * (abs32(r) - abs32(l))
		norm := float32(math.Sqrt(float64(fx*fx+fy*fy))) + 0.0001
		fx = fx / norm * p.Strength * c
		fy = -fy / norm * p.Strength * c

		w := vel.sample(u, v)
		return vec4{w[0] + fx*p.DT, w[1] + fy*p.DT, 0, 1}
	}
}

func (d *Device) pressure(p device.Pressure) shader {
	pr := d.mustTarget(p.Pressure)
	div := d.mustTarget(p.Divergence)
	return func(u, v float32) vec4 {
		n := offsets(u, v, p.TexelSize)
		l := pr.sample(n.lu, v)[0]
		r := pr.sample(n.ru, v)[0]
		t := pr.sample(u, n.tv)[0]
		b := pr.sample(u, n.bv)[0]
		dv := div.sample(u, v)[0]
		return vec4{(l + r + b + t - dv) * 0.25, 0, 0, 1}
	}
}

func (d *Device) gradientSubtract(p device.GradientSubtract) shader {
	pr := d.mustTarget(p.Pressure)
	vel := d.mustTarget(p.Velocity)
	return func(u, v float32) vec4 {
		n := offsets(u, v, p.TexelSize)
		l := pr.sample(n.lu, v)[0]
		r := pr.sample(n.ru, v)[0]
		t := pr.sample(u, n.tv)[0]
		b := pr.sample(u, n.bv)[0]
		w := vel.sample(u, v)
		return vec4{w[0] - (r - l), w[1] - (t - b), 0, 1}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func pow32(x, y float32) float32 {
	return float32(math.Pow(float64(x), float64(y)))
}

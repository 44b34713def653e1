package soft

import (
	"math"

	"github.com/pthm-cable/dyeflow/device"
)

// target is a float32 RGBA texture. Rows are stored bottom first, matching
// GL texture coordinates, so uv (0,0) is the bottom-left texel corner.
type target struct {
	id     uint32
	width  int
	height int
	format device.Format
	filter device.Filter
	pix    []float32
	freed  bool
}

func newTarget(id uint32, w, h int, format device.Format, filter device.Filter) *target {
	return &target{
		id:     id,
		width:  w,
		height: h,
		format: format,
		filter: filter,
		pix:    make([]float32, w*h*4),
	}
}

func (t *target) ID() uint32            { return t.id }
func (t *target) Width() int            { return t.width }
func (t *target) Height() int           { return t.height }
func (t *target) Format() device.Format { return t.format }
func (t *target) Filter() device.Filter { return t.filter }

type vec4 [4]float32

// texel fetches one texel with clamp-to-edge addressing.
func (t *target) texel(x, y int) vec4 {
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}
	i := (y*t.width + x) * 4
	return vec4{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// sample reproduces texture2D: nearest or bilinear filtering, clamped.
func (t *target) sample(u, v float32) vec4 {
	if t.filter == device.FilterNearest {
		x := int(math.Floor(float64(u * float32(t.width))))
		y := int(math.Floor(float64(v * float32(t.height))))
		return t.texel(x, y)
	}

	tx := u*float32(t.width) - 0.5
	ty := v*float32(t.height) - 0.5
	fx0 := float32(math.Floor(float64(tx)))
	fy0 := float32(math.Floor(float64(ty)))
	fx := tx - fx0
	fy := ty - fy0
	x0, y0 := int(fx0), int(fy0)

	a := t.texel(x0, y0)
	b := t.texel(x0+1, y0)
	c := t.texel(x0, y0+1)
	d := t.texel(x0+1, y0+1)

	var out vec4
	for i := range out {
		bottom := a[i] + (b[i]-a[i])*fx
		top := c[i] + (d[i]-c[i])*fx
		out[i] = bottom + (top-bottom)*fy
	}
	return out
}

// store writes a color, dropping channels the format does not hold.
func (t *target) store(x, y int, c vec4) {
	i := (y*t.width + x) * 4
	n := t.format.Channels()
	for ch := 0; ch < 4; ch++ {
		if ch < n {
			t.pix[i+ch] = c[ch]
		} else {
			t.pix[i+ch] = 0
		}
	}
}

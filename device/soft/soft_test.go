package soft

import (
	"math"
	"testing"

	"github.com/pthm-cable/dyeflow/device"
)

func fill(t *testing.T, d *Device, tgt device.Target, fn func(x, y int) [4]float32) {
	t.Helper()
	pix := make([]float32, tgt.Width()*tgt.Height()*4)
	for y := 0; y < tgt.Height(); y++ {
		for x := 0; x < tgt.Width(); x++ {
			c := fn(x, y)
			copy(pix[(y*tgt.Width()+x)*4:], c[:])
		}
	}
	if err := d.Upload(tgt, pix); err != nil {
		t.Fatalf("upload: %v", err)
	}
}

func at(pix []float32, w, x, y, ch int) float32 {
	return pix[(y*w+x)*4+ch]
}

func TestNewTargetZeroed(t *testing.T) {
	d := New()
	tgt, err := d.NewTarget(4, 3, device.FormatRGBA, device.FilterNearest)
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	pix, err := d.Read(tgt)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(pix) != 4*3*4 {
		t.Fatalf("expected %d values, got %d", 4*3*4, len(pix))
	}
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("texel value %d = %f, expected 0", i, v)
		}
	}
}

func TestNewTargetRejectsEmpty(t *testing.T) {
	d := New()
	if _, err := d.NewTarget(0, 10, device.FormatR, device.FilterNearest); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestTargetIDsUnique(t *testing.T) {
	d := New()
	seen := make(map[uint32]bool)
	for i := 0; i < 8; i++ {
		tgt, err := d.NewTarget(2, 2, device.FormatR, device.FilterNearest)
		if err != nil {
			t.Fatal(err)
		}
		if seen[tgt.ID()] {
			t.Fatalf("duplicate target id %d", tgt.ID())
		}
		seen[tgt.ID()] = true
	}
	if d.LiveTargets() != 8 {
		t.Errorf("expected 8 live targets, got %d", d.LiveTargets())
	}
}

func TestDestroyTarget(t *testing.T) {
	d := New()
	tgt, _ := d.NewTarget(2, 2, device.FormatR, device.FilterNearest)
	d.DestroyTarget(tgt)
	d.DestroyTarget(tgt)
	if d.LiveTargets() != 0 {
		t.Errorf("expected 0 live targets, got %d", d.LiveTargets())
	}
	if _, err := d.Read(tgt); err == nil {
		t.Error("expected error reading destroyed target")
	}
}

func TestUploadDropsMissingChannels(t *testing.T) {
	d := New()
	tgt, _ := d.NewTarget(2, 2, device.FormatR, device.FilterNearest)
	fill(t, d, tgt, func(x, y int) [4]float32 { return [4]float32{1, 2, 3, 4} })
	pix, _ := d.Read(tgt)
	if at(pix, 2, 1, 1, 0) != 1 {
		t.Errorf("red channel = %f, expected 1", at(pix, 2, 1, 1, 0))
	}
	for ch := 1; ch < 4; ch++ {
		if at(pix, 2, 1, 1, ch) != 0 {
			t.Errorf("channel %d = %f, expected 0 for single channel target", ch, at(pix, 2, 1, 1, ch))
		}
	}
}

func TestUploadSizeMismatch(t *testing.T) {
	d := New()
	tgt, _ := d.NewTarget(2, 2, device.FormatRGBA, device.FilterNearest)
	if err := d.Upload(tgt, make([]float32, 3)); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestSampleLinearInterpolates(t *testing.T) {
	tgt := newTarget(1, 2, 1, device.FormatR, device.FilterLinear)
	tgt.store(0, 0, vec4{0})
	tgt.store(1, 0, vec4{1})

	// Halfway between the two texel centers.
	got := tgt.sample(0.5, 0.5)[0]
	if math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("expected 0.5, got %f", got)
	}

	// Beyond the edge clamps to the edge texel.
	got = tgt.sample(1.5, 0.5)[0]
	if got != 1 {
		t.Errorf("expected clamped 1, got %f", got)
	}
}

func TestSampleNearest(t *testing.T) {
	tgt := newTarget(1, 2, 1, device.FormatR, device.FilterNearest)
	tgt.store(0, 0, vec4{3})
	tgt.store(1, 0, vec4{7})

	if got := tgt.sample(0.49, 0.5)[0]; got != 3 {
		t.Errorf("expected 3, got %f", got)
	}
	if got := tgt.sample(0.51, 0.5)[0]; got != 7 {
		t.Errorf("expected 7, got %f", got)
	}
	if got := tgt.sample(-2, 0.5)[0]; got != 3 {
		t.Errorf("expected clamped 3, got %f", got)
	}
}

func TestClearScales(t *testing.T) {
	d := New()
	src, _ := d.NewTarget(3, 3, device.FormatR, device.FilterNearest)
	dst, _ := d.NewTarget(3, 3, device.FormatR, device.FilterNearest)
	fill(t, d, src, func(x, y int) [4]float32 { return [4]float32{float32(x + y)} })

	d.Draw(dst, device.Clear{Source: src, Value: 0.5})

	pix, _ := d.Read(dst)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want := 0.5 * float32(x+y)
			if got := at(pix, 3, x, y, 0); math.Abs(float64(got-want)) > 1e-6 {
				t.Errorf("(%d,%d) = %f, expected %f", x, y, got, want)
			}
		}
	}
	if d.LastDestination() != dst.ID() {
		t.Errorf("expected last destination %d, got %d", dst.ID(), d.LastDestination())
	}
}

func TestPressureConstantFieldIsFixedPoint(t *testing.T) {
	d := New()
	p, _ := d.NewTarget(8, 8, device.FormatR, device.FilterNearest)
	div, _ := d.NewTarget(8, 8, device.FormatR, device.FilterNearest)
	out, _ := d.NewTarget(8, 8, device.FormatR, device.FilterNearest)
	fill(t, d, p, func(x, y int) [4]float32 { return [4]float32{2} })

	d.Draw(out, device.Pressure{Pressure: p, Divergence: div, TexelSize: device.TexelSize(p)})

	pix, _ := d.Read(out)
	for i := 0; i < 64; i++ {
		if math.Abs(float64(pix[i*4]-2)) > 1e-6 {
			t.Fatalf("texel %d = %f, expected 2", i, pix[i*4])
		}
	}
}

func TestDivergenceOfLinearField(t *testing.T) {
	d := New()
	vel, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterNearest)
	div, _ := d.NewTarget(8, 8, device.FormatR, device.FilterNearest)
	// u = x: one unit of outflow per texel in x.
	fill(t, d, vel, func(x, y int) [4]float32 { return [4]float32{float32(x), 0, 0, 1} })

	d.Draw(div, device.Divergence{Velocity: vel, TexelSize: device.TexelSize(vel)})

	pix, _ := d.Read(div)
	// Interior texels see R-L = 2, halved to 1.
	if got := at(pix, 8, 4, 4, 0); math.Abs(float64(got-1)) > 1e-6 {
		t.Errorf("interior divergence = %f, expected 1", got)
	}
}

func TestCurlOfRotation(t *testing.T) {
	d := New()
	vel, _ := d.NewTarget(9, 9, device.FormatRGBA, device.FilterNearest)
	curl, _ := d.NewTarget(9, 9, device.FormatR, device.FilterNearest)
	// Rigid rotation (-y, x) about the center.
	fill(t, d, vel, func(x, y int) [4]float32 {
		return [4]float32{-float32(y - 4), float32(x - 4), 0, 1}
	})

	d.Draw(curl, device.Curl{Velocity: vel, TexelSize: device.TexelSize(vel)})

	pix, _ := d.Read(curl)
	// (R.y-L.y) - (T.x-B.x) = 2 - (-2) = 4.
	if got := at(pix, 9, 4, 4, 0); math.Abs(float64(got-4)) > 1e-6 {
		t.Errorf("curl at center = %f, expected 4", got)
	}
}

func TestDisplayTransform(t *testing.T) {
	d := New()
	dye, _ := d.NewTarget(2, 2, device.FormatRGBA, device.FilterLinear)
	fill(t, d, dye, func(x, y int) [4]float32 { return [4]float32{0.2, 0, 0, 1} })

	d.Present(device.Display{Source: dye}, 4, 4)

	pix, w, h := d.Screen()
	if w != 4 || h != 4 {
		t.Fatalf("expected 4x4 surface, got %dx%d", w, h)
	}
	r := math.Pow(0.3, 0.9)
	a := math.Min(math.Pow(r, 0.7)*1.3, 1)
	if got := at(pix, 4, 1, 1, 0); math.Abs(float64(got)-r) > 1e-5 {
		t.Errorf("red = %f, expected %f", got, r)
	}
	if got := at(pix, 4, 1, 1, 3); math.Abs(float64(got)-a) > 1e-5 {
		t.Errorf("alpha = %f, expected %f", got, a)
	}
	if d.Presents() != 1 || d.LastDestination() != 0 {
		t.Errorf("expected one present to the surface, got presents=%d last=%d", d.Presents(), d.LastDestination())
	}
}

func TestSplatPeaksAtPoint(t *testing.T) {
	d := New()
	base, _ := d.NewTarget(64, 64, device.FormatRGBA, device.FilterLinear)
	dst, _ := d.NewTarget(64, 64, device.FormatRGBA, device.FilterLinear)

	d.Draw(dst, device.Splat{
		Base:        base,
		AspectRatio: 1,
		Color:       [3]float32{1, 0.5, 0},
		Point:       [2]float32{0.5, 0.5},
		Radius:      0.0015,
	})

	pix, _ := d.Read(dst)
	center := at(pix, 64, 32, 32, 0)
	corner := at(pix, 64, 2, 2, 0)
	if center < 0.5 {
		t.Errorf("expected strong splat at center, got %f", center)
	}
	if corner > 1e-6 {
		t.Errorf("expected untouched corner, got %f", corner)
	}
	if g := at(pix, 64, 32, 32, 1); math.Abs(float64(g-center*0.5)) > 1e-5 {
		t.Errorf("green = %f, expected half of red %f", g, center)
	}
}

func TestAdvectionZeroVelocityDissipates(t *testing.T) {
	d := New()
	vel, _ := d.NewTarget(4, 4, device.FormatRGBA, device.FilterLinear)
	src, _ := d.NewTarget(4, 4, device.FormatRGBA, device.FilterLinear)
	dst, _ := d.NewTarget(4, 4, device.FormatRGBA, device.FilterLinear)
	fill(t, d, src, func(x, y int) [4]float32 { return [4]float32{1, 1, 1, 1} })

	d.Draw(dst, device.Advection{
		Velocity:    vel,
		Source:      src,
		TexelSize:   device.TexelSize(vel),
		DT:          0.016,
		Dissipation: 0.9,
	})

	pix, _ := d.Read(dst)
	if got := at(pix, 4, 2, 2, 0); math.Abs(float64(got-0.9)) > 1e-6 {
		t.Errorf("expected 0.9, got %f", got)
	}
	if got := at(pix, 4, 2, 2, 3); got != 1 {
		t.Errorf("expected alpha forced to 1, got %f", got)
	}
}

func TestCloseReleasesTargets(t *testing.T) {
	d := New()
	for i := 0; i < 3; i++ {
		d.NewTarget(2, 2, device.FormatR, device.FilterNearest)
	}
	d.Close()
	if d.LiveTargets() != 0 {
		t.Errorf("expected 0 live targets after close, got %d", d.LiveTargets())
	}
	if _, err := d.NewTarget(2, 2, device.FormatR, device.FilterNearest); err == nil {
		t.Error("expected error allocating on a closed device")
	}
}

func TestGradientSubtract(t *testing.T) {
	tests := []struct {
		name     string
		pressure func(x, y int) float32
		wantX    float32
		wantY    float32
	}{
		{"ramp in x", func(x, y int) float32 { return float32(x) }, -2, 0},
		{"ramp in y", func(x, y int) float32 { return float32(y) }, 0, -2},
		{"steep diagonal", func(x, y int) float32 { return float32(3*x + y) }, -6, -2},
		{"constant", func(x, y int) float32 { return 5 }, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			p, _ := d.NewTarget(8, 8, device.FormatR, device.FilterNearest)
			vel, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterLinear)
			out, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterLinear)
			fill(t, d, p, func(x, y int) [4]float32 { return [4]float32{tt.pressure(x, y)} })
			fill(t, d, vel, func(x, y int) [4]float32 { return [4]float32{1, 1, 0, 1} })

			d.Draw(out, device.GradientSubtract{Pressure: p, Velocity: vel, TexelSize: device.TexelSize(p)})

			pix, _ := d.Read(out)
			if got := at(pix, 8, 4, 4, 0); math.Abs(float64(got-(1+tt.wantX))) > 1e-5 {
				t.Errorf("vx = %f, expected %f", got, 1+tt.wantX)
			}
			if got := at(pix, 8, 4, 4, 1); math.Abs(float64(got-(1+tt.wantY))) > 1e-5 {
				t.Errorf("vy = %f, expected %f", got, 1+tt.wantY)
			}
		})
	}
}

func TestVorticityConfinement(t *testing.T) {
	const (
		strength = 10
		dt       = 0.5
	)
	tests := []struct {
		name  string
		curl  func(x, y int) float32
		wantX float32 // force added to vx at (4,4), before dt
		wantY float32
	}{
		// |curl| grows upward: force along +x, scaled by the local curl 4.
		{"curl grows in y", func(x, y int) float32 { return float32(y) }, strength * 4 / 1.0001, 0},
		// |curl| grows rightward: the y component flips sign.
		{"curl grows in x", func(x, y int) float32 { return float32(x) }, 0, -strength * 4 / 1.0001},
		// Negative curl reverses the push.
		{"negative curl", func(x, y int) float32 { return -float32(y) }, -strength * 4 / 1.0001, 0},
		{"uniform curl", func(x, y int) float32 { return 3 }, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			curl, _ := d.NewTarget(9, 9, device.FormatR, device.FilterNearest)
			vel, _ := d.NewTarget(9, 9, device.FormatRGBA, device.FilterLinear)
			out, _ := d.NewTarget(9, 9, device.FormatRGBA, device.FilterLinear)
			fill(t, d, curl, func(x, y int) [4]float32 { return [4]float32{tt.curl(x, y)} })
			fill(t, d, vel, func(x, y int) [4]float32 { return [4]float32{1, 2, 0, 1} })

			d.Draw(out, device.Vorticity{
				Velocity:  vel,
				Curl:      curl,
				TexelSize: device.TexelSize(vel),
				Strength:  strength,
				DT:        dt,
			})

			pix, _ := d.Read(out)
			wantX := 1 + tt.wantX*dt
			wantY := 2 + tt.wantY*dt
			if got := at(pix, 9, 4, 4, 0); math.Abs(float64(got-wantX)) > 1e-3 {
				t.Errorf("vx = %f, expected %f", got, wantX)
			}
			if got := at(pix, 9, 4, 4, 1); math.Abs(float64(got-wantY)) > 1e-3 {
				t.Errorf("vy = %f, expected %f", got, wantY)
			}
		})
	}
}

func TestAdvectionBacktrace(t *testing.T) {
	tests := []struct {
		name string
		vel  [2]float32
		dt   float32
		want float32 // source value found at texel (5, 4)
	}{
		{"two texels right", [2]float32{2, 0}, 1, 3},
		{"half step", [2]float32{2, 0}, 0.5, 4},
		{"leftward", [2]float32{-1, 0}, 1, 6},
		{"vertical only", [2]float32{0, 3}, 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			vel, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterLinear)
			src, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterLinear)
			dst, _ := d.NewTarget(8, 8, device.FormatRGBA, device.FilterLinear)
			fill(t, d, vel, func(x, y int) [4]float32 { return [4]float32{tt.vel[0], tt.vel[1], 0, 1} })
			// Ramp in x with a translucent alpha.
			fill(t, d, src, func(x, y int) [4]float32 { return [4]float32{float32(x), 0, 0, 0.25} })

			d.Draw(dst, device.Advection{
				Velocity:    vel,
				Source:      src,
				TexelSize:   device.TexelSize(src),
				DT:          tt.dt,
				Dissipation: 1,
			})

			pix, _ := d.Read(dst)
			if got := at(pix, 8, 5, 4, 0); math.Abs(float64(got-tt.want)) > 1e-5 {
				t.Errorf("value = %f, expected %f", got, tt.want)
			}
			if got := at(pix, 8, 5, 4, 3); got != 1 {
				t.Errorf("alpha = %f, expected 1", got)
			}
		})
	}
}

func TestIrregularSplat(t *testing.T) {
	draw := func(seed int64, irr float32) []float32 {
		d := New(WithNoiseSeed(seed))
		base, _ := d.NewTarget(64, 64, device.FormatRGBA, device.FilterLinear)
		dst, _ := d.NewTarget(64, 64, device.FormatRGBA, device.FilterLinear)
		d.Draw(dst, device.Splat{
			Base:         base,
			AspectRatio:  1,
			Color:        [3]float32{1, 0, 0},
			Point:        [2]float32{0.5, 0.5},
			Radius:       0.002,
			Angle:        0.7,
			Irregularity: irr,
			Time:         3,
		})
		pix, err := d.Read(dst)
		if err != nil {
			t.Fatal(err)
		}
		return pix
	}

	smooth := draw(1, 0)
	rough := draw(1, 0.5)
	again := draw(1, 0.5)
	other := draw(2, 0.5)

	var diff, reseed float64
	for i := 0; i < len(smooth); i += 4 {
		diff = math.Max(diff, math.Abs(float64(rough[i]-smooth[i])))
		reseed = math.Max(reseed, math.Abs(float64(other[i]-rough[i])))
		if rough[i] != again[i] {
			t.Fatalf("texel %d differs between identical seeds", i/4)
		}
		if rough[i] < 0 {
			t.Fatalf("texel %d negative: %f", i/4, rough[i])
		}
	}
	if diff < 1e-3 {
		t.Error("irregularity did not change the splat shape")
	}
	if reseed < 1e-4 {
		t.Error("noise seed did not change the splat shape")
	}
	if corner := rough[(2*64+2)*4]; corner > 1e-6 {
		t.Errorf("irregular splat leaked to the corner: %f", corner)
	}
}

package telemetry

import (
	"math"
	"testing"
)

func uniformField(w, h int, fn func(x, y int) [4]float32) Field {
	pix := make([]float32, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := fn(x, y)
			copy(pix[(y*w+x)*4:], c[:])
		}
	}
	return Field{Pix: pix, Width: w, Height: h}
}

func TestDyeIntensity(t *testing.T) {
	dye := uniformField(2, 1, func(x, y int) [4]float32 {
		if x == 0 {
			return [4]float32{0.2, 0.7, 0.1, 1}
		}
		return [4]float32{0, 0, 0.4, 1}
	})
	got := DyeIntensity(dye)
	want := []float64{0.7, 0.4}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-6 {
			t.Errorf("intensity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDivergenceOfLinearField(t *testing.T) {
	// u = x has divergence 1 away from the clamped edges.
	vel := uniformField(8, 8, func(x, y int) [4]float32 {
		return [4]float32{float32(x), 0, 0, 0}
	})
	div := Divergence(vel)
	for y := 0; y < 8; y++ {
		for x := 1; x < 7; x++ {
			if got := div[y*8+x]; math.Abs(got-1) > 1e-9 {
				t.Fatalf("div(%d,%d) = %v, want 1", x, y, got)
			}
		}
	}
	// Clamped edges see half the difference.
	if got := div[0]; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("edge divergence = %v, want 0.5", got)
	}
}

func TestDivergenceOfRotation(t *testing.T) {
	// Solid rotation (-y, x) is divergence free everywhere.
	vel := uniformField(6, 6, func(x, y int) [4]float32 {
		return [4]float32{-float32(y), float32(x), 0, 0}
	})
	for i, v := range Divergence(vel) {
		if v != 0 {
			t.Fatalf("div[%d] = %v, want 0", i, v)
		}
	}
}

func TestComputeFieldStats(t *testing.T) {
	dye := uniformField(4, 4, func(x, y int) [4]float32 {
		if x == 1 && y == 2 {
			return [4]float32{0, 2, 0, 1}
		}
		return [4]float32{0, 0, 0, 1}
	})
	vel := uniformField(2, 2, func(x, y int) [4]float32 {
		return [4]float32{3, 4, 0, 1}
	})

	s := ComputeFieldStats(dye, vel)

	if s.DyeMax != 2 {
		t.Errorf("dye max = %v, want 2", s.DyeMax)
	}
	if math.Abs(s.DyeMean-2.0/16) > 1e-9 {
		t.Errorf("dye mean = %v, want %v", s.DyeMean, 2.0/16)
	}
	if s.DyeTotal != 2 {
		t.Errorf("dye total = %v, want 2", s.DyeTotal)
	}
	if s.DyeP50 != 0 {
		t.Errorf("dye p50 = %v, want 0", s.DyeP50)
	}
	if math.Abs(s.SpeedMax-5) > 1e-9 || math.Abs(s.SpeedMean-5) > 1e-9 {
		t.Errorf("speed max/mean = %v/%v, want 5/5", s.SpeedMax, s.SpeedMean)
	}
	if s.DivergenceL2 != 0 {
		t.Errorf("uniform velocity should have zero divergence, got %v", s.DivergenceL2)
	}
}

func TestComputeFieldStatsEmpty(t *testing.T) {
	s := ComputeFieldStats(Field{}, Field{})
	if s != (FieldStats{}) {
		t.Errorf("expected zero stats for empty fields, got %+v", s)
	}
}

package fluid

import (
	"math"
	"testing"
)

func TestResolution(t *testing.T) {
	tests := []struct {
		name          string
		base          int
		width, height int
		want          Size
	}{
		{"landscape 16:9", 128, 1280, 720, Size{228, 128}},
		{"portrait 9:16", 128, 720, 1280, Size{128, 228}},
		{"square", 512, 800, 800, Size{512, 512}},
		{"dye landscape", 512, 1920, 1080, Size{910, 512}},
		{"zero size", 64, 0, 0, Size{64, 64}},
		{"zero height", 64, 100, 0, Size{64, 64}},
		{"zero base", 0, 1280, 720, Size{1, 1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolution(tc.base, tc.width, tc.height)
			if got != tc.want {
				t.Errorf("Resolution(%d, %d, %d) = %+v, want %+v", tc.base, tc.width, tc.height, got, tc.want)
			}
		})
	}
}

func TestResolutionInvariant(t *testing.T) {
	for _, base := range []int{1, 32, 128, 512} {
		for w := 50; w <= 2000; w += 137 {
			for h := 50; h <= 2000; h += 211 {
				got := Resolution(base, w, h)
				a := float64(w) / float64(h)
				long := int(math.Round(float64(base) * math.Max(a, 1/a)))

				lo, hi := got.Width, got.Height
				if lo > hi {
					lo, hi = hi, lo
				}
				if lo != base {
					t.Fatalf("Resolution(%d, %d, %d) = %+v: short side %d, want %d", base, w, h, got, lo, base)
				}
				if hi != long {
					t.Fatalf("Resolution(%d, %d, %d) = %+v: long side %d, want %d", base, w, h, got, hi, long)
				}
				if (w > h) != (got.Width > got.Height) && got.Width != got.Height {
					t.Fatalf("Resolution(%d, %d, %d) = %+v: orientation does not match surface", base, w, h, got)
				}
			}
		}
	}
}

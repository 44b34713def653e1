package fluid

import "math"

// Size is a grid size in texels.
type Size struct {
	Width  int
	Height int
}

// Resolution returns the grid size for a base resolution on a drawable of
// width x height. The short axis gets base texels and the long axis is
// scaled by the aspect ratio, so grid texels stay square on screen.
func Resolution(base, width, height int) Size {
	aspect := 1.0
	if width > 0 && height > 0 {
		aspect = float64(width) / float64(height)
	}
	if aspect < 1 {
		aspect = 1 / aspect
	}

	maxDim := atLeastOne(math.Round(float64(base) * aspect))
	minDim := atLeastOne(math.Round(float64(base)))

	if width > height {
		return Size{Width: maxDim, Height: minDim}
	}
	return Size{Width: minDim, Height: maxDim}
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

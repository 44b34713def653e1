package soft

import (
	"golang.org/x/sync/errgroup"
)

// minRowsPerBand keeps bands large enough that goroutine overhead stays
// below the per-texel work.
const minRowsPerBand = 16

// shader computes the color of one destination texel. uv is the texel
// center in destination UV space.
type shader func(u, v float32) vec4

// rasterize evaluates fn at every texel center of a width x height grid
// and hands the result to put. Rows are split into bands processed in
// parallel; the call returns once every band is done.
func (d *Device) rasterize(width, height int, fn shader, put func(x, y int, c vec4)) {
	bands := d.workers
	if maxBands := (height + minRowsPerBand - 1) / minRowsPerBand; bands > maxBands {
		bands = maxBands
	}
	if bands < 1 {
		bands = 1
	}

	invW := 1 / float32(width)
	invH := 1 / float32(height)
	rowsPerBand := (height + bands - 1) / bands

	var g errgroup.Group
	g.SetLimit(d.workers)
	for start := 0; start < height; start += rowsPerBand {
		end := start + rowsPerBand
		if end > height {
			end = height
		}
		g.Go(func() error {
			for y := start; y < end; y++ {
				v := (float32(y) + 0.5) * invH
				for x := 0; x < width; x++ {
					u := (float32(x) + 0.5) * invW
					put(x, y, fn(u, v))
				}
			}
			return nil
		})
	}
	// Bands never fail; Wait only joins them.
	_ = g.Wait()
}

// neighbors mirrors the shared vertex shader's vL/vR/vT/vB offsets.
type neighbors struct {
	lu, ru, tv, bv float32
}

func offsets(u, v float32, texel [2]float32) neighbors {
	return neighbors{
		lu: u - texel[0],
		ru: u + texel[0],
		tv: v + texel[1],
		bv: v - texel[1],
	}
}

package main

import "math"

// colorize maps an RGBA float32 field readback to RGBA8.
//
// dye uses the display transform; velocity maps x/y to red/green around
// mid-gray; scalar fields map positive values to red and negative to blue.
func colorize(field string, pix []float32) []byte {
	n := len(pix) / 4
	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		c := pix[i*4 : i*4+4]
		var r, g, b float64
		switch field {
		case "dye":
			r, g, b = display(c[0]), display(c[1]), display(c[2])
		case "velocity":
			r = 0.5 + float64(c[0])/200
			g = 0.5 + float64(c[1])/200
			b = 0.5
		default:
			v := float64(c[0])
			if v >= 0 {
				r = math.Tanh(v)
			} else {
				b = math.Tanh(-v)
			}
		}
		out[i*4] = toByte(r)
		out[i*4+1] = toByte(g)
		out[i*4+2] = toByte(b)
		out[i*4+3] = 255
	}
	return out
}

func display(v float32) float64 {
	return math.Pow(math.Max(float64(v)*1.5, 0), 0.9)
}

func toByte(v float64) byte {
	return byte(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}

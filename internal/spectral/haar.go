package spectral

import "math"

// band is the result of a one-level 2-D Haar transform. Every sub-band is
// row-major with width w; odd source sizes repeat the last row or column.
type band struct {
	w, h          int
	a, hz, vt, dg []float64
}

func haar(data []float64, w, h int) *band {
	hw, hh := (w+1)/2, (h+1)/2
	b := &band{
		w:  hw,
		h:  hh,
		a:  make([]float64, hw*hh),
		hz: make([]float64, hw*hh),
		vt: make([]float64, hw*hh),
		dg: make([]float64, hw*hh),
	}
	for y0 := 0; y0 < h; y0 += 2 {
		y1 := min(y0+1, h-1)
		for x0 := 0; x0 < w; x0 += 2 {
			x1 := min(x0+1, w-1)
			a1, d1 := pair(data[y0*w+x0], data[y1*w+x0])
			a2, d2 := pair(data[y0*w+x1], data[y1*w+x1])

			i := (y0/2)*hw + x0/2
			b.a[i], b.vt[i] = pair(a1, a2)
			b.hz[i], b.dg[i] = pair(d1, d2)
		}
	}
	return b
}

func (b *band) inverse(w, h int) []float64 {
	data := make([]float64, w*h)
	for y0 := 0; y0 < h; y0 += 2 {
		for x0 := 0; x0 < w; x0 += 2 {
			i := (y0/2)*b.w + x0/2
			a1, a2 := unpair(b.a[i], b.vt[i])
			d1, d2 := unpair(b.hz[i], b.dg[i])
			v1, v2 := unpair(a1, d1)
			v3, v4 := unpair(a2, d2)

			data[y0*w+x0] = v1
			if y0+1 < h {
				data[(y0+1)*w+x0] = v2
			}
			if x0+1 < w {
				data[y0*w+x0+1] = v3
			}
			if y0+1 < h && x0+1 < w {
				data[(y0+1)*w+x0+1] = v4
			}
		}
	}
	return data
}

func pair(v1, v2 float64) (float64, float64) {
	return (v1 + v2) / math.Sqrt2, (v1 - v2) / math.Sqrt2
}

func unpair(a, d float64) (float64, float64) {
	return (a + d) / math.Sqrt2, (a - d) / math.Sqrt2
}

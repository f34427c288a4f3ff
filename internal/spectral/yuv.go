package spectral

import (
	"image"
	"image/color"
)

const delta = .5
const (
	yr = 0.299
	yg = 0.587
	yb = 0.114
	uf = 0.492
	vf = 0.877

	vr = 1.140
	ug = -0.395
	vg = -0.581
	ub = 2.032
)

// planes holds an image as Y, U and V float planes in row-major order.
type planes struct {
	rect  image.Rectangle
	w, h  int
	yuv   [3][]float64
	alpha []uint16
}

func newPlanes(src image.Image) *planes {
	rect := src.Bounds()
	p := &planes{rect: rect, w: rect.Dx(), h: rect.Dy()}
	area := p.w * p.h
	for i := range p.yuv {
		p.yuv[i] = make([]float64, area)
	}
	p.alpha = make([]uint16, area)

	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			r32, g32, b32, a32 := src.At(x, y).RGBA()
			r := float64(r32) / 257
			g := float64(g32) / 257
			b := float64(b32) / 257

			yv := yr*r + yg*g + yb*b
			p.yuv[0][i] = yv
			p.yuv[1][i] = uf*(b-yv) + delta
			p.yuv[2][i] = vf*(r-yv) + delta
			p.alpha[i] = uint16(a32)
			i++
		}
	}
	return p
}

func (p *planes) image() *image.RGBA64 {
	dst := image.NewRGBA64(p.rect)
	i := 0
	for y := p.rect.Min.Y; y < p.rect.Max.Y; y++ {
		for x := p.rect.Min.X; x < p.rect.Max.X; x++ {
			yv := p.yuv[0][i]
			u := p.yuv[1][i] - delta
			v := p.yuv[2][i] - delta
			dst.SetRGBA64(x, y, color.RGBA64{
				R: clip16(yv + vr*v),
				G: clip16(yv + ug*u + vg*v),
				B: clip16(yv + ub*u),
				A: p.alpha[i],
			})
			i++
		}
	}
	return dst
}

func clip16(v float64) uint16 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 0xffff
	}
	return uint16(v*257 + .5)
}

// Package spectral hides bits in the singular values of DCT blocks taken
// from the Haar low band of the Y, U and V planes.
//
// Each block carries one bit; the bit sequence repeats over all blocks and
// all three planes, and extraction votes over the repetitions.
package spectral

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrTooSmallImage = errors.New("image is too small for the payload")
	ErrInvalidParams = errors.New("invalid transform parameters")
	ErrFactorize     = errors.New("cannot factorize block")
)

// Params configure the transform. BlockW and BlockH are in image pixels and
// are rounded up to an even number of at least 4.
type Params struct {
	BlockW, BlockH int
	// D1 quantizes the largest singular value, D2 the second one. D2 == 0 leaves it untouched.
	D1, D2 float64
}

func DefaultParams() Params {
	return Params{BlockW: 8, BlockH: 8, D1: 36, D2: 20}
}

// Validate reports whether p can be used for Embed and Extract.
func (p Params) Validate() error {
	if p.BlockW <= 0 || p.BlockH <= 0 {
		return fmt.Errorf("%w: block %dx%d", ErrInvalidParams, p.BlockW, p.BlockH)
	}
	if p.D1 <= 0 || p.D2 < 0 {
		return fmt.Errorf("%w: d1=%v d2=%v", ErrInvalidParams, p.D1, p.D2)
	}
	return nil
}

// bandBlock returns the block size inside the Haar low band.
func (p Params) bandBlock() (int, int) {
	half := func(v int) int {
		v += v % 2
		return max(v, 4) / 2
	}
	return half(p.BlockW), half(p.BlockH)
}

// Capacity returns the number of blocks, and so of distinct bits, rect can hold.
func Capacity(rect image.Rectangle, p Params) int {
	bw, bh := p.bandBlock()
	return ((rect.Dx() + 1) / 2 / bw) * ((rect.Dy() + 1) / 2 / bh)
}

// Embed returns a copy of src carrying bits.
func Embed(ctx context.Context, src image.Image, bits []bool, p Params) (*image.RGBA64, error) {
	if err := check(src.Bounds(), len(bits), p); err != nil {
		return nil, err
	}
	pl := newPlanes(src)
	g, ctx := errgroup.WithContext(ctx)
	for c := range pl.yuv {
		g.Go(func() error {
			out, err := embedPlane(ctx, pl.yuv[c], pl.w, pl.h, bits, p)
			if err != nil {
				return err
			}
			pl.yuv[c] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pl.image(), nil
}

// Extract recovers nbits bits from src.
func Extract(ctx context.Context, src image.Image, nbits int, p Params) ([]bool, error) {
	if err := check(src.Bounds(), nbits, p); err != nil {
		return nil, err
	}
	pl := newPlanes(src)
	var sums [3][]float64
	g, ctx := errgroup.WithContext(ctx)
	for c := range pl.yuv {
		g.Go(func() error {
			s, err := extractPlane(ctx, pl.yuv[c], pl.w, pl.h, nbits, p)
			sums[c] = s
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := Capacity(pl.rect, p)
	avg := make([]float64, nbits)
	for i := range avg {
		n := total / nbits
		if i < total%nbits {
			n++
		}
		avg[i] = (sums[0][i] + sums[1][i] + sums[2][i]) / float64(3*n)
	}
	return twoMeans(avg), nil
}

func check(rect image.Rectangle, nbits int, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if nbits <= 0 {
		return fmt.Errorf("%w: no bits", ErrInvalidParams)
	}
	if total := Capacity(rect, p); total < nbits {
		return fmt.Errorf("%w: %d blocks < %d bits", ErrTooSmallImage, total, nbits)
	}
	return nil
}

// blocks calls fn with every low band block and stores it back when fn reports a change.
func blocks(ctx context.Context, b *band, p Params, fn func(at int, blk *mat.Dense) (bool, error)) error {
	bw, bh := p.bandBlock()
	nx, ny := b.w/bw, b.h/bh
	blk := mat.NewDense(bh, bw, nil)
	for by := range ny {
		if err := ctx.Err(); err != nil {
			return err
		}
		for bx := range nx {
			for i := range bh {
				row := (by*bh+i)*b.w + bx*bw
				blk.SetRow(i, b.a[row:row+bw])
			}
			changed, err := fn(by*nx+bx, blk)
			if err != nil {
				return err
			}
			if !changed {
				continue
			}
			for i := range bh {
				row := (by*bh+i)*b.w + bx*bw
				mat.Row(b.a[row:row+bw], i, blk)
			}
		}
	}
	return nil
}

func embedPlane(ctx context.Context, data []float64, w, h int, bits []bool, p Params) ([]float64, error) {
	b := haar(data, w, h)
	bw, bh := p.bandBlock()
	dct := newBlockDCT(bw, bh)
	var coef, rebuilt mat.Dense
	err := blocks(ctx, b, p, func(at int, blk *mat.Dense) (bool, error) {
		dct.forward(&coef, blk)
		var svd mat.SVD
		if !svd.Factorize(&coef, mat.SVDThin) {
			return false, fmt.Errorf("%w %d", ErrFactorize, at)
		}
		s := svd.Values(nil)
		bit := bits[at%len(bits)]
		s[0] = quantize(s[0], p.D1, bit)
		if p.D2 > 0 && len(s) > 1 {
			s[1] = quantize(s[1], p.D2, bit)
		}
		var u, v mat.Dense
		svd.UTo(&u)
		svd.VTo(&v)
		rebuilt.Product(&u, mat.NewDiagDense(len(s), s), v.T())
		dct.inverse(blk, &rebuilt)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return b.inverse(w, h), nil
}

// extractPlane returns, per bit index, the sum of the block votes in one plane.
func extractPlane(ctx context.Context, data []float64, w, h, nbits int, p Params) ([]float64, error) {
	b := haar(data, w, h)
	bw, bh := p.bandBlock()
	dct := newBlockDCT(bw, bh)
	sums := make([]float64, nbits)
	var coef mat.Dense
	err := blocks(ctx, b, p, func(at int, blk *mat.Dense) (bool, error) {
		dct.forward(&coef, blk)
		var svd mat.SVD
		if !svd.Factorize(&coef, mat.SVDNone) {
			return false, fmt.Errorf("%w %d", ErrFactorize, at)
		}
		s := svd.Values(nil)
		v := vote(s[0], p.D1)
		if p.D2 > 0 && len(s) > 1 {
			v = (3*v + vote(s[1], p.D2)) / 4
		}
		sums[at%nbits] += v
		return false, nil
	})
	return sums, err
}

// quantize moves s to the first (bit=false) or third (bit=true) quarter of its d-wide cell.
func quantize(s, d float64, bit bool) float64 {
	q := math.Floor(s/d) + .25
	if bit {
		q += .5
	}
	return q * d
}

func vote(s, d float64) float64 {
	if math.Mod(s, d) > d/2 {
		return 1
	}
	return 0
}

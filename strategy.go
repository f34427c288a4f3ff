package stegmark

import (
	"context"
	"fmt"
	"image"

	"github.com/yyyoichi/stegmark/internal/bitconv"
	"github.com/yyyoichi/stegmark/internal/lsb"
	"github.com/yyyoichi/stegmark/internal/sampler"
	"github.com/yyyoichi/stegmark/internal/spectral"
)

// Strategy writes encoded payload bytes into an image and reads them back.
// Extract must return exactly n bytes on success.
type Strategy interface {
	Embed(ctx context.Context, src image.Image, payload []byte) (image.Image, error)
	Extract(ctx context.Context, src image.Image, n int) ([]byte, error)
}

var (
	_ Strategy = pixelDomain{}
	_ Strategy = transformDomain{}
)

// pixelDomain stores 4 bits per pixel at seeded positions.
type pixelDomain struct {
	seed int64
	mode sampler.Mode
}

func (p pixelDomain) Embed(ctx context.Context, src image.Image, payload []byte) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bits := bitconv.BytesToBools(payload)
	if err := p.fits(src.Bounds(), len(bits)); err != nil {
		return nil, err
	}
	dst := lsb.Clone(src)
	if _, err := lsb.Embed(dst, sampler.New(p.seed, dst.Rect, p.mode), bits); err != nil {
		return nil, err
	}
	return dst, nil
}

func (p pixelDomain) Extract(ctx context.Context, src image.Image, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.fits(src.Bounds(), n*8); err != nil {
		return nil, err
	}
	data, _, err := lsb.Extract(src, sampler.New(p.seed, src.Bounds(), p.mode), n*8)
	return data, err
}

func (p pixelDomain) fits(rect image.Rectangle, nbits int) error {
	if need, have := lsb.Draws(nbits), sampler.Capacity(rect); need > have {
		return fmt.Errorf("%w: %d pixels < %d", ErrTooSmallImage, have, need)
	}
	return nil
}

// transformDomain stores one bit per DCT block of the Haar low band.
type transformDomain struct {
	params spectral.Params
}

func (t transformDomain) Embed(ctx context.Context, src image.Image, payload []byte) (image.Image, error) {
	dst, err := spectral.Embed(ctx, src, bitconv.BytesToBools(payload), t.params)
	if err != nil {
		return nil, err
	}
	return dst, nil
}

func (t transformDomain) Extract(ctx context.Context, src image.Image, n int) ([]byte, error) {
	bits, err := spectral.Extract(ctx, src, n*8, t.params)
	if err != nil {
		return nil, err
	}
	return bitconv.BoolsToBytes(bits), nil
}

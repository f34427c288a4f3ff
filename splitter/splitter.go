// Package splitter packs two images into one by keeping the high nibble of
// each, and approximately separates such an image again.
//
// The packing is lossy: only the four high bits of every R, G and B value
// survive, so SplitApprox is not an inverse of Combine.
package splitter

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"golang.org/x/image/draw"
)

var ErrSizeMismatch = errors.New("first image is smaller than the second")

// Combine returns an image with the size and origin of b whose R, G and B
// values are the high nibble of a followed by the high nibble of b.
// Alpha is taken from a. a is read from its own origin.
func Combine(a, b image.Image) (*image.NRGBA, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() < bb.Dx() || ab.Dy() < bb.Dy() {
		return nil, fmt.Errorf("%w: %v < %v", ErrSizeMismatch, ab.Size(), bb.Size())
	}
	hi := toNRGBA(a, image.Rectangle{Min: ab.Min, Max: ab.Min.Add(bb.Size())})
	lo := toNRGBA(b, bb)

	dst := image.NewNRGBA(bb)
	for i := 0; i < len(dst.Pix); i += 4 {
		for c := range 3 {
			dst.Pix[i+c] = hi.Pix[i+c]&0xf0 | lo.Pix[i+c]>>4
		}
		dst.Pix[i+3] = hi.Pix[i+3]
	}
	return dst, nil
}

// SplitApprox separates an image made by Combine. hi holds the high nibbles
// and lo the low nibbles of src, both moved to the high position. Every lost
// nibble is filled with a random 0000 or 1111 drawn from seed.
// Both results are opaque.
func SplitApprox(src image.Image, seed int64) (hi, lo *image.NRGBA) {
	rect := src.Bounds()
	s := toNRGBA(src, rect)
	hi, lo = image.NewNRGBA(rect), image.NewNRGBA(rect)
	rng := rand.New(rand.NewSource(seed))
	fill := func() uint8 {
		return uint8(rng.Intn(2)) * 0x0f
	}
	for i := 0; i < len(s.Pix); i += 4 {
		for c := range 3 {
			v := s.Pix[i+c]
			hi.Pix[i+c] = v&0xf0 | fill()
			lo.Pix[i+c] = v<<4 | fill()
		}
		hi.Pix[i+3], lo.Pix[i+3] = 0xff, 0xff
	}
	return hi, lo
}

// toNRGBA copies r of src into a tightly packed image with bounds of r's size at r.Min.
func toNRGBA(src image.Image, r image.Rectangle) *image.NRGBA {
	dst := image.NewNRGBA(r)
	draw.Draw(dst, r, src, r.Min, draw.Src)
	return dst
}

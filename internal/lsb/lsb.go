// Package lsb hides bits in the two least significant bits of the red and
// blue channels of pixels chosen by a coordinate sequence.
//
// Every visited pixel carries four bits: the first pair in red, the second
// pair in blue, higher bit first. Green and alpha are never modified.
package lsb

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/yyyoichi/stegmark/internal/bitconv"
	"golang.org/x/image/draw"
)

// BitsPerPixel is the number of payload bits stored in one pixel.
const BitsPerPixel = 4

// channels are the NRGBA byte offsets written per pixel, two bits each.
var channels = [...]int{0, 2}

var ErrOutOfBounds = errors.New("position outside the image")

// Positions yields the pixel coordinates to visit.
type Positions interface {
	Next() (image.Point, error)
}

// Draws returns the number of pixels needed for nbits bits.
func Draws(nbits int) int {
	return (nbits + BitsPerPixel - 1) / BitsPerPixel
}

// Clone copies src into a new non-premultiplied image with the same bounds.
func Clone(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

// Embed writes bits into img in place and returns the number of coordinates drawn.
// A trailing partial pixel is filled with zero bits.
func Embed(img *image.NRGBA, pos Positions, bits []bool) (int, error) {
	draws := Draws(len(bits))
	for i := range draws {
		p, err := pos.Next()
		if err != nil {
			return i, err
		}
		if !p.In(img.Rect) {
			return i, fmt.Errorf("%w: %v not in %v", ErrOutOfBounds, p, img.Rect)
		}
		off := img.PixOffset(p.X, p.Y)
		for c, ch := range channels {
			k := i*BitsPerPixel + c*2
			v := img.Pix[off+ch] &^ 0b11
			if k < len(bits) && bits[k] {
				v |= 0b10
			}
			if k+1 < len(bits) && bits[k+1] {
				v |= 0b01
			}
			img.Pix[off+ch] = v
		}
	}
	return draws, nil
}

// Extract reads nbits bits from img and packs them MSB-first into bytes.
// Only complete bytes are returned. The second result is the number of coordinates drawn.
func Extract(img image.Image, pos Positions, nbits int) ([]byte, int, error) {
	src, _ := img.(*image.NRGBA)
	bounds := img.Bounds()
	pk := bitconv.NewPacker()
	draws := Draws(nbits)
	for i := range draws {
		p, err := pos.Next()
		if err != nil {
			return nil, i, err
		}
		if !p.In(bounds) {
			return nil, i, fmt.Errorf("%w: %v not in %v", ErrOutOfBounds, p, bounds)
		}
		var px [4]uint8
		if src != nil {
			off := src.PixOffset(p.X, p.Y)
			copy(px[:], src.Pix[off:off+4])
		} else {
			c := color.NRGBAModel.Convert(img.At(p.X, p.Y)).(color.NRGBA)
			px = [4]uint8{c.R, c.G, c.B, c.A}
		}
		for _, ch := range channels {
			for _, bit := range [2]uint8{px[ch] >> 1 & 1, px[ch] & 1} {
				if pk.Bits() < nbits {
					pk.Push(bit == 1)
				}
			}
		}
	}
	return pk.Bytes(), draws, nil
}

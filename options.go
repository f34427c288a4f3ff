package stegmark

import (
	"fmt"

	"github.com/yyyoichi/stegmark/internal/sampler"
	"github.com/yyyoichi/stegmark/mark"
)

type Option func(*Engine) error

// Sampling selects how the pixel strategy draws positions.
type Sampling = sampler.Mode

const (
	// Distinct visits every pixel at most once. This is the default.
	Distinct = sampler.Distinct
	// Replacement draws x and y independently; a repeated position overwrites earlier bits.
	Replacement = sampler.Replacement
)

// WithPixelDomain stores the payload in the low bits of red and blue. This is the default.
func WithPixelDomain() Option {
	return func(e *Engine) error {
		e.transform = false
		return nil
	}
}

// WithTransformDomain stores the payload in singular values of DCT blocks of
// the Haar low band. It is slower than the pixel strategy and survives mild
// noise and lossy recompression, at the cost of visible change on flat areas.
func WithTransformDomain() Option {
	return func(e *Engine) error {
		e.transform = true
		return nil
	}
}

// WithStrategy replaces the built-in strategies.
func WithStrategy(s Strategy) Option {
	return func(e *Engine) error {
		if s == nil {
			return fmt.Errorf("%w: nil strategy", ErrConfig)
		}
		e.strategy = s
		return nil
	}
}

func WithSampling(s Sampling) Option {
	return func(e *Engine) error {
		if s != Distinct && s != Replacement {
			return fmt.Errorf("%w: sampling %d", ErrConfig, s)
		}
		e.mode = s
		return nil
	}
}

// WithPayloadLength sets the raw payload length in bytes. Shorter texts are padded with spaces.
func WithPayloadLength(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("%w: payload length %d", ErrConfig, n)
		}
		e.size = n
		return nil
	}
}

// WithEncodedLength pins the encoded length. New fails with ErrConfig if the
// configured codes produce a different length.
func WithEncodedLength(n int) Option {
	return func(e *Engine) error {
		if n <= 0 {
			return fmt.Errorf("%w: encoded length %d", ErrConfig, n)
		}
		e.encodedLen = n
		return nil
	}
}

// WithMarkOptions configures the error correction codes.
func WithMarkOptions(opts ...mark.Option) Option {
	return func(e *Engine) error {
		e.markOpts = append(e.markOpts, opts...)
		return nil
	}
}

// WithBlockShape sets the block size of the transform strategy in pixels.
// For example, a 600x480 image with an 8x6 block shape holds 75x80 blocks.
//
// Odd sizes are rounded up to the next even number and sizes below 4 become 4.
func WithBlockShape(width, height int) Option {
	return func(e *Engine) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("%w: block shape %dx%d", ErrConfig, width, height)
		}
		e.params.BlockW, e.params.BlockH = width, height
		return nil
	}
}

// WithD1 quantizes only the largest singular value of each block with step d1.
// Larger values increase noise but improve robustness.
func WithD1(d1 int) Option {
	return func(e *Engine) error {
		return e.setD1D2(d1, 0)
	}
}

// WithD1D2 quantizes the two largest singular values with steps d1 and d2.
// It costs more than WithD1 and is more robust.
func WithD1D2(d1, d2 int) Option {
	return func(e *Engine) error {
		if d2 <= 0 {
			return fmt.Errorf("%w: d2 %d", ErrConfig, d2)
		}
		return e.setD1D2(d1, d2)
	}
}

func (e *Engine) setD1D2(d1, d2 int) error {
	if d1 <= 0 {
		return fmt.Errorf("%w: d1 %d", ErrConfig, d1)
	}
	e.params.D1, e.params.D2 = float64(d1), float64(d2)
	return nil
}

// Package stegmark hides a short, fixed-length text in an image and recovers
// it with a shared secret.
//
// The text is padded to a fixed length, protected by a bit-level block code
// and a Reed-Solomon symbol code, and written into the image by a Strategy.
// The default strategy stores four bits per pixel in the two least
// significant bits of the red and blue channels, at positions drawn from a
// generator seeded by the secret. The secret only selects positions; the
// payload itself is not encrypted.
package stegmark

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/yyyoichi/stegmark/internal/lsb"
	"github.com/yyyoichi/stegmark/internal/sampler"
	"github.com/yyyoichi/stegmark/internal/spectral"
	"github.com/yyyoichi/stegmark/mark"
)

var (
	ErrConfig         = errors.New("inconsistent configuration")
	ErrUncorrectable  = mark.ErrUncorrectable
	ErrOutOfBounds    = lsb.ErrOutOfBounds
	ErrTooSmallImage  = spectral.ErrTooSmallImage
	ErrPayloadTooLong = mark.ErrTooLong
)

// Result is a decoded payload together with the corrections that were needed.
type Result = mark.Decoded

// Encode hides text in src with a default Engine for secret.
func Encode(ctx context.Context, src image.Image, secret, text string, opts ...Option) (image.Image, error) {
	e, err := New(secret, opts...)
	if err != nil {
		return nil, err
	}
	return e.Encode(ctx, src, text)
}

// Decode recovers the text from src with a default Engine for secret.
func Decode(ctx context.Context, src image.Image, secret string, opts ...Option) (*Result, error) {
	e, err := New(secret, opts...)
	if err != nil {
		return nil, err
	}
	return e.Decode(ctx, src)
}

// Engine embeds and extracts payloads for one secret.
// It is immutable after New and safe for concurrent use.
type Engine struct {
	seed     int64
	codec    *mark.Codec
	strategy Strategy

	size       int
	encodedLen int
	markOpts   []mark.Option
	mode       sampler.Mode
	transform  bool
	params     spectral.Params
}

// New returns an Engine for secret.
//
// By default payloads are 40 bytes, encoded with Hamming(15,11) and 10
// Reed-Solomon parity symbols into 85 bytes, and embedded in pixel LSBs at
// distinct positions.
func New(secret string, opts ...Option) (*Engine, error) {
	e := &Engine{
		seed:   sampler.Seed(secret),
		size:   mark.DefaultSize,
		mode:   sampler.Distinct,
		params: spectral.DefaultParams(),
	}
	if err := e.init(opts...); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return err
		}
	}
	codec, err := mark.New(e.size, e.markOpts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if e.encodedLen > 0 && e.encodedLen != codec.EncodedLen() {
		return fmt.Errorf("%w: encoded length %d, %s yields %d", ErrConfig, e.encodedLen, codec.Name(), codec.EncodedLen())
	}
	e.codec = codec

	if e.strategy != nil {
		return nil
	}
	if e.transform {
		if err := e.params.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfig, err)
		}
		e.strategy = transformDomain{params: e.params}
	} else {
		e.strategy = pixelDomain{seed: e.seed, mode: e.mode}
	}
	return nil
}

// Codec returns the error correction chain shared by Encode and Decode.
func (e *Engine) Codec() *mark.Codec {
	return e.codec
}

// Encode returns a copy of src carrying text. src is never modified.
// Text longer than the payload length fails with ErrPayloadTooLong.
func (e *Engine) Encode(ctx context.Context, src image.Image, text string) (image.Image, error) {
	code, err := e.codec.Encode(text)
	if err != nil {
		return nil, err
	}
	return e.strategy.Embed(ctx, src, code)
}

// Decode extracts and corrects the payload of src.
//
// When the damage exceeds what the symbol code can repair, Decode returns a
// best-effort Result with Reliable set to false together with an error
// wrapping ErrUncorrectable.
func (e *Engine) Decode(ctx context.Context, src image.Image) (*Result, error) {
	n := e.codec.EncodedLen()
	code, err := e.strategy.Extract(ctx, src, n)
	if err != nil {
		return nil, err
	}
	if len(code) != n {
		return nil, fmt.Errorf("%w: extracted %d bytes, want %d", ErrConfig, len(code), n)
	}
	return e.codec.Decode(code)
}

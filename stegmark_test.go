package stegmark

import (
	"context"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/stegmark/internal/sampler"
	"github.com/yyyoichi/stegmark/mark"
)

func createImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(64 + x*64/width),
				G: uint8(96 + y*64/height),
				B: uint8(128 + (x+y)*32/(width+height)),
				A: 0xff,
			})
		}
	}
	return img
}

func pad(s string, n int) string {
	return s + strings.Repeat(" ", n-len(s))
}

func TestHello(t *testing.T) {
	ctx := context.Background()
	img := createImage(800, 600)

	marked, err := Encode(ctx, img, "user-42", "HELLO")
	require.NoError(t, err)
	_, ok := marked.(*image.NRGBA)
	assert.True(t, ok)

	res, err := Decode(ctx, marked, "user-42")
	require.NoError(t, err)
	assert.Equal(t, "HELLO"+strings.Repeat(" ", 35), res.Text)
	assert.Zero(t, res.CorrectedBits())
	assert.Zero(t, res.SymbolCorrections)
	assert.True(t, res.Reliable)
}

func TestRoundTrip(t *testing.T) {
	test := []struct {
		name   string
		img    image.Image
		secret string
		text   string
		opts   []Option
		size   int
	}{
		{"pixel", createImage(320, 240), "secret", "stegmark", nil, 40},
		{"full payload", createImage(320, 240), "s", strings.Repeat("x", 40), nil, 40},
		{"empty secret", createImage(320, 240), "", "payload", nil, 40},
		{"replacement", createImage(800, 600), "secret", "stegmark", []Option{WithSampling(Replacement)}, 40},
		{"golay", createImage(320, 240), "secret", "stegmark", []Option{WithMarkOptions(mark.WithGolay())}, 40},
		{"no ecc", createImage(320, 240), "secret", "stegmark", []Option{WithMarkOptions(mark.WithoutECC())}, 40},
		{"long payload", createImage(320, 240), "secret", "stegmark", []Option{WithPayloadLength(100)}, 100},
		{"offset bounds", createImage(320, 240).SubImage(image.Rect(17, 9, 300, 200)), "secret", "sub image", nil, 40},
		{"transform", createImage(512, 512), "secret", "stegmark", []Option{WithTransformDomain()}, 40},
		{"transform d1", createImage(512, 512), "secret", "stegmark", []Option{WithTransformDomain(), WithD1(36), WithBlockShape(6, 6)}, 40},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, err := New(tt.secret, tt.opts...)
			require.NoError(t, err)

			marked, err := e.Encode(ctx, tt.img, tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.img.Bounds(), marked.Bounds())

			res, err := e.Decode(ctx, marked)
			require.NoError(t, err)
			assert.Equal(t, pad(tt.text, tt.size), res.Text)
			assert.True(t, res.Reliable)
		})
	}
}

func TestSourceUntouched(t *testing.T) {
	img := createImage(64, 64)
	before := append([]uint8(nil), img.Pix...)
	for _, opt := range []Option{WithPixelDomain(), WithTransformDomain()} {
		_, err := Encode(context.Background(), img, "secret", "HELL", opt, WithPayloadLength(4), WithMarkOptions(mark.WithoutECC()))
		require.NoError(t, err)
	}
	assert.Equal(t, before, img.Pix)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	test := []struct {
		name string
		run  func() error
		want error
	}{
		{"too long", func() error {
			_, err := Encode(ctx, createImage(100, 100), "s", strings.Repeat("x", 41))
			return err
		}, ErrPayloadTooLong},
		{"pixel too small", func() error {
			_, err := Encode(ctx, createImage(10, 10), "s", "HELLO")
			return err
		}, ErrTooSmallImage},
		{"pixel decode too small", func() error {
			_, err := Decode(ctx, createImage(10, 10), "s")
			return err
		}, ErrTooSmallImage},
		{"transform too small", func() error {
			_, err := Encode(ctx, createImage(100, 100), "s", "HELLO", WithTransformDomain())
			return err
		}, ErrTooSmallImage},
		{"encoded length", func() error {
			_, err := New("s", WithEncodedLength(84))
			return err
		}, ErrConfig},
		{"parity", func() error {
			_, err := New("s", WithMarkOptions(mark.WithParity(300)))
			return err
		}, ErrConfig},
		{"payload length", func() error {
			_, err := New("s", WithPayloadLength(0))
			return err
		}, ErrConfig},
		{"d1", func() error {
			_, err := New("s", WithD1D2(0, 20))
			return err
		}, ErrConfig},
		{"sampling", func() error {
			_, err := New("s", WithSampling(Sampling(7)))
			return err
		}, ErrConfig},
		{"strategy length", func() error {
			e, err := New("s", WithStrategy(shortStrategy{}))
			require.NoError(t, err)
			_, err = e.Decode(ctx, createImage(10, 10))
			return err
		}, ErrConfig},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), tt.want)
		})
	}

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		for _, opt := range []Option{WithPixelDomain(), WithTransformDomain()} {
			_, err := Encode(ctx, createImage(512, 512), "s", "HELLO", opt)
			assert.ErrorIs(t, err, context.Canceled)
		}
	})

	t.Run("encoded length match", func(t *testing.T) {
		e, err := New("s", WithEncodedLength(85))
		require.NoError(t, err)
		assert.Equal(t, 85, e.Codec().EncodedLen())
	})
}

type shortStrategy struct{}

func (shortStrategy) Embed(_ context.Context, src image.Image, _ []byte) (image.Image, error) {
	return src, nil
}

func (shortStrategy) Extract(context.Context, image.Image, int) ([]byte, error) {
	return make([]byte, 3), nil
}

func TestWrongSecret(t *testing.T) {
	ctx := context.Background()
	marked, err := Encode(ctx, createImage(320, 240), "right", "HELLO")
	require.NoError(t, err)

	res, err := Decode(ctx, marked, "wrong")
	assert.ErrorIs(t, err, ErrUncorrectable)
	require.NotNil(t, res)
	assert.False(t, res.Reliable)
}

// flip toggles the second lowest red bit of the i-th embedded pixel, the first bit it carries.
func flip(t *testing.T, img image.Image, secret string, pixels ...int) {
	t.Helper()
	nrgba, ok := img.(*image.NRGBA)
	require.True(t, ok)
	s := sampler.New(sampler.Seed(secret), nrgba.Rect, sampler.Distinct)
	var pts []image.Point
	for range pixels[len(pixels)-1] + 1 {
		p, err := s.Next()
		require.NoError(t, err)
		pts = append(pts, p)
	}
	for _, i := range pixels {
		nrgba.Pix[nrgba.PixOffset(pts[i].X, pts[i].Y)] ^= 0b10
	}
}

func TestCorruption(t *testing.T) {
	ctx := context.Background()

	t.Run("symbols", func(t *testing.T) {
		e, err := New("user-42")
		require.NoError(t, err)
		marked, err := e.Encode(ctx, createImage(320, 240), "HELLO")
		require.NoError(t, err)
		// pixels 0, 10 and 20 hold bits of bytes 0, 5 and 10
		flip(t, marked, "user-42", 0, 10, 20)

		res, err := e.Decode(ctx, marked)
		require.NoError(t, err)
		assert.Equal(t, pad("HELLO", 40), res.Text)
		assert.Equal(t, 3, res.SymbolCorrections)
		assert.True(t, res.Reliable)
	})

	t.Run("bits", func(t *testing.T) {
		e, err := New("user-42", WithMarkOptions(mark.WithParity(0)))
		require.NoError(t, err)
		marked, err := e.Encode(ctx, createImage(320, 240), "HELLO")
		require.NoError(t, err)
		// one flip in each of the Hamming blocks 0, 4, 8, 12 and 16
		flip(t, marked, "user-42", 0, 15, 30, 45, 60)

		res, err := e.Decode(ctx, marked)
		require.NoError(t, err)
		assert.Equal(t, pad("HELLO", 40), res.Text)
		assert.Equal(t, 5, res.CorrectedBits())
	})
}

func TestConcurrentDecode(t *testing.T) {
	ctx := context.Background()
	e, err := New("user-42")
	require.NoError(t, err)
	marked, err := e.Encode(ctx, createImage(400, 300), "concurrent")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = e.Decode(ctx, marked)
		}()
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
		assert.Equal(t, pad("concurrent", 40), results[i].Text)
	}
}

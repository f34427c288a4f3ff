package mark

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec(t *testing.T) {
	test := []struct {
		name       string
		size       int
		opts       []Option
		encodedLen int
		codeName   string
	}{
		{"default", DefaultSize, nil, 85, "hamming15_11+rs10"},
		{"golay", DefaultSize, []Option{WithGolay()}, 88, "golay23_12+rs10"},
		{"hamming only", DefaultSize, []Option{WithParity(0)}, 75, "hamming15_11"},
		{"rs only", DefaultSize, []Option{WithBlockCode(plain{}), WithParity(4)}, 44, "none+rs4"},
		{"no ecc", DefaultSize, []Option{WithoutECC()}, 40, "none"},
		// 300 bytes -> 563 hamming bytes -> 3 codewords
		{"multiple codewords", 300, nil, 593, "hamming15_11+rs10"},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.size, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.encodedLen, c.EncodedLen())
			assert.Equal(t, tt.codeName, c.Name())
			assert.Equal(t, tt.size, c.Size())

			code, err := c.Encode("HELLO")
			require.NoError(t, err)
			require.Len(t, code, tt.encodedLen)

			d, err := c.Decode(code)
			require.NoError(t, err)
			assert.True(t, d.Reliable)
			assert.Equal(t, "HELLO"+strings.Repeat(" ", tt.size-5), d.Text)
			assert.Equal(t, 0, d.CorrectedBits())
			assert.Equal(t, 0, d.SymbolCorrections)
		})
	}
}

func TestCodecErrors(t *testing.T) {
	t.Run("invalid size", func(t *testing.T) {
		_, err := New(0)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
	t.Run("invalid parity", func(t *testing.T) {
		_, err := New(DefaultSize, WithParity(-1))
		assert.ErrorIs(t, err, ErrInvalidParity)
		_, err = New(DefaultSize, WithParity(255))
		assert.ErrorIs(t, err, ErrInvalidParity)
	})
	c, err := New(DefaultSize)
	require.NoError(t, err)
	t.Run("too long", func(t *testing.T) {
		_, err := c.Encode(strings.Repeat("x", DefaultSize+1))
		assert.ErrorIs(t, err, ErrTooLong)
		_, err = c.Encode(strings.Repeat("x", DefaultSize))
		assert.NoError(t, err)
	})
	t.Run("length", func(t *testing.T) {
		_, err := c.Decode(make([]byte, 84))
		assert.ErrorIs(t, err, ErrLength)
		_, err = c.Decode(make([]byte, 86))
		assert.ErrorIs(t, err, ErrLength)
	})
}

func TestCodecCorrection(t *testing.T) {
	const text = "user-42 2025-01-01"
	want := text + strings.Repeat(" ", DefaultSize-len(text))

	t.Run("symbol burst", func(t *testing.T) {
		c, err := New(DefaultSize)
		require.NoError(t, err)
		code, err := c.Encode(text)
		require.NoError(t, err)
		for i := 30; i < 35; i++ {
			code[i] ^= 0xff
		}
		d, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, want, d.Text)
		assert.Equal(t, 5, d.SymbolCorrections)
		assert.True(t, d.Reliable)
	})

	t.Run("too many symbols", func(t *testing.T) {
		c, err := New(DefaultSize)
		require.NoError(t, err)
		code, err := c.Encode(text)
		require.NoError(t, err)
		for _, i := range []int{0, 7, 19, 40, 61, 84} {
			code[i] ^= 0x5a
		}
		d, err := c.Decode(code)
		assert.ErrorIs(t, err, ErrUncorrectable)
		require.NotNil(t, d)
		assert.False(t, d.Reliable)
		assert.Len(t, d.Text, DefaultSize)
	})

	t.Run("scattered bits", func(t *testing.T) {
		c, err := New(DefaultSize, WithParity(0))
		require.NoError(t, err)
		code, err := c.Encode(text)
		require.NoError(t, err)
		// one flipped bit in each of the first 20 Hamming blocks
		for k := range 20 {
			bit := k*15 + k%15
			code[bit/8] ^= 0x80 >> (bit % 8)
		}
		d, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, want, d.Text)
		assert.Equal(t, 20, d.CorrectedBits())
	})

	t.Run("golay", func(t *testing.T) {
		c, err := New(DefaultSize, WithGolay(), WithParity(0))
		require.NoError(t, err)
		code, err := c.Encode(text)
		require.NoError(t, err)
		// three flipped bits in each of the first 10 Golay words
		for k := range 10 {
			for _, off := range []int{0, 11, 22} {
				bit := k*23 + off
				code[bit/8] ^= 0x80 >> (bit % 8)
			}
		}
		d, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, want, d.Text)
		assert.Equal(t, 30, d.CorrectedBits())
	})
}

func TestHamming(t *testing.T) {
	for v := range 256 {
		cw := hammingEncode(uint16(v))
		require.Zero(t, hammingSyndrome(cw))

		d, fixed := hammingDecode(cw)
		require.Equal(t, uint16(v), d)
		require.Zero(t, fixed)

		for bit := range 15 {
			d, fixed := hammingDecode(cw ^ 1<<bit)
			require.Equal(t, uint16(v), d, "value %d bit %d", v, bit)
			require.Equal(t, 1, fixed)
		}
	}
}

func TestReedSolomon(t *testing.T) {
	rs := reedSolomon{nsym: 10}
	data := []byte("the quick brown fox jumps over the lazy dog")
	code := rs.encode(data)
	require.Len(t, code, len(data)+10)

	t.Run("clean", func(t *testing.T) {
		got, fixed, err := rs.decode(code)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Zero(t, fixed)
	})

	for n := 1; n <= 5; n++ {
		t.Run("errors", func(t *testing.T) {
			damaged := append([]byte(nil), code...)
			for i := range n {
				damaged[i*9+2] ^= byte(0x11 * (i + 1))
			}
			got, fixed, err := rs.decode(damaged)
			require.NoError(t, err)
			assert.Equal(t, data, got)
			assert.Equal(t, n, fixed)
		})
	}

	t.Run("parity only damage", func(t *testing.T) {
		damaged := append([]byte(nil), code...)
		damaged[len(damaged)-1] ^= 1
		damaged[len(damaged)-2] ^= 1
		got, fixed, err := rs.decode(damaged)
		require.NoError(t, err)
		assert.Equal(t, data, got)
		assert.Equal(t, 2, fixed)
	})

	t.Run("short codeword", func(t *testing.T) {
		_, _, err := rs.decode(make([]byte, 10))
		assert.ErrorIs(t, err, ErrLength)
	})
}

func TestReedSolomonLong(t *testing.T) {
	rs := reedSolomon{nsym: 16}
	data := make([]byte, 600)
	for i := range data {
		data[i] = byte(i * 7)
	}
	code := rs.encode(data)
	require.Len(t, code, rs.encodedLen(len(data)))
	require.Len(t, code, 600+3*16)

	// eight errors in every codeword
	for cw := 0; cw < 3; cw++ {
		for i := range 8 {
			pos := cw*255 + i*17
			code[pos] ^= 0xa5
		}
	}
	got, fixed, err := rs.decode(code)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, 24, fixed)
}

func BenchmarkCodec(b *testing.B) {
	c, err := New(DefaultSize)
	require.NoError(b, err)
	code, err := c.Encode("HELLO")
	require.NoError(b, err)
	code[3] ^= 0xff
	for b.Loop() {
		_, _ = c.Decode(code)
	}
}

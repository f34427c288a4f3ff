// Package mark turns a fixed-length text payload into an error-corrected byte
// sequence and back.
//
// Encoding pads the text with spaces to the configured size, applies a bit-level
// block code (Hamming(15,11) by default) and then a Reed-Solomon symbol code.
// The block code fixes isolated bit flips, the symbol code fixes bursts that
// damage whole bytes. Decoding reports how much each layer had to correct.
package mark

import (
	"bytes"
	"errors"
	"fmt"
)

const (
	// DefaultSize is the raw payload length in bytes.
	DefaultSize = 40
	// DefaultParity is the number of Reed-Solomon parity symbols per codeword.
	DefaultParity = 10
)

var (
	ErrInvalidSize   = errors.New("invalid payload size")
	ErrInvalidParity = errors.New("invalid number of parity symbols")
	ErrTooLong       = errors.New("payload exceeds the configured size")
	ErrLength        = errors.New("encoded payload has an unexpected length")
	ErrUncorrectable = errors.New("too many symbol errors to correct")
)

// BlockCode is a bit-level forward error correction code.
// Decode never fails; blocks with too many errors decode to wrong data.
type BlockCode interface {
	Name() string
	// EncodedLen returns the encoded length in bytes of an n byte payload.
	EncodedLen(n int) int
	Encode(data []byte) []byte
	// Decode returns the first n payload bytes and the number of bits corrected in each block.
	Decode(data []byte, n int) ([]byte, []int)
}

// Codec is the fixed-length FEC chain shared by encoder and decoder.
// It holds no mutable state and is safe for concurrent use.
type Codec struct {
	size    int
	block   BlockCode
	symbols *reedSolomon
}

// Decoded is the outcome of Codec.Decode.
type Decoded struct {
	// Text is the payload including its space padding.
	Text  string
	Bytes []byte
	// BlockCorrections holds the number of bits the block code corrected per block.
	BlockCorrections []int
	// SymbolCorrections is the number of symbols the Reed-Solomon layer repaired.
	SymbolCorrections int
	// Reliable is false when the symbol layer failed and Text is a best-effort guess.
	Reliable bool
}

// CorrectedBits returns the total number of bits fixed by the block code.
func (d *Decoded) CorrectedBits() int {
	var n int
	for _, v := range d.BlockCorrections {
		n += v
	}
	return n
}

// New returns a Codec for payloads of size bytes.
// By default it uses Hamming(15,11) followed by Reed-Solomon with DefaultParity symbols.
func New(size int, opts ...Option) (*Codec, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	mf := markFactory{
		block:  hamming{},
		parity: DefaultParity,
	}
	for _, opt := range opts {
		opt(&mf)
	}
	if mf.parity < 0 || mf.parity >= maxCodeword {
		return nil, fmt.Errorf("%w: %d", ErrInvalidParity, mf.parity)
	}
	c := &Codec{size: size, block: mf.block}
	if mf.parity > 0 {
		c.symbols = &reedSolomon{nsym: mf.parity}
	}
	return c, nil
}

// Size returns the raw payload length in bytes.
func (c *Codec) Size() int {
	return c.size
}

// EncodedLen returns the length in bytes of every encoded payload.
func (c *Codec) EncodedLen() int {
	n := c.block.EncodedLen(c.size)
	if c.symbols != nil {
		n = c.symbols.encodedLen(n)
	}
	return n
}

// Name describes the configured chain, e.g. "hamming15_11+rs10".
func (c *Codec) Name() string {
	if c.symbols == nil {
		return c.block.Name()
	}
	return fmt.Sprintf("%s+rs%d", c.block.Name(), c.symbols.nsym)
}

// Encode pads text with spaces to Size and encodes it.
func (c *Codec) Encode(text string) ([]byte, error) {
	return c.EncodeBytes([]byte(text))
}

// EncodeBytes pads data with spaces to Size and encodes it.
func (c *Codec) EncodeBytes(data []byte) ([]byte, error) {
	if len(data) > c.size {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLong, len(data), c.size)
	}
	padded := make([]byte, 0, c.size)
	padded = append(padded, data...)
	padded = append(padded, bytes.Repeat([]byte{' '}, c.size-len(data))...)

	encoded := c.block.Encode(padded)
	if c.symbols != nil {
		encoded = c.symbols.encode(encoded)
	}
	return encoded, nil
}

// Decode reverses Encode.
//
// If the symbol layer cannot correct the input, Decode returns both a
// best-effort result with Reliable set to false and an error wrapping
// ErrUncorrectable.
func (c *Codec) Decode(data []byte) (*Decoded, error) {
	if want := c.EncodedLen(); len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLength, len(data), want)
	}
	var (
		blocks = data
		fixed  int
		err    error
	)
	if c.symbols != nil {
		blocks, fixed, err = c.symbols.decode(data)
		if err != nil && !errors.Is(err, ErrUncorrectable) {
			return nil, err
		}
	}
	raw, corrections := c.block.Decode(blocks, c.size)
	return &Decoded{
		Text:              string(raw),
		Bytes:             raw,
		BlockCorrections:  corrections,
		SymbolCorrections: fixed,
		Reliable:          err == nil,
	}, err
}

package mark

import (
	"math/bits"

	"github.com/yyyoichi/bitstream-go"
	"github.com/yyyoichi/golay"
)

var _ BlockCode = (*golayCode)(nil)

// golayCode splits the payload bit stream into 12-bit words and encodes each
// into a 23-bit Golay codeword, correcting up to 3 bit errors per word.
type golayCode struct{}

func (golayCode) Name() string { return "golay23_12" }

func (golayCode) EncodedLen(n int) int {
	return (golay.EncodedBits(n*8) + 7) / 8
}

func (golayCode) Encode(data []byte) []byte {
	r := bitstream.NewBitReader(data, 0, 0)
	w := bitstream.NewBitWriter[uint8](0, 0)
	for i := range golayWords(len(data)) {
		// the last word is zero padded by the reader
		w.Write32(9, 23, golay.EncodeWord(r.Read16R(12, i)))
	}
	return w.Data()
}

func (golayCode) Decode(data []byte, n int) ([]byte, []int) {
	r := bitstream.NewBitReader(data, 0, 0)
	w := bitstream.NewBitWriter[uint8](0, 0)
	words := golayWords(n)
	fixed := make([]int, words)
	for i := range words {
		cw := r.Read32R(23, i)
		d := golay.Decode(cw)
		fixed[i] = bits.OnesCount32(cw ^ golay.EncodeWord(d))
		w.Write16(4, 12, d)
	}
	out := make([]byte, n)
	copy(out, w.Data())
	return out, fixed
}

func golayWords(n int) int {
	return (n*8 + 11) / 12
}

var _ BlockCode = (*plain)(nil)

// plain leaves the payload as is.
type plain struct{}

func (plain) Name() string { return "none" }

func (plain) EncodedLen(n int) int { return n }

func (plain) Encode(data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

func (plain) Decode(data []byte, n int) ([]byte, []int) {
	out := make([]byte, n)
	copy(out, data)
	return out, make([]int, n)
}

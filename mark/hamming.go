package mark

import "github.com/yyyoichi/bitstream-go"

var _ BlockCode = (*hamming)(nil)

// hamming encodes every payload byte into one Hamming(15,11) codeword.
// The 11-bit data word is the byte value, so its top three bits are always zero.
// Codeword bit positions are numbered 1..15 from the most significant end;
// parity bits sit at the powers of two.
type hamming struct{}

var hammingDataPos = [11]int{3, 5, 6, 7, 9, 10, 11, 12, 13, 14, 15}

func (hamming) Name() string { return "hamming15_11" }

func (hamming) EncodedLen(n int) int {
	return (n*15 + 7) / 8
}

func (hamming) Encode(data []byte) []byte {
	w := bitstream.NewBitWriter[uint8](0, 0)
	for _, b := range data {
		w.Write16(1, 15, hammingEncode(uint16(b)))
	}
	return w.Data()
}

func (hamming) Decode(data []byte, n int) ([]byte, []int) {
	r := bitstream.NewBitReader(data, 0, 0)
	out := make([]byte, n)
	fixed := make([]int, n)
	for i := range n {
		d, f := hammingDecode(r.Read16R(15, i))
		out[i] = byte(d)
		fixed[i] = f
	}
	return out, fixed
}

func hammingEncode(d uint16) uint16 {
	var cw uint16
	for i, p := range hammingDataPos {
		if d&(1<<(10-i)) != 0 {
			cw |= 1 << (15 - p)
		}
	}
	s := hammingSyndrome(cw)
	for p := 1; p <= 8; p <<= 1 {
		if s&p != 0 {
			cw |= 1 << (15 - p)
		}
	}
	return cw
}

// hammingDecode corrects at most one flipped bit. With more errors the
// syndrome points at the wrong bit and the result is silently wrong.
func hammingDecode(cw uint16) (d uint16, fixed int) {
	if s := hammingSyndrome(cw); s != 0 {
		cw ^= 1 << (15 - s)
		fixed = 1
	}
	for i, p := range hammingDataPos {
		if cw&(1<<(15-p)) != 0 {
			d |= 1 << (10 - i)
		}
	}
	return d, fixed
}

func hammingSyndrome(cw uint16) int {
	var s int
	for p := 1; p <= 15; p++ {
		if cw&(1<<(15-p)) != 0 {
			s ^= p
		}
	}
	return s
}

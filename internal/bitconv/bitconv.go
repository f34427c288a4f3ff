// Package bitconv converts between bytes and MSB-first bit sequences.
package bitconv

import "github.com/yyyoichi/bitstream-go"

// BytesToBools expands b into bits, most significant bit of each byte first.
func BytesToBools(b []byte) []bool {
	r := bitstream.NewBitReader(b, 0, 0)
	bits := make([]bool, r.Bits())
	for i := range bits {
		bits[i], _ = r.ReadBitAt(i)
	}
	return bits
}

// BoolsToBytes packs bits MSB-first. A trailing partial byte is padded with zero bits.
func BoolsToBytes(bits []bool) []byte {
	w := bitstream.NewBitWriter[uint8](0, 0)
	for _, v := range bits {
		w.WriteBool(v)
	}
	return w.Data()
}

// Packer accumulates bits and emits a byte for every eight of them.
type Packer struct {
	w *bitstream.BitWriter[uint8]
}

func NewPacker() *Packer {
	return &Packer{w: bitstream.NewBitWriter[uint8](0, 0)}
}

// Push appends one bit.
func (p *Packer) Push(bit bool) {
	p.w.WriteBool(bit)
}

// Bits returns the number of bits pushed so far.
func (p *Packer) Bits() int {
	return p.w.Bits()
}

// Bytes returns the completed bytes. A trailing partial byte is dropped.
func (p *Packer) Bytes() []byte {
	data := p.w.Data()
	n := p.w.Bits() / 8
	out := make([]byte, n)
	copy(out, data[:n])
	return out
}

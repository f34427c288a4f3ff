package mark

type (
	// Option selects the error correction layers used by a Codec.
	Option      func(*markFactory)
	markFactory struct {
		block  BlockCode
		parity int
	}
)

// WithHamming encodes every payload byte into a Hamming(15,11) codeword.
// It corrects one bit error per byte. This is the default.
func WithHamming() Option {
	return func(mf *markFactory) {
		mf.block = hamming{}
	}
}

// WithGolay encodes the payload in 12-bit words with the Golay(23,12) code.
// It corrects up to three bit errors per word at a higher bit cost than WithHamming.
func WithGolay() Option {
	return func(mf *markFactory) {
		mf.block = golayCode{}
	}
}

// WithBlockCode uses a custom bit-level code.
func WithBlockCode(bc BlockCode) Option {
	return func(mf *markFactory) {
		mf.block = bc
	}
}

// WithParity sets the number of Reed-Solomon parity symbols per codeword.
// Up to n/2 damaged symbols per codeword are corrected. Zero disables the symbol layer.
func WithParity(n int) Option {
	return func(mf *markFactory) {
		mf.parity = n
	}
}

// WithoutECC disables both layers; the padded payload is used as is.
func WithoutECC() Option {
	return func(mf *markFactory) {
		mf.block = plain{}
		mf.parity = 0
	}
}

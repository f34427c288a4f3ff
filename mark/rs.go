package mark

import (
	"fmt"
	"slices"

	"rsc.io/qr/gf256"
)

// field is GF(2^8) with the QR code polynomial x^8+x^4+x^3+x^2+1 and generator 2.
// The generator polynomial built by gf256.NewRSEncoder has the roots α^0 .. α^(n-1).
var field = gf256.NewField(0x11d, 2)

const maxCodeword = 255

// reedSolomon is a systematic Reed-Solomon code with nsym parity symbols per codeword.
// Payloads longer than one codeword are split into consecutive codewords.
type reedSolomon struct {
	nsym int
}

func (rs reedSolomon) chunk() int {
	return maxCodeword - rs.nsym
}

func (rs reedSolomon) encodedLen(n int) int {
	if n == 0 {
		return 0
	}
	return n + (n+rs.chunk()-1)/rs.chunk()*rs.nsym
}

func (rs reedSolomon) encode(data []byte) []byte {
	// RSEncoder keeps a scratch buffer, so it is never shared between calls.
	enc := gf256.NewRSEncoder(field, rs.nsym)
	out := make([]byte, 0, rs.encodedLen(len(data)))
	for start := 0; start < len(data); start += rs.chunk() {
		msg := data[start:min(start+rs.chunk(), len(data))]
		check := make([]byte, rs.nsym)
		enc.ECC(msg, check)
		out = append(out, msg...)
		out = append(out, check...)
	}
	return out
}

// decode corrects every codeword and strips the parity symbols.
// When a codeword cannot be corrected its data symbols are returned as received
// and the first such failure is reported.
func (rs reedSolomon) decode(code []byte) (data []byte, fixed int, err error) {
	data = make([]byte, 0, len(code))
	for i, start := 0, 0; start < len(code); i, start = i+1, start+maxCodeword {
		cw := code[start:min(start+maxCodeword, len(code))]
		if len(cw) <= rs.nsym {
			return nil, 0, fmt.Errorf("%w: codeword %d has %d symbols", ErrLength, i, len(cw))
		}
		corrected, n, cerr := rs.correct(cw)
		if cerr != nil {
			if err == nil {
				err = fmt.Errorf("%w: codeword %d", cerr, i)
			}
			corrected = cw
		}
		fixed += n
		data = append(data, corrected[:len(cw)-rs.nsym]...)
	}
	return data, fixed, err
}

// correct returns a corrected copy of cw and the number of symbols that were changed.
func (rs reedSolomon) correct(cw []byte) ([]byte, int, error) {
	synd := rs.syndromes(cw)
	if !slices.ContainsFunc(synd, func(s byte) bool { return s != 0 }) {
		return cw, 0, nil
	}

	lambda := berlekampMassey(synd)
	nerr := len(lambda) - 1
	if nerr*2 > rs.nsym {
		return nil, 0, ErrUncorrectable
	}

	// Chien search over the (possibly shortened) codeword only.
	// Symbol i carries the coefficient of x^(n-1-i).
	n := len(cw)
	var pos []int
	for i := range n {
		if polyEval(lambda, field.Exp(maxCodeword-(n-1-i))) == 0 {
			pos = append(pos, i)
		}
	}
	if len(pos) != nerr {
		return nil, 0, ErrUncorrectable
	}

	// Forney, first consecutive root α^0: e = X·Ω(X⁻¹) / Λ'(X⁻¹)
	omega := polyMulTrunc(synd, lambda, rs.nsym)
	dlambda := formalDerivative(lambda)
	out := slices.Clone(cw)
	for _, i := range pos {
		e := n - 1 - i
		xinv := field.Exp(maxCodeword - e)
		den := polyEval(dlambda, xinv)
		if den == 0 {
			return nil, 0, ErrUncorrectable
		}
		mag := field.Mul(field.Exp(e), field.Mul(polyEval(omega, xinv), field.Inv(den)))
		out[i] ^= mag
	}
	if slices.ContainsFunc(rs.syndromes(out), func(s byte) bool { return s != 0 }) {
		return nil, 0, ErrUncorrectable
	}
	return out, nerr, nil
}

func (rs reedSolomon) syndromes(cw []byte) []byte {
	synd := make([]byte, rs.nsym)
	for j := range synd {
		x := field.Exp(j)
		var y byte
		for _, c := range cw {
			y = field.Mul(y, x) ^ c
		}
		synd[j] = y
	}
	return synd
}

// berlekampMassey returns the error locator polynomial, lowest degree first.
func berlekampMassey(synd []byte) []byte {
	var (
		c  = []byte{1}
		b  = []byte{1}
		l  = 0
		m  = 1
		bd = byte(1)
	)
	for n := range synd {
		d := synd[n]
		for i := 1; i <= l && i < len(c); i++ {
			d ^= field.Mul(c[i], synd[n-i])
		}
		if d == 0 {
			m++
			continue
		}
		t := slices.Clone(c)
		coef := field.Mul(d, field.Inv(bd))
		if need := len(b) + m; len(c) < need {
			c = append(c, make([]byte, need-len(c))...)
		}
		for i, v := range b {
			c[i+m] ^= field.Mul(coef, v)
		}
		if 2*l <= n {
			l = n + 1 - l
			b = t
			bd = d
			m = 1
		} else {
			m++
		}
	}
	return c[:l+1]
}

// polyEval evaluates p (lowest degree first) at x.
func polyEval(p []byte, x byte) byte {
	var y byte
	for i := len(p) - 1; i >= 0; i-- {
		y = field.Mul(y, x) ^ p[i]
	}
	return y
}

// polyMulTrunc returns a·b mod x^n.
func polyMulTrunc(a, b []byte, n int) []byte {
	out := make([]byte, n)
	for i, av := range a {
		if av == 0 {
			continue
		}
		for j, bv := range b {
			if i+j >= n {
				break
			}
			out[i+j] ^= field.Mul(av, bv)
		}
	}
	return out
}

// formalDerivative in characteristic 2 keeps only the odd powers.
func formalDerivative(p []byte) []byte {
	if len(p) < 2 {
		return []byte{0}
	}
	out := make([]byte, len(p)-1)
	for i := 1; i < len(p); i += 2 {
		out[i-1] = p[i]
	}
	return out
}

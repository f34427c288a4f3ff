package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// blockDCT is the orthonormal 2-D DCT-II of a h x w block.
type blockDCT struct {
	ch, cw *mat.Dense
}

func newBlockDCT(w, h int) blockDCT {
	return blockDCT{ch: dctBasis(h), cw: dctBasis(w)}
}

func dctBasis(n int) *mat.Dense {
	c := mat.NewDense(n, n, nil)
	fn := float64(n)
	for i := range n {
		scale := math.Sqrt(2 / fn)
		if i == 0 {
			scale = math.Sqrt(1 / fn)
		}
		for j := range n {
			c.Set(i, j, scale*math.Cos(float64(i)*math.Pi*float64(2*j+1)/(2*fn)))
		}
	}
	return c
}

func (d blockDCT) forward(dst *mat.Dense, x mat.Matrix) {
	dst.Product(d.ch, x, d.cw.T())
}

func (d blockDCT) inverse(dst *mat.Dense, y mat.Matrix) {
	dst.Product(d.ch.T(), y, d.cw)
}

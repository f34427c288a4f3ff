package spectral

import "math"

// twoMeans splits values into a high (true) and a low cluster, starting from
// the extremes. If all values lie within .5 of each other they are split at .5.
func twoMeans(values []float64) []bool {
	out := make([]bool, len(values))
	if len(values) == 0 {
		return out
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo < .5 {
		for i, v := range values {
			out[i] = v >= .5
		}
		return out
	}

	threshold := (lo + hi) / 2
	for range 300 {
		var hs, ls float64
		var hn, ln int
		for i, v := range values {
			out[i] = v >= threshold
			if out[i] {
				hs += v
				hn++
			} else {
				ls += v
				ln++
			}
		}
		next := (hs/float64(hn) + ls/float64(ln)) / 2
		if math.Abs(next-threshold) < 1e-6 {
			break
		}
		threshold = next
	}
	return out
}

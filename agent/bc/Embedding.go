package bc

import "math"

// timeEmbedding writes the sinusoidal embedding of diffusion step t
// into dst. The first half of dst holds sines and the second half
// cosines of t at geometrically spaced frequencies.
func timeEmbedding(dst []float64, t int) {
	half := len(dst) / 2
	scale := 0.0
	if half > 1 {
		scale = math.Log(10000) / float64(half-1)
	}

	for k := 0; k < half; k++ {
		arg := float64(t) * math.Exp(-scale*float64(k))
		dst[k] = math.Sin(arg)
		dst[half+k] = math.Cos(arg)
	}
}

package vocoder

import "math"

// Cepstrum/LSP math: mc2b/b2mc follow the textbook mel-cepstral "b" form
// recurrence used throughout the HTS vocoder lineage.

// mc2b converts mel-cepstral coefficients c to the "b" form used directly
// by the MLSA filter: b[M]=c[M]; b[i]=c[i]-alpha*b[i+1] for i=M-1..0.
func mc2b(c []float64, alpha float64) []float64 {
	m := len(c) - 1
	b := make([]float64, len(c))
	b[m] = c[m]
	for i := m - 1; i >= 0; i-- {
		b[i] = c[i] - alpha*b[i+1]
	}
	return b
}

// b2mc is mc2b's inverse.
func b2mc(b []float64, alpha float64) []float64 {
	m := len(b) - 1
	c := make([]float64, len(b))
	c[m] = b[m]
	for i := m - 1; i >= 0; i-- {
		c[i] = b[i] + alpha*b[i+1]
	}
	return c
}

// gnorm normalizes generalized cepstral coefficients by their gain term:
// k = 1+gamma*c[0]; out[0] = k^(1/gamma); out[i>=1] = c[i]/k. Used in
// the MGLSA path. For gamma==0 it returns an unchanged copy of c; the
// caller never reaches here with gamma==0 (the MLSA path uses plain
// mc2b, not gnorm).
func gnorm(c []float64, gamma float64) []float64 {
	out := make([]float64, len(c))
	if gamma == 0 {
		copy(out, c)
		return out
	}

	k := 1 + gamma*c[0]
	g := math.Pow(k, 1/gamma)
	out[0] = g
	for i := 1; i < len(c); i++ {
		out[i] = c[i] / k
	}
	return out
}

// ignorm is gnorm's inverse: c[0] = (g[0]^gamma - 1)/gamma;
// c[i>=1] = g[i]*(1+gamma*c[0]) for i>=1.
func ignorm(g []float64, gamma float64) []float64 {
	out := make([]float64, len(g))
	if gamma == 0 {
		copy(out, g)
		return out
	}

	c0 := (math.Pow(g[0], gamma) - 1) / gamma
	k := 1 + gamma*c0
	out[0] = c0
	for i := 1; i < len(g); i++ {
		out[i] = g[i] * k
	}
	return out
}

// postfilterMCP sharpens formant peaks by scaling the mid-order
// mel-cepstral coefficients, renormalizing c[0] to preserve overall
// energy.
func postfilterMCP(mc []float64, alpha, beta float64) []float64 {
	out := append([]float64(nil), mc...)
	if beta <= 0 || len(mc) <= 2 {
		return out
	}

	b := mc2b(mc, alpha)

	e1 := energy(b[1:])

	for i := 2; i < len(b); i++ {
		b[i] *= 1 + beta
	}

	e2 := energy(b[1:])
	if e2 > 0 {
		b[0] += logSafe(e1/e2) / 2
	}

	return b2mc(b, alpha)
}

func energy(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x * x
	}
	return sum
}

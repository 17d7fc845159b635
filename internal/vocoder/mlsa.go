package vocoder

// mlsaFilter implements the MLSA (mel-log-spectrum-approximation) cascade
// used when stage sigma=0: two stacked Pade-approximation
// all-pass-warped sections, F1 of order 6 and F2 of order 4, each with
// its own per-sample delay line over the current "b"-form coefficients.
type mlsaFilter struct {
	cepstral []float64 // all-pass warping delay line, length len(coefficients)+1
	d1       []float64 // order-6 Pade section delay line
	d2       []float64 // order-4 Pade section delay line
}

// pade6 and pade4 are the Pade approximation numerator coefficients for
// the order-6 and order-4 sections of the warped exponential transfer
// function, the standard constants used throughout the HTS MLSA filter
// lineage.
var pade6 = [7]float64{1.0, 1.0, 0.4999273, 0.1067005, 0.01170221, 0.0005656279, 0.0}
var pade4 = [5]float64{1.0, 1.0, 0.4999391, 0.1107098, 0.01369984}

func newMLSAFilter(cLen int) *mlsaFilter {
	return &mlsaFilter{
		cepstral: make([]float64, cLen+1),
		d1:       make([]float64, len(pade6)),
		d2:       make([]float64, len(pade4)),
	}
}

// df applies the cascade to sample x in place, first warping it through
// the all-pass structure formed by coefficients and alpha, then the two
// Pade sections.
func (f *mlsaFilter) df(x *float64, alpha float64, coefficients []float64) {
	y := allPassFilter(*x, alpha, coefficients, f.cepstral)
	y = padeSection(y, pade6[:], f.d1)
	y = padeSection(y, pade4[:], f.d2)
	*x = y
}

// allPassFilter pushes x through the warped recursive structure that
// realizes multiplication by exp(warped cepstrum): each coefficient
// contributes one all-pass delay stage, matching HTS's mlsadf1-style
// recursion.
func allPassFilter(x float64, alpha float64, coefficients []float64, delay []float64) float64 {
	if len(coefficients) == 0 {
		return x
	}

	out := x
	prevD := delay[0]
	delay[0] = x

	for i := 1; i < len(coefficients) && i < len(delay); i++ {
		d := delay[i]
		delay[i] = alpha*(prevD-d) + d
		out += coefficients[i] * delay[i]
		prevD = d
	}

	return out
}

// padeSection applies one fixed-order Pade approximation section with
// its own delay line, accumulating the weighted sum of delayed samples
//.
func padeSection(x float64, coeff []float64, delay []float64) float64 {
	n := len(coeff) - 1
	feed := x * coeff[n]

	for i := n - 1; i >= 1; i-- {
		feed += delay[i] * coeff[i]
	}

	for i := n; i >= 2; i-- {
		delay[i] = delay[i-1]
	}
	if n >= 1 {
		delay[1] = x
	}

	return feed + x*coeff[0]
}

package mlpg

import "math"

// gvIterations is the fixed iteration count for the GV gradient-ascent
// post-filter, grounded on the canonical Toda & Tokuda algorithm: a fixed
// step schedule run for a small fixed iteration count, typically 5.
const gvIterations = 5

// ApplyGV nudges a static trajectory c (length T') toward a target global
// variance (gvMean, gvVar) by gradient ascent on the sum of the MLPG
// log-likelihood and the GV log-likelihood, holding the trajectory's mean
// fixed.
//
// mlpgMean/mlpgVar are c's own per-frame MLPG target mean/variance (the
// solver's inputs for this dimension) used to compute the MLPG gradient;
// gvWeight scales the GV term's contribution relative to MLPG's.
func ApplyGV(c []float64, mlpgMean, mlpgVar []float64, gvMean, gvVar, gvWeight float64) []float64 {
	n := len(c)
	if n == 0 || gvWeight <= 0 {
		return c
	}

	out := append([]float64(nil), c...)

	for iter := 0; iter < gvIterations; iter++ {
		mean := meanOf(out)
		variance := varianceOf(out, mean)

		// d(logP_gv)/dc_t = -(var(c) - gvMean)/gvVar * (2/n)*(c_t - mean)
		gvGradScale := -2.0 / float64(n) * (variance - gvMean) / clampPositive(gvVar, 1e-6)

		grad := make([]float64, n)
		for t := range out {
			gMlpg := 0.0
			if mlpgVar[t] > 0 {
				gMlpg = (mlpgMean[t] - out[t]) / mlpgVar[t]
			}
			gGV := gvGradScale * (out[t] - mean)
			grad[t] = gMlpg + gvWeight*gGV
		}

		step := 1.0 / float64(iter+1)
		for t := range out {
			out[t] += step * grad[t]
		}

		// Re-center on the original mean: the GV pass must not drift the
 // trajectory's mean.
		newMean := meanOf(out)
		shift := mean - newMean
		for t := range out {
			out[t] += shift
		}
	}

	return out
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func varianceOf(xs []float64, mean float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}
	return sum / float64(len(xs))
}

// clampPositive guards variance-like values from going non-positive,
// which would otherwise poison a subsequent division.
func clampPositive(v, min float64) float64 {
	return math.Max(v, min)
}

package mlpg

// NODATA is the sentinel written into trajectory cells that correspond to
// unvoiced frames of an MSD stream.
const NODATA = -1e10

// VoicedMask builds the per-frame voiced/unvoiced mask from expanded MSD
// probabilities and a threshold.
func VoicedMask(msd []float64, threshold float64) []bool {
	mask := make([]bool, len(msd))
	for i, p := range msd {
		mask[i] = p > threshold
	}
	return mask
}

// Compact extracts the rows of mean/variance whose mask entry is true,
// returning T' x (L*W) matrices; T' (their length) is the number of
// voiced frames.
func Compact(mean, variance [][]float64, mask []bool) (cMean, cVariance [][]float64) {
	cMean = make([][]float64, 0, len(mean))
	cVariance = make([][]float64, 0, len(variance))

	for t, voiced := range mask {
		if voiced {
			cMean = append(cMean, mean[t])
			cVariance = append(cVariance, variance[t])
		}
	}

	return cMean, cVariance
}

// Scatter re-embeds a length-T' voiced-only dimension trajectory into a
// length-T column, filling unvoiced cells with NODATA (
// "Scatter").
func Scatter(voicedValues []float64, mask []bool) []float64 {
	out := make([]float64, len(mask))
	vi := 0
	for t, voiced := range mask {
		if voiced {
			out[t] = voicedValues[vi]
			vi++
		} else {
			out[t] = NODATA
		}
	}
	return out
}

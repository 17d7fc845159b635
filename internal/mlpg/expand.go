package mlpg

import (
	"fmt"

	"github.com/example/htsvoice/internal/voice"
)

// ExpandState repeats each state's mixed Gaussian across its duration in
// frames, producing T x (L*W) mean and variance matrices where T = sum of
// durations. The vector layout within a row is window-major:
// index w*L+d is dimension d's coefficient for window w, matching
// voice.StreamMetadata{VectorLength: L, NumWindows: W}.
func ExpandState(params []voice.ModelParameter, durations []int) (mean, variance [][]float64, err error) {
	if len(params) != len(durations) {
		return nil, nil, fmt.Errorf("mlpg: %d states but %d durations", len(params), len(durations))
	}

	total := 0
	for _, d := range durations {
		if d < 1 {
			return nil, nil, fmt.Errorf("mlpg: duration must be >=1, got %d", d)
		}
		total += d
	}

	mean = make([][]float64, 0, total)
	variance = make([][]float64, 0, total)

	for i, p := range params {
		for f := 0; f < durations[i]; f++ {
			mean = append(mean, p.Means)
			variance = append(variance, p.Vars)
		}
	}

	return mean, variance, nil
}

// ExpandMSD repeats each state's MSD probability across its duration,
// producing one value per frame.
func ExpandMSD(params []voice.ModelParameter, durations []int) ([]float64, error) {
	if len(params) != len(durations) {
		return nil, fmt.Errorf("mlpg: %d states but %d durations", len(params), len(durations))
	}

	out := make([]float64, 0, sum(durations))
	for i, p := range params {
		if p.MSD == nil {
			return nil, fmt.Errorf("mlpg: state %d has no MSD probability", i)
		}
		for f := 0; f < durations[i]; f++ {
			out = append(out, *p.MSD)
		}
	}

	return out, nil
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

// AdjustHalfTone adds extraHalfTone*halftoneConst to the mean of the
// static coefficient (window 0) of every per-state LF0 parameter, clamped
// to [minLF0, maxLF0].
// It mutates params in place; a zero extraHalfTone is a no-op, matching
// the original engine's early return.
func AdjustHalfTone(params []voice.ModelParameter, extraHalfTone, halftoneConst, minLF0, maxLF0 float64) {
	if extraHalfTone == 0 {
		return
	}

	for i := range params {
		f := params[i].Means[0] + extraHalfTone*halftoneConst
		if f < minLF0 {
			f = minLF0
		}
		if f > maxLF0 {
			f = maxLF0
		}
		params[i].Means[0] = f
	}
}

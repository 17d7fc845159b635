// Package duration implements the duration estimator: turning
// per-state duration Gaussians (already mixed across voices by
// internal/mix) into a non-negative integer frame count per (label,
// state), either under a single global speed ratio or under externally
// supplied per-label time alignment.
package duration

import (
	"fmt"
	"math"
	"sort"
)

// StateStat is a single state's mixed duration Gaussian: Mean and Var are
// in frames.
type StateStat struct {
	Mean float64
	Var  float64
}

// EstimateSpeed implements speed mode: target total frames
// T* = round(Σ mean / speed), then a global multiplier alpha is solved so
// that Σ round(mean[i] + alpha*var[i], minimum 1) == T*, with the leftover
// rounding residue assigned to the states whose fractional part is
// largest (closest to rounding up already).
func EstimateSpeed(stats []StateStat, speed float64) ([]int, error) {
	if speed <= 0 {
		return nil, fmt.Errorf("duration: speed must be positive, got %v", speed)
	}
	if len(stats) == 0 {
		return nil, fmt.Errorf("duration: no states given")
	}

	sumMean := 0.0
	for _, s := range stats {
		sumMean += s.Mean
	}

	target := int(math.Round(sumMean / speed))
	if target < len(stats) {
		target = len(stats) // every state needs at least one frame
	}

	alpha := solveAlpha(stats, target)

	raw := make([]float64, len(stats))
	for i, s := range stats {
		raw[i] = s.Mean + alpha*s.Var
	}

	return allocate(raw, target, 1), nil
}

// solveAlpha picks the alpha that makes Σ(mean[i]+alpha*var[i]) equal to
// target exactly in the continuous relaxation; allocate then rounds that
// to the nearest integer solution. Falls back to 0 when every state has
// zero variance (alpha would be undefined, and has no effect anyway).
func solveAlpha(stats []StateStat, target int) float64 {
	sumMean, sumVar := 0.0, 0.0
	for _, s := range stats {
		sumMean += s.Mean
		sumVar += s.Var
	}

	if sumVar <= 0 {
		return 0
	}

	return (float64(target) - sumMean) / sumVar
}

// LabelSpan is one label's externally forced time alignment, in samples
// from the start of the utterance.
type LabelSpan struct {
	StartSamples int64
	EndSamples   int64
	States       []StateStat // per-state mean used only for proportional split
}

// EstimateAlignment implements alignment mode: each label's
// span is converted to a frame count fᵢ = round(end/fperiod) −
// round(start/fperiod), then distributed among its states in proportion
// to their mean durations, minimum 1 per state, residue to the largest
// fractional shares.
func EstimateAlignment(spans []LabelSpan, framePeriod int) ([]int, error) {
	if framePeriod < 1 {
		return nil, fmt.Errorf("duration: frame period must be >=1, got %d", framePeriod)
	}

	var out []int

	for i, span := range spans {
		if len(span.States) == 0 {
			return nil, fmt.Errorf("duration: label %d has no states", i)
		}
		if span.EndSamples <= span.StartSamples {
			return nil, fmt.Errorf("duration: label %d end %d <= start %d", i, span.EndSamples, span.StartSamples)
		}

		startFrame := int64(math.Round(float64(span.StartSamples) / float64(framePeriod)))
		endFrame := int64(math.Round(float64(span.EndSamples) / float64(framePeriod)))
		f := int(endFrame - startFrame)
		if f < len(span.States) {
			f = len(span.States)
		}

		sumMean := 0.0
		for _, s := range span.States {
			sumMean += s.Mean
		}

		raw := make([]float64, len(span.States))
		for j, s := range span.States {
			if sumMean > 0 {
				raw[j] = float64(f) * s.Mean / sumMean
			} else {
				raw[j] = float64(f) / float64(len(span.States))
			}
		}

		out = append(out, allocate(raw, f, 1)...)
	}

	return out, nil
}

// allocate rounds raw to integers summing exactly to target, each no
// smaller than min, using the largest-remainder method: floor every value
// at min, then hand out (or claw back) the difference one unit at a time,
// preferring indices whose fractional part is largest (closest to
// rounding up) when adding, and smallest when removing.
func allocate(raw []float64, target, min int) []int {
	out := make([]int, len(raw))
	frac := make([]float64, len(raw))

	sum := 0
	for i, v := range raw {
		floor := int(math.Floor(v))
		if floor < min {
			floor = min
		}
		frac[i] = v - math.Floor(v)
		out[i] = floor
		sum += floor
	}

	diff := target - sum
	if diff == 0 {
		return out
	}

	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}

	if diff > 0 {
		sort.SliceStable(order, func(a, b int) bool { return frac[order[a]] > frac[order[b]] })
		for i := 0; i < diff; i++ {
			out[order[i%len(order)]]++
		}
		return out
	}

	sort.SliceStable(order, func(a, b int) bool { return frac[order[a]] < frac[order[b]] })
	removed := 0
	for _, idx := range order {
		if removed >= -diff {
			break
		}
		if out[idx] > min {
			out[idx]--
			removed++
		}
	}
	// If every entry is pinned at min, the budget genuinely cannot shrink
	// further; leave the remainder unmet rather than go below min.

	return out
}

// Total returns the sum of a duration slice, for convenience at call
// sites that need T.
func Total(durations []int) int {
	sum := 0
	for _, d := range durations {
		sum += d
	}
	return sum
}

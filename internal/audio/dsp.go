package audio

import "math"

// PeakNormalize scales samples so the peak amplitude reaches 1.0.
// Silence is returned unchanged.
func PeakNormalize(samples []float32) []float32 {
	var peak float32
	for _, v := range samples {
		if a := float32(math.Abs(float64(v))); a > peak {
			peak = a
		}
	}
	if peak == 0 {
		return samples
	}

	scale := 1.0 / peak
	for i, v := range samples {
		samples[i] = v * scale
	}
	return samples
}

// DCBlock removes DC offset with a one-pole high-pass filter,
// y[n] = x[n] - x[n-1] + R*y[n-1], R tuned for a ~20Hz cutoff.
func DCBlock(samples []float32, sampleRate int) []float32 {
	if len(samples) == 0 {
		return samples
	}

	const cutoffHz = 20.0
	r := float32(1.0 - (2 * math.Pi * cutoffHz / float64(sampleRate)))

	var prevX, prevY float32
	for i, x := range samples {
		y := x - prevX + r*prevY
		samples[i] = y
		prevX = x
		prevY = y
	}
	return samples
}

// FadeIn applies a linear fade-in ramp over the given duration in milliseconds.
func FadeIn(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSampleCount(sampleRate, ms, len(samples))
	for i := 0; i < n; i++ {
		gain := float32(i) / float32(n)
		samples[i] *= gain
	}
	return samples
}

// FadeOut applies a linear fade-out ramp over the given duration in milliseconds.
func FadeOut(samples []float32, sampleRate int, ms float64) []float32 {
	n := fadeSampleCount(sampleRate, ms, len(samples))
	total := len(samples)
	for i := 0; i < n; i++ {
		idx := total - 1 - i
		gain := float32(i) / float32(n)
		samples[idx] *= gain
	}
	return samples
}

func fadeSampleCount(sampleRate int, ms float64, total int) int {
	n := int(ms / 1000.0 * float64(sampleRate))
	if n > total {
		n = total
	}
	if n < 1 {
		n = 1
	}
	return n
}

package vocoder

import "math"

// lcgA and lcgM are the multiplier/modulus of the deterministic linear
// congruential generator backing the noise source: a deterministic
// linear-congruential-style stream seeded per Vocoder instance.
const (
	lcgA = 1103515245
	lcgC = 12345
	lcgM = 1 << 31
)

// excitation drives the mixed pulse/noise source: a voiced
// pulse train phase-locked to the current pitch period, an unvoiced noise
// source, and — when lpf is non-empty — a symmetric FIR mix of the two
// bands realizing HTS-style mixed excitation.
type excitation struct {
	seed uint64

	pCur   float64 // current pitch period in samples, 0 = unvoiced
	pNext  float64
	pStep  float64
	phase  float64
	sample int

	noiseHistory []float64 // ring buffer for the lowpass-filtered noise tail
	histPos      int
}

// newExcitation seeds the generator and sizes the noise history to the
// mixed-excitation LPF length (0 when the voice carries no stream 2).
// The phase starts one full period in, so a voiced start emits its first
// pulse on the first sample.
func newExcitation(initialP float64, lpfLen int) *excitation {
	hist := make([]float64, lpfLen)
	return &excitation{seed: 0x2545F4914F6CDD1D, pCur: initialP, phase: initialP, noiseHistory: hist}
}

// start prepares per-sample pitch interpolation from the previous period
// to pNext over fperiod samples.
func (e *excitation) start(pNext float64, fperiod int) {
	e.pNext = pNext
	if fperiod > 0 {
		e.pStep = (pNext - e.pCur) / float64(fperiod)
	} else {
		e.pStep = 0
	}
	e.sample = 0
}

// next produces one excitation sample, mixing pulse and noise bands
// through lpf when given.
func (e *excitation) next(lpf []float64) float64 {
	p := e.pCur + e.pStep*float64(e.sample)
	e.sample++

	noise := e.noise()

	if p <= 0 {
		e.pushHistory(noise)
		return noise
	}

	pulse := e.pulse(p)

	if len(lpf) == 0 {
		e.pushHistory(noise)
		return pulse
	}

	center := len(lpf) / 2
	mixed := lpf[center] * pulse
	for i, coeff := range lpf {
		if i == center {
			continue
		}
		lag := i - center
		mixed += coeff * e.historyAt(lag)
	}
	e.pushHistory(noise)

	return mixed
}

// end commits pNext as the new current pitch period.
func (e *excitation) end(pNext float64) {
	e.pCur = pNext
	e.phase = math.Mod(e.phase, math.Max(pNext, 1))
}

// pulse realizes an impulse train of period p samples, amplitude
// sqrt(p) at the correct phase, zero otherwise.
func (e *excitation) pulse(p float64) float64 {
	e.phase += 1
	if e.phase >= p {
		e.phase -= p
		return math.Sqrt(p)
	}
	return 0
}

// noise returns one unit-variance pseudo-random sample from the seeded
// LCG stream.
func (e *excitation) noise() float64 {
	e.seed = (lcgA*e.seed + lcgC) % lcgM
	u := float64(e.seed) / float64(lcgM)
	// Approximate a unit-variance, zero-mean sample via a centered
	// uniform scaled by its known standard deviation (1/sqrt(12)).
	centered := u - 0.5
	return centered * math.Sqrt(12)
}

func (e *excitation) pushHistory(v float64) {
	if len(e.noiseHistory) == 0 {
		return
	}
	e.noiseHistory[e.histPos] = v
	e.histPos = (e.histPos + 1) % len(e.noiseHistory)
}

func (e *excitation) historyAt(lagFromCenter int) float64 {
	n := len(e.noiseHistory)
	if n == 0 {
		return 0
	}
	idx := ((e.histPos-1-lagFromCenter)%n + n) % n
	return e.noiseHistory[idx]
}

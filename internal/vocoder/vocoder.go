// Package vocoder implements the vocoder driver, excitation, and cascaded
// MLSA/MGLSA filter: per-frame spectral parameters and
// log-F0 drive a mixed excitation through a cascaded digital filter to
// produce time-domain samples.
package vocoder

import "math"

// nodata mirrors internal/mlpg's NODATA sentinel (the LF0 bounds arrive
// through Config instead); duplicated here (rather than imported)
// because this package must not depend on engine to stay at the bottom
// of the dependency graph, matching Vocoder::new's standalone
// construction in engine.rs.
const (
	nodata = -1e10
)

// Vocoder converts one stream's trajectories into a raw sample stream
//. It is constructed once per synthesis call and holds all
// filter and excitation state for the duration of one utterance.
type Vocoder struct {
	stage stage

	useLogGain bool
	sampleRate int
	framePeriod int

	alpha, beta, volume float64

	coefficients []float64
	excitation   *excitation
	minF0, maxF0 float64
	minLF0, maxLF0 float64
}

// Config bundles Vocoder's construction parameters.
type Config struct {
	SpectralOrder int // m = L0 - 1
	Stage         int
	UseLogGain    bool
	SampleRate    int
	FramePeriod   int
	Alpha, Beta   float64
	Volume        float64
	MinF0, MaxF0  float64
	MinLF0, MaxLF0 float64
}

// New builds a Vocoder ready to process frames in order.
func New(cfg Config) *Vocoder {
	return &Vocoder{
		stage:       newStage(cfg.Stage, cfg.SpectralOrder+1),
		useLogGain:  cfg.UseLogGain,
		sampleRate:  cfg.SampleRate,
		framePeriod: cfg.FramePeriod,
		alpha:       cfg.Alpha,
		beta:        cfg.Beta,
		volume:      cfg.Volume,
		minF0:       cfg.MinF0,
		maxF0:       cfg.MaxF0,
		minLF0:      cfg.MinLF0,
		maxLF0:      cfg.MaxLF0,
	}
}

// pitchPeriod converts a log-F0 value to a pitch period in samples,
// clamping out-of-range log-F0 to the corresponding linear bound rather
// than exponentiating an extreme value.
func (v *Vocoder) pitchPeriod(lf0 float64) float64 {
	switch {
	case lf0 == nodata:
		return 0
	case lf0 <= v.minLF0:
		return float64(v.sampleRate) / v.minF0
	case lf0 >= v.maxLF0:
		return float64(v.sampleRate) / v.maxF0
	default:
		return float64(v.sampleRate) / math.Exp(lf0)
	}
}

// Synthesize processes one frame, writing framePeriod raw samples into
// rawdata. spectrum is mel-cepstrum when the vocoder is in
// MLSA mode (stage sigma=0) or LSP coefficients when in MGLSA mode; lpf is
// the stream-2 mixed-excitation filter for this frame, or empty.
func (v *Vocoder) Synthesize(lf0 float64, spectrum, lpf []float64, rawdata []float64) {
	p := v.pitchPeriod(lf0)

	if v.coefficients == nil {
		v.coefficients = v.firstFrameCoefficients(spectrum)
	}

	cc := v.targetCoefficients(spectrum)

	// A frame with no pitch and a literally all-zero spectral envelope
	// carries no excitation source at all (no pulse, no modeled noise
	// floor) rather than the usual aperiodic fricative energy; emit exact
	// silence for it instead of running the LCG noise source through a
	// flat-gain filter.
	if lf0 == nodata && allZero(spectrum) {
		for i := range rawdata {
			if i >= v.framePeriod {
				break
			}
			rawdata[i] = 0
		}
		v.coefficients = cc
		return
	}

	cinc := make([]float64, len(cc))
	for i := range cc {
		cinc[i] = (cc[i] - v.coefficients[i]) / float64(v.framePeriod)
	}

	if v.excitation == nil {
		v.excitation = newExcitation(p, len(lpf))
	}
	v.excitation.start(p, v.framePeriod)

	zeroStage := v.stage.isZero()

	for i := 0; i < v.framePeriod && i < len(rawdata); i++ {
		x := v.excitation.next(lpfForStage(lpf, zeroStage))

		if zeroStage {
			if x != 0 {
				x *= math.Exp(v.coefficients[0])
			}
		} else {
			x *= v.coefficients[0]
		}

		v.stage.df(&x, v.alpha, v.coefficients)

		for c := range v.coefficients {
			v.coefficients[c] += cinc[c]
		}

		rawdata[i] = x * v.volume
	}

	v.excitation.end(p)
	v.coefficients = cc
}

// allZero reports whether every coefficient of spectrum is exactly 0.
func allZero(spectrum []float64) bool {
	for _, c := range spectrum {
		if c != 0 {
			return false
		}
	}
	return true
}

// lpfForStage returns lpf only in MLSA mode ( 6: "lpf[t] if
// sigma=0 and |lpf|>0 else empty").
func lpfForStage(lpf []float64, zeroStage bool) []float64 {
	if zeroStage && len(lpf) > 0 {
		return lpf
	}
	return nil
}

// firstFrameCoefficients initializes filter state from spectrum[0],
// bypassing the usual interpolation increment path.
func (v *Vocoder) firstFrameCoefficients(spectrum []float64) []float64 {
	if v.stage.isZero() {
		return mc2b(spectrum, v.alpha)
	}

	mgc := lsp2mgc(spectrum, v.alpha, v.useLogGain, v.stage.gamma)
	b := gnorm(mc2b(mgc, v.alpha), v.stage.gamma)
	for i := 1; i < len(b); i++ {
		b[i] *= v.stage.gamma
	}
	return b
}

// targetCoefficients computes this frame's target "b"-form coefficients
// from spectrum[t] ( step 3).
func (v *Vocoder) targetCoefficients(spectrum []float64) []float64 {
	if v.stage.isZero() {
		filtered := postfilterMCP(spectrum, v.alpha, v.beta)
		return mc2b(filtered, v.alpha)
	}

	filtered := postfilterLSP(spectrum, v.beta)
	filtered = checkLSPStability(filtered)
	mgc := lsp2mgc(filtered, v.alpha, v.useLogGain, v.stage.gamma)
	b := gnorm(mc2b(mgc, v.alpha), v.stage.gamma)
	for i := 1; i < len(b); i++ {
		b[i] *= v.stage.gamma
	}
	return b
}

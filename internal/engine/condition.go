package engine

import (
	"log/slog"
	"math"

	"github.com/example/htsvoice/internal/voice"
)

// Condition is the mutable synthesis configuration: rates, flags, weights,
// speed, volume, alpha, beta, gain mode, stage, extra-halftone, MSD
// thresholds, GV weights, interpolation weights. It is set up by the
// caller before Synthesize and left untouched during synthesis, grounded
// on engine.rs's Condition.
type Condition struct {
	samplingFrequency int
	framePeriod       int

	volume float64 // stored internally as exp(f*DB); Get undoes it

	msdThreshold []float64 // per stream
	gvWeight     []float64 // per stream

	phonemeAlignment bool
	speed            float64

	stage      int
	useLogGain bool

	alpha, beta float64

	additionalHalfTone float64

	interpolation voice.InterpolationWeights
}

// DefaultCondition returns a Condition with engine.rs's documented
// defaults (volume 0dB, speed 1, alpha/beta 0, stage 0/MLSA).
func DefaultCondition() Condition {
	return Condition{
		volume: 1.0,
		speed:  1.0,
	}
}

// LoadFromVoiceSet seeds the global fields and per-stream defaults from a
// loaded VoiceSet: sampling frequency,
// frame period, msd_threshold defaulted to 0.5 per stream, gv_weight
// defaulted to 1.0 per stream, stream-0 GAMMA/LN_GAIN/ALPHA options
// parsed, and a default (voice-0-only) interpolation weighting.
func (c *Condition) LoadFromVoiceSet(set voice.VoiceSet) error {
	sf, fp, numStreams := set.GlobalMetadata()
	c.samplingFrequency = sf
	c.framePeriod = fp

	c.msdThreshold = fillFloat(numStreams, 0.5)
	c.gvWeight = fillFloat(numStreams, 1.0)

	if err := c.parseStreamZeroOptions(set.StreamMetadata(0).Option); err != nil {
		return err
	}

	c.interpolation = voice.NewInterpolationWeights(set.NumVoices(), numStreams)

	return nil
}

func fillFloat(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (c *Condition) parseStreamZeroOptions(options []string) error {
	for _, opt := range options {
		key, value, ok := splitOption(opt)
		if !ok {
			continue
		}

		switch key {
		case "GAMMA":
			v, err := parseInt(value)
			if err != nil {
				return &ParseOptionError{Name: key}
			}
			c.stage = v
		case "LN_GAIN":
			c.useLogGain = value == "1"
		case "ALPHA":
			v, err := parseFloat(value)
			if err != nil {
				return &ParseOptionError{Name: key}
			}
			c.alpha = v
		default:
			// Unknown option keys are logged and ignored.
			slog.Default().Warn("unknown stream option ignored", "key", key)
		}
	}

	return nil
}

// SamplingFrequency returns the current sampling rate in Hz.
func (c *Condition) SamplingFrequency() int { return c.samplingFrequency }

// SetSamplingFrequency sets the sampling rate, clamped to >=1.
func (c *Condition) SetSamplingFrequency(i int) {
	if i < 1 {
		i = 1
	}
	c.samplingFrequency = i
}

// FramePeriod returns the current frame period in samples.
func (c *Condition) FramePeriod() int { return c.framePeriod }

// SetFramePeriod sets the frame period, clamped to >=1.
func (c *Condition) SetFramePeriod(i int) {
	if i < 1 {
		i = 1
	}
	c.framePeriod = i
}

// SetVolume sets the volume in dB; stored internally as exp(f*DB).
func (c *Condition) SetVolume(f float64) {
	c.volume = math.Exp(f * DB)
}

// Volume returns the volume in dB.
func (c *Condition) Volume() float64 {
	return math.Log(c.volume) / DB
}

// SetMSDThreshold sets stream s's MSD voicing threshold, clamped to
// [0,1].
func (c *Condition) SetMSDThreshold(stream int, f float64) {
	c.msdThreshold[stream] = clamp01(f)
}

// MSDThreshold returns stream s's MSD voicing threshold.
func (c *Condition) MSDThreshold(stream int) float64 { return c.msdThreshold[stream] }

// SetGVWeight sets stream s's GV weight, clamped to >=0.
func (c *Condition) SetGVWeight(stream int, f float64) {
	if f < 0 {
		f = 0
	}
	c.gvWeight[stream] = f
}

// GVWeight returns stream s's GV weight.
func (c *Condition) GVWeight(stream int) float64 { return c.gvWeight[stream] }

// SetSpeed sets the speed ratio, clamped to >=1e-6.
func (c *Condition) SetSpeed(f float64) {
	if f < 1e-6 {
		f = 1e-6
	}
	c.speed = f
}

// Speed returns the current speed ratio.
func (c *Condition) Speed() float64 { return c.speed }

// SetPhonemeAlignmentFlag toggles alignment-mode duration estimation.
func (c *Condition) SetPhonemeAlignmentFlag(b bool) { c.phonemeAlignment = b }

// PhonemeAlignmentFlag reports whether alignment mode is active.
func (c *Condition) PhonemeAlignmentFlag() bool { return c.phonemeAlignment }

// SetAlpha sets the frequency-warping constant, clamped to [0,1].
func (c *Condition) SetAlpha(f float64) { c.alpha = clamp01(f) }

// Alpha returns the frequency-warping constant.
func (c *Condition) Alpha() float64 { return c.alpha }

// SetBeta sets the postfiltering coefficient, clamped to [0,1].
func (c *Condition) SetBeta(f float64) { c.beta = clamp01(f) }

// Beta returns the postfiltering coefficient.
func (c *Condition) Beta() float64 { return c.beta }

// SetAdditionalHalfTone sets the extra half-tone shift (unbounded).
func (c *Condition) SetAdditionalHalfTone(f float64) { c.additionalHalfTone = f }

// AdditionalHalfTone returns the extra half-tone shift.
func (c *Condition) AdditionalHalfTone() float64 { return c.additionalHalfTone }

// Stage returns the filter stage (0 = MLSA, >0 = MGLSA).
func (c *Condition) Stage() int { return c.stage }

// UseLogGain reports whether the LSP gain term is stored in log form.
func (c *Condition) UseLogGain() bool { return c.useLogGain }

// InterpolationWeights returns the current interpolation weighting.
func (c *Condition) InterpolationWeights() voice.InterpolationWeights { return c.interpolation }

// SetInterpolationWeights replaces the current interpolation weighting.
func (c *Condition) SetInterpolationWeights(w voice.InterpolationWeights) { c.interpolation = w }

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

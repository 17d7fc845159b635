// Package mix implements the parameter mixer: a weighted sum of
// per-voice Gaussian parameters into a single Gaussian per state, grounded
// on stream.rs's ModelParameter::add_assign — the same accumulation is
// reused here for both acoustic streams and durations.
package mix

import (
	"fmt"

	"github.com/example/htsvoice/internal/voice"
)

// Mixer resolves and combines per-voice parameters for one stream.
type Mixer struct {
	Set    voice.VoiceSet
	Stream int // -1 selects Set.Voices[v].Duration instead of a stream
}

// NewStreamMixer builds a Mixer over stream s of a VoiceSet.
func NewStreamMixer(set voice.VoiceSet, stream int) Mixer {
	return Mixer{Set: set, Stream: stream}
}

// NewDurationMixer builds a Mixer over the duration models of a VoiceSet.
func NewDurationMixer(set voice.VoiceSet) Mixer {
	return Mixer{Set: set, Stream: -1}
}

// Mix resolves state j's parameter in every voice and accumulates
// weights[v]*param(v) into a single ModelParameter. weights
// must have one entry per voice in m.Set; a zero weight is legal and
// skips that voice's lookup entirely (so a voice with no matching label
// pattern can still carry zero weight without erroring).
func (m Mixer) Mix(stateIdx int, label string, weights []float64) (voice.ModelParameter, error) {
	if len(weights) != len(m.Set.Voices) {
		return voice.ModelParameter{}, fmt.Errorf("mix: got %d weights for %d voices", len(weights), len(m.Set.Voices))
	}

	meta := m.metadata()
	accum := voice.NewModelParameter(meta.VectorLength*meta.NumWindows, meta.IsMSD)

	for v, w := range weights {
		if w == 0 {
			continue
		}

		p, err := m.getParameter(v, stateIdx, label)
		if err != nil {
			return voice.ModelParameter{}, fmt.Errorf("mix: voice %d: %w", v, err)
		}

		accum.AddScaled(w, *p)
	}

	return accum, nil
}

func (m Mixer) metadata() voice.StreamMetadata {
	if m.Stream < 0 {
		// Durations are a stream-0-like parameter list of length 1
 // (mean, variance) per state.
		return voice.StreamMetadata{VectorLength: 1, NumWindows: 1}
	}
	return m.Set.StreamMetadata(m.Stream)
}

func (m Mixer) getParameter(v, stateIdx int, label string) (*voice.ModelParameter, error) {
	voiceModel := m.Set.Voices[v]
	if m.Stream < 0 {
		return voiceModel.Duration.GetParameter(stateIdx, label)
	}
	if m.Stream >= len(voiceModel.Streams) {
		return nil, fmt.Errorf("stream index %d out of range", m.Stream)
	}
	return voiceModel.Streams[m.Stream].States.GetParameter(stateIdx, label)
}

// MixGV resolves and mixes the GV Gaussian for a stream, gated on the
// label of the first entry in the utterance ( "label of the
// first entry"). It returns (param, ok) — ok is false when no voice in
// the set declares use_gv for this stream.
func MixGV(set voice.VoiceSet, stream int, firstLabel string, weights []float64) (voice.ModelParameter, bool, error) {
	meta := set.StreamMetadata(stream)
	if !meta.UseGV {
		return voice.ModelParameter{}, false, nil
	}

	accum := voice.NewModelParameter(meta.VectorLength, false)
	any := false

	for v, w := range weights {
		if w == 0 {
			continue
		}
		gv := set.Voices[v].Streams[stream].GV
		if gv == nil {
			continue
		}
		p, err := gv.GetParameter(0, firstLabel)
		if err != nil {
			return voice.ModelParameter{}, false, fmt.Errorf("mix: gv voice %d: %w", v, err)
		}
		accum.AddScaled(w, *p)
		any = true
	}

	return accum, any, nil
}

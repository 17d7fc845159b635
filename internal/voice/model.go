package voice

import (
	"fmt"

	"github.com/example/htsvoice/internal/pattern"
)

// TreeModel pairs a voice's decision trees with the PDF table they index
// into. It is shared by per-stream state models, the duration
// model, and the optional GV model — all three are "descend a tree keyed on
// label pattern, read off a Gaussian" in the same shape.
type TreeModel struct {
	// Trees holds every decision tree for every state this model covers.
	// GetParameter selects, among the trees whose State equals stateIdx,
	// the first whose Gate accepts the label (falling back to the first
 // such tree if none match), per 
	Trees []pattern.Tree
	// PDF[i] is the leaf table for Trees[i]; PDF[i][k] is returned when
	// Trees[i].Search reaches leaf index k.
	PDF [][]ModelParameter
}

// GetParameter resolves (treeIndex, pdfIndex) for stateIdx and label and
// returns a pointer into the PDF table. Callers must not retain it across a
// model reload — in practice voices are load-once immutable so this is
// moot, but the contract still holds.
func (m TreeModel) GetParameter(stateIdx int, label string) (*ModelParameter, error) {
	treeIdx, pdfIdx, err := pattern.SearchLeaf(m.Trees, stateIdx, label)
	if err != nil {
		return nil, &ModelError{Op: "GetParameter", Err: err}
	}

	if treeIdx < 0 || treeIdx >= len(m.PDF) {
		return nil, newModelError("GetParameter", "tree index %d out of range [0,%d)", treeIdx, len(m.PDF))
	}

	table := m.PDF[treeIdx]
	if pdfIdx < 0 || pdfIdx >= len(table) {
		return nil, newModelError("GetParameter", "pdf index %d out of range [0,%d)", pdfIdx, len(table))
	}

	return &table[pdfIdx], nil
}

// StreamMetadata describes the shape of one stream, shared across all
// voices in a VoiceSet.
type StreamMetadata struct {
	VectorLength int
	NumWindows   int
	IsMSD        bool
	UseGV        bool
	// Option carries free-form "KEY=VALUE" strings from the voice file;
	// for stream 0 the recognized keys are GAMMA, LN_GAIN, ALPHA.
	Option []string
}

// StreamModels is one stream's full model: state trees/PDFs, an optional
// GV tree/PDF, and its dynamic-feature windows.
type StreamModels struct {
	Metadata StreamMetadata
	States   TreeModel
	GV       *TreeModel
	Windows  []Window
}

// Voice is an immutable, load-once voice bundle.
type Voice struct {
	SamplingFrequency int
	FramePeriod       int
	NumStates         int // number of HSMM states per label, typically 5 (indices 2..6)
	Streams           []StreamModels
	// Duration is the per-state duration Gaussian model, gated on label
	// only (not per-stream) — structurally a TreeModel whose PDF entries
 // are length-1 ModelParameters.
	Duration TreeModel
}

// NumStreams returns len(Streams) for readability at call sites.
func (v Voice) NumStreams() int { return len(v.Streams) }

// Validate checks the invariants a single voice must satisfy in isolation
// (cross-voice consistency is VoiceSet.Validate's job).
func (v Voice) Validate() error {
	if v.SamplingFrequency < 1 {
		return newModelError("Validate", "sampling frequency must be >=1, got %d", v.SamplingFrequency)
	}

	if v.FramePeriod < 1 {
		return newModelError("Validate", "frame period must be >=1, got %d", v.FramePeriod)
	}

	if n := len(v.Streams); n != 2 && n != 3 {
		return newModelError("Validate", "number of streams must be 2 or 3, got %d", n)
	}

	if v.Streams[1].Metadata.VectorLength != 1 {
		return newModelError("Validate", "stream 1 (LF0) vector length must be 1, got %d", v.Streams[1].Metadata.VectorLength)
	}

	if len(v.Streams[1].Windows) < 1 {
		return newModelError("Validate", "stream 1 (LF0) must have at least one window")
	}

	if len(v.Streams) == 3 && v.Streams[2].Metadata.VectorLength%2 == 0 {
		return newModelError("Validate", "stream 2 (LPF) vector length must be odd, got %d", v.Streams[2].Metadata.VectorLength)
	}

	return nil
}

// VoiceSet is an ordered, validated list of voices sharing sampling rate,
// frame period and per-stream shape.
type VoiceSet struct {
	Voices []Voice
}

// Validate checks cross-voice consistency. Option
// lists are defined to come from voice 0 by convention; callers reading
// option strings should only look at Voices[0].Streams[s].Metadata.Option.
func (vs VoiceSet) Validate() error {
	if len(vs.Voices) == 0 {
		return newModelError("Validate", "voice set is empty")
	}

	for i, v := range vs.Voices {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("voice %d: %w", i, err)
		}
	}

	first := vs.Voices[0]

	for i, v := range vs.Voices[1:] {
		idx := i + 1

		if v.SamplingFrequency != first.SamplingFrequency {
			return newModelError("Validate", "voice %d sampling frequency %d != voice 0's %d", idx, v.SamplingFrequency, first.SamplingFrequency)
		}

		if v.FramePeriod != first.FramePeriod {
			return newModelError("Validate", "voice %d frame period %d != voice 0's %d", idx, v.FramePeriod, first.FramePeriod)
		}

		if len(v.Streams) != len(first.Streams) {
			return newModelError("Validate", "voice %d has %d streams, voice 0 has %d", idx, len(v.Streams), len(first.Streams))
		}

		for s := range v.Streams {
			a, b := v.Streams[s].Metadata, first.Streams[s].Metadata
			if a.VectorLength != b.VectorLength || a.NumWindows != b.NumWindows || a.IsMSD != b.IsMSD || a.UseGV != b.UseGV {
				return newModelError("Validate", "voice %d stream %d shape mismatches voice 0", idx, s)
			}
		}
	}

	return nil
}

// NumVoices returns the number of voices in the set.
func (vs VoiceSet) NumVoices() int { return len(vs.Voices) }

// GlobalMetadata returns (samplingFrequency, framePeriod, numStreams) taken
// from voice 0.
func (vs VoiceSet) GlobalMetadata() (samplingFrequency, framePeriod, numStreams int) {
	v := vs.Voices[0]
	return v.SamplingFrequency, v.FramePeriod, len(v.Streams)
}

// StreamMetadata returns stream s's shape metadata taken from voice 0.
func (vs VoiceSet) StreamMetadata(s int) StreamMetadata {
	return vs.Voices[0].Streams[s].Metadata
}

// InterpolationWeights holds the two weight vectors a caller configures
// before synthesis: duration weights and, per stream, parameter weights
//. Each must be non-negative and sum to 1; NewInterpolationWeights
// with a single voice is a convenient default of [1.0].
type InterpolationWeights struct {
	Duration  []float64
	Parameter [][]float64 // Parameter[stream][voice]
}

// NewInterpolationWeights builds a default weighting: voice 0 gets weight
// 1, every other voice gets 0, for both duration and every stream.
func NewInterpolationWeights(numVoices, numStreams int) InterpolationWeights {
	dur := make([]float64, numVoices)
	if numVoices > 0 {
		dur[0] = 1
	}

	param := make([][]float64, numStreams)
	for s := range param {
		w := make([]float64, numVoices)
		if numVoices > 0 {
			w[0] = 1
		}
		param[s] = w
	}

	return InterpolationWeights{Duration: dur, Parameter: param}
}

// Normalize rescales every weight vector to sum to 1, leaving an all-zero
// vector untouched.
func (w *InterpolationWeights) Normalize() {
	normalize(w.Duration)
	for i := range w.Parameter {
		normalize(w.Parameter[i])
	}
}

func normalize(weights []float64) {
	sum := 0.0
	for _, v := range weights {
		sum += v
	}

	if sum <= 0 {
		return
	}

	for i := range weights {
		weights[i] /= sum
	}
}

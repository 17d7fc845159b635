package engine

import (
	"math"
	"testing"

	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/pattern"
	"github.com/example/htsvoice/internal/voice"
)

func allLeafTree(state, pdfIndex int) pattern.Tree {
	return pattern.Tree{State: state, Nodes: []pattern.Node{{Leaf: true, PDFIndex: pdfIndex}}}
}

// singleStateHumVoice builds the "single-state hum" seed voice:
// S=2, L0=1, W=1, mean=0, variance=1, msd off, duration mean=5 frames.
func singleStateHumVoice(lf0Mean float64) voice.Voice {
	spectrumParam := voice.NewModelParameter(1, false)
	spectrumParam.Means[0] = 0
	spectrumParam.Vars[0] = 1

	lf0Param := voice.NewModelParameter(1, false)
	lf0Param.Means[0] = lf0Mean
	lf0Param.Vars[0] = 1

	durParam := voice.NewModelParameter(1, false)
	durParam.Means[0] = 5
	durParam.Vars[0] = 0

	const numStates = 5

	mkStates := func(p voice.ModelParameter) voice.TreeModel {
		trees := make([]pattern.Tree, numStates)
		pdf := make([][]voice.ModelParameter, numStates)
		for j := 0; j < numStates; j++ {
			trees[j] = allLeafTree(firstStateIndex+j, 0)
			pdf[j] = []voice.ModelParameter{p}
		}
		return voice.TreeModel{Trees: trees, PDF: pdf}
	}

	return voice.Voice{
		SamplingFrequency: 48000,
		FramePeriod:       80,
		NumStates:         numStates,
		Streams: []voice.StreamModels{
			{
				Metadata: voice.StreamMetadata{VectorLength: 1, NumWindows: 1},
				States:   mkStates(spectrumParam),
				Windows:  []voice.Window{voice.StaticWindow()},
			},
			{
				Metadata: voice.StreamMetadata{VectorLength: 1, NumWindows: 1},
				States:   mkStates(lf0Param),
				Windows:  []voice.Window{voice.StaticWindow()},
			},
		},
		Duration: mkStates(durParam),
	}
}

func newEngineForVoice(v voice.Voice) (*Engine, error) {
	set := voice.VoiceSet{Voices: []voice.Voice{v}}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	cond := DefaultCondition()
	if err := cond.LoadFromVoiceSet(set); err != nil {
		return nil, err
	}
	return &Engine{Set: set, Condition: cond}, nil
}

func TestSingleStateHum(t *testing.T) {
	lf0Mean := math.Log(120)
	e, err := newEngineForVoice(singleStateHumVoice(lf0Mean))
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	samples, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	wantSamples := 25 * 80
	if len(samples) != wantSamples {
		t.Fatalf("got %d samples, want %d", len(samples), wantSamples)
	}

	nonZero := false
	for _, s := range samples {
		if s != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Fatal("expected non-zero output for a voiced hum")
	}
}

func TestSpeedHalvingDoublesDuration(t *testing.T) {
	e, err := newEngineForVoice(singleStateHumVoice(math.Log(120)))
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	e.Condition.SetSpeed(1.0)
	base, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	e.Condition.SetSpeed(0.5)
	slow, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	if len(slow) < len(base)*2-80 || len(slow) > len(base)*2+80 {
		t.Fatalf("got %d samples at half speed, want close to %d (double base %d)", len(slow), len(base)*2, len(base))
	}
}

// silentUnvoicedVoice is the single-state hum voice with LF0's MSD
// turned on and pinned to 0.0 at every state, so every frame is unvoiced.
func silentUnvoicedVoice() voice.Voice {
	v := singleStateHumVoice(math.Log(120))
	v.Streams[1].Metadata.IsMSD = true

	const numStates = 5
	for j := 0; j < numStates; j++ {
		p := voice.NewModelParameter(1, true)
		p.Means[0] = 0
		p.Vars[0] = 1
		*p.MSD = 0.0
		v.Streams[1].States.PDF[j][0] = p
	}

	return v
}

func TestSilentUnvoicedProducesAllZeroOutput(t *testing.T) {
	e, err := newEngineForVoice(silentUnvoicedVoice())
	if err != nil {
		t.Fatal(err)
	}

	e.Condition.SetMSDThreshold(1, 0.5)

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	samples, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	for i, s := range samples {
		if s != 0 {
			t.Fatalf("sample %d = %v, want 0", i, s)
		}
	}
}

func TestTwoVoiceEqualWeightMixMatchesSingleVoice(t *testing.T) {
	v := singleStateHumVoice(math.Log(120))

	single, err := newEngineForVoice(v)
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	want, err := single.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	set := voice.VoiceSet{Voices: []voice.Voice{v, v}}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	cond := DefaultCondition()
	if err := cond.LoadFromVoiceSet(set); err != nil {
		t.Fatal(err)
	}

	numStreams := len(v.Streams)
	weights := voice.InterpolationWeights{
		Duration:  []float64{0.5, 0.5},
		Parameter: make([][]float64, numStreams),
	}
	for s := range weights.Parameter {
		weights.Parameter[s] = []float64{0.5, 0.5}
	}
	cond.SetInterpolationWeights(weights)

	mixed := &Engine{Set: set, Condition: cond}

	got, err := mixed.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Fatalf("sample %d: got %v, want %v (diff %v)", i, got[i], want[i], got[i]-want[i])
		}
	}
}

func TestAlignmentModeMatchesForcedTotal(t *testing.T) {
	e, err := newEngineForVoice(singleStateHumVoice(math.Log(120)))
	if err != nil {
		t.Fatal(err)
	}

	e.Condition.SetPhonemeAlignmentFlag(true)

	const wantTotalFrames = 7
	fperiod := int64(e.Condition.FramePeriod())
	lbl := label.Label{{Label: "x", Start: 0, End: wantTotalFrames * fperiod}}

	samples, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	wantSamples := wantTotalFrames * int(fperiod)
	if len(samples) != wantSamples {
		t.Fatalf("got %d samples, want %d (= %d frames * fperiod %d)", len(samples), wantSamples, wantTotalFrames, fperiod)
	}
}

func TestExtraHalfToneOctaveShift(t *testing.T) {
	e, err := newEngineForVoice(singleStateHumVoice(math.Log(120)))
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	e.Condition.SetAdditionalHalfTone(12)

	stats, err := e.mixStates(lbl)
	if err != nil {
		t.Fatal(err)
	}
	e.applyHalfTone(stats)

	got := stats[0].streams[1].Means[0]
	want := math.Log(120) + 12*HALFTONE
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("got lf0 mean %v, want %v", got, want)
	}
}

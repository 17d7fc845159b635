package voice

import (
	"testing"

	"github.com/example/htsvoice/internal/pattern"
)

func singleLeafTree(state, pdfIndex int) pattern.Tree {
	return pattern.Tree{
		State: state,
		Nodes: []pattern.Node{{Leaf: true, PDFIndex: pdfIndex}},
	}
}

func oneStateVoice() Voice {
	mgcStates := TreeModel{
		Trees: []pattern.Tree{singleLeafTree(2, 0)},
		PDF:   [][]ModelParameter{{NewModelParameter(2, false)}},
	}
	lf0Param := NewModelParameter(1, true)
	*lf0Param.MSD = 0.9
	lf0States := TreeModel{
		Trees: []pattern.Tree{singleLeafTree(2, 0)},
		PDF:   [][]ModelParameter{{lf0Param}},
	}
	duration := TreeModel{
		Trees: []pattern.Tree{singleLeafTree(0, 0)},
		PDF:   [][]ModelParameter{{NewModelParameter(1, false)}},
	}

	return Voice{
		SamplingFrequency: 48000,
		FramePeriod:       240,
		NumStates:         1,
		Streams: []StreamModels{
			{
				Metadata: StreamMetadata{VectorLength: 2, NumWindows: 1},
				States:   mgcStates,
				Windows:  []Window{StaticWindow()},
			},
			{
				Metadata: StreamMetadata{VectorLength: 1, NumWindows: 1, IsMSD: true},
				States:   lf0States,
				Windows:  []Window{StaticWindow()},
			},
		},
		Duration: duration,
	}
}

func TestTreeModelGetParameter(t *testing.T) {
	v := oneStateVoice()

	p, err := v.Streams[0].States.GetParameter(2, "any-label")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Means) != 2 {
		t.Fatalf("got means length %d, want 2", len(p.Means))
	}
}

func TestTreeModelGetParameterUnknownState(t *testing.T) {
	v := oneStateVoice()

	if _, err := v.Streams[0].States.GetParameter(99, "any-label"); err == nil {
		t.Fatal("expected error for a state with no matching tree")
	}
}

func TestVoiceValidate(t *testing.T) {
	v := oneStateVoice()
	if err := v.Validate(); err != nil {
		t.Fatalf("expected valid voice, got %v", err)
	}

	bad := v
	bad.Streams = []StreamModels{v.Streams[0]}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for a voice with only one stream")
	}
}

func TestVoiceSetValidateMismatch(t *testing.T) {
	a := oneStateVoice()
	b := oneStateVoice()
	b.FramePeriod = 120

	vs := VoiceSet{Voices: []Voice{a, b}}
	if err := vs.Validate(); err == nil {
		t.Fatal("expected error for mismatched frame periods across voices")
	}
}

func TestVoiceSetValidateOK(t *testing.T) {
	vs := VoiceSet{Voices: []Voice{oneStateVoice(), oneStateVoice()}}
	if err := vs.Validate(); err != nil {
		t.Fatalf("expected valid voice set, got %v", err)
	}
}

func TestInterpolationWeightsNormalize(t *testing.T) {
	w := InterpolationWeights{
		Duration:  []float64{2, 2},
		Parameter: [][]float64{{1, 3}},
	}
	w.Normalize()

	if w.Duration[0] != 0.5 || w.Duration[1] != 0.5 {
		t.Fatalf("got duration weights %v, want [0.5 0.5]", w.Duration)
	}
	if w.Parameter[0][0] != 0.25 || w.Parameter[0][1] != 0.75 {
		t.Fatalf("got parameter weights %v, want [0.25 0.75]", w.Parameter[0])
	}
}

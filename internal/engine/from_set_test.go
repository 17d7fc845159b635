package engine

import (
	"math"
	"testing"

	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/voice"
)

func TestNewFromSet_SeedsConditionFromVoice(t *testing.T) {
	v := singleStateHumVoice(math.Log(120))
	set := voice.VoiceSet{Voices: []voice.Voice{v}}
	if err := set.Validate(); err != nil {
		t.Fatal(err)
	}

	e, err := NewFromSet(set)
	if err != nil {
		t.Fatalf("NewFromSet: %v", err)
	}

	if e.Condition.SamplingFrequency() != v.SamplingFrequency {
		t.Errorf("sampling frequency = %d, want %d", e.Condition.SamplingFrequency(), v.SamplingFrequency)
	}

	if e.Condition.FramePeriod() != v.FramePeriod {
		t.Errorf("frame period = %d, want %d", e.Condition.FramePeriod(), v.FramePeriod)
	}

	if e.Condition.Speed() != 1.0 {
		t.Errorf("speed = %v, want 1.0", e.Condition.Speed())
	}
}

func TestNewFromSet_MatchesSynthesizeOutput(t *testing.T) {
	v := singleStateHumVoice(math.Log(120))
	set := voice.VoiceSet{Voices: []voice.Voice{v}}

	viaLoad, err := newEngineForVoice(v)
	if err != nil {
		t.Fatal(err)
	}

	viaSet, err := NewFromSet(set)
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	want, err := viaLoad.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	got, err := viaSet.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	if len(want) != len(got) {
		t.Fatalf("sample count mismatch: %d vs %d", len(want), len(got))
	}

	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("sample %d mismatch: %v vs %v", i, want[i], got[i])
		}
	}
}

func TestSynthesizeTimed_MatchesSynthesizeSamples(t *testing.T) {
	v := singleStateHumVoice(math.Log(120))
	e, err := newEngineForVoice(v)
	if err != nil {
		t.Fatal(err)
	}

	lbl := label.Label{{Label: "x", Start: -1, End: -1}}

	plain, err := e.Synthesize(lbl)
	if err != nil {
		t.Fatal(err)
	}

	e2, err := newEngineForVoice(v)
	if err != nil {
		t.Fatal(err)
	}

	timed, stages, err := e2.SynthesizeTimed(lbl)
	if err != nil {
		t.Fatal(err)
	}

	if len(plain) != len(timed) {
		t.Fatalf("sample count mismatch: %d vs %d", len(plain), len(timed))
	}

	for i := range plain {
		if plain[i] != timed[i] {
			t.Fatalf("sample %d mismatch: %v vs %v", i, plain[i], timed[i])
		}
	}

	if stages.Total <= 0 {
		t.Error("want positive total stage duration")
	}

	sum := stages.Mix + stages.Duration + stages.MLPG + stages.Vocoder
	if sum > stages.Total {
		t.Errorf("sum of stage durations %v exceeds total %v", sum, stages.Total)
	}
}

func TestSynthesizeTimed_PropagatesStageErrors(t *testing.T) {
	v := singleStateHumVoice(math.Log(120))
	e, err := newEngineForVoice(v)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = e.SynthesizeTimed(label.Label{})
	if err == nil {
		t.Fatal("want error for empty label sequence")
	}

	se, ok := err.(*SynthesizeError)
	if !ok {
		t.Fatalf("want *SynthesizeError, got %T", err)
	}

	if se.Stage != "label" {
		t.Errorf("stage = %q, want %q", se.Stage, "label")
	}
}

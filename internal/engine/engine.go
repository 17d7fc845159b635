// Package engine orchestrates the full synthesis pipeline: model
// interpretation, duration estimation, MLPG trajectory generation, and
// vocoding, wired together the way engine.rs's Engine drives
// StateStreamSet -> ParameterStreamSet -> GenerateSpeechStreamSet.
package engine

import (
	"fmt"
	"io"
	"time"

	"github.com/example/htsvoice/internal/duration"
	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/mix"
	"github.com/example/htsvoice/internal/mlpg"
	"github.com/example/htsvoice/internal/voice"
	"github.com/example/htsvoice/internal/vocoder"
)

// firstStateIndex is the conventional first HSMM state index trees are
// keyed on.
const firstStateIndex = 2

// Engine holds an immutable, loaded VoiceSet and the caller's mutable
// Condition.
type Engine struct {
	Set       voice.VoiceSet
	Condition Condition
}

// Load builds an Engine from one or more voice readers using loader
//, validating shape consistency and
// seeding Condition defaults from the loaded set.
func Load(loader voice.Loader, readers []io.Reader) (*Engine, error) {
	set, err := voice.LoadAll(loader, readers)
	if err != nil {
		return nil, err
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}

	cond := DefaultCondition()
	if err := cond.LoadFromVoiceSet(set); err != nil {
		return nil, err
	}

	return &Engine{Set: set, Condition: cond}, nil
}

// NewFromSet builds an Engine around an already-loaded and validated
// VoiceSet, seeding a fresh Condition from it. Unlike Load, it performs no
// I/O and no validation, so it is cheap enough to call once per request
// when a server holds one VoiceSet across many synthesize calls.
func NewFromSet(set voice.VoiceSet) (*Engine, error) {
	cond := DefaultCondition()
	if err := cond.LoadFromVoiceSet(set); err != nil {
		return nil, err
	}

	return &Engine{Set: set, Condition: cond}, nil
}

// stateStat is one (label,state)'s fully mixed data: per-stream
// parameters, the mixed duration Gaussian, and the label string used for
// tree lookups.
type stateStat struct {
	label    string
	duration voice.ModelParameter
	streams  []voice.ModelParameter
}

// Synthesize runs the full pipeline over a label sequence and returns
// T*framePeriod raw samples.
func (e *Engine) Synthesize(lbl label.Label) ([]float64, error) {
	if err := lbl.Validate(); err != nil {
		return nil, &SynthesizeError{Stage: "label", Err: err}
	}

	stats, err := e.mixStates(lbl)
	if err != nil {
		return nil, &SynthesizeError{Stage: "mix", Err: err}
	}

	e.applyHalfTone(stats)

	durations, err := e.estimateDurations(lbl, stats)
	if err != nil {
		return nil, &SynthesizeError{Stage: "duration", Err: err}
	}

	trajectories, err := e.generateTrajectories(stats, durations)
	if err != nil {
		return nil, &SynthesizeError{Stage: "mlpg", Err: err}
	}

	samples, err := e.vocode(trajectories, duration.Total(durations))
	if err != nil {
		return nil, &SynthesizeError{Stage: "vocoder", Err: err}
	}

	return samples, nil
}

// StageTimings breaks down one Synthesize call's wall-clock time by pipeline
// stage, for the bench command's per-stage profiling report.
type StageTimings struct {
	Mix      time.Duration
	Duration time.Duration
	MLPG     time.Duration
	Vocoder  time.Duration
	Total    time.Duration
}

// SynthesizeTimed runs the same pipeline as Synthesize but times each stage
// individually, trading a little overhead for a per-stage breakdown.
func (e *Engine) SynthesizeTimed(lbl label.Label) ([]float64, StageTimings, error) {
	var timings StageTimings
	start := time.Now()

	if err := lbl.Validate(); err != nil {
		return nil, timings, &SynthesizeError{Stage: "label", Err: err}
	}

	t0 := time.Now()
	stats, err := e.mixStates(lbl)
	timings.Mix = time.Since(t0)
	if err != nil {
		return nil, timings, &SynthesizeError{Stage: "mix", Err: err}
	}

	e.applyHalfTone(stats)

	t0 = time.Now()
	durations, err := e.estimateDurations(lbl, stats)
	timings.Duration = time.Since(t0)
	if err != nil {
		return nil, timings, &SynthesizeError{Stage: "duration", Err: err}
	}

	t0 = time.Now()
	trajectories, err := e.generateTrajectories(stats, durations)
	timings.MLPG = time.Since(t0)
	if err != nil {
		return nil, timings, &SynthesizeError{Stage: "mlpg", Err: err}
	}

	t0 = time.Now()
	samples, err := e.vocode(trajectories, duration.Total(durations))
	timings.Vocoder = time.Since(t0)
	if err != nil {
		return nil, timings, &SynthesizeError{Stage: "vocoder", Err: err}
	}

	timings.Total = time.Since(start)

	return samples, timings, nil
}

func (e *Engine) mixStates(lbl label.Label) ([]stateStat, error) {
	_, _, numStreams := e.Set.GlobalMetadata()
	numStates := e.Set.Voices[0].NumStates

	durMixer := mix.NewDurationMixer(e.Set)
	streamMixers := make([]mix.Mixer, numStreams)
	for s := range streamMixers {
		streamMixers[s] = mix.NewStreamMixer(e.Set, s)
	}

	weights := e.Condition.InterpolationWeights()

	var stats []stateStat
	for _, entry := range lbl {
		for j := 0; j < numStates; j++ {
			treeState := firstStateIndex + j

			dur, err := durMixer.Mix(treeState, entry.Label, weights.Duration)
			if err != nil {
				return nil, fmt.Errorf("duration: %w", err)
			}

			streams := make([]voice.ModelParameter, numStreams)
			for s := range streams {
				p, err := streamMixers[s].Mix(treeState, entry.Label, weights.Parameter[s])
				if err != nil {
					return nil, fmt.Errorf("stream %d: %w", s, err)
				}
				streams[s] = p
			}

			stats = append(stats, stateStat{label: entry.Label, duration: dur, streams: streams})
		}
	}

	return stats, nil
}

// applyHalfTone adjusts stream 1 (LF0)'s static mean in place across
// every state, per the of Open Question (a): applied
// post-mixing, clamped to [MinLF0, MaxLF0].
func (e *Engine) applyHalfTone(stats []stateStat) {
	lf0 := make([]voice.ModelParameter, len(stats))
	for i := range stats {
		lf0[i] = stats[i].streams[1]
	}

	mlpg.AdjustHalfTone(lf0, e.Condition.AdditionalHalfTone(), HALFTONE, MinLF0, MaxLF0)

	for i := range stats {
		stats[i].streams[1] = lf0[i]
	}
}

func (e *Engine) estimateDurations(lbl label.Label, stats []stateStat) ([]int, error) {
	numStates := e.Set.Voices[0].NumStates

	if e.Condition.PhonemeAlignmentFlag() && lbl.HasAlignment() {
		spans := make([]duration.LabelSpan, len(lbl))
		for i, entry := range lbl {
			states := make([]duration.StateStat, numStates)
			for j := 0; j < numStates; j++ {
				s := stats[i*numStates+j]
				states[j] = duration.StateStat{Mean: s.duration.Means[0], Var: s.duration.Vars[0]}
			}
			spans[i] = duration.LabelSpan{StartSamples: entry.Start, EndSamples: entry.End, States: states}
		}
		return duration.EstimateAlignment(spans, e.Condition.FramePeriod())
	}

	all := make([]duration.StateStat, len(stats))
	for i, s := range stats {
		all[i] = duration.StateStat{Mean: s.duration.Means[0], Var: s.duration.Vars[0]}
	}
	return duration.EstimateSpeed(all, e.Condition.Speed())
}

func (e *Engine) generateTrajectories(stats []stateStat, durations []int) ([]mlpg.Trajectory, error) {
	_, _, numStreams := e.Set.GlobalMetadata()
	firstLabel := ""
	if len(stats) > 0 {
		firstLabel = stats[0].label
	}

	trajectories := make([]mlpg.Trajectory, numStreams)

	for s := 0; s < numStreams; s++ {
		meta := e.Set.StreamMetadata(s)
		windows := e.Set.Voices[0].Streams[s].Windows

		params := make([]voice.ModelParameter, len(stats))
		for i := range stats {
			params[i] = stats[i].streams[s]
		}

		mean, variance, err := mlpg.ExpandState(params, durations)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", s, err)
		}

		var msdProb []float64
		if meta.IsMSD {
			msdProb, err = mlpg.ExpandMSD(params, durations)
			if err != nil {
				return nil, fmt.Errorf("stream %d: %w", s, err)
			}
		}

		var gv *mlpg.GV
		weight := e.Condition.GVWeight(s)
		if meta.UseGV && weight > 0 {
			gvParam, ok, err := mix.MixGV(e.Set, s, firstLabel, e.Condition.InterpolationWeights().Parameter[s])
			if err != nil {
				return nil, fmt.Errorf("stream %d gv: %w", s, err)
			}
			if ok {
				gv = &mlpg.GV{Mean: gvParam.Means, Var: gvParam.Vars, Weight: weight}
			}
		}

		traj, err := mlpg.Generate(meta, windows, mean, variance, msdProb, e.Condition.MSDThreshold(s), gv)
		if err != nil {
			return nil, fmt.Errorf("stream %d: %w", s, err)
		}
		trajectories[s] = traj
	}

	return trajectories, nil
}

func (e *Engine) vocode(trajectories []mlpg.Trajectory, totalFrames int) ([]float64, error) {
	meta0 := e.Set.StreamMetadata(0)
	fperiod := e.Condition.FramePeriod()

	v := vocoder.New(vocoder.Config{
		SpectralOrder: meta0.VectorLength - 1,
		Stage:         e.Condition.Stage(),
		UseLogGain:    e.Condition.UseLogGain(),
		SampleRate:    e.Condition.SamplingFrequency(),
		FramePeriod:   fperiod,
		Alpha:         e.Condition.Alpha(),
		Beta:          e.Condition.Beta(),
		Volume:        e.Condition.volume,
		MinF0:         MinF0,
		MaxF0:         MaxF0,
		MinLF0:        MinLF0,
		MaxLF0:        MaxLF0,
	})

	samples := make([]float64, totalFrames*fperiod)

	hasLPF := len(trajectories) > 2

	for t := 0; t < totalFrames; t++ {
		lf0 := trajectories[1].Values[t][0]

		var lpf []float64
		if hasLPF {
			lpf = trajectories[2].Values[t]
		}

		frame := samples[t*fperiod : (t+1)*fperiod]
		v.Synthesize(lf0, trajectories[0].Values[t], lpf, frame)
	}

	return samples, nil
}

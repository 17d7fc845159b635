// Package stageprof is a standalone profiling entry point that synthesizes
// one label repeatedly and reports a per-stage timing breakdown: mix,
// duration, MLPG, vocoder.
package stageprof

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/example/htsvoice/internal/audio"
	"github.com/example/htsvoice/internal/engine"
	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/voice"
	"github.com/example/htsvoice/internal/voice/jsonvoice"
)

type timings struct {
	mix      time.Duration
	duration time.Duration
	mlpg     time.Duration
	vocoder  time.Duration
	total    time.Duration
	samples  int
}

func Main() {
	var (
		voicePath  string
		labelPath  string
		runs       int
		warmup     int
		cpuprofile string
		debugLogs  bool
	)
	flag.StringVar(&voicePath, "voice", "voices/default.htsvoice", "voice file to load")
	flag.StringVar(&labelPath, "label", "", "full-context label file (flat-text)")
	flag.IntVar(&runs, "runs", 5, "number of profiled runs")
	flag.IntVar(&warmup, "warmup", 1, "number of warmup runs")
	flag.StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile")
	flag.BoolVar(&debugLogs, "debug-logs", false, "enable debug logs from synthesis stages")
	flag.Parse()

	if debugLogs {
		slog.SetDefault(
			slog.New(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}),
			),
		)
	}

	if runs < 1 {
		fatalf("--runs must be >= 1")
	}

	if labelPath == "" {
		fatalf("--label is required")
	}

	f, err := os.Open(voicePath)
	if err != nil {
		fatalf("open voice: %v", err)
	}
	defer f.Close()

	set, err := voice.LoadAll(jsonvoice.Loader{}, []io.Reader{f})
	if err != nil {
		fatalf("load voice: %v", err)
	}

	lblFile, err := os.Open(labelPath)
	if err != nil {
		fatalf("open label: %v", err)
	}
	defer lblFile.Close()

	lbl, err := (label.LineLoader{}).Load(lblFile)
	if err != nil {
		fatalf("load label: %v", err)
	}

	for i := range warmup {
		if _, err := runOnce(set, lbl); err != nil {
			fatalf("warmup run %d failed: %v", i+1, err)
		}
	}

	if cpuprofile != "" {
		f, err := os.Create(cpuprofile)
		if err != nil {
			fatalf("create cpuprofile: %v", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			fatalf("start cpuprofile: %v", err)
		}

		defer pprof.StopCPUProfile()
	}

	var agg timings

	for i := range runs {
		t, err := runOnce(set, lbl)
		if err != nil {
			fatalf("profiled run %d failed: %v", i+1, err)
		}

		agg.mix += t.mix
		agg.duration += t.duration
		agg.mlpg += t.mlpg
		agg.vocoder += t.vocoder
		agg.total += t.total
		agg.samples = t.samples
	}

	div := float64(runs)
	avgMix := agg.mix.Seconds() * 1000 / div
	avgDuration := agg.duration.Seconds() * 1000 / div
	avgMLPG := agg.mlpg.Seconds() * 1000 / div
	avgVocoder := agg.vocoder.Seconds() * 1000 / div
	avgTotal := agg.total.Seconds() * 1000 / div

	sampleRate := set.Voices[0].SamplingFrequency
	audioMS := float64(agg.samples) * 1000.0 / float64(sampleRate) / div
	rtf := avgTotal / audioMS

	fmt.Printf("voice: %q\n", voicePath)
	fmt.Printf("label: %q\n", labelPath)
	fmt.Printf("runs: %d (warmup %d)\n", runs, warmup)
	fmt.Printf("audio_ms: %.2f\n", audioMS)
	fmt.Printf("avg_mix_ms: %.2f\n", avgMix)
	fmt.Printf("avg_duration_ms: %.2f\n", avgDuration)
	fmt.Printf("avg_mlpg_ms: %.2f\n", avgMLPG)
	fmt.Printf("avg_vocoder_ms: %.2f\n", avgVocoder)
	fmt.Printf("avg_total_ms: %.2f\n", avgTotal)
	fmt.Printf("rtf: %.3f\n", rtf)

	if avgTotal > 0 {
		fmt.Printf("share_mix_pct: %.2f\n", 100*avgMix/avgTotal)
		fmt.Printf("share_duration_pct: %.2f\n", 100*avgDuration/avgTotal)
		fmt.Printf("share_mlpg_pct: %.2f\n", 100*avgMLPG/avgTotal)
		fmt.Printf("share_vocoder_pct: %.2f\n", 100*avgVocoder/avgTotal)
	}
}

func runOnce(set voice.VoiceSet, lbl label.Label) (timings, error) {
	eng, err := engine.NewFromSet(set)
	if err != nil {
		return timings{}, fmt.Errorf("build engine: %w", err)
	}

	samples, stages, err := eng.SynthesizeTimed(lbl)
	if err != nil {
		return timings{}, fmt.Errorf("synthesize: %w", err)
	}

	_, err = audio.EncodeWAV(toFloat32(samples), eng.Condition.SamplingFrequency())
	if err != nil {
		return timings{}, fmt.Errorf("encode wav: %w", err)
	}

	return timings{
		mix:      stages.Mix,
		duration: stages.Duration,
		mlpg:     stages.MLPG,
		vocoder:  stages.Vocoder,
		total:    stages.Total,
		samples:  len(samples),
	}, nil
}

func toFloat32(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

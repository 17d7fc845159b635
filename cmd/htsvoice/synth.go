package main

import (
	"fmt"
	"io"
	"os"

	"github.com/example/htsvoice/internal/audio"
	"github.com/example/htsvoice/internal/engine"
	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/voice"
	"github.com/example/htsvoice/internal/voice/jsonvoice"
	"github.com/spf13/cobra"
)

func newSynthCmd() *cobra.Command {
	var (
		voicePaths []string
		labelPath  string
		outPath    string
		normalize  bool
		dcBlock    bool
		fadeInMs   float64
		fadeOutMs  float64
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize a WAV file from a full-context label",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if len(voicePaths) == 0 {
				voicePaths = cfg.Paths.VoicePaths
			}
			if labelPath == "" {
				labelPath = cfg.Paths.LabelPath
			}
			if outPath == "" {
				outPath = cfg.Paths.OutputPath
			}
			if labelPath == "" {
				return fmt.Errorf("--label-path is required")
			}

			eng, err := loadEngine(voicePaths)
			if err != nil {
				return err
			}

			cfg.Synthesis.ApplyTo(&eng.Condition)

			lbl, err := readSynthLabel(labelPath)
			if err != nil {
				return err
			}

			samples, err := eng.Synthesize(lbl)
			if err != nil {
				return fmt.Errorf("synthesize: %w", err)
			}

			sampleRate := eng.Condition.SamplingFrequency()
			wavData, err := audio.EncodeWAV(toFloat32Samples(samples), sampleRate)
			if err != nil {
				return fmt.Errorf("encode wav: %w", err)
			}

			wavData, err = applySynthDSP(wavData, sampleRate, normalize, dcBlock, fadeInMs, fadeOutMs)
			if err != nil {
				return err
			}

			return writeSynthOutput(outPath, wavData)
		},
	}

	cmd.Flags().StringSliceVar(&voicePaths, "voice", nil, "Voice file(s) to load, in interpolation order (defaults to --paths-voice-paths)")
	cmd.Flags().StringVar(&labelPath, "label", "", "Full-context label file, or - for stdin (defaults to --label-path)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output WAV path, or - for stdout (defaults to --output-path)")
	cmd.Flags().BoolVar(&normalize, "normalize", false, "Peak-normalize the output before writing")
	cmd.Flags().BoolVar(&dcBlock, "dc-block", false, "Apply a DC-blocking high-pass filter before writing")
	cmd.Flags().Float64Var(&fadeInMs, "fade-in-ms", 0, "Fade-in duration in milliseconds")
	cmd.Flags().Float64Var(&fadeOutMs, "fade-out-ms", 0, "Fade-out duration in milliseconds")

	return cmd
}

func loadEngine(voicePaths []string) (*engine.Engine, error) {
	if len(voicePaths) == 0 {
		return nil, fmt.Errorf("no voice files configured")
	}

	readers := make([]io.Reader, 0, len(voicePaths))
	for _, p := range voicePaths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open voice %q: %w", p, err)
		}
		defer f.Close()

		readers = append(readers, f)
	}

	eng, err := engine.Load(jsonvoice.Loader{}, readers)
	if err != nil {
		return nil, fmt.Errorf("load voices: %w", err)
	}

	return eng, nil
}

func readSynthLabel(path string) (label.Label, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open label %q: %w", path, err)
		}
		defer f.Close()
		r = f
	}

	lbl, err := (label.LineLoader{}).Load(r)
	if err != nil {
		return nil, fmt.Errorf("load label: %w", err)
	}

	return lbl, nil
}

func applySynthDSP(wavData []byte, sampleRate int, normalize, dcBlock bool, fadeInMs, fadeOutMs float64) ([]byte, error) {
	if !normalize && !dcBlock && fadeInMs <= 0 && fadeOutMs <= 0 {
		return wavData, nil
	}

	samples, err := audio.DecodeWAV(wavData, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("decode wav for dsp: %w", err)
	}

	if normalize {
		samples = audio.PeakNormalize(samples)
	}
	if dcBlock {
		samples = audio.DCBlock(samples, sampleRate)
	}
	if fadeInMs > 0 {
		samples = audio.FadeIn(samples, sampleRate, fadeInMs)
	}
	if fadeOutMs > 0 {
		samples = audio.FadeOut(samples, sampleRate, fadeOutMs)
	}

	out, err := audio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("re-encode wav after dsp: %w", err)
	}

	return out, nil
}

func writeSynthOutput(outPath string, wavData []byte) error {
	if outPath == "" || outPath == "-" {
		_, err := os.Stdout.Write(wavData)
		return err
	}

	if err := os.WriteFile(outPath, wavData, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", outPath, err)
	}

	return nil
}

func toFloat32Samples(samples []float64) []float32 {
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s)
	}
	return out
}

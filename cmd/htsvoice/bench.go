package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/htsvoice/internal/audio"
	"github.com/example/htsvoice/internal/bench"
	"github.com/example/htsvoice/internal/engine"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		voicePaths   []string
		labelPath    string
		runs         int
		format       string
		rtfThreshold float64
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Repeat synthesis and report timing/RTF statistics",
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
			if labelPath == "" {
				return fmt.Errorf("--label is required")
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be >= 1")
			}

			set, err := loadVoiceSet(voicePaths)
			if err != nil {
				return err
			}

			lbl, err := readSynthLabel(labelPath)
			if err != nil {
				return err
			}

			results := make([]bench.RunResult, 0, runs)
			var durations []time.Duration

			for i := 0; i < runs; i++ {
				eng, err := engine.NewFromSet(set)
				if err != nil {
					return fmt.Errorf("build engine: %w", err)
				}
				cfg.Synthesis.ApplyTo(&eng.Condition)

				start := time.Now()
				samples, err := eng.Synthesize(lbl)
				elapsed := time.Since(start)
				if err != nil {
					return fmt.Errorf("run %d: synthesize: %w", i, err)
				}

				wavData, err := audio.EncodeWAV(toFloat32Samples(samples), eng.Condition.SamplingFrequency())
				if err != nil {
					return fmt.Errorf("run %d: encode wav: %w", i, err)
				}

				wavDur, err := bench.WAVDuration(wavData)
				if err != nil {
					return fmt.Errorf("run %d: wav duration: %w", i, err)
				}

				results = append(results, bench.RunResult{
					Index:       i,
					Cold:        i == 0,
					Duration:    elapsed,
					WAVDuration: wavDur,
					RTF:         bench.CalcRTF(elapsed, wavDur),
				})
				durations = append(durations, elapsed)
			}

			stats := bench.ComputeStats(durations)

			var meanRTF float64
			for _, r := range results {
				meanRTF += r.RTF
			}
			meanRTF /= float64(len(results))

			switch format {
			case "json":
				bench.FormatJSON(results, stats, os.Stdout)
			default:
				bench.FormatTable(results, stats, os.Stdout)
			}

			return bench.CheckRTFThreshold(meanRTF, rtfThreshold)
		},
	}

	cmd.Flags().StringSliceVar(&voicePaths, "voice", nil, "Voice file(s) to load, in interpolation order (defaults to --paths-voice-paths)")
	cmd.Flags().StringVar(&labelPath, "label", "", "Full-context label file (defaults to --label-path)")
	cmd.Flags().IntVar(&runs, "runs", 5, "Number of synthesis runs")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table|json")
	cmd.Flags().Float64Var(&rtfThreshold, "rtf-threshold", 0, "Fail if mean RTF exceeds this value (0 disables)")

	return cmd
}

package main

import (
	"encoding/json"
	"os"

	"github.com/example/htsvoice/internal/voice"
	"github.com/spf13/cobra"
)

type voiceSummary struct {
	SamplingFrequency int             `json:"sampling_frequency"`
	FramePeriod       int             `json:"frame_period"`
	NumStates         int             `json:"num_states"`
	Streams           []streamSummary `json:"streams"`
}

type streamSummary struct {
	VectorLength int  `json:"vector_length"`
	NumWindows   int  `json:"num_windows"`
	IsMSD        bool `json:"is_msd"`
	UseGV        bool `json:"use_gv"`
}

func newInspectVoiceCmd() *cobra.Command {
	var voicePaths []string

	cmd := &cobra.Command{
		Use:   "inspect-voice",
		Short: "Print metadata for one or more voice files",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if len(voicePaths) == 0 {
				voicePaths = cfg.Paths.VoicePaths
			}

			set, err := loadVoiceSet(voicePaths)
			if err != nil {
				return err
			}

			summaries := make([]voiceSummary, len(set.Voices))
			for i, v := range set.Voices {
				summaries[i] = summarizeVoice(v)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		},
	}

	cmd.Flags().StringSliceVar(&voicePaths, "voice", nil, "Voice file(s) to inspect (defaults to --paths-voice-paths)")

	return cmd
}

func summarizeVoice(v voice.Voice) voiceSummary {
	streams := make([]streamSummary, len(v.Streams))
	for i, s := range v.Streams {
		streams[i] = streamSummary{
			VectorLength: s.Metadata.VectorLength,
			NumWindows:   s.Metadata.NumWindows,
			IsMSD:        s.Metadata.IsMSD,
			UseGV:        s.Metadata.UseGV,
		}
	}

	return voiceSummary{
		SamplingFrequency: v.SamplingFrequency,
		FramePeriod:       v.FramePeriod,
		NumStates:         v.NumStates,
		Streams:           streams,
	}
}

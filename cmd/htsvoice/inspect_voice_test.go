package main

import (
	"path/filepath"
	"testing"

	"github.com/example/htsvoice/internal/config"
)

func TestInspectVoiceCmd_RunsAgainstTestdataVoice(t *testing.T) {
	orig := activeCfg
	activeCfg = config.DefaultConfig()
	t.Cleanup(func() { activeCfg = orig })

	cmd := newInspectVoiceCmd()
	cmd.SetArgs([]string{"--voice", filepath.Join("testdata", "voice.json")})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("inspect-voice command failed: %v", err)
	}
}

func TestSummarizeVoice_ReportsStreamCount(t *testing.T) {
	set, err := loadVoiceSet([]string{filepath.Join("testdata", "voice.json")})
	if err != nil {
		t.Fatalf("loadVoiceSet: %v", err)
	}

	summary := summarizeVoice(set.Voices[0])
	if len(summary.Streams) != 2 {
		t.Errorf("got %d streams, want 2", len(summary.Streams))
	}
	if summary.SamplingFrequency != 48000 {
		t.Errorf("sampling frequency = %d, want 48000", summary.SamplingFrequency)
	}
}

package main

import (
	"path/filepath"
	"testing"

	"github.com/example/htsvoice/internal/config"
)

func TestDoctorCmd_PassesForValidVoice(t *testing.T) {
	orig := activeCfg
	activeCfg = config.DefaultConfig()
	activeCfg.Paths.VoicePaths = []string{filepath.Join("testdata", "voice.json")}
	t.Cleanup(func() { activeCfg = orig })

	cmd := newDoctorCmd()
	if err := cmd.Execute(); err != nil {
		t.Fatalf("doctor command failed: %v", err)
	}
}

func TestDoctorCmd_FailsForMissingVoice(t *testing.T) {
	orig := activeCfg
	activeCfg = config.DefaultConfig()
	activeCfg.Paths.VoicePaths = []string{filepath.Join("testdata", "does-not-exist.json")}
	t.Cleanup(func() { activeCfg = orig })

	cmd := newDoctorCmd()
	if err := cmd.Execute(); err == nil {
		t.Fatal("want error when a configured voice file is missing")
	}
}

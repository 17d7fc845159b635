package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/example/htsvoice/internal/config"
)

func TestBenchCmd_RunsAgainstTestdataVoice(t *testing.T) {
	cmd := newBenchCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{
		"--voice", filepath.Join("testdata", "voice.json"),
		"--label", filepath.Join("testdata", "label.lab"),
		"--runs", "2",
	})

	orig := activeCfg
	activeCfg = config.DefaultConfig()
	t.Cleanup(func() { activeCfg = orig })

	if err := cmd.Execute(); err != nil {
		t.Fatalf("bench command failed: %v", err)
	}
}

func TestBenchCmd_RejectsZeroRuns(t *testing.T) {
	cmd := newBenchCmd()
	cmd.SetArgs([]string{
		"--voice", filepath.Join("testdata", "voice.json"),
		"--label", filepath.Join("testdata", "label.lab"),
		"--runs", "0",
	})

	orig := activeCfg
	activeCfg = config.DefaultConfig()
	t.Cleanup(func() { activeCfg = orig })

	if err := cmd.Execute(); err == nil {
		t.Fatal("want error for --runs 0")
	}
}

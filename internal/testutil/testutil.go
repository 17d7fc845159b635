// Package testutil provides shared skip helpers for integration tests.
//
// Each helper calls t.Skip with a clear human-readable reason when the named
// prerequisite is absent, so integration tests remain runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireVoiceFile(t, "voices/mei_normal.htsvoice")
//	    testutil.RequireLabelFile(t, "testdata/sample.lab")
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// RequireVoiceFile skips the test if the voice file at path cannot be
// statted.
func RequireVoiceFile(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Skipf("voice file not available at %q: %v", path, err)
	}
}

// RequireLabelFile skips the test if the label file at path cannot be
// statted.
func RequireLabelFile(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Skipf("label file not available at %q: %v", path, err)
	}
}

// SampleLabelPath returns the path to the committed sample full-context
// label fixture, relative to the repository root.
func SampleLabelPath() string {
	return filepath.Join("cmd", "htsvoice", "testdata", "label.lab")
}

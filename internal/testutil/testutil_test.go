package testutil_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/example/htsvoice/internal/testutil"
)

func TestSampleLabelPath_FileExists(t *testing.T) {
	// Walk up from internal/testutil to the repo root and check the fixture.
	root := filepath.Join("..", "..")
	p := filepath.Join(root, testutil.SampleLabelPath())
	if _, err := os.Stat(p); err != nil {
		t.Fatalf("sample label fixture not found at %q: %v", p, err)
	}
}

func TestRequireVoiceFile_SkipsWhenAbsent(t *testing.T) {
	if !captureSkip(func(tb testing.TB) { testutil.RequireVoiceFile(tb, "/nonexistent/voice.htsvoice") }) {
		t.Error("expected RequireVoiceFile to skip when file is absent")
	}
}

func TestRequireLabelFile_SkipsWhenAbsent(t *testing.T) {
	if !captureSkip(func(tb testing.TB) { testutil.RequireLabelFile(tb, "/nonexistent/label.lab") }) {
		t.Error("expected RequireLabelFile to skip when file is absent")
	}
}

// captureSkip runs fn in a fresh goroutine with a stub TB and returns true if
// the function called Skip/Skipf. Because the real testing.T.Skipf calls
// runtime.Goexit(), we run fn in an isolated goroutine so Goexit only
// terminates that goroutine and does not propagate to the parent test.
func captureSkip(fn func(testing.TB)) (skipped bool) {
	stub := &stubTB{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(stub)
	}()
	<-done
	return stub.skipped
}

// stubTB is a minimal testing.TB that records Skip calls and terminates the
// calling goroutine (via runtime.Goexit) exactly as the real testing.T does.
type stubTB struct {
	testing.TB // intentionally nil — only Skip methods are called
	skipped    bool
}

func (s *stubTB) Helper()                 {}
func (s *stubTB) Log(_ ...any)            {}
func (s *stubTB) Logf(_ string, _ ...any) {}

func (s *stubTB) Skip(_ ...any) {
	s.skipped = true
	runtime.Goexit()
}

func (s *stubTB) Skipf(_ string, _ ...any) {
	s.skipped = true
	runtime.Goexit()
}

func (s *stubTB) SkipNow() {
	s.skipped = true
	runtime.Goexit()
}

package engine

import (
	"fmt"

	"github.com/example/htsvoice/internal/label"
	"github.com/example/htsvoice/internal/voice"
)

// ParseOptionError reports a recognized STREAM[0].OPTION key whose value
// failed to parse. It re-exports voice.ParseOptionError so
// callers can type-switch on the engine package alone.
type ParseOptionError = voice.ParseOptionError

// ModelError re-exports voice.ModelError for the same reason.
type ModelError = voice.ModelError

// LabelError re-exports label.Error for the same reason.
type LabelError = label.Error

// SynthesizeError wraps a pipeline-stage failure with the stage name, so
// callers can tell "bad voice data" apart from "bad label data" without
// inspecting error chains built from three different packages.
type SynthesizeError struct {
	Stage string
	Err   error
}

func (e *SynthesizeError) Error() string {
	return fmt.Sprintf("engine: %s: %v", e.Stage, e.Err)
}

func (e *SynthesizeError) Unwrap() error { return e.Err }

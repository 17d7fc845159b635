package voice

import "io"

// Loader builds a Voice from a reader. The binary .htsvoice format itself is
// out of scope; Loader exists so engine code depends on
// an interface rather than a concrete decoder, and so tests and the CLI can
// supply the bundled jsonvoice.Loader without the engine package knowing
// anything about JSON.
type Loader interface {
	Load(r io.Reader) (Voice, error)
}

// LoadAll runs loader over every reader in order, returning a VoiceSet. It
// does not call Validate — callers combine LoadAll with VoiceSet.Validate
// so load errors and shape errors are reported through the same call site
// a caller already checks.
func LoadAll(loader Loader, readers []io.Reader) (VoiceSet, error) {
	voices := make([]Voice, 0, len(readers))

	for i, r := range readers {
		v, err := loader.Load(r)
		if err != nil {
			return VoiceSet{}, newModelError("LoadAll", "voice %d: %v", i, err)
		}
		voices = append(voices, v)
	}

	return VoiceSet{Voices: voices}, nil
}

package voice

// Window is one dynamic-feature FIR window: Offsets[i] is a frame offset
// (may be negative, zero, or positive) relative to the current frame and
// Coefficients[i] is its weight. A stream's first window is conventionally
// the static window: Offsets=[0], Coefficients=[1].
type Window struct {
	Offsets      []int
	Coefficients []float64
}

// StaticWindow returns the identity (static-coefficient) window.
func StaticWindow() Window {
	return Window{Offsets: []int{0}, Coefficients: []float64{1}}
}

// Width returns the window's half-bandwidth: the largest absolute offset
// it reaches. Used to size the MLPG banded system.
func (w Window) Width() int {
	max := 0
	for _, o := range w.Offsets {
		if o < 0 {
			o = -o
		}
		if o > max {
			max = o
		}
	}

	return max
}

// At returns the coefficient for a given relative offset and whether that
// offset is present in the window.
func (w Window) At(offset int) (float64, bool) {
	for i, o := range w.Offsets {
		if o == offset {
			return w.Coefficients[i], true
		}
	}

	return 0, false
}

// MaxWidth returns the largest Width() among windows for a stream; the
// banded MLPG system's half-bandwidth is twice this value.
func MaxWidth(windows []Window) int {
	max := 0
	for _, w := range windows {
		if wd := w.Width(); wd > max {
			max = wd
		}
	}

	return max
}

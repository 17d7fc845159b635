package voice

// ModelParameter is an ordered list of (mean, variance) pairs — the static
// and dynamic-derivative coefficients of a single HSMM state's Gaussian for
// one stream — plus an optional MSD voicing probability.
type ModelParameter struct {
	Means []float64
	Vars  []float64
	// MSD is non-nil exactly when the owning stream is_msd.
	MSD *float64
}

// NewModelParameter allocates a zeroed parameter of the given length.
func NewModelParameter(length int, isMSD bool) ModelParameter {
	p := ModelParameter{
		Means: make([]float64, length),
		Vars:  make([]float64, length),
	}
	if isMSD {
		zero := 0.0
		p.MSD = &zero
	}

	return p
}

// FromLinear builds a ModelParameter from a flat [mean_0..mean_{n-1},
// var_0..var_{n-1}, msd] slice, the layout a binary voice-file parser
// would hand back for a single PDF entry.
func FromLinear(lin []float64) ModelParameter {
	n := len(lin) / 2

	p := ModelParameter{
		Means: append([]float64(nil), lin[:n]...),
		Vars:  append([]float64(nil), lin[n:2*n]...),
	}

	if len(lin) > 2*n {
		msd := lin[2*n]
		p.MSD = &msd
	}

	return p
}

// Clone returns a deep, independent copy.
func (p ModelParameter) Clone() ModelParameter {
	out := ModelParameter{
		Means: append([]float64(nil), p.Means...),
		Vars:  append([]float64(nil), p.Vars...),
	}
	if p.MSD != nil {
		msd := *p.MSD
		out.MSD = &msd
	}

	return out
}

// AddScaled accumulates weight*rhs into p in place: p.Means[i] +=
// weight*rhs.Means[i], likewise for Vars and MSD. Used by the parameter
// mixer; kept here since it is pure arithmetic over the type's
// own fields.
func (p *ModelParameter) AddScaled(weight float64, rhs ModelParameter) {
	for i := range rhs.Means {
		p.Means[i] += weight * rhs.Means[i]
		p.Vars[i] += weight * rhs.Vars[i]
	}

	if p.MSD != nil && rhs.MSD != nil {
		*p.MSD += weight * *rhs.MSD
	}
}

package vocoder

// stage is the filter-cascade configuration selected once per Vocoder:
// sigma=0 selects the MLSA path (gamma=0), sigma>0 selects the MGLSA
// path with gamma=-1/sigma, grounded on stage.rs's Stage::new.
type stage struct {
	sigma int
	gamma float64

	mlsa  *mlsaFilter
	mglsa *mglsaFilter
}

// newStage builds the filter state for cLen coefficients.
func newStage(sigma, cLen int) stage {
	if sigma == 0 {
		return stage{sigma: 0, gamma: 0, mlsa: newMLSAFilter(cLen)}
	}

	gamma := -1.0 / float64(sigma)
	return stage{sigma: sigma, gamma: gamma, mglsa: newMGLSAFilter(sigma, cLen)}
}

func (s stage) isZero() bool { return s.sigma == 0 }

// df applies the cascaded digital filter in place to sample x, given the
// all-pass constant alpha and the current coefficient vector (
// "df(&x, alpha, coefficients)").
func (s *stage) df(x *float64, alpha float64, coefficients []float64) {
	if s.isZero() {
		s.mlsa.df(x, alpha, coefficients)
		return
	}
	s.mglsa.df(x, alpha, s.gamma, coefficients)
}

// Package mlpg implements the MLPG generator: expanding
// per-state Gaussians into a frame-level trajectory via a banded weighted
// least-squares solve per dimension, with optional Global Variance
// post-scaling and MSD voiced/unvoiced masking.
package mlpg

import (
	"fmt"

	"github.com/example/htsvoice/internal/voice"
)

// Trajectory is the generated per-stream output: a dense T x L matrix,
// where cells under an unvoiced MSD mask hold NODATA.
type Trajectory struct {
	Values [][]float64 // Values[t][d]
	Voiced []bool      // nil when the stream is not MSD
}

// GV optionally configures the post-hoc global-variance correction for one
// Generate call.
type GV struct {
	Mean   []float64 // length L
	Var    []float64 // length L
	Weight float64
}

// Generate produces one stream's trajectory from its expanded per-frame
// mean/variance (window-major, T x L*W) and dynamic-feature windows.
// msdProb is nil for non-MSD streams. gv is nil to skip the GV pass.
func Generate(meta voice.StreamMetadata, windows []voice.Window, mean, variance [][]float64, msdProb []float64, msdThreshold float64, gv *GV) (Trajectory, error) {
	T := len(mean)
	if T == 0 {
		return Trajectory{}, fmt.Errorf("mlpg: empty input trajectory")
	}

	var mask []bool
	frameMean, frameVar := mean, variance
	if meta.IsMSD {
		if msdProb == nil {
			return Trajectory{}, fmt.Errorf("mlpg: stream is MSD but no msd probabilities were given")
		}
		mask = VoicedMask(msdProb, msdThreshold)
		frameMean, frameVar = Compact(mean, variance, mask)
	}

	tPrime := len(frameMean)
	out := make([][]float64, T)
	for t := range out {
		out[t] = make([]float64, meta.VectorLength)
	}

	if tPrime == 0 {
		// Every frame unvoiced: nothing to solve, everything is NODATA.
		for t := range out {
			for d := range out[t] {
				out[t][d] = NODATA
			}
		}
		return Trajectory{Values: out, Voiced: mask}, nil
	}

	bandwidth := 2 * voice.MaxWidth(windows)

	for d := 0; d < meta.VectorLength; d++ {
		c, err := solveDimension(frameMean, frameVar, windows, meta.VectorLength, d, tPrime, bandwidth)
		if err != nil {
			return Trajectory{}, fmt.Errorf("mlpg: dimension %d: %w", d, err)
		}

		if gv != nil && gv.Weight > 0 {
			staticMean := make([]float64, tPrime)
			staticVar := make([]float64, tPrime)
			for t := 0; t < tPrime; t++ {
				staticMean[t] = frameMean[t][d]
				staticVar[t] = frameVar[t][d]
			}
			c = ApplyGV(c, staticMean, staticVar, gv.Mean[d], gv.Var[d], gv.Weight)
		}

		var full []float64
		if meta.IsMSD {
			full = Scatter(c, mask)
		} else {
			full = c
		}

		for t := 0; t < T; t++ {
			out[t][d] = full[t]
		}
	}

	return Trajectory{Values: out, Voiced: mask}, nil
}

// solveDimension builds and solves the banded normal equations for a
// single static dimension d of a stream whose vector is laid out
// window-major (index w*L+d), producing the static trajectory of length
// tPrime.
func solveDimension(mean, variance [][]float64, windows []voice.Window, vectorLength, d, tPrime, bandwidth int) ([]float64, error) {
	sys := newBandedSystem(tPrime, bandwidth)

	for t := 0; t < tPrime; t++ {
		for w, win := range windows {
			col := w*vectorLength + d
			v := variance[t][col]
			if v <= 0 {
				continue
			}
			precision := 1 / v
			mu := mean[t][col]

			for ia, oa := range win.Offsets {
				a := t + oa
				if a < 0 || a >= tPrime {
					continue
				}
				ca := win.Coefficients[ia]

				sys.addRHS(a, precision*ca*mu)

				for ib, ob := range win.Offsets {
					b := t + ob
					if b < 0 || b >= tPrime {
						continue
					}
					cb := win.Coefficients[ib]
					sys.add(a, b, precision*ca*cb)
				}
			}
		}
	}

	return sys.solve()
}

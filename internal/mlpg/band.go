package mlpg

import (
	"fmt"
	"math"
)

// bandedSystem accumulates a symmetric positive-definite banded normal-
// equation matrix and its right-hand side, then solves it by banded
// Cholesky (square-root form, L L^T) in O(T'*B^2) on the banded representation. Storage
// follows the LAPACK packed-band convention: ab[k][j] holds A[j+k][j]
// for k=0..bandwidth, so ab[0] is the diagonal and ab[k] for k>=1 is the
// k-th subdiagonal.
type bandedSystem struct {
	n         int
	bandwidth int
	ab        [][]float64
	rhs       []float64
}

func newBandedSystem(n, bandwidth int) *bandedSystem {
	if bandwidth >= n {
		bandwidth = n - 1
	}
	if bandwidth < 0 {
		bandwidth = 0
	}

	ab := make([][]float64, bandwidth+1)
	for k := range ab {
		ab[k] = make([]float64, n)
	}

	return &bandedSystem{n: n, bandwidth: bandwidth, ab: ab, rhs: make([]float64, n)}
}

// add accumulates v into A[i][j] (and, since A is symmetric, A[j][i]);
// pairs outside the configured bandwidth are silently dropped, which only
// happens when a caller mis-sizes the bandwidth.
func (s *bandedSystem) add(i, j int, v float64) {
	if i > j {
		i, j = j, i
	}
	k := j - i
	if k > s.bandwidth {
		return
	}
	s.ab[k][i] += v
}

func (s *bandedSystem) addRHS(i int, v float64) {
	s.rhs[i] += v
}

// solve runs banded Cholesky decomposition (LINPACK dpbfa style) in place
// on a copy of ab, then forward/back substitution, returning x solving
// A x = rhs.
func (s *bandedSystem) solve() ([]float64, error) {
	n, bw := s.n, s.bandwidth
	ab := make([][]float64, bw+1)
	for k := range ab {
		ab[k] = append([]float64(nil), s.ab[k]...)
	}

	for j := 0; j < n; j++ {
		if ab[0][j] <= 0 {
			return nil, fmt.Errorf("mlpg: banded normal-equation matrix is not positive definite at row %d", j)
		}

		diag := math.Sqrt(ab[0][j])
		ab[0][j] = diag

		maxK := bw
		if n-1-j < maxK {
			maxK = n - 1 - j
		}

		for k := 1; k <= maxK; k++ {
			ab[k][j] /= diag
		}

		for k := 1; k <= maxK; k++ {
			factor := ab[k][j]
			for i := k; i <= maxK; i++ {
				ab[i-k][j+k] -= ab[i][j] * factor
			}
		}
	}

	y := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := s.rhs[i]
		maxK := bw
		if i < maxK {
			maxK = i
		}
		for k := 1; k <= maxK; k++ {
			sum -= ab[k][i-k] * y[i-k]
		}
		y[i] = sum / ab[0][i]
	}

	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		maxK := bw
		if n-1-i < maxK {
			maxK = n - 1 - i
		}
		for k := 1; k <= maxK; k++ {
			sum -= ab[k][i] * x[i+k]
		}
		x[i] = sum / ab[0][i]
	}

	return x, nil
}

// Package covariance fills correlation matrices, cross-correlation
// matrices, and diagonals with nugget handling, reusing the kernel library.
// Grounded directly on original_source/nestedKriging/src/covariance.h's
// Covariance::fillAllocatedCorrMatrix / fillAllocatedCrossCorrelations /
// fillAllocatedDiagonal: same tiny-nugget-on-diagonal scheme, same
// upper-triangle-then-mirror fill order, same cyclic nugget broadcast.
package covariance

import (
	"github.com/hpwxf/nestedKriging/internal/param"
	"github.com/hpwxf/nestedKriging/internal/points"
	"gonum.org/v1/gonum/mat"
)

// machineEps matches C++'s std::numeric_limits<double>::epsilon().
const machineEps = 2.220446049250313e-16

// onDiagNuggetFactor is the power-of-two multiplier covariance.h picks so
// that matrices of size up to 2*factor built from all-ones-plus-nugget
// still invert cleanly; see the original's commentary on tinyNuggetOnDiag.
const onDiagNuggetFactor = 256

// offDiagNugget is the hook for the off-diagonal tiny nugget covariance.h
// documents but sets to zero by default ("almost same results when combining
// the tinyNuggetOnDiag and tinyNuggetOffDiag"). Kept as a named constant so
// the on/off-diagonal split spec.md §4.4 describes stays visible in code.
const offDiagNugget = 0.0

// Delta is the on-diagonal tiny nugget, 256*machine epsilon.
const Delta = onDiagNuggetFactor * machineEps

// DiagonalValue is 1 + Delta, the corr-matrix diagonal before any
// caller-supplied nugget is added.
const DiagonalValue = 1 + Delta

// Assembler fills correlation and cross-correlation matrices for one
// covariance parameter bundle.
type Assembler struct {
	bundle *param.Bundle
}

// New builds an Assembler bound to bundle.
func New(bundle *param.Bundle) *Assembler {
	return &Assembler{bundle: bundle}
}

// nuggetAt returns nugget[i % len(nugget)] divided by variance, or 0 if
// nugget is empty, matching the cyclic-broadcast rule of spec §3/§4.4.
func (a *Assembler) nuggetAt(nugget []float64, i int) float64 {
	if len(nugget) == 0 {
		return 0
	}
	return nugget[i%len(nugget)] * a.bundle.InverseVariance
}

// FillCorrMatrix fills the allocated n x n sym matrix with
// M[i][j] = kernel(P_i, P_j) for i != j, and M[i][i] = DiagonalValue +
// nugget[i]/variance. nugget may have length 0, 1, n, or any k, broadcast
// cyclically.
func (a *Assembler) FillCorrMatrix(m *mat.SymDense, p *points.Set, nugget []float64) {
	a.FillCorrMatrixBoosted(m, p, nugget, 0)
}

// FillCorrMatrixBoosted is FillCorrMatrix with an extra on-diagonal term
// added on top of DiagonalValue, used by the non-PD retry ladder (spec
// §4.6/§7: "increase the on-diagonal tiny nugget by a factor of 2 up to a
// capped number of times"). boost should be Boost(retryCount) on retry.
func (a *Assembler) FillCorrMatrixBoosted(m *mat.SymDense, p *points.Set, nugget []float64, boost float64) {
	n := p.N()
	k := a.bundle.Kernel
	for i := 0; i < n; i++ {
		m.SetSym(i, i, DiagonalValue+boost+a.nuggetAt(nugget, i))
		pi := p.Row(i)
		for j := 0; j < i; j++ {
			m.SetSym(i, j, k.Corr(pi, p.Row(j))+offDiagNugget)
		}
	}
}

// FillCrossCorrelations fills the allocated |A| x |B| matrix with
// M[i][j] = kernel(A_i, B_j). No diagonal regularisation: this is a prior
// cross-correlation, not a to-be-factorised system matrix.
func (a *Assembler) FillCrossCorrelations(m *mat.Dense, pointsA, pointsB *points.Set) {
	k := a.bundle.Kernel
	na, nb := pointsA.N(), pointsB.N()
	for i := 0; i < na; i++ {
		ai := pointsA.Row(i)
		for j := 0; j < nb; j++ {
			m.Set(i, j, k.Corr(ai, pointsB.Row(j)))
		}
	}
}

// Boost is the extra on-diagonal term to add after retryCount doublings:
// Delta on the first retry, 2*Delta on the second, and so on.
func Boost(retryCount int) float64 {
	return float64(int64(1)<<uint(retryCount)) * Delta
}

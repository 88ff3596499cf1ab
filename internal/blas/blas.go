// Package blas wraps the Cholesky part of the dense-linear-algebra provider
// described in spec §6: Cholesky-factorise a symmetric matrix and solve via
// the two triangular solves. It is a concrete type over
// gonum.org/v1/gonum/mat, not an interface; matrix allocation and products
// are done by the numeric packages directly with gonum's mat package.
package blas

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Options records the thread-count knobs spec §6 asks a BLAS backend to
// accept. Pure-Go gonum has no such knob (it lives in a cgo/OpenBLAS
// backend, explicitly out of scope per spec §1) — nothing in this module
// constructs or reads Options.
type Options struct {
	NumThreadsBLAS int
}

// CholeskyFactor wraps a factorised symmetric positive-definite matrix.
type CholeskyFactor struct {
	chol mat.Cholesky
}

// Factorize computes the Cholesky factorisation of a symmetric matrix. ok is
// false if the matrix is not positive definite.
func Factorize(sym *mat.SymDense) (*CholeskyFactor, bool) {
	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	return &CholeskyFactor{chol: chol}, true
}

// SolveVec solves A x = b for x, via the two triangular solves implied by
// the Cholesky factor.
func (f *CholeskyFactor) SolveVec(b mat.Vector) (*mat.VecDense, error) {
	dst := mat.NewVecDense(b.Len(), nil)
	if err := f.chol.SolveVecTo(dst, b); err != nil {
		return nil, fmt.Errorf("cholesky solve: %w", err)
	}
	return dst, nil
}

// Solve solves A X = B for X, one column of B at a time via the Cholesky
// factor (used for the n x q cross-correlation solve in the submodel step).
func (f *CholeskyFactor) Solve(b mat.Matrix) (*mat.Dense, error) {
	r, c := b.Dims()
	dst := mat.NewDense(r, c, nil)
	if err := f.chol.SolveTo(dst, b); err != nil {
		return nil, fmt.Errorf("cholesky solve: %w", err)
	}
	return dst, nil
}

package blas

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFactorizeRejectsNonPD(t *testing.T) {
	// [[1, 2], [2, 1]] is symmetric but not positive definite.
	sym := mat.NewSymDense(2, []float64{1, 2, 2, 1})
	if _, ok := Factorize(sym); ok {
		t.Fatalf("expected Factorize to reject a non-PD matrix")
	}
}

func TestSolveVecIdentity(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{2, 0, 0, 2})
	f, ok := Factorize(sym)
	if !ok {
		t.Fatalf("Factorize failed on a clearly PD matrix")
	}
	b := mat.NewVecDense(2, []float64{4, 6})
	x, err := f.SolveVec(b)
	if err != nil {
		t.Fatalf("SolveVec: %v", err)
	}
	if math.Abs(x.AtVec(0)-2) > 1e-9 || math.Abs(x.AtVec(1)-3) > 1e-9 {
		t.Errorf("x = %v, want [2 3]", mat.Formatted(x))
	}
}

func TestSolveMatrix(t *testing.T) {
	sym := mat.NewSymDense(2, []float64{2, 0, 0, 2})
	f, ok := Factorize(sym)
	if !ok {
		t.Fatalf("Factorize failed")
	}
	b := mat.NewDense(2, 2, []float64{2, 4, 6, 8})
	x, err := f.Solve(b)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	want := []float64{1, 2, 3, 4}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(x.At(i, j)-want[i*2+j]) > 1e-9 {
				t.Errorf("x[%d,%d] = %v, want %v", i, j, x.At(i, j), want[i*2+j])
			}
		}
	}
}

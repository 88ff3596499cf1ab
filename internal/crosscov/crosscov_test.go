package crosscov

import (
	"context"
	"math"
	"testing"

	"github.com/hpwxf/nestedKriging/internal/covariance"
	"github.com/hpwxf/nestedKriging/internal/param"
	"github.com/hpwxf/nestedKriging/internal/points"
	"github.com/hpwxf/nestedKriging/internal/split"
	"github.com/hpwxf/nestedKriging/internal/submodel"
	"gonum.org/v1/gonum/mat"
)

func buildTwoGroupSubmodels(t *testing.T) (*param.Bundle, []*submodel.Submodel, int) {
	t.Helper()
	bundle, err := param.New(1, []float64{1}, 1, "exp", nil)
	if err != nil {
		t.Fatalf("param.New: %v", err)
	}
	assembler := covariance.New(bundle)

	pred, err := points.New(mat.NewDense(2, 1, []float64{0.5, 1.5}), bundle, nil)
	if err != nil {
		t.Fatalf("points.New: %v", err)
	}

	pAll, err := points.New(mat.NewDense(4, 1, []float64{0, 1, 2, 3}), bundle, nil)
	if err != nil {
		t.Fatalf("points.New: %v", err)
	}
	groups, err := split.Split(pAll, []float64{0, 1, 2, 3}, []int{0, 0, 1, 1})
	if err != nil {
		t.Fatalf("split.Split: %v", err)
	}

	submodels := make([]*submodel.Submodel, len(groups))
	for i, g := range groups {
		sm, err := submodel.Build(assembler, bundle, i, g, pred, nil, submodel.Simple)
		if err != nil {
			t.Fatalf("submodel.Build(%d): %v", i, err)
		}
		submodels[i] = sm
	}
	return bundle, submodels, pred.N()
}

func TestBuildDiagonalMatchesSubmodelVariance(t *testing.T) {
	bundle, submodels, q := buildTwoGroupSubmodels(t)
	assembler := covariance.New(bundle)
	km, err := Build(context.Background(), assembler, bundle, submodels, q, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for i, sm := range submodels {
		for qi := 0; qi < q; qi++ {
			want := bundle.Variance - sm.Var[qi]
			if math.Abs(km[qi].At(i, i)-want) > 1e-12 {
				t.Errorf("KM[%d][%d][%d] = %v, want %v", qi, i, i, km[qi].At(i, i), want)
			}
		}
	}
}

func TestBuildSymmetric(t *testing.T) {
	bundle, submodels, q := buildTwoGroupSubmodels(t)
	assembler := covariance.New(bundle)
	km, err := Build(context.Background(), assembler, bundle, submodels, q, 2)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for qi := 0; qi < q; qi++ {
		if math.Abs(km[qi].At(0, 1)-km[qi].At(1, 0)) > 1e-12 {
			t.Errorf("KM[%d] not symmetric", qi)
		}
	}
}

// Package submodel builds the per-subgroup Kriging predictor: Cholesky
// factor of the subgroup's correlation matrix, Kriging mean and variance at
// every prediction point, and the auxiliary quantities the cross-covariance
// engine (internal/crosscov) and aggregator (internal/aggregate) need next.
// Grounded on spec §4.6.
package submodel

import (
	"context"

	"github.com/hpwxf/nestedKriging/internal/blas"
	"github.com/hpwxf/nestedKriging/internal/covariance"
	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/param"
	"github.com/hpwxf/nestedKriging/internal/pool"
	"github.com/hpwxf/nestedKriging/internal/points"
	"github.com/hpwxf/nestedKriging/internal/split"
	"gonum.org/v1/gonum/mat"
)

// maxNuggetRetries bounds the non-PD retry ladder (spec §7: "fatal after
// retrying with doubled on-diagonal nugget up to a small cap").
const maxNuggetRetries = 5

// Submodel is subgroup i's Kriging predictor.
type Submodel struct {
	Points *points.Set // G_i's rescaled design points, kept for crosscov
	Y      []float64   // G_i's response, centered by Beta if ordinary Kriging
	Beta   float64     // estimated constant trend (0 for simple Kriging)

	Chol      *blas.CholeskyFactor // lower factor of G_i's correlation matrix
	CrossCorr *mat.Dense           // n_i x q, k_i = corr(G_i design points, prediction points)
	Lambda    *mat.Dense           // n_i x q, K_i^-1 k_i
	Alpha     []float64            // n_i, K_i^-1 Y_i (centered)

	Mean []float64 // q, submodel mean at every prediction point
	Var  []float64 // q, submodel variance at every prediction point
}

// KrigingType selects simple or ordinary Kriging at the submodel layer.
type KrigingType int

const (
	Simple KrigingType = iota
	Ordinary
)

// Build constructs subgroup idx's submodel against predPoints.
func Build(assembler *covariance.Assembler, bundle *param.Bundle, idx int, g split.Group,
	predPoints *points.Set, nugget []float64, krigingType KrigingType) (*Submodel, error) {

	n := g.Points.N()
	q := predPoints.N()

	sym := mat.NewSymDense(n, nil)
	var chol *blas.CholeskyFactor
	var ok bool
	for retry := 0; retry <= maxNuggetRetries; retry++ {
		if retry == 0 {
			assembler.FillCorrMatrix(sym, g.Points, nugget)
		} else {
			assembler.FillCorrMatrixBoosted(sym, g.Points, nugget, covariance.Boost(retry-1))
		}
		chol, ok = blas.Factorize(sym)
		if ok {
			break
		}
	}
	if !ok {
		return nil, errs.NotPositiveDefinite(idx)
	}

	crossCorr := mat.NewDense(n, q, nil)
	assembler.FillCrossCorrelations(crossCorr, g.Points, predPoints)

	yVec := mat.NewVecDense(n, g.Y)

	var beta float64
	var alphaVec *mat.VecDense
	if krigingType == Ordinary {
		ones := mat.NewVecDense(n, onesOf(n))
		v1, err := chol.SolveVec(ones)
		if err != nil {
			return nil, errs.NotPositiveDefinite(idx)
		}
		vY, err := chol.SolveVec(yVec)
		if err != nil {
			return nil, errs.NotPositiveDefinite(idx)
		}
		sum1 := sumVec(v1)
		beta = sumVec(vY) / sum1
		alphaVec = mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			alphaVec.SetVec(i, vY.AtVec(i)-beta*v1.AtVec(i))
		}
	} else {
		var err error
		alphaVec, err = chol.SolveVec(yVec)
		if err != nil {
			return nil, errs.NotPositiveDefinite(idx)
		}
	}

	lambda, err := chol.Solve(crossCorr)
	if err != nil {
		return nil, errs.NotPositiveDefinite(idx)
	}

	alpha := make([]float64, n)
	for i := 0; i < n; i++ {
		alpha[i] = alphaVec.AtVec(i)
	}

	mean := make([]float64, q)
	variance := make([]float64, q)
	sd2 := bundle.Variance
	for j := 0; j < q; j++ {
		var dotAlpha, dotLambda float64
		for i := 0; i < n; i++ {
			k := crossCorr.At(i, j)
			dotAlpha += k * alpha[i]
			dotLambda += k * lambda.At(i, j)
		}
		mean[j] = dotAlpha + beta
		v := sd2 * (1 + covariance.Delta - dotLambda)
		if v < 0 {
			v = 0
		}
		variance[j] = v
	}

	centeredY := make([]float64, n)
	for i := range centeredY {
		centeredY[i] = g.Y[i] - beta
	}

	return &Submodel{
		Points:    g.Points,
		Y:         centeredY,
		Beta:      beta,
		Chol:      chol,
		CrossCorr: crossCorr,
		Lambda:    lambda,
		Alpha:     alpha,
		Mean:      mean,
		Var:       variance,
	}, nil
}

// BuildAll builds every subgroup's submodel, in parallel across workers.
func BuildAll(ctx context.Context, assembler *covariance.Assembler, bundle *param.Bundle,
	groups []split.Group, predPoints *points.Set, nugget []float64, krigingType KrigingType,
	workers int) ([]*Submodel, error) {

	out := make([]*Submodel, len(groups))
	err := pool.ParallelFor(ctx, len(groups), workers, func(_ context.Context, i int) error {
		sm, err := Build(assembler, bundle, i, groups[i], predPoints, nugget, krigingType)
		if err != nil {
			return err
		}
		out[i] = sm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func onesOf(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}

func sumVec(v *mat.VecDense) float64 {
	var s float64
	for i := 0; i < v.Len(); i++ {
		s += v.AtVec(i)
	}
	return s
}

// Package aggregate fuses submodel means and variances into the nested
// Kriging predictor, and optionally assembles the joint prediction
// covariance matrix. Grounded on spec §4.8.
package aggregate

import (
	"context"

	"github.com/hpwxf/nestedKriging/internal/blas"
	"github.com/hpwxf/nestedKriging/internal/covariance"
	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/points"
	"github.com/hpwxf/nestedKriging/internal/pool"
	"github.com/hpwxf/nestedKriging/internal/submodel"
	"gonum.org/v1/gonum/mat"
)

// maxSingularRetries bounds the K_M singularity retry ladder (spec §4.8/§7).
const maxSingularRetries = 5

// Options selects which optional outputs the aggregator produces.
type Options struct {
	WantWeights bool // N x q aggregation weights
	WantJoint   bool // q x q joint prediction covariance and prior covariance
}

// Output is the aggregator's result.
type Output struct {
	Mean     []float64  // q
	Sd2      []float64  // q
	Weights  *mat.Dense // N x q, present if Options.WantWeights
	Cov      *mat.Dense // q x q, present if Options.WantJoint
	CovPrior *mat.Dense // q x q, present if Options.WantJoint
}

// Run fuses submodels via K_M (from internal/crosscov) at every prediction
// point in parallel across workers.
func Run(ctx context.Context, submodels []*submodel.Submodel, km []*mat.SymDense, variance float64,
	assembler *covariance.Assembler, predPoints *points.Set, opts Options, workers int) (*Output, error) {

	n := len(submodels)
	q := len(km)

	out := &Output{
		Mean: make([]float64, q),
		Sd2:  make([]float64, q),
	}
	var weights *mat.Dense
	if opts.WantWeights || opts.WantJoint {
		weights = mat.NewDense(n, q, nil)
		out.Weights = weights
	}

	err := pool.ParallelFor(ctx, q, workers, func(_ context.Context, query int) error {
		// k_M(q)_i = Cov(M_i(q), Y(q)) = Var(M_i(q)) = sigma2 - submodel i's
		// own posterior (residual) variance at q.
		kMvec := make([]float64, n)
		for i, sm := range submodels {
			kMvec[i] = variance - sm.Var[query]
		}
		kM := mat.NewVecDense(n, kMvec)

		w, err := solveWithRetry(km[query], kM, query)
		if err != nil {
			return err
		}

		var mean, dot float64
		for i, sm := range submodels {
			wi := w.AtVec(i)
			mean += wi * sm.Mean[query]
			dot += wi * kMvec[i]
			if weights != nil {
				weights.Set(i, query, wi)
			}
		}
		v := variance - dot
		if v < 0 {
			v = 0
		}
		out.Mean[query] = mean
		out.Sd2[query] = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	if opts.WantJoint {
		cov, covPrior, err := jointCovariance(submodels, weights, variance, assembler, predPoints, q)
		if err != nil {
			return nil, err
		}
		out.Cov = cov
		out.CovPrior = covPrior
	}

	return out, nil
}

// solveWithRetry solves km w = kM, increasing the on-diagonal nugget by
// powers of two (spec §4.8/§7's retry ladder) if the system is singular.
func solveWithRetry(km *mat.SymDense, kM *mat.VecDense, query int) (*mat.VecDense, error) {
	n, _ := km.Dims()
	for retry := 0; retry <= maxSingularRetries; retry++ {
		sym := km
		if retry > 0 {
			boosted := mat.NewSymDense(n, nil)
			boosted.CopySym(km)
			boost := covariance.Boost(retry - 1)
			for i := 0; i < n; i++ {
				boosted.SetSym(i, i, boosted.At(i, i)+boost)
			}
			sym = boosted
		}
		chol, ok := blas.Factorize(sym)
		if !ok {
			continue
		}
		w, err := chol.SolveVec(kM)
		if err != nil {
			continue
		}
		return w, nil
	}
	return nil, errs.SingularSystem(query)
}

// jointCovariance assembles the q x q joint prediction covariance (Cov) and
// prior covariance (CovPrior) matrices.
//
// For subgroups i<j: Full_ij(q,q') = sigma2 * Lambda_i(q)^T C(G_i,G_j) Lambda_j(q').
// For i==j: Full_ii(q,q') = Cov(M_i(q), M_i(q')) = sigma2 * Lambda_i(q)^T k_i(q'),
// the same bilinear form with G_i played against itself. Cov(Mj(q), Mi(q')) =
// Full_ij(q',q) by the symmetry of a joint Gaussian, so only i<=j need be
// stored. This is the "one n x q cross term per subgroup" (k_i, already
// retained by internal/submodel) spec §4.8 names as the extra cost of joint
// covariance.
func jointCovariance(submodels []*submodel.Submodel, weights *mat.Dense, variance float64,
	assembler *covariance.Assembler, predPoints *points.Set, q int) (cov, covPrior *mat.Dense, err error) {

	n := len(submodels)

	kxx := mat.NewDense(q, q, nil)
	assembler.FillCrossCorrelations(kxx, predPoints, predPoints)

	full := make([][]*mat.Dense, n)
	for i := range full {
		full[i] = make([]*mat.Dense, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if i == j {
				var reduction mat.Dense
				reduction.Mul(submodels[i].Lambda.T(), submodels[i].CrossCorr)
				m := mat.NewDense(q, q, nil)
				m.Scale(variance, &reduction)
				full[i][i] = m
			} else {
				cij := mat.NewDense(submodels[i].Points.N(), submodels[j].Points.N(), nil)
				assembler.FillCrossCorrelations(cij, submodels[i].Points, submodels[j].Points)
				var tmp, m mat.Dense
				tmp.Mul(cij, submodels[j].Lambda)
				m.Mul(submodels[i].Lambda.T(), &tmp)
				m.Scale(variance, &m)
				full[i][j] = &m
			}
		}
	}

	cov = mat.NewDense(q, q, nil)
	covPrior = mat.NewDense(q, q, nil)
	for a := 0; a < q; a++ {
		for b := a; b < q; b++ {
			var s float64
			for i := 0; i < n; i++ {
				s += weights.At(i, a) * weights.At(i, b) * full[i][i].At(a, b)
				for j := i + 1; j < n; j++ {
					s += weights.At(i, a) * weights.At(j, b) * full[i][j].At(a, b)
					s += weights.At(j, a) * weights.At(i, b) * full[i][j].At(b, a)
				}
			}
			cov.Set(a, b, s)
			cov.Set(b, a, s)
			covPrior.Set(a, b, variance*kxx.At(a, b))
			covPrior.Set(b, a, variance*kxx.At(b, a))
		}
	}
	return cov, covPrior, nil
}

// Package crosscov computes the pairwise cross-covariance tensor between
// submodel predictions, over all subgroup pairs, at every prediction point.
// This is the dominant cost named in spec §4.7/§2 (20% of the core's
// budget): N(N-1)/2 tiles, parallelised across the (i,j) pair set via
// internal/pool.
package crosscov

import (
	"context"

	"github.com/hpwxf/nestedKriging/internal/covariance"
	"github.com/hpwxf/nestedKriging/internal/param"
	"github.com/hpwxf/nestedKriging/internal/pool"
	"github.com/hpwxf/nestedKriging/internal/submodel"
	"gonum.org/v1/gonum/mat"
)

// pair is one unordered subgroup pair i<=j.
type pair struct{ i, j int }

func allPairs(n int) []pair {
	pairs := make([]pair, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}
	return pairs
}

// Build returns K_M: one N x N symmetric matrix per prediction point q. A
// submodel's own posterior variance (internal/submodel's Var field) is the
// residual Var(Y(q) | G_i's data); by the projection identity
// Var(Y(q)) = Var(M_i(q)) + Var(Y(q) | G_i), so
// K_M[q][i][i] = Var(M_i(q)) = sigma2 - submodels[i].Var[q], and
// K_M[q][i][j] = sigma2 * lambda_i(q)^T * C(G_i,G_j) * lambda_j(q) for i!=j.
func Build(ctx context.Context, assembler *covariance.Assembler, bundle *param.Bundle,
	submodels []*submodel.Submodel, numQueries int, workers int) ([]*mat.SymDense, error) {

	n := len(submodels)
	km := make([]*mat.SymDense, numQueries)
	for q := range km {
		km[q] = mat.NewSymDense(n, nil)
	}

	pairs := allPairs(n)
	err := pool.ParallelFor(ctx, len(pairs), workers, func(_ context.Context, idx int) error {
		p := pairs[idx]
		if p.i == p.j {
			for q := 0; q < numQueries; q++ {
				km[q].SetSym(p.i, p.i, bundle.Variance-submodels[p.i].Var[q])
			}
			return nil
		}

		si, sj := submodels[p.i], submodels[p.j]
		cij := mat.NewDense(si.Points.N(), sj.Points.N(), nil)
		assembler.FillCrossCorrelations(cij, si.Points, sj.Points)

		// tmp = C_ij * Lambda_j: n_i x q.
		var tmp mat.Dense
		tmp.Mul(cij, sj.Lambda)

		for q := 0; q < numQueries; q++ {
			v := mat.Dot(si.Lambda.ColView(q), tmp.ColView(q)) * bundle.Variance
			km[q].SetSym(p.i, p.j, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return km, nil
}

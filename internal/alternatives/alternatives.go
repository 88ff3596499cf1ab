// Package alternatives computes mixture-of-experts predictors — Product of
// Experts, Generalised PoE, Bayesian Committee Machine, Robust BCM, and
// Smallest-Predictive-Variance — from the same per-submodel (mean, variance)
// quantities the nested Kriging aggregator consumes. Grounded on spec §4.9.
package alternatives

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Result holds one alternative predictor's mean and variance at every
// prediction point.
type Result struct {
	Mean []float64
	Var  []float64
}

// Set is the full collection of alternative predictors, keyed by name.
type Set struct {
	PoE         Result
	GPoEEqual   Result
	GPoEEntropy Result
	BCM         Result
	RBCM        Result
	SPV         Result
}

// Compute builds every alternative predictor. mean and v are N x q
// (submodel index, query index) matrices of submodel posterior means and
// residual variances; sigma2 is the kernel's prior variance.
func Compute(mean, v [][]float64, sigma2 float64) Set {
	n := len(mean)
	if n == 0 {
		return Set{}
	}
	q := len(mean[0])

	entropyWeights := make([][]float64, n)
	for i := range entropyWeights {
		entropyWeights[i] = make([]float64, q)
	}
	for j := 0; j < q; j++ {
		col := make([]float64, n)
		for i := 0; i < n; i++ {
			col[i] = 0.5 * (math.Log(sigma2) - math.Log(v[i][j]))
		}
		total := floats.Sum(col)
		for i := 0; i < n; i++ {
			if total != 0 {
				entropyWeights[i][j] = col[i] / total
			} else {
				entropyWeights[i][j] = 1.0 / float64(n)
			}
		}
	}

	return Set{
		PoE:         poe(mean, v, q),
		GPoEEqual:   gpoe(mean, v, q, equalWeights(n, q)),
		GPoEEntropy: gpoe(mean, v, q, entropyWeights),
		BCM:         bcm(mean, v, q, sigma2),
		RBCM:        rbcm(mean, v, q, sigma2, entropyWeights),
		SPV:         spv(mean, v, q),
	}
}

func equalWeights(n, q int) [][]float64 {
	w := make([][]float64, n)
	for i := range w {
		w[i] = make([]float64, q)
		for j := range w[i] {
			w[i][j] = 1.0 / float64(n)
		}
	}
	return w
}

func poe(mean, v [][]float64, q int) Result {
	n := len(mean)
	out := Result{Mean: make([]float64, q), Var: make([]float64, q)}
	for j := 0; j < q; j++ {
		var precTotal, meanNumer float64
		for i := 0; i < n; i++ {
			prec := 1 / v[i][j]
			precTotal += prec
			meanNumer += prec * mean[i][j]
		}
		out.Var[j] = 1 / precTotal
		out.Mean[j] = meanNumer / precTotal
	}
	return out
}

func gpoe(mean, v [][]float64, q int, weights [][]float64) Result {
	n := len(mean)
	out := Result{Mean: make([]float64, q), Var: make([]float64, q)}
	for j := 0; j < q; j++ {
		var precTotal, meanNumer float64
		for i := 0; i < n; i++ {
			prec := 1 / v[i][j]
			precTotal += weights[i][j] * prec
			meanNumer += weights[i][j] * prec * mean[i][j]
		}
		out.Var[j] = 1 / precTotal
		out.Mean[j] = meanNumer / precTotal
	}
	return out
}

// bcm is the standard Bayesian Committee Machine correction: the prior
// precision is subtracted (N-1) times since each submodel's precision
// double-counts the prior.
func bcm(mean, v [][]float64, q int, sigma2 float64) Result {
	n := len(mean)
	out := Result{Mean: make([]float64, q), Var: make([]float64, q)}
	for j := 0; j < q; j++ {
		var precTotal, meanNumer float64
		for i := 0; i < n; i++ {
			prec := 1 / v[i][j]
			precTotal += prec
			meanNumer += prec * mean[i][j]
		}
		precTotal -= float64(n-1) / sigma2
		out.Var[j] = 1 / precTotal
		out.Mean[j] = meanNumer / precTotal
	}
	return out
}

// rbcm is BCM with the entropy-based GPoE weights substituted for the
// uniform ones (spec: "RBCM weights equal the GPoE entropy-based weights").
func rbcm(mean, v [][]float64, q int, sigma2 float64, weights [][]float64) Result {
	n := len(mean)
	out := Result{Mean: make([]float64, q), Var: make([]float64, q)}
	for j := 0; j < q; j++ {
		var precTotal, meanNumer, weightSum float64
		for i := 0; i < n; i++ {
			prec := 1 / v[i][j]
			precTotal += weights[i][j] * prec
			meanNumer += weights[i][j] * prec * mean[i][j]
			weightSum += weights[i][j]
		}
		precTotal += (1 - weightSum) / sigma2
		out.Var[j] = 1 / precTotal
		out.Mean[j] = meanNumer / precTotal
	}
	return out
}

func spv(mean, v [][]float64, q int) Result {
	n := len(mean)
	out := Result{Mean: make([]float64, q), Var: make([]float64, q)}
	for j := 0; j < q; j++ {
		best := 0
		for i := 1; i < n; i++ {
			if v[i][j] < v[best][j] {
				best = i
			}
		}
		out.Mean[j] = mean[best][j]
		out.Var[j] = v[best][j]
	}
	return out
}

// Package param builds the immutable covariance parameter bundle: dimension,
// lengthscales, variance, kernel choice, and the per-dimension scaling
// factors derived from them. Grounded on
// original_source/nestedKriging/src/covariance.h's CovarianceParameters,
// which performs the same precomputations once and is never copied or moved
// afterwards.
package param

import (
	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/kernel"
)

// tinyVariance keeps InverseVariance finite even if Variance is, absurdly,
// exactly zero at the call site before validation rejects it.
const tinyVariance = 1e-100

// Bundle is the immutable, read-only-shared parameter carrier. Construct
// once with New; never copy the value, share the pointer.
type Bundle struct {
	D               int
	Kind            kernel.Kind
	Kernel          kernel.Kernel
	Lengthscales    []float64 // copy of the caller's vector, length D (2D for powexp)
	Variance        float64
	InverseVariance float64
	ScalingFactors  []float64 // length D; 1s for powexp (rescaling disabled)
}

// New validates and builds a Bundle. covType is matched against kernel.Parse;
// an unrecognised tag falls back to exp and records a warning, per spec §7.
func New(d int, lengthscales []float64, variance float64, covType string, warn *errs.Warnings) (*Bundle, error) {
	if d <= 0 {
		return nil, errs.InvalidShape("d", "positive integer", d)
	}
	wantLen := d
	kind, ok := kernel.Parse(covType)
	if !ok {
		if warn != nil {
			warn.Add("unknown covType %q, falling back to exp", covType)
		}
	}
	if kind == kernel.PowExp {
		wantLen = 2 * d
	}
	if len(lengthscales) != wantLen {
		return nil, errs.InvalidShape("param", wantLen, len(lengthscales))
	}
	for i, l := range lengthscales {
		if l <= 0 {
			return nil, errs.InvalidShape("param[lengthscale]", "> 0", lengthscales[i])
		}
	}
	if variance <= 0 {
		return nil, errs.InvalidShape("sd2", "> 0", variance)
	}

	ls := append([]float64(nil), lengthscales...)

	var k kernel.Kernel
	var scaling []float64
	if kind == kernel.PowExp {
		k = kernel.New(kind, ls[:d], ls[d:])
		scaling = make([]float64, d)
		for i := range scaling {
			scaling[i] = 1
		}
	} else {
		k = kernel.New(kind, nil, nil)
		c := k.ScalingConstant()
		scaling = make([]float64, d)
		for i := range scaling {
			scaling[i] = c / ls[i]
		}
	}

	return &Bundle{
		D:               d,
		Kind:            kind,
		Kernel:          k,
		Lengthscales:    ls,
		Variance:        variance,
		InverseVariance: 1 / (variance + tinyVariance),
		ScalingFactors:  scaling,
	}, nil
}

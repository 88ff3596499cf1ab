// Package points holds rescaled point clouds: design points and prediction
// points transformed so that the active kernel sees unit lengthscales.
// Grounded on original_source/nestedKriging/src/covariance.h's Points /
// fillWith, backed here by gonum's mat.Dense (the "packed, SIMD-aligned"
// storage choice SPEC_FULL.md calls for) rather than a row-of-rows slice.
package points

import (
	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/param"
	"gonum.org/v1/gonum/mat"
)

// Set is a read-mostly n x d point cloud. Each stored coordinate equals
// (raw - origin) * scalingFactor[k].
type Set struct {
	data *mat.Dense
	n, d int
}

// New rescales raw (n x d) against bundle's scaling factors, relative to
// origin (nil means the zero vector, d zeros).
func New(raw *mat.Dense, bundle *param.Bundle, origin []float64) (*Set, error) {
	n, d := raw.Dims()
	if d != bundle.D {
		return nil, errs.InvalidShape("X", bundle.D, d)
	}
	if origin == nil {
		origin = make([]float64, d)
	} else if len(origin) != d {
		return nil, errs.InvalidShape("origin", d, len(origin))
	}

	data := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		row := data.RawRowView(i)
		for k := 0; k < d; k++ {
			row[k] = (raw.At(i, k) - origin[k]) * bundle.ScalingFactors[k]
		}
	}
	return &Set{data: data, n: n, d: d}, nil
}

// N is the number of points.
func (s *Set) N() int { return s.n }

// D is the point dimension.
func (s *Set) D() int { return s.d }

// Row returns a read/write view onto point i's coordinates.
func (s *Set) Row(i int) []float64 { return s.data.RawRowView(i) }

// Matrix exposes the backing dense matrix read-only, e.g. for passing to
// the covariance assembler or for diagnostics.
func (s *Set) Matrix() mat.Matrix { return s.data }

// Subset copies the rows named by indices (in the order given) into a new
// Set, used by the subgroup splitter.
func (s *Set) Subset(indices []int) *Set {
	out := mat.NewDense(len(indices), s.d, nil)
	for r, idx := range indices {
		copy(out.RawRowView(r), s.data.RawRowView(idx))
	}
	return &Set{data: out, n: len(indices), d: s.d}
}

// Package nestedkriging computes a nested Kriging predictor: per-subgroup
// exact Kriging aggregated via submodel cross-covariances into one global
// predictor. See internal/kernel, internal/param, internal/points,
// internal/covariance, internal/split, internal/submodel, internal/crosscov,
// internal/aggregate, and internal/alternatives for the nine components.
package nestedkriging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hpwxf/nestedKriging/internal/aggregate"
	"github.com/hpwxf/nestedKriging/internal/alternatives"
	"github.com/hpwxf/nestedKriging/internal/covariance"
	"github.com/hpwxf/nestedKriging/internal/crosscov"
	"github.com/hpwxf/nestedKriging/internal/errs"
	"github.com/hpwxf/nestedKriging/internal/param"
	"github.com/hpwxf/nestedKriging/internal/points"
	"github.com/hpwxf/nestedKriging/internal/pool"
	"github.com/hpwxf/nestedKriging/internal/split"
	"github.com/hpwxf/nestedKriging/internal/submodel"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// sourceCode is the algorithm name+version string returned in Result.
const sourceCode = "nestedKriging-go v1"

// Output-level flags, additive per spec §6 ("bitfield: 0 base; +1 ...; +2
// ...; +10 ..."). Decoded greedily in decodeOutputLevel since the values
// are not independent bit positions.
const (
	outputWeights  = 1
	outputTensors  = 2
	outputJointCov = 10
)

// Request mirrors spec §6's parameter table field-for-field.
type Request struct {
	X        *mat.Dense // n x d design matrix
	Y        []float64  // length n, assumed centered for simple Kriging
	Clusters []int      // length n partition vector, any integer labels
	Xpred    *mat.Dense // q x d prediction matrix

	CovType string    // one of the six kernel tags
	Param   []float64 // length-d lengthscale vector (length-2d for powexp)
	Sd2     float64   // sigma^2

	KrigingType string // "simple" or "ordinary"

	NumThreadsZones int // Z >= 1, default 1
	NumThreads      int // T >= 1, default 1
	NumThreadsBLAS  int // B >= 1, accepted but not read by Predict

	VerboseLevel int // <= 0 suppresses warnings
	OutputLevel  int // see outputWeights/outputTensors/outputJointCov; negative enables alternatives

	// GlobalOptions is reserved for implementation variants; it has no
	// observable effect on results (spec §9's open question, resolved).
	GlobalOptions []int

	Nugget []float64 // broadcast cyclically
}

// Result is the named output aggregate spec §6 describes.
type Result struct {
	Mean []float64
	Sd2  []float64

	Cov      *mat.Dense // q x q, present iff OutputLevel requests joint covariance
	CovPrior *mat.Dense

	Duration        float64
	DurationDetails map[string]float64 // partA..partE
	SourceCode      string

	Weights *mat.Dense // N x q, present iff OutputLevel requests per-submodel outputs
	MeanM   *mat.Dense // N x q
	Sd2M    *mat.Dense // N x q

	KM []*mat.SymDense // per-query N x N, present iff OutputLevel requests full tensors
	KMVec *mat.Dense    // N x q, k_M(q) stacked by query

	Alternatives *alternatives.Set
}

// Predict runs the nested Kriging core. ctx is checked only at the phase
// barriers named in spec §5 ((a) after submodel build, (b) after
// cross-covariance, (c) after aggregation), never inside a parallel-for
// body, so a cancelled context stops the call promptly between phases
// without breaking the "no cancellation inside a phase" guarantee.
func Predict(ctx context.Context, req Request) (Result, error) {
	start := time.Now()
	logger := buildLogger(req.VerboseLevel)
	defer logger.Sync() //nolint:errcheck

	wantWeights, wantTensors, wantJoint, wantAlternatives, wantNested := decodeOutputLevel(req.OutputLevel)

	warn := &errs.Warnings{}
	bundle, err := param.New(colsOf(req.X), req.Param, req.Sd2, req.CovType, warn)
	if err != nil {
		return Result{}, err
	}
	flushWarnings(logger, warn)

	allPoints, err := points.New(req.X, bundle, nil)
	if err != nil {
		return Result{}, err
	}
	predPoints, err := points.New(req.Xpred, bundle, nil)
	if err != nil {
		return Result{}, err
	}

	groups, err := split.Split(allPoints, req.Y, req.Clusters)
	if err != nil {
		return Result{}, err
	}

	krigingType := submodel.Simple
	if req.KrigingType == "ordinary" {
		krigingType = submodel.Ordinary
	}

	zones := zoneRanges(predPoints.N(), maxInt(req.NumThreadsZones, 1))
	workers := maxInt(req.NumThreads, 1)
	assembler := covariance.New(bundle)

	result := Result{
		Mean:            make([]float64, predPoints.N()),
		Sd2:             make([]float64, predPoints.N()),
		DurationDetails: map[string]float64{},
		SourceCode:      sourceCode,
	}
	if wantWeights {
		result.Weights = mat.NewDense(len(groups), predPoints.N(), nil)
		result.MeanM = mat.NewDense(len(groups), predPoints.N(), nil)
		result.Sd2M = mat.NewDense(len(groups), predPoints.N(), nil)
	}
	if wantTensors {
		result.KM = make([]*mat.SymDense, predPoints.N())
		result.KMVec = mat.NewDense(len(groups), predPoints.N(), nil)
	}
	if wantJoint {
		result.Cov = mat.NewDense(predPoints.N(), predPoints.N(), nil)
		result.CovPrior = mat.NewDense(predPoints.N(), predPoints.N(), nil)
	}

	var durMu sync.Mutex
	addDuration := func(part string, d time.Duration) {
		durMu.Lock()
		result.DurationDetails[part] += d.Seconds()
		durMu.Unlock()
	}

	var meanAll, varAll [][]float64 // per-subgroup, per-query, stitched back from every zone
	if wantAlternatives {
		meanAll = make([][]float64, len(groups))
		varAll = make([][]float64, len(groups))
		for i := range meanAll {
			meanAll[i] = make([]float64, predPoints.N())
			varAll[i] = make([]float64, predPoints.N())
		}
	}
	var altMu sync.Mutex

	err = pool.ParallelFor(ctx, len(zones), workers, func(zctx context.Context, zi int) error {
		zone := zones[zi]
		zonePred := predPoints.Subset(rangeOf(zone.lo, zone.hi))

		t0 := time.Now()
		submodels, err := submodel.BuildAll(zctx, assembler, bundle, groups, zonePred, req.Nugget, krigingType, workers)
		if err != nil {
			return err
		}
		addDuration("partA", time.Since(t0))
		if err := zctx.Err(); err != nil {
			return err
		}

		if wantAlternatives {
			altMu.Lock()
			for i, sm := range submodels {
				copy(meanAll[i][zone.lo:zone.hi], sm.Mean)
				copy(varAll[i][zone.lo:zone.hi], sm.Var)
			}
			altMu.Unlock()
		}

		if !wantNested {
			return nil
		}

		t1 := time.Now()
		km, err := crosscov.Build(zctx, assembler, bundle, submodels, zonePred.N(), workers)
		if err != nil {
			return err
		}
		addDuration("partB", time.Since(t1))
		if err := zctx.Err(); err != nil {
			return err
		}

		t2 := time.Now()
		out, err := aggregate.Run(zctx, submodels, km, bundle.Variance, assembler, zonePred,
			aggregate.Options{WantWeights: wantWeights || wantTensors, WantJoint: false}, workers)
		if err != nil {
			return err
		}
		addDuration("partC", time.Since(t2))
		if err := zctx.Err(); err != nil {
			return err
		}

		copy(result.Mean[zone.lo:zone.hi], out.Mean)
		copy(result.Sd2[zone.lo:zone.hi], out.Sd2)
		if wantWeights {
			for i := range submodels {
				for j := 0; j < zonePred.N(); j++ {
					result.Weights.Set(i, zone.lo+j, out.Weights.At(i, j))
					result.MeanM.Set(i, zone.lo+j, submodels[i].Mean[j])
					result.Sd2M.Set(i, zone.lo+j, submodels[i].Var[j])
				}
			}
		}
		if wantTensors {
			for j := 0; j < zonePred.N(); j++ {
				result.KM[zone.lo+j] = km[j]
				for i := range submodels {
					result.KMVec.Set(i, zone.lo+j, bundle.Variance-submodels[i].Var[j])
				}
			}
		}

		if wantJoint {
			t3 := time.Now()
			jointOut, err := aggregate.Run(zctx, submodels, km, bundle.Variance, assembler, zonePred,
				aggregate.Options{WantWeights: true, WantJoint: true}, workers)
			if err != nil {
				return err
			}
			addDuration("partD", time.Since(t3))
			for a := 0; a < zonePred.N(); a++ {
				for b := 0; b < zonePred.N(); b++ {
					result.Cov.Set(zone.lo+a, zone.lo+b, jointOut.Cov.At(a, b))
					result.CovPrior.Set(zone.lo+a, zone.lo+b, jointOut.CovPrior.At(a, b))
				}
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	flushWarnings(logger, warn)

	if wantAlternatives {
		t4 := time.Now()
		set := alternatives.Compute(meanAll, varAll, bundle.Variance)
		result.Alternatives = &set
		addDuration("partE", time.Since(t4))
	}

	result.Duration = time.Since(start).Seconds()
	return result, nil
}

type zoneRange struct{ lo, hi int }

func zoneRanges(q, zones int) []zoneRange {
	if zones < 1 {
		zones = 1
	}
	if zones > q {
		zones = maxInt(q, 1)
	}
	out := make([]zoneRange, 0, zones)
	base := q / zones
	rem := q % zones
	lo := 0
	for z := 0; z < zones; z++ {
		size := base
		if z < rem {
			size++
		}
		out = append(out, zoneRange{lo: lo, hi: lo + size})
		lo += size
	}
	return out
}

func rangeOf(lo, hi int) []int {
	idx := make([]int, hi-lo)
	for i := range idx {
		idx[i] = lo + i
	}
	return idx
}

func colsOf(m *mat.Dense) int {
	_, d := m.Dims()
	return d
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// decodeOutputLevel greedily decomposes spec §6's additive output-level
// flags (10 > 2 > 1, so the decomposition is unambiguous for any sum of
// distinct flags) and the two named negative values (-1 alternatives only,
// -3 alternatives + nested); any other negative value is treated as
// alternatives-only, the conservative default.
func decodeOutputLevel(level int) (wantWeights, wantTensors, wantJoint, wantAlternatives, wantNested bool) {
	if level < 0 {
		wantAlternatives = true
		wantNested = level == -3
		return
	}
	wantNested = true
	if level >= outputJointCov {
		wantJoint = true
		level -= outputJointCov
	}
	if level >= outputTensors {
		wantTensors = true
		level -= outputTensors
	}
	if level >= outputWeights {
		wantWeights = true
	}
	return
}

func buildLogger(verboseLevel int) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verboseLevel > 0 {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func flushWarnings(logger *zap.Logger, warn *errs.Warnings) {
	for _, w := range warn.Drain() {
		logger.Warn(fmt.Sprintf("nestedkriging: %s", w.Message))
	}
}

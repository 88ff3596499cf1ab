// Command gen generates synthetic 1-D Gaussian-process data plus a cluster
// assignment, for exercising nestedkriging.Predict end to end. Adapted from
// dtolpin-wigp's cmd/gen: same flag/stdout-CSV shape, generating a plain
// multi-cluster Kriging dataset instead of a seasonal-kernel forecasting
// series.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/hpwxf/nestedKriging"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	n        = 60
	clusters = 3
	lo       = 0.0
	hi       = 30.0
	lscale   = 2.0
	sd2      = 1.0
	noiseSD  = 0.05
	seed     = int64(1)
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Generate synthetic nested-Kriging test data. Invocation:
	%s [OPTIONS] > data.csv
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.IntVar(&n, "n", n, "number of points")
	flag.IntVar(&clusters, "clusters", clusters, "number of clusters to assign, by contiguous range along x")
	flag.Float64Var(&lo, "lo", lo, "lowest x value")
	flag.Float64Var(&hi, "hi", hi, "highest x value")
	flag.Float64Var(&lscale, "lengthscale", lscale, "generating kernel lengthscale")
	flag.Float64Var(&sd2, "sd2", sd2, "generating kernel marginal variance")
	flag.Float64Var(&noiseSD, "noise", noiseSD, "observation noise standard deviation")
	flag.Int64Var(&seed, "seed", seed, "PRNG seed")
}

// sample draws a single-group Gaussian-process trajectory at points x, using
// nestedkriging's own submodel machinery as the prior (a single call with N=1
// interpolates the previously accepted points, giving a proper GP sample
// path without a second GP dependency).
func sample(rng *rand.Rand, x []float64) []float64 {
	y := make([]float64, len(x))
	y[0] = rng.NormFloat64() * math.Sqrt(sd2)
	xs := []float64{x[0]}
	ys := []float64{y[0]}
	for i := 1; i < len(x); i++ {
		req := nestedkriging.Request{
			X:               mat.NewDense(len(xs), 1, xs),
			Y:               ys,
			Clusters:        make([]int, len(xs)),
			Xpred:           mat.NewDense(1, 1, []float64{x[i]}),
			CovType:         "matern5_2",
			Param:           []float64{lscale},
			Sd2:             sd2,
			KrigingType:     "simple",
			NumThreadsZones: 1,
			NumThreads:      1,
			NumThreadsBLAS:  1,
		}
		res, err := nestedkriging.Predict(context.Background(), req)
		if err != nil {
			panic(fmt.Errorf("gen: sample: %v", err))
		}
		yi := res.Mean[0] + math.Sqrt(res.Sd2[0])*rng.NormFloat64()
		y[i] = yi
		xs = append(xs, x[i])
		ys = append(ys, yi)
	}
	return y
}

func main() {
	flag.Parse()
	rng := rand.New(rand.NewSource(seed))

	x := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range x {
		x[i] = lo + float64(i)*step
	}
	f := sample(rng, x)

	y := make([]float64, n)
	fmt.Println("x,y,cluster")
	for i := range x {
		y[i] = f[i] + noiseSD*rng.NormFloat64()
		cluster := clusters * i / n
		fmt.Printf("%f,%f,%d\n", x[i], y[i], cluster)
	}

	meanY, stdY := stat.MeanStdDev(y, nil)
	fmt.Fprintf(os.Stderr, "generated %d points in %d clusters: mean(y)=%.4f std(y)=%.4f\n", n, clusters, meanY, stdY)
}

// Command nestedkriging is a thin CLI wrapper around the nestedkriging
// library, in the teacher's own idiom (flag-based options, CSV in, CSV out).
// It never contains core numerics itself.
//
// Training data is read from a CSV file with columns x_1..x_d, y, cluster.
// Prediction points are read from a CSV file with columns x_1..x_d. The
// result is written to stdout as CSV columns mean, sd2.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hpwxf/nestedKriging"
	"gonum.org/v1/gonum/mat"
)

var (
	trainPath   = ""
	predPath    = ""
	dim         = 1
	covType     = "exp"
	lengthscale = "1"
	sd2         = 1.0
	krigingType = "simple"
	nugget      = "0"
	numZones    = 1
	numThreads  = 1
	numBLAS     = 1
	verbose     = 0
	outputLevel = 0
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Runs the nested Kriging predictor. Invocation:
  %s -train TRAIN.csv -pred PRED.csv [OPTIONS] > OUTPUT.csv
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&trainPath, "train", trainPath, "training CSV: x_1..x_d,y,cluster")
	flag.StringVar(&predPath, "pred", predPath, "prediction CSV: x_1..x_d")
	flag.IntVar(&dim, "d", dim, "input dimension")
	flag.StringVar(&covType, "cov", covType, "kernel: exp, gauss, matern3_2, matern5_2, powexp, white_noise")
	flag.StringVar(&lengthscale, "lengthscale", lengthscale, "comma-separated lengthscales (2*d values for powexp)")
	flag.Float64Var(&sd2, "sd2", sd2, "marginal variance")
	flag.StringVar(&krigingType, "kriging", krigingType, "simple or ordinary")
	flag.StringVar(&nugget, "nugget", nugget, "comma-separated nugget values, broadcast cyclically")
	flag.IntVar(&numZones, "zones", numZones, "number of prediction-point zones")
	flag.IntVar(&numThreads, "threads", numThreads, "number of pair-level worker threads")
	flag.IntVar(&numBLAS, "blas-threads", numBLAS, "BLAS backend thread count (accepted, unused by the pure-Go backend)")
	flag.IntVar(&verbose, "verbose", verbose, "verbosity level; <=0 suppresses warnings")
	flag.IntVar(&outputLevel, "output-level", outputLevel, "output bitfield, see spec §6")
}

func main() {
	flag.Parse()
	if trainPath == "" || predPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	X, Y, clusters, err := loadTrain(trainPath, dim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load train: %v\n", err)
		os.Exit(1)
	}
	Xpred, err := loadPred(predPath, dim)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load pred: %v\n", err)
		os.Exit(1)
	}

	req := nestedkriging.Request{
		X:               X,
		Y:               Y,
		Clusters:        clusters,
		Xpred:           Xpred,
		CovType:         covType,
		Param:           parseFloats(lengthscale),
		Sd2:             sd2,
		KrigingType:     krigingType,
		NumThreadsZones: numZones,
		NumThreads:      numThreads,
		NumThreadsBLAS:  numBLAS,
		VerboseLevel:    verbose,
		OutputLevel:     outputLevel,
		Nugget:          parseFloats(nugget),
	}

	res, err := nestedkriging.Predict(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "predict: %v\n", err)
		os.Exit(1)
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	w.Write([]string{"mean", "sd2"}) //nolint:errcheck
	for i := range res.Mean {
		w.Write([]string{ //nolint:errcheck
			strconv.FormatFloat(res.Mean[i], 'g', -1, 64),
			strconv.FormatFloat(res.Sd2[i], 'g', -1, 64),
		})
	}
	fmt.Fprintf(os.Stderr, "%s: %d predictions in %.3fs\n", res.SourceCode, len(res.Mean), res.Duration)
}

func parseFloats(s string) []float64 {
	fields := strings.Split(s, ",")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// loadTrain reads x_1..x_d,y,cluster rows.
func loadTrain(path string, d int) (*mat.Dense, []float64, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	rdr := csv.NewReader(f)
	var xs []float64
	var y []float64
	var clusters []int
	n := 0
	for {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, err
		}
		if len(record) != d+2 {
			return nil, nil, nil, fmt.Errorf("row %d: got %d fields, want %d (d=%d + y + cluster)", n, len(record), d+2, d)
		}
		for k := 0; k < d; k++ {
			v, err := strconv.ParseFloat(record[k], 64)
			if err != nil {
				return nil, nil, nil, err
			}
			xs = append(xs, v)
		}
		yv, err := strconv.ParseFloat(record[d], 64)
		if err != nil {
			return nil, nil, nil, err
		}
		y = append(y, yv)
		cv, err := strconv.Atoi(strings.TrimSpace(record[d+1]))
		if err != nil {
			return nil, nil, nil, err
		}
		clusters = append(clusters, cv)
		n++
	}
	return mat.NewDense(n, d, xs), y, clusters, nil
}

// loadPred reads x_1..x_d rows.
func loadPred(path string, d int) (*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rdr := csv.NewReader(f)
	var xs []float64
	n := 0
	for {
		record, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) != d {
			return nil, fmt.Errorf("row %d: got %d fields, want %d", n, len(record), d)
		}
		for k := 0; k < d; k++ {
			v, err := strconv.ParseFloat(record[k], 64)
			if err != nil {
				return nil, err
			}
			xs = append(xs, v)
		}
		n++
	}
	return mat.NewDense(n, d, xs), nil
}

// Command nlpd computes the average negative log predictive density of a
// nestedkriging prediction CSV (columns mean, sd2) against the corresponding
// true values. Adapted from dtolpin-wigp's cmd/nlpd, rewired to nested
// Kriging's mean/sd2 column layout instead of the teacher's forecast-loop
// output.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"
)

var (
	comma     = ","
	skip      = 0
	truthPath = ""
	predPath  = ""
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			`Computes average negative log predictive density. Invocation:
	%s -truth TRUTH.csv -pred PRED.csv [OPTIONS]
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&comma, "comma", comma, "field separator")
	flag.IntVar(&skip, "s", skip, "initial records to skip")
	flag.StringVar(&truthPath, "truth", truthPath, "CSV of true y values, one per row, last field")
	flag.StringVar(&predPath, "pred", predPath, "CSV with header mean,sd2")
}

// nlpd is the negative log predictive density of a single Gaussian
// prediction (mean, std) against the observed value y.
func nlpd(y, mean, std float64) float64 {
	vari := std * std
	logv := math.Log(vari)
	d := y - mean
	return 0.5 * (math.Log(2*math.Pi) + d*d/vari + logv)
}

func main() {
	flag.Parse()
	if truthPath == "" || predPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	truth, err := os.Open(truthPath)
	if err != nil {
		log.Fatal(err)
	}
	defer truth.Close()
	pred, err := os.Open(predPath)
	if err != nil {
		log.Fatal(err)
	}
	defer pred.Close()

	truthRdr := csv.NewReader(truth)
	predRdr := csv.NewReader(pred)
	predRdr.Comma = rune(comma[0])
	predRdr.Read() // skip the mean,sd2 header //nolint:errcheck

	sum := 0.0
	n := 0
	scored := 0
	for ; ; n++ {
		trecord, terr := truthRdr.Read()
		precord, perr := predRdr.Read()
		if terr == io.EOF || perr == io.EOF {
			break
		}
		if terr != nil {
			log.Fatal(terr)
		}
		if perr != nil {
			log.Fatal(perr)
		}
		if n < skip {
			continue
		}

		y, err := strconv.ParseFloat(trecord[len(trecord)-1], 64)
		if err != nil {
			log.Fatal(err)
		}
		mean, err := strconv.ParseFloat(precord[0], 64)
		if err != nil {
			log.Fatal(err)
		}
		sd2, err := strconv.ParseFloat(precord[1], 64)
		if err != nil {
			log.Fatal(err)
		}
		sum += nlpd(y, mean, math.Sqrt(sd2))
		scored++
	}
	fmt.Printf("%f\n", sum/float64(scored))
}

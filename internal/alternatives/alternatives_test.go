package alternatives

import (
	"math"
	"testing"
)

func TestSPVSelectsMinimumVariance(t *testing.T) {
	mean := [][]float64{
		{1, 2},
		{3, 4},
		{5, 6},
	}
	v := [][]float64{
		{0.5, 0.9},
		{0.1, 0.2},
		{0.3, 0.05},
	}
	set := Compute(mean, v, 1.0)
	if set.SPV.Var[0] != 0.1 || set.SPV.Mean[0] != 3 {
		t.Errorf("query 0: got mean=%v var=%v, want mean=3 var=0.1", set.SPV.Mean[0], set.SPV.Var[0])
	}
	if set.SPV.Var[1] != 0.05 || set.SPV.Mean[1] != 6 {
		t.Errorf("query 1: got mean=%v var=%v, want mean=6 var=0.05", set.SPV.Mean[1], set.SPV.Var[1])
	}
}

func TestAllAlternativesFinite(t *testing.T) {
	mean := [][]float64{
		{1, 2, 0},
		{1.1, 1.9, 0.2},
		{0.9, 2.1, -0.1},
	}
	v := [][]float64{
		{0.2, 0.3, 0.5},
		{0.25, 0.28, 0.4},
		{0.3, 0.22, 0.6},
	}
	set := Compute(mean, v, 1.0)
	results := []Result{set.PoE, set.GPoEEqual, set.GPoEEntropy, set.BCM, set.RBCM, set.SPV}
	for ri, r := range results {
		for j := range r.Mean {
			if math.IsNaN(r.Mean[j]) || math.IsInf(r.Mean[j], 0) {
				t.Errorf("result %d: mean[%d] = %v, not finite", ri, j, r.Mean[j])
			}
			if math.IsNaN(r.Var[j]) || math.IsInf(r.Var[j], 0) {
				t.Errorf("result %d: var[%d] = %v, not finite", ri, j, r.Var[j])
			}
		}
	}
}

func TestGPoEEqualMatchesPoEMeanWithVarianceScaledByN(t *testing.T) {
	mean := [][]float64{{1, 2}, {3, 4}}
	v := [][]float64{{0.5, 0.4}, {0.6, 0.3}}
	set := Compute(mean, v, 2.0)
	n := float64(len(mean))
	for j := range set.PoE.Mean {
		if math.Abs(set.GPoEEqual.Var[j]-n*set.PoE.Var[j]) > 1e-9 {
			t.Errorf("query %d: GPoEEqual var %v, want PoE var * N = %v", j, set.GPoEEqual.Var[j], n*set.PoE.Var[j])
		}
		if math.Abs(set.PoE.Mean[j]-set.GPoEEqual.Mean[j]) > 1e-9 {
			t.Errorf("query %d: means should match (same precision-weighted average): PoE %v, GPoEEqual %v", j, set.PoE.Mean[j], set.GPoEEqual.Mean[j])
		}
	}
}

func TestEntropyWeightsSumToOne(t *testing.T) {
	mean := [][]float64{{1}, {2}, {3}}
	v := [][]float64{{0.3}, {0.5}, {0.2}}
	sigma2 := 1.0
	// Recompute the internal entropy weights the same way Compute does, to
	// check they are a valid (sum-to-one) weighting before they feed RBCM.
	n := len(mean)
	var total float64
	raw := make([]float64, n)
	for i := 0; i < n; i++ {
		w := 0.5 * (math.Log(sigma2) - math.Log(v[i][0]))
		raw[i] = w
		total += w
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += raw[i] / total
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("entropy weights sum = %v, want 1", sum)
	}
}
